// Package main é o CLI do app Nymu: login, tomadores e notas fiscais pela linha de comando
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/adapters/nymu"
	"github.com/magnani/nymu-app/client/internal/adapters/storage"
	"github.com/magnani/nymu-app/client/internal/config"
	"github.com/magnani/nymu-app/client/internal/ports"
	"github.com/magnani/nymu-app/client/internal/services"
)

const usage = `uso: nymu <comando> [opções]

Sessão:
  login        -email -password
  logout
  status
  cadastro     -email -password -cpf -code
  validar-codigo -email -code
  perfil       [-nome] [-telefone]
  senha        -atual -nova

Tomadores:
  tomadores listar  [-tipo PF|PJ] [-busca texto]
  tomadores criar   -tipo -nome -documento -logradouro -numero -cep -bairro -cidade -uf [-im] [-telefone]
  tomadores remover <id>

Notas fiscais:
  notas listar    [-status] [-tomador] [-de AAAA-MM-DD] [-ate AAAA-MM-DD]
  notas solicitar -tomador -local -competencia MM/AAAA -valor 1500,00 -descricao [-simular]
  notas ver       <id>
  notas cancelar  -motivo <id>
  notas xml       [-o arquivo] <id>
  notas pdf       [-o arquivo] <id>

Utilitários (sem rede):
  validar  <cpf|cnpj>
  formatar cpf|cnpj|documento|cep|telefone|moeda <valor>
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "erro:", describeError(err))
		os.Exit(1)
	}
}

// describeError acrescenta orientação para os status que o usuário resolve sozinho
func describeError(err error) string {
	switch {
	case errors.Is(err, nymu.ErrUnauthorized):
		return err.Error() + " (verifique as credenciais ou faça login novamente)"
	case errors.Is(err, nymu.ErrForbidden):
		return "acesso negado: " + err.Error()
	case errors.Is(err, nymu.ErrRateLimited):
		return err.Error() + " (muitas requisições, aguarde alguns instantes)"
	}
	return err.Error()
}

var errUsage = errors.New("uso incorreto")

// run separa os utilitários locais dos comandos que precisam da API
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "validar":
		return runValidar(args[1:], out)
	case "formatar":
		return runFormatar(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("erro ao carregar configurações: %w", err)
	}
	logger := config.NewLogger(cfg.Log)

	a, closeFn, err := newApp(ctx, cfg, logger, out)
	if err != nil {
		return err
	}
	defer closeFn()

	return a.dispatch(ctx, args)
}

// app liga os serviços ao cliente HTTP e ao armazenamento do token
type app struct {
	session   *services.Session
	tomadores *services.TomadorService
	notas     *services.NotaFiscalService
	out       io.Writer
	logger    *logrus.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger, out io.Writer) (*app, func(), error) {
	tokens, err := storage.NewTokenStore(ctx, cfg.Token, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if c, ok := tokens.(io.Closer); ok {
			_ = c.Close()
		}
	}

	rc := nymu.NewRequestContext(cfg.API.BaseURL)
	rc.AddHeaderInterceptor(nymu.RequestIDInterceptor())
	rc.AddHeaderInterceptor(nymu.AuthInterceptor(tokens, logger))

	client, err := nymu.NewClient(&cfg.API, rc, tokens, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	logger.WithFields(logrus.Fields{"api": client.BaseURL(), "token_store": cfg.Token.Driver}).Debug("cliente configurado")
	return newAppWith(client, tokens, logger, out), closeFn, nil
}

// newAppWith monta o app a partir de portas já construídas
func newAppWith(api interface {
	ports.AuthAPI
	ports.TomadorAPI
	ports.NotaFiscalAPI
}, tokens ports.TokenStore, logger *logrus.Logger, out io.Writer) *app {
	return &app{
		session:   services.NewSession(api, tokens, logger),
		tomadores: services.NewTomadorService(api, logger),
		notas:     services.NewNotaFiscalService(api, logger),
		out:       out,
		logger:    logger,
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "status":
		return a.status(ctx)
	case "cadastro":
		return a.register(ctx, rest)
	case "validar-codigo":
		return a.validateCode(ctx, rest)
	case "perfil":
		return a.profile(ctx, rest)
	case "senha":
		return a.changePassword(ctx, rest)
	case "tomadores":
		return a.tomadoresCmd(ctx, rest)
	case "notas":
		return a.notasCmd(ctx, rest)
	}
	return errUsage
}
