package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/services"
	"github.com/magnani/nymu-app/client/internal/validation"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

// positional devolve o único argumento após as opções
func positional(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", errUsage
	}
	return fs.Arg(0), nil
}

// isSet indica se a opção foi passada, mesmo vazia
func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// ==================== Sessão ====================

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", os.Getenv("NYMU_PASSWORD"), "senha")
	if err := parse(fs, args); err != nil {
		return err
	}

	user, err := a.session.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Bem-vindo(a), %s!\n", user.FirstName())
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Sessão encerrada.")
	return nil
}

func (a *app) status(ctx context.Context) error {
	ok, err := a.session.IsAuthenticated(ctx)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintln(a.out, "autenticado")
	} else {
		fmt.Fprintln(a.out, "não autenticado")
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("cadastro")
	var reg domain.Registration
	fs.StringVar(&reg.Email, "email", "", "email")
	fs.StringVar(&reg.Password, "password", os.Getenv("NYMU_PASSWORD"), "senha")
	fs.StringVar(&reg.CPF, "cpf", "", "CPF")
	fs.StringVar(&reg.Code, "code", "", "código recebido por email")
	if err := parse(fs, args); err != nil {
		return err
	}

	res, err := a.session.SignUp(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, orDefault(res.Message, "Cadastro realizado."))
	return nil
}

func (a *app) validateCode(ctx context.Context, args []string) error {
	fs := newFlagSet("validar-codigo")
	email := fs.String("email", "", "email")
	code := fs.String("code", "", "código")
	if err := parse(fs, args); err != nil {
		return err
	}

	res, err := a.session.ValidateCode(ctx, *email, *code)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, orDefault(res.Message, "Código validado."))
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := newFlagSet("perfil")
	nome := fs.String("nome", "", "nome")
	telefone := fs.String("telefone", "", "telefone")
	foto := fs.String("foto", "", "foto em data URI")
	if err := parse(fs, args); err != nil {
		return err
	}

	var update domain.ProfileUpdate
	if isSet(fs, "nome") {
		update.Nome = nome
	}
	if isSet(fs, "telefone") {
		update.Telefone = telefone
	}
	if isSet(fs, "foto") {
		update.Foto = foto
	}

	user, err := a.session.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(a.out, "Nada a atualizar.")
		return nil
	}
	fmt.Fprintf(a.out, "%s\t%s\n", user.DisplayName(), validation.FormatPhone(user.Telefone))
	return nil
}

func (a *app) changePassword(ctx context.Context, args []string) error {
	fs := newFlagSet("senha")
	current := fs.String("atual", "", "senha atual")
	next := fs.String("nova", "", "nova senha")
	if err := parse(fs, args); err != nil {
		return err
	}

	res, err := a.session.ChangePassword(ctx, *current, *next)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, orDefault(res.Message, "Senha alterada."))
	return nil
}

// ==================== Tomadores ====================

func (a *app) tomadoresCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "listar":
		return a.listTomadores(ctx, args[1:])
	case "criar":
		return a.createTomador(ctx, args[1:])
	case "remover":
		return a.removeTomador(ctx, args[1:])
	}
	return errUsage
}

func (a *app) listTomadores(ctx context.Context, args []string) error {
	fs := newFlagSet("tomadores listar")
	tipo := fs.String("tipo", "", "PF ou PJ")
	busca := fs.String("busca", "", "nome ou documento")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := a.tomadores.Refresh(ctx); err != nil {
		return err
	}
	list := a.tomadores.Search(*busca)
	if *tipo != "" {
		list = intersect(list, a.tomadores.ByTipo(domain.TomadorTipo(strings.ToUpper(*tipo))), func(t *domain.Tomador) string { return t.ID })
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIPO\tNOME\tDOCUMENTO\tCIDADE")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s/%s\n", t.ID, t.Tipo, t.Nome, t.DocumentoFormatado(), t.Cidade, t.UF)
	}
	return w.Flush()
}

func (a *app) createTomador(ctx context.Context, args []string) error {
	fs := newFlagSet("tomadores criar")
	var form domain.TomadorForm
	tipo := fs.String("tipo", "", "PF ou PJ")
	fs.StringVar(&form.Nome, "nome", "", "nome ou razão social")
	fs.StringVar(&form.Documento, "documento", "", "CPF ou CNPJ")
	fs.StringVar(&form.InscricaoMunicipal, "im", "", "inscrição municipal")
	fs.StringVar(&form.Logradouro, "logradouro", "", "logradouro")
	fs.StringVar(&form.Numero, "numero", "", "número")
	fs.StringVar(&form.CEP, "cep", "", "CEP")
	fs.StringVar(&form.Bairro, "bairro", "", "bairro")
	fs.StringVar(&form.Cidade, "cidade", "", "cidade")
	fs.StringVar(&form.UF, "uf", "", "UF")
	fs.StringVar(&form.Telefone, "telefone", "", "telefone")
	if err := parse(fs, args); err != nil {
		return err
	}
	form.Tipo = domain.TomadorTipo(strings.ToUpper(*tipo))

	t, err := a.tomadores.Add(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Tomador %s cadastrado: %s (%s)\n", t.ID, t.Nome, t.DocumentoFormatado())
	return nil
}

func (a *app) removeTomador(ctx context.Context, args []string) error {
	fs := newFlagSet("tomadores remover")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := positional(fs)
	if err != nil {
		return err
	}

	if err := a.tomadores.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Tomador %s removido.\n", id)
	return nil
}

// ==================== Notas fiscais ====================

func (a *app) notasCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "listar":
		return a.listNotas(ctx, args[1:])
	case "solicitar":
		return a.solicitarNota(ctx, args[1:])
	case "ver":
		return a.showNota(ctx, args[1:])
	case "cancelar":
		return a.cancelNota(ctx, args[1:])
	case "xml":
		return a.downloadNota(ctx, args[1:], "xml")
	case "pdf":
		return a.downloadNota(ctx, args[1:], "pdf")
	}
	return errUsage
}

const dateLayout = "2006-01-02"

func (a *app) listNotas(ctx context.Context, args []string) error {
	fs := newFlagSet("notas listar")
	status := fs.String("status", "", "PROCESSANDO, EMITIDA, CANCELADA, ERRO ou SIMULATED")
	tomador := fs.String("tomador", "", "ID do tomador")
	de := fs.String("de", "", "data inicial (AAAA-MM-DD)")
	ate := fs.String("ate", "", "data final (AAAA-MM-DD)")
	if err := parse(fs, args); err != nil {
		return err
	}

	var from, to time.Time
	var err error
	if *de != "" {
		if from, err = time.ParseInLocation(dateLayout, *de, time.Local); err != nil {
			return fmt.Errorf("%w: data inicial inválida", errUsage)
		}
	}
	if *ate != "" {
		if to, err = time.ParseInLocation(dateLayout, *ate, time.Local); err != nil {
			return fmt.Errorf("%w: data final inválida", errUsage)
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	if err := a.notas.Refresh(ctx); err != nil {
		return err
	}
	byID := func(n *domain.NotaFiscal) string { return n.ID }
	list := a.notas.ByPeriod(from, to)
	if *status != "" {
		list = intersect(list, a.notas.ByStatus(domain.NotaFiscalStatus(strings.ToUpper(*status))), byID)
	}
	if *tomador != "" {
		list = intersect(list, a.notas.ByTomador(*tomador), byID)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNÚMERO\tSTATUS\tCOMPETÊNCIA\tVALOR\tTOMADOR")
	for _, n := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", n.ID, orDefault(n.InvoiceNumber, "-"), n.Status.Label(), n.Competencia, n.ValorFormatado(), orDefault(n.TomadorNome, n.TomadorID))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nTotal faturado: %s\n", validation.FormatCurrency(services.TotalFaturado(list)))
	return nil
}

func (a *app) solicitarNota(ctx context.Context, args []string) error {
	fs := newFlagSet("notas solicitar")
	var req domain.SolicitacaoNotaFiscal
	fs.StringVar(&req.TomadorID, "tomador", "", "ID do tomador")
	fs.StringVar(&req.LocalPrestacao, "local", "", "local da prestação")
	fs.StringVar(&req.Competencia, "competencia", validation.CurrentCompetencia(time.Now()), "MM/AAAA")
	valor := fs.String("valor", "", "valor em reais")
	fs.StringVar(&req.Descricao, "descricao", "", "descrição do serviço")
	fs.BoolVar(&req.Simulate, "simular", false, "simula a emissão sem enviar à prefeitura")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *valor != "" {
		cents, err := validation.ParseReais(*valor)
		if err != nil {
			return err
		}
		req.Valor = cents
	}

	n, err := a.notas.Solicitar(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Nota %s solicitada: %s (%s)\n", n.ID, n.Status.Label(), n.ValorFormatado())
	return nil
}

func (a *app) showNota(ctx context.Context, args []string) error {
	fs := newFlagSet("notas ver")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := positional(fs)
	if err != nil {
		return err
	}

	n, err := a.notas.Get(ctx, id)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"ID", n.ID},
		{"Status", n.Status.Label()},
		{"Número", n.InvoiceNumber},
		{"Série", n.Series},
		{"Chave de acesso", n.AccessKey},
		{"Protocolo", n.Protocol},
		{"Tomador", orDefault(n.TomadorNome, n.TomadorID)},
		{"Competência", n.Competencia},
		{"Valor", n.ValorFormatado()},
		{"Descrição", n.ServiceDescription},
		{"Mensagem", n.SefazMessage},
	}
	for _, r := range rows {
		if r[1] != "" {
			fmt.Fprintf(w, "%s:\t%s\n", r[0], r[1])
		}
	}
	return w.Flush()
}

func (a *app) cancelNota(ctx context.Context, args []string) error {
	fs := newFlagSet("notas cancelar")
	motivo := fs.String("motivo", "", "motivo do cancelamento (15 a 255 caracteres)")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := positional(fs)
	if err != nil {
		return err
	}

	if err := a.notas.Refresh(ctx); err != nil {
		return err
	}
	if err := a.notas.Cancelar(ctx, id, *motivo); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Nota %s cancelada.\n", id)
	return nil
}

func (a *app) downloadNota(ctx context.Context, args []string, kind string) error {
	fs := newFlagSet("notas " + kind)
	output := fs.String("o", "", "arquivo de saída")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := positional(fs)
	if err != nil {
		return err
	}

	var data []byte
	if kind == "xml" {
		data, err = a.notas.DownloadXML(ctx, id)
	} else {
		data, err = a.notas.DownloadPDF(ctx, id)
	}
	if err != nil {
		return err
	}

	path := orDefault(*output, fmt.Sprintf("nota-%s.%s", id, kind))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("erro ao salvar %s: %w", path, err)
	}
	fmt.Fprintf(a.out, "%s salvo em %s (%d bytes)\n", strings.ToUpper(kind), path, len(data))
	return nil
}

// ==================== Utilitários ====================

func runValidar(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	doc, err := validation.ParseDocument(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s válido: %s\n", doc.Kind(), doc)
	return nil
}

func runFormatar(args []string, out io.Writer) error {
	if len(args) != 2 {
		return errUsage
	}
	value := args[1]
	var formatted string
	switch strings.ToLower(args[0]) {
	case "cpf":
		formatted = validation.FormatCPF(value)
	case "cnpj":
		formatted = validation.FormatCNPJ(value)
	case "documento":
		formatted = validation.FormatDocument(value)
	case "cep":
		formatted = validation.FormatCEP(value)
	case "telefone":
		formatted = validation.FormatPhone(value)
	case "moeda":
		cents, err := validation.ParseReais(value)
		if err != nil {
			return err
		}
		formatted = validation.FormatCurrency(cents)
	default:
		return errUsage
	}
	fmt.Fprintln(out, formatted)
	return nil
}

// ==================== Helpers ====================

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// intersect mantém a ordem de a e só os itens presentes em b
func intersect[T any](a, b []T, key func(T) string) []T {
	keep := make(map[string]bool, len(b))
	for _, v := range b {
		keep[key(v)] = true
	}
	var out []T
	for _, v := range a {
		if keep[key(v)] {
			out = append(out, v)
		}
	}
	return out
}
