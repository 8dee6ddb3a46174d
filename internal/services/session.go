// Package services reúne os casos de uso do app: sessão do usuário, tomadores e notas fiscais.
// Mantém em memória o estado que as telas exibem e valida os formulários antes de ir à rede.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
	"github.com/magnani/nymu-app/client/internal/validation"
)

// storageNotConfiguredMarker identifica a falha de storage na mensagem do erro
const storageNotConfiguredMarker = "storage não configurado"

// Motivos exibidos pelo login
var (
	// ErrInvalidCredentials é a mensagem genérica para qualquer falha de login não classificada
	ErrInvalidCredentials = errors.New("Email ou senha incorretos.")

	// ErrStorageUnavailable indica que o token não pode ser guardado neste dispositivo
	ErrStorageUnavailable = errors.New("Armazenamento seguro não configurado. Defina NYMU_TOKEN_SECRET ou use NYMU_TOKEN_STORE=memory e tente novamente.")
)

// SignInError carrega o motivo exibido ao usuário e a causa original
type SignInError struct {
	Reason error
	Cause  error
}

func (e *SignInError) Error() string {
	return e.Reason.Error()
}

func (e *SignInError) Unwrap() []error {
	return []error{e.Reason, e.Cause}
}

// Session controla login, logout e o usuário autenticado
type Session struct {
	auth   ports.AuthAPI
	tokens ports.TokenStore
	logger *logrus.Logger

	mu   sync.RWMutex
	user *domain.User
}

// NewSession cria uma sessão sem usuário
func NewSession(auth ports.AuthAPI, tokens ports.TokenStore, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{auth: auth, tokens: tokens, logger: logger}
}

// classifySignIn decide a mensagem do login: storage, rede (inalterada) ou credenciais
func classifySignIn(err error) error {
	if errors.Is(err, ports.ErrNetwork) {
		return err
	}
	reason := ErrInvalidCredentials
	if strings.Contains(err.Error(), storageNotConfiguredMarker) {
		reason = ErrStorageUnavailable
	}
	return &SignInError{Reason: reason, Cause: err}
}

// SignIn autentica, salva o token e guarda o usuário
func (s *Session) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	var errs domain.ValidationErrors
	if email == "" {
		errs = append(errs, domain.NewValidationError("email", domain.MsgRequired))
	}
	if password == "" {
		errs = append(errs, domain.NewValidationError("password", domain.MsgRequired))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.WithError(err).Warn("falha no login")
		return nil, classifySignIn(err)
	}
	if err := s.tokens.Save(ctx, res.Token); err != nil {
		s.logger.WithError(err).Error("erro ao salvar token")
		return nil, classifySignIn(err)
	}

	s.setUser(res.User)
	s.logger.WithField("user_id", res.User.ID).Info("login realizado")
	return s.CurrentUser(), nil
}

// SignUp valida o cadastro e envia o CPF sem máscara
func (s *Session) SignUp(ctx context.Context, reg domain.Registration) (*ports.RegisterResult, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	reg.Email = strings.TrimSpace(reg.Email)
	reg.CPF = validation.CleanDigits(reg.CPF)
	return s.auth.Register(ctx, reg)
}

// ValidateCode confirma o código recebido por email
func (s *Session) ValidateCode(ctx context.Context, email, code string) (*ports.ActionResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewValidationError("code", domain.MsgRequired)
	}
	return s.auth.ValidateCode(ctx, strings.TrimSpace(email), code)
}

// SignOut apaga o token e esquece o usuário
func (s *Session) SignOut(ctx context.Context) error {
	s.setUser(nil)
	if err := s.tokens.Remove(ctx); err != nil {
		return fmt.Errorf("erro ao fazer logout: %w", err)
	}
	return nil
}

// IsAuthenticated indica se há token salvo
func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// CurrentUser devolve uma cópia do usuário autenticado, ou nil
func (s *Session) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) setUser(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

// UpdateProfile envia nome, telefone e foto e atualiza o usuário em memória
func (s *Session) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	if update.IsEmpty() {
		return s.CurrentUser(), nil
	}
	if update.Nome != nil && strings.TrimSpace(*update.Nome) == "" {
		return nil, domain.NewValidationError("nome", domain.MsgRequired)
	}
	if update.Telefone != nil {
		if !validation.ValidatePhone(*update.Telefone) {
			return nil, domain.NewValidationError("telefone", domain.MsgInvalidPhone)
		}
		tel := validation.CleanDigits(*update.Telefone)
		update.Telefone = &tel
	}

	res, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	if res.User != nil {
		merged := res.User
		if cur := s.CurrentUser(); cur != nil {
			if merged.Email == "" {
				merged.Email = cur.Email
			}
			if merged.CPF == "" {
				merged.CPF = cur.CPF
			}
		}
		s.setUser(merged)
	}
	return s.CurrentUser(), nil
}

// ChangePassword troca a senha do usuário autenticado
func (s *Session) ChangePassword(ctx context.Context, current, next string) (*ports.ActionResult, error) {
	var errs domain.ValidationErrors
	if current == "" {
		errs = append(errs, domain.NewValidationError("currentPassword", domain.MsgRequired))
	}
	if next == "" {
		errs = append(errs, domain.NewValidationError("newPassword", domain.MsgRequired))
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return s.auth.ChangePassword(ctx, current, next)
}
