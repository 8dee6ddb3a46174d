package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
)

func TestSession_SignIn(t *testing.T) {
	user := &domain.User{ID: "1", Email: "demo@nymu.com.br", Name: "Maria Souza"}
	networkErr := fmt.Errorf("conexão: %w", ports.ErrNetwork)

	tests := []struct {
		name      string
		loginErr  error
		saveErr   error
		wantErr   error
		wantToken string
	}{
		{"sucesso", nil, nil, nil, "tok"},
		{"401 com mensagem do servidor", errors.New("Invalid credentials"), nil, ErrInvalidCredentials, ""},
		{"500 genérico", errors.New("Erro 500: Internal Server Error"), nil, ErrInvalidCredentials, ""},
		{"storage não configurado", nil, errors.New("storage não configurado"), ErrStorageUnavailable, ""},
		{"falha de rede passa direto", networkErr, nil, ports.ErrNetwork, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuth{
				LoginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
					if tt.loginErr != nil {
						return nil, tt.loginErr
					}
					return &ports.LoginResult{Token: "tok", User: user}, nil
				},
			}
			tokens := &mockTokens{saveErr: tt.saveErr}
			s := NewSession(auth, tokens, quietLogger())

			got, err := s.SignIn(context.Background(), " demo@nymu.com.br ", "senha")
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("SignIn() = %v", err)
				}
				if got.Name != "Maria Souza" || s.CurrentUser() == nil {
					t.Errorf("usuário = %+v", got)
				}
			} else {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SignIn() = %v, want %v", err, tt.wantErr)
				}
				if s.CurrentUser() != nil {
					t.Error("usuário definido após falha")
				}
			}
			if tokens.token != tt.wantToken {
				t.Errorf("token = %q, want %q", tokens.token, tt.wantToken)
			}
		})
	}
}

func TestSession_SignIn_ExactMessage(t *testing.T) {
	auth := &mockAuth{
		LoginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return nil, errors.New("Unauthorized: wrong password for user")
		},
	}
	s := NewSession(auth, &mockTokens{}, quietLogger())

	_, err := s.SignIn(context.Background(), "demo@nymu.com.br", "errada")
	if err == nil || err.Error() != "Email ou senha incorretos." {
		t.Errorf("mensagem = %v", err)
	}
	var sie *SignInError
	if !errors.As(err, &sie) || sie.Cause == nil {
		t.Errorf("causa original perdida: %#v", err)
	}
}

func TestSession_SignIn_EmptyFields(t *testing.T) {
	auth := &mockAuth{}
	s := NewSession(auth, &mockTokens{}, quietLogger())

	_, err := s.SignIn(context.Background(), "  ", "")
	if !domain.IsValidation(err) {
		t.Errorf("err = %v, want validação", err)
	}
	if auth.calls != 0 {
		t.Error("API chamada com campos vazios")
	}
}

func TestSession_SignUp(t *testing.T) {
	var sent domain.Registration
	auth := &mockAuth{
		RegisterFn: func(ctx context.Context, reg domain.Registration) (*ports.RegisterResult, error) {
			sent = reg
			return &ports.RegisterResult{Success: true}, nil
		},
	}
	s := NewSession(auth, &mockTokens{}, quietLogger())

	if _, err := s.SignUp(context.Background(), domain.Registration{Email: "a@b.com", Password: "x", CPF: "123.456.789-00"}); !domain.IsValidation(err) {
		t.Errorf("CPF inválido = %v", err)
	}
	if auth.calls != 0 {
		t.Fatal("API chamada com CPF inválido")
	}

	if _, err := s.SignUp(context.Background(), domain.Registration{Email: "a@b.com", Password: "x", CPF: "529.982.247-25"}); err != nil {
		t.Fatalf("SignUp() = %v", err)
	}
	if sent.CPF != "52998224725" {
		t.Errorf("CPF enviado = %q, want sem máscara", sent.CPF)
	}
}

func TestSession_SignOut(t *testing.T) {
	auth := &mockAuth{
		LoginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return &ports.LoginResult{Token: "tok", User: &domain.User{ID: "1"}}, nil
		},
	}
	tokens := &mockTokens{}
	s := NewSession(auth, tokens, quietLogger())
	ctx := context.Background()

	if _, err := s.SignIn(ctx, "a@b.com", "x"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.IsAuthenticated(ctx); !ok {
		t.Error("IsAuthenticated() = false após login")
	}
	if err := s.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() = %v", err)
	}
	if ok, _ := s.IsAuthenticated(ctx); ok || s.CurrentUser() != nil {
		t.Error("sessão ainda ativa após logout")
	}
}

func TestSession_UpdateProfile(t *testing.T) {
	var sent domain.ProfileUpdate
	auth := &mockAuth{
		LoginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return &ports.LoginResult{Token: "tok", User: &domain.User{ID: "1", Email: "a@b.com", CPF: "52998224725"}}, nil
		},
		UpdateProfileFn: func(ctx context.Context, update domain.ProfileUpdate) (*ports.ProfileResult, error) {
			sent = update
			return &ports.ProfileResult{User: &domain.User{ID: "1", Name: *update.Nome, Telefone: *update.Telefone}}, nil
		},
	}
	s := NewSession(auth, &mockTokens{}, quietLogger())
	ctx := context.Background()
	if _, err := s.SignIn(ctx, "a@b.com", "x"); err != nil {
		t.Fatal(err)
	}

	bad := "123"
	if _, err := s.UpdateProfile(ctx, domain.ProfileUpdate{Telefone: &bad}); !domain.IsValidation(err) {
		t.Errorf("telefone inválido = %v", err)
	}

	nome := "Maria"
	tel := "(71) 99999-0000"
	u, err := s.UpdateProfile(ctx, domain.ProfileUpdate{Nome: &nome, Telefone: &tel})
	if err != nil {
		t.Fatalf("UpdateProfile() = %v", err)
	}
	if *sent.Telefone != "71999990000" {
		t.Errorf("telefone enviado = %q", *sent.Telefone)
	}
	if u.Name != "Maria" || u.Email != "a@b.com" || u.CPF != "52998224725" {
		t.Errorf("usuário = %+v", u)
	}
}
