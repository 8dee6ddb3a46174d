// Package ports define as interfaces (portas) entre os serviços e os adaptadores externos
// Seguindo o padrão Hexagonal Architecture / Ports & Adapters
package ports

import (
	"context"
	"errors"

	"github.com/magnani/nymu-app/client/internal/domain"
)

var (
	// ErrNetwork é reconhecido via errors.Is em qualquer falha de conexão devolvida pelos adaptadores
	ErrNetwork = errors.New("falha de conexão com a API")

	// ErrConflict indica que o servidor recusou o registro por já existir outro igual
	ErrConflict = errors.New("registro já cadastrado")
)

// ──────────────────────────────────────────────
// Auth types
// ──────────────────────────────────────────────

// LoginResult é o resultado de um login bem-sucedido
type LoginResult struct {
	Token string
	User  *domain.User
}

// ActionResult é a resposta das operações que retornam apenas sucesso e mensagem
type ActionResult struct {
	Success bool
	Message string
}

// RegisterResult é a resposta do cadastro
type RegisterResult struct {
	Success bool
	Message string
	User    *domain.User // pode ser nil
}

// ProfileResult é a resposta da atualização de perfil
type ProfileResult struct {
	User    *domain.User
	Message string
}

// TomadorResult é a resposta de criação/atualização de tomador
type TomadorResult struct {
	Tomador *domain.Tomador
	Message string
}

// NotaFiscalResult é a resposta da solicitação de nota
type NotaFiscalResult struct {
	Status     string
	Message    string
	NotaFiscal *domain.NotaFiscal
}

// ──────────────────────────────────────────────
// Storage interfaces
// ──────────────────────────────────────────────

// TokenStore guarda o token de autenticação entre execuções
type TokenStore interface {
	// Get retorna o token salvo, ou "" se não houver
	Get(ctx context.Context) (string, error)

	// Save grava o token, substituindo o anterior
	Save(ctx context.Context, token string) error

	// Remove apaga o token; remover um token inexistente não é erro
	Remove(ctx context.Context) error
}

// ──────────────────────────────────────────────
// API interfaces
// ──────────────────────────────────────────────

// AuthAPI define as operações de autenticação da API
type AuthAPI interface {
	// Login autentica com email e senha
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// ValidateCode confirma o código enviado por email
	ValidateCode(ctx context.Context, email, code string) (*ActionResult, error)

	// Register cadastra um novo usuário
	Register(ctx context.Context, reg domain.Registration) (*RegisterResult, error)

	// UpdateProfile atualiza nome, telefone e foto do usuário autenticado
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*ProfileResult, error)

	// ChangePassword troca a senha do usuário autenticado
	ChangePassword(ctx context.Context, currentPassword, newPassword string) (*ActionResult, error)
}

// TomadorAPI define o CRUD de tomadores
type TomadorAPI interface {
	CreateTomador(ctx context.Context, form domain.TomadorForm) (*TomadorResult, error)
	ListTomadores(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error)
	GetTomador(ctx context.Context, id string) (*domain.Tomador, error)
	UpdateTomador(ctx context.Context, id string, patch domain.TomadorPatch) (*TomadorResult, error)
	DeleteTomador(ctx context.Context, id string) error
}

// NotaFiscalAPI define as operações de notas fiscais
type NotaFiscalAPI interface {
	// CreateNotaFiscal solicita a emissão de uma NFS-e
	CreateNotaFiscal(ctx context.Context, req domain.SolicitacaoNotaFiscal) (*NotaFiscalResult, error)

	// ListNotasFiscais lista as notas com filtros e paginação
	ListNotasFiscais(ctx context.Context, filter domain.NotaFiscalFilter) (*domain.Page[*domain.NotaFiscal], error)

	// GetNotaFiscal busca uma nota pelo ID
	GetNotaFiscal(ctx context.Context, id string) (*domain.NotaFiscal, error)

	// CancelNotaFiscal cancela uma nota emitida
	CancelNotaFiscal(ctx context.Context, id, reason string) (*ActionResult, error)

	// DownloadXML baixa o XML autorizado
	DownloadXML(ctx context.Context, id string) ([]byte, error)

	// DownloadPDF baixa o DANFSE em PDF
	DownloadPDF(ctx context.Context, id string) ([]byte, error)
}
