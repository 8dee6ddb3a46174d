package nymu

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ==================== Erros ====================

// apiErrorBody é o corpo de erro padrão da API
type apiErrorBody struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
}

// ==================== Auth ====================

// LoginRequest é o corpo de POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateCodeRequest é o corpo de POST /auth/validateCode
type ValidateCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// RegisterRequest é o corpo de POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	CPF      string `json:"cpf"`
	Code     string `json:"code,omitempty"`
}

// UpdateProfileRequest é o corpo de PUT /auth/profile
type UpdateProfileRequest struct {
	Nome     *string `json:"nome,omitempty"`
	Telefone *string `json:"telefone,omitempty"`
	Foto     *string `json:"foto,omitempty"`
}

// ChangePasswordRequest é o corpo de POST /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserPayload é o usuário como o servidor envia: aceita "nome"/"name" e "foto"/"avatar"
type UserPayload struct {
	ID       json.RawMessage `json:"id"`
	Email    string          `json:"email"`
	Name     string          `json:"name,omitempty"`
	Nome     string          `json:"nome,omitempty"`
	CPF      string          `json:"cpf,omitempty"`
	Telefone string          `json:"telefone,omitempty"`
	Avatar   string          `json:"avatar,omitempty"`
	Foto     string          `json:"foto,omitempty"`
}

// LoginResponse é a resposta de POST /auth/login
type LoginResponse struct {
	Result *struct {
		Token string       `json:"token"`
		User  *UserPayload `json:"user"`
	} `json:"result"`
}

// ActionResponse é a resposta de validateCode e change-password
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RegisterResponse é a resposta de POST /auth/register
type RegisterResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *UserPayload `json:"user,omitempty"`
}

// ProfileResponse é a resposta de PUT /auth/profile
type ProfileResponse struct {
	User    *UserPayload `json:"user"`
	Message string       `json:"message,omitempty"`
}

// ==================== Tomadores ====================

// TomadorPayload é o tomador como o servidor envia
type TomadorPayload struct {
	ID                 json.RawMessage `json:"id"`
	Tipo               string          `json:"tipo"`
	Nome               string          `json:"nome"`
	Documento          string          `json:"documento"`
	InscricaoMunicipal string          `json:"inscricaoMunicipal,omitempty"`
	Logradouro         string          `json:"logradouro"`
	Numero             string          `json:"numero"`
	CEP                string          `json:"cep"`
	Bairro             string          `json:"bairro"`
	Cidade             string          `json:"cidade"`
	UF                 string          `json:"uf"`
	Telefone           string          `json:"telefone,omitempty"`
	CreatedAt          string          `json:"createdAt,omitempty"`
	UpdatedAt          string          `json:"updatedAt,omitempty"`
}

// TomadorEnvelope cobre {tomador, message}; GET/PUT também podem devolver o tomador sem envelope
type TomadorEnvelope struct {
	Tomador *TomadorPayload `json:"tomador"`
	Message string          `json:"message,omitempty"`
}

// TomadorListResponse é a resposta de GET /api/tomadores
type TomadorListResponse struct {
	Tomadores []TomadorPayload `json:"tomadores"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	Limit     int              `json:"limit"`
}

// MessageResponse é a resposta de DELETE
type MessageResponse struct {
	Message string `json:"message"`
}

// ==================== Notas fiscais ====================

// CreateInvoiceRequest é o corpo de POST /api/invoices
type CreateInvoiceRequest struct {
	Type           string `json:"type"`
	TomadorID      string `json:"tomadorId"`
	LocalPrestacao string `json:"localPrestacao"`
	Competencia    string `json:"competencia"` // MM/YYYY
	Valor          int64  `json:"valor"`       // Valor em centavos
	Descricao      string `json:"descricao"`
	ISSRetention   bool   `json:"issRetention"`
	Observations   string `json:"observations"`
	Simulate       bool   `json:"simulate,omitempty"`
}

// CancelInvoiceRequest é o corpo de POST /api/invoices/:id/cancel
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// InvoicePayload é a nota como o servidor envia; datas chegam como texto
type InvoicePayload struct {
	ID                 json.RawMessage     `json:"id"`
	InvoiceNumber      json.RawMessage     `json:"invoiceNumber,omitempty"`
	Series             string              `json:"series,omitempty"`
	AccessKey          string              `json:"accessKey,omitempty"`
	Protocol           string              `json:"protocol,omitempty"`
	VerificationCode   string              `json:"verificationCode,omitempty"`
	Status             string              `json:"status"`
	TomadorID          json.RawMessage     `json:"tomadorId,omitempty"`
	TomadorNome        string              `json:"tomadorNome,omitempty"`
	TomadorDocumento   string              `json:"tomadorDocumento,omitempty"`
	LocalPrestacao     string              `json:"localPrestacao,omitempty"`
	Competencia        string              `json:"competencia,omitempty"`
	ServiceValue       decimal.NullDecimal `json:"serviceValue"`
	ServiceDescription string              `json:"serviceDescription,omitempty"`
	SefazMessage       string              `json:"sefazMessage,omitempty"`
	XMLPath            string              `json:"xmlPath,omitempty"`
	PDFPath            string              `json:"pdfPath,omitempty"`
	CreatedAt          string              `json:"createdAt,omitempty"`
	UpdatedAt          string              `json:"updatedAt,omitempty"`
	AuthorizedAt       string              `json:"authorizedAt,omitempty"`
	CancelledAt        string              `json:"cancelledAt,omitempty"`
}

// CreateInvoiceResponse é a resposta de POST /api/invoices
type CreateInvoiceResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Invoice *InvoicePayload `json:"invoice"`
}

// InvoiceListResponse é a resposta de GET /api/invoices
type InvoiceListResponse struct {
	Status string `json:"status"`
	Result *struct {
		Invoices []InvoicePayload `json:"invoices"`
		Page     int              `json:"page"`
		Limit    int              `json:"limit"`
		Total    int              `json:"total"`
	} `json:"result"`
}

// InvoiceResponse é a resposta de GET /api/invoices/:id
type InvoiceResponse struct {
	Status string          `json:"status"`
	Result *InvoicePayload `json:"result"`
}

// CancelInvoiceResponse é a resposta de POST /api/invoices/:id/cancel
type CancelInvoiceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
