package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Mensagens de validação exibidas junto ao campo
const (
	MsgRequired             = "Campo obrigatório"
	MsgInvalidCPF           = "CPF inválido"
	MsgInvalidCNPJ          = "CNPJ inválido"
	MsgInvalidCEP           = "CEP inválido"
	MsgInvalidUF            = "UF inválido (ex: SP)"
	MsgInvalidPhone         = "Telefone inválido"
	MsgSelectTomador        = "Selecione um tomador"
	MsgMin3Chars            = "Mínimo de 3 caracteres"
	MsgMin10Chars           = "Mínimo de 10 caracteres"
	MsgInvalidCompetencia   = "Competência inválida"
	MsgValorPositive        = "Valor deve ser maior que zero"
	MsgCancelReasonTooShort = "O motivo deve ter no mínimo 15 caracteres"
	MsgCancelReasonTooLong  = "O motivo deve ter no máximo 255 caracteres"
)

// Erros sentinela do domínio
var (
	// ErrCancelNotAllowed indica cancelamento a partir de um status que não permite
	ErrCancelNotAllowed = errors.New("nota fiscal não pode ser cancelada neste status")

	// ErrInvalidTransition indica uma transição de status fora da máquina de estados
	ErrInvalidTransition = errors.New("transição de status inválida")
)

// ValidationError representa um erro de validação com detalhes do campo
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("erro de validação no campo '%s': %s", e.Field, e.Message)
}

// NewValidationError cria um novo ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ValidationErrors agrupa os erros de um formulário, na ordem dos campos
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "erros de validação: " + strings.Join(parts, "; ")
}

// Field retorna a mensagem do campo, ou "" se o campo é válido
func (v ValidationErrors) Field(name string) string {
	for _, e := range v {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

// Unwrap permite errors.As(err, **ValidationError) sobre o grupo
func (v ValidationErrors) Unwrap() []error {
	out := make([]error, len(v))
	for i, e := range v {
		out[i] = e
	}
	return out
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, NewValidationError(field, message))
}

// errOrNil evita devolver uma interface não-nil com slice vazio
func (v ValidationErrors) errOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidation retorna true se o erro é (ou contém) um erro de validação de formulário
func IsValidation(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var vs ValidationErrors
	return errors.As(err, &vs)
}
