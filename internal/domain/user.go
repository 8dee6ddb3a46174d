package domain

import (
	"strings"

	"github.com/magnani/nymu-app/client/internal/validation"
)

// DefaultUserName é exibido quando o usuário não tem nome cadastrado
const DefaultUserName = "Usuário"

// User representa o usuário autenticado
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	CPF      string `json:"cpf,omitempty"`
	Telefone string `json:"telefone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// DisplayName retorna o nome completo ou "Usuário"
func (u *User) DisplayName() string {
	if u == nil {
		return DefaultUserName
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return DefaultUserName
}

// ShortName retorna as duas primeiras palavras do nome
func (u *User) ShortName() string {
	words := strings.Fields(u.DisplayName())
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// FirstName retorna a primeira palavra do nome
func (u *User) FirstName() string {
	return strings.Fields(u.DisplayName())[0]
}

// ProfileUpdate contém os campos opcionais de atualização de perfil
type ProfileUpdate struct {
	Nome     *string
	Telefone *string
	Foto     *string
}

// IsEmpty indica que nenhum campo foi informado
func (p ProfileUpdate) IsEmpty() bool {
	return p.Nome == nil && p.Telefone == nil && p.Foto == nil
}

// Registration são os dados do cadastro de um novo usuário
type Registration struct {
	Email    string
	Password string
	CPF      string
	Code     string
}

// Validate verifica email, senha e CPF antes do envio
func (r Registration) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(r.Email) == "" {
		errs.add("email", MsgRequired)
	}
	if r.Password == "" {
		errs.add("password", MsgRequired)
	}
	if strings.TrimSpace(r.CPF) == "" {
		errs.add("cpf", MsgRequired)
	} else if !validation.IsValidCPF(r.CPF) {
		errs.add("cpf", MsgInvalidCPF)
	}
	return errs.errOrNil()
}
