package domain

import (
	"strings"
	"time"

	"github.com/magnani/nymu-app/client/internal/validation"
)

// TomadorTipo representa o tipo de pessoa do tomador
type TomadorTipo string

const (
	TomadorPF TomadorTipo = "PF"
	TomadorPJ TomadorTipo = "PJ"
)

// IsValid verifica se o tipo é PF ou PJ
func (t TomadorTipo) IsValid() bool {
	return t == TomadorPF || t == TomadorPJ
}

// Tomador representa o destinatário do serviço (quem paga a nota)
type Tomador struct {
	ID                 string      `json:"id"`
	Tipo               TomadorTipo `json:"tipo"`
	Nome               string      `json:"nome"`
	Documento          string      `json:"documento"` // CPF ou CNPJ, só dígitos
	InscricaoMunicipal string      `json:"inscricaoMunicipal,omitempty"`
	Logradouro         string      `json:"logradouro"`
	Numero             string      `json:"numero"`
	CEP                string      `json:"cep"`
	Bairro             string      `json:"bairro"`
	Cidade             string      `json:"cidade"`
	UF                 string      `json:"uf"`
	Telefone           string      `json:"telefone,omitempty"`
	CreatedAt          *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time  `json:"updatedAt,omitempty"`
}

// DocumentoFormatado retorna o documento com a máscara de CPF ou CNPJ
func (t *Tomador) DocumentoFormatado() string {
	if t.Tipo == TomadorPJ {
		return validation.FormatCNPJ(t.Documento)
	}
	return validation.FormatCPF(t.Documento)
}

// Endereco monta o endereço em uma linha
func (t *Tomador) Endereco() string {
	var b strings.Builder
	b.WriteString(t.Logradouro)
	if t.Numero != "" {
		b.WriteString(", " + t.Numero)
	}
	if t.Bairro != "" {
		b.WriteString(" - " + t.Bairro)
	}
	if t.Cidade != "" {
		b.WriteString(", " + t.Cidade)
	}
	if t.UF != "" {
		b.WriteString("/" + t.UF)
	}
	if t.CEP != "" {
		b.WriteString(" - CEP " + validation.FormatCEP(t.CEP))
	}
	return b.String()
}

// TomadorForm são os dados digitados no cadastro de tomador
type TomadorForm struct {
	Tipo               TomadorTipo `json:"tipo"`
	Nome               string      `json:"nome"`
	Documento          string      `json:"documento"`
	InscricaoMunicipal string      `json:"inscricaoMunicipal,omitempty"`
	Logradouro         string      `json:"logradouro"`
	Numero             string      `json:"numero"`
	CEP                string      `json:"cep"`
	Bairro             string      `json:"bairro"`
	Cidade             string      `json:"cidade"`
	UF                 string      `json:"uf"`
	Telefone           string      `json:"telefone,omitempty"`
}

// Validate aplica as regras do formulário de tomador
func (f TomadorForm) Validate() error {
	var errs ValidationErrors

	if !f.Tipo.IsValid() {
		errs.add("tipo", MsgRequired)
	}
	if strings.TrimSpace(f.Nome) == "" {
		errs.add("nome", MsgRequired)
	}

	switch {
	case strings.TrimSpace(f.Documento) == "":
		errs.add("documento", MsgRequired)
	case f.Tipo == TomadorPJ && !validation.IsValidCNPJ(f.Documento):
		errs.add("documento", MsgInvalidCNPJ)
	case f.Tipo == TomadorPF && !validation.IsValidCPF(f.Documento):
		errs.add("documento", MsgInvalidCPF)
	}

	required := []struct{ field, value string }{
		{"logradouro", f.Logradouro},
		{"numero", f.Numero},
		{"bairro", f.Bairro},
		{"cidade", f.Cidade},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs.add(r.field, MsgRequired)
		}
	}

	if strings.TrimSpace(f.CEP) == "" {
		errs.add("cep", MsgRequired)
	} else if !validation.ValidateCEP(f.CEP) {
		errs.add("cep", MsgInvalidCEP)
	}

	if strings.TrimSpace(f.UF) == "" {
		errs.add("uf", MsgRequired)
	} else if !validation.ValidateUF(f.UF) {
		errs.add("uf", MsgInvalidUF)
	}

	if !validation.ValidatePhone(f.Telefone) {
		errs.add("telefone", MsgInvalidPhone)
	}

	return errs.errOrNil()
}

// Normalize remove máscaras, apara espaços e descarta a inscrição municipal de PF
func (f TomadorForm) Normalize() TomadorForm {
	out := TomadorForm{
		Tipo:       f.Tipo,
		Nome:       strings.TrimSpace(f.Nome),
		Documento:  validation.CleanDigits(f.Documento),
		Logradouro: strings.TrimSpace(f.Logradouro),
		Numero:     strings.TrimSpace(f.Numero),
		CEP:        validation.CleanDigits(f.CEP),
		Bairro:     strings.TrimSpace(f.Bairro),
		Cidade:     strings.TrimSpace(f.Cidade),
		UF:         strings.ToUpper(strings.TrimSpace(f.UF)),
		Telefone:   validation.CleanDigits(f.Telefone),
	}
	if f.Tipo == TomadorPJ {
		out.InscricaoMunicipal = strings.TrimSpace(f.InscricaoMunicipal)
	}
	return out
}

// TomadorPatch é uma atualização parcial: só os campos não-nil são enviados.
// Ponteiro para "" limpa o campo no servidor.
type TomadorPatch struct {
	Tipo               *TomadorTipo `json:"tipo,omitempty"`
	Nome               *string      `json:"nome,omitempty"`
	Documento          *string      `json:"documento,omitempty"`
	InscricaoMunicipal *string      `json:"inscricaoMunicipal,omitempty"`
	Logradouro         *string      `json:"logradouro,omitempty"`
	Numero             *string      `json:"numero,omitempty"`
	CEP                *string      `json:"cep,omitempty"`
	Bairro             *string      `json:"bairro,omitempty"`
	Cidade             *string      `json:"cidade,omitempty"`
	UF                 *string      `json:"uf,omitempty"`
	Telefone           *string      `json:"telefone,omitempty"`
}

// IsEmpty indica que nenhum campo foi informado
func (p TomadorPatch) IsEmpty() bool {
	return p == TomadorPatch{}
}

// Validate verifica apenas os campos presentes
func (p TomadorPatch) Validate() error {
	var errs ValidationErrors
	if p.Tipo != nil && !p.Tipo.IsValid() {
		errs.add("tipo", MsgRequired)
	}
	if p.Nome != nil && strings.TrimSpace(*p.Nome) == "" {
		errs.add("nome", MsgRequired)
	}
	if p.Documento != nil {
		d := validation.CleanDigits(*p.Documento)
		tipo := TomadorPF
		if p.Tipo != nil {
			tipo = *p.Tipo
		} else if len(d) == 14 {
			tipo = TomadorPJ
		}
		switch {
		case d == "":
			errs.add("documento", MsgRequired)
		case tipo == TomadorPJ && !validation.IsValidCNPJ(d):
			errs.add("documento", MsgInvalidCNPJ)
		case tipo == TomadorPF && !validation.IsValidCPF(d):
			errs.add("documento", MsgInvalidCPF)
		}
	}
	if p.CEP != nil && !validation.ValidateCEP(*p.CEP) {
		errs.add("cep", MsgInvalidCEP)
	}
	if p.UF != nil && !validation.ValidateUF(*p.UF) {
		errs.add("uf", MsgInvalidUF)
	}
	if p.Telefone != nil && !validation.ValidatePhone(*p.Telefone) {
		errs.add("telefone", MsgInvalidPhone)
	}
	return errs.errOrNil()
}

// Normalize limpa máscaras e coloca a UF em maiúsculas, preservando nil e ""
func (p TomadorPatch) Normalize() TomadorPatch {
	out := p
	out.Documento = mapStr(p.Documento, validation.CleanDigits)
	out.CEP = mapStr(p.CEP, validation.CleanDigits)
	out.Telefone = mapStr(p.Telefone, validation.CleanDigits)
	out.UF = mapStr(p.UF, func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) })
	out.Nome = mapStr(p.Nome, strings.TrimSpace)
	return out
}

// Apply copia os campos presentes do patch para o tomador
func (p TomadorPatch) Apply(t *Tomador) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	if p.Tipo != nil {
		t.Tipo = *p.Tipo
	}
	set(&t.Nome, p.Nome)
	set(&t.Documento, p.Documento)
	set(&t.InscricaoMunicipal, p.InscricaoMunicipal)
	set(&t.Logradouro, p.Logradouro)
	set(&t.Numero, p.Numero)
	set(&t.CEP, p.CEP)
	set(&t.Bairro, p.Bairro)
	set(&t.Cidade, p.Cidade)
	set(&t.UF, p.UF)
	set(&t.Telefone, p.Telefone)
}

func mapStr(s *string, fn func(string) string) *string {
	if s == nil {
		return nil
	}
	v := fn(*s)
	return &v
}
