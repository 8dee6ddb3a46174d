package validation

import (
	"errors"
	"fmt"
)

// DocumentKind identifica o tipo de documento do contribuinte
type DocumentKind string

const (
	KindCPF  DocumentKind = "CPF"
	KindCNPJ DocumentKind = "CNPJ"
)

// Erros de documento
var (
	ErrInvalidCPF      = errors.New("CPF inválido")
	ErrInvalidCNPJ     = errors.New("CNPJ inválido")
	ErrInvalidDocument = errors.New("documento inválido")
)

// Document é um CPF ou CNPJ já validado. Guarda somente os dígitos;
// a formatação produz uma nova string sem alterar o valor.
type Document struct {
	kind   DocumentKind
	digits string
}

// NewDocument valida o documento do tipo informado
func NewDocument(kind DocumentKind, raw string) (Document, error) {
	d := CleanDigits(raw)
	switch kind {
	case KindCPF:
		if !IsValidCPF(d) {
			return Document{}, ErrInvalidCPF
		}
	case KindCNPJ:
		if !IsValidCNPJ(d) {
			return Document{}, ErrInvalidCNPJ
		}
	default:
		return Document{}, fmt.Errorf("%w: tipo %q desconhecido", ErrInvalidDocument, kind)
	}
	return Document{kind: kind, digits: d}, nil
}

// ParseDocument deduz o tipo pela quantidade de dígitos (11 = CPF, 14 = CNPJ)
func ParseDocument(raw string) (Document, error) {
	switch len(CleanDigits(raw)) {
	case 11:
		return NewDocument(KindCPF, raw)
	case 14:
		return NewDocument(KindCNPJ, raw)
	default:
		return Document{}, ErrInvalidDocument
	}
}

// Kind retorna CPF ou CNPJ
func (d Document) Kind() DocumentKind { return d.kind }

// Digits retorna apenas os dígitos
func (d Document) Digits() string { return d.digits }

// IsZero indica um Document não inicializado
func (d Document) IsZero() bool { return d.digits == "" }

// Formatted retorna o documento com a máscara do seu tipo
func (d Document) Formatted() string {
	if d.kind == KindCNPJ {
		return FormatCNPJ(d.digits)
	}
	return FormatCPF(d.digits)
}

func (d Document) String() string { return d.Formatted() }
