package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magnani/nymu-app/client/internal/validation"
)

// NotaFiscalStatus representa o estado de uma nota fiscal
type NotaFiscalStatus string

const (
	NotaFiscalProcessando NotaFiscalStatus = "PROCESSANDO"
	NotaFiscalEmitida     NotaFiscalStatus = "EMITIDA"
	NotaFiscalCancelada   NotaFiscalStatus = "CANCELADA"
	NotaFiscalErro        NotaFiscalStatus = "ERRO"
	NotaFiscalSimulada    NotaFiscalStatus = "SIMULATED"
)

// Limites do motivo de cancelamento
const (
	MinCancelReasonLen = 15
	MaxCancelReasonLen = 255
)

// NotaFiscalType é o tipo fixo enviado na solicitação
const NotaFiscalType = "NFSE"

// IsValid verifica se o status é conhecido
func (s NotaFiscalStatus) IsValid() bool {
	switch s {
	case NotaFiscalProcessando, NotaFiscalEmitida, NotaFiscalCancelada, NotaFiscalErro, NotaFiscalSimulada:
		return true
	}
	return false
}

// IsTerminal indica CANCELADA ou ERRO
func (s NotaFiscalStatus) IsTerminal() bool {
	return s == NotaFiscalCancelada || s == NotaFiscalErro
}

// CanCancel indica se o cancelamento pode ser oferecido
func (s NotaFiscalStatus) CanCancel() bool {
	return s == NotaFiscalEmitida || s == NotaFiscalSimulada
}

// Label retorna o texto exibido para o status
func (s NotaFiscalStatus) Label() string {
	switch s {
	case NotaFiscalProcessando:
		return "Processando"
	case NotaFiscalEmitida:
		return "Emitida"
	case NotaFiscalCancelada:
		return "Cancelada"
	case NotaFiscalErro:
		return "Erro"
	case NotaFiscalSimulada:
		return "Simulada"
	}
	return string(s)
}

// transitions lista os destinos permitidos a partir de cada status
var transitions = map[NotaFiscalStatus][]NotaFiscalStatus{
	NotaFiscalProcessando: {NotaFiscalEmitida, NotaFiscalErro},
	NotaFiscalEmitida:     {NotaFiscalCancelada},
	NotaFiscalSimulada:    {NotaFiscalCancelada},
}

// CanTransition verifica se a transição from -> to é permitida
func CanTransition(from, to NotaFiscalStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NotaFiscal representa uma NFS-e solicitada pelo usuário
type NotaFiscal struct {
	ID                 string           `json:"id"`
	InvoiceNumber      string           `json:"invoiceNumber,omitempty"`
	Series             string           `json:"series,omitempty"`
	AccessKey          string           `json:"accessKey,omitempty"`
	Protocol           string           `json:"protocol,omitempty"`
	VerificationCode   string           `json:"verificationCode,omitempty"`
	Status             NotaFiscalStatus `json:"status"`
	TomadorID          string           `json:"tomadorId"`
	TomadorNome        string           `json:"tomadorNome,omitempty"`
	TomadorDocumento   string           `json:"tomadorDocumento,omitempty"`
	LocalPrestacao     string           `json:"localPrestacao"`
	Competencia        string           `json:"competencia"`
	ServiceValue       int64            `json:"serviceValue"` // Valor em centavos
	ServiceDescription string           `json:"serviceDescription"`
	SefazMessage       string           `json:"sefazMessage,omitempty"`
	XMLPath            string           `json:"xmlPath,omitempty"`
	PDFPath            string           `json:"pdfPath,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	AuthorizedAt       *time.Time       `json:"authorizedAt,omitempty"`
	CancelledAt        *time.Time       `json:"cancelledAt,omitempty"`
}

// CanCancel verifica se a nota pode ser cancelada
func (n *NotaFiscal) CanCancel() bool {
	return n.Status.CanCancel()
}

// IsTerminal verifica se a nota não aceita mais transições
func (n *NotaFiscal) IsTerminal() bool {
	return n.Status.IsTerminal()
}

// CountsAsFaturada indica se o valor entra no total faturado
func (n *NotaFiscal) CountsAsFaturada() bool {
	return n.Status == NotaFiscalEmitida || n.Status == NotaFiscalSimulada
}

// ValorFormatado retorna o valor como moeda
func (n *NotaFiscal) ValorFormatado() string {
	return validation.FormatCurrency(n.ServiceValue)
}

// Transition muda o status se a máquina de estados permitir
func (n *NotaFiscal) Transition(to NotaFiscalStatus, at time.Time) error {
	if !CanTransition(n.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Status, to)
	}
	n.Status = to
	n.UpdatedAt = at
	switch to {
	case NotaFiscalEmitida:
		n.AuthorizedAt = &at
	case NotaFiscalCancelada:
		n.CancelledAt = &at
	}
	return nil
}

// Authorize marca a nota como emitida
func (n *NotaFiscal) Authorize(at time.Time, sefazMessage string) error {
	if err := n.Transition(NotaFiscalEmitida, at); err != nil {
		return err
	}
	n.SefazMessage = sefazMessage
	return nil
}

// Reject marca a nota como rejeitada
func (n *NotaFiscal) Reject(at time.Time, sefazMessage string) error {
	if err := n.Transition(NotaFiscalErro, at); err != nil {
		return err
	}
	n.SefazMessage = sefazMessage
	return nil
}

// Cancel valida o motivo e marca a nota como cancelada
func (n *NotaFiscal) Cancel(reason string, at time.Time) error {
	if !n.CanCancel() {
		return fmt.Errorf("%w: %s", ErrCancelNotAllowed, n.Status)
	}
	if err := ValidateCancelReason(reason); err != nil {
		return err
	}
	return n.Transition(NotaFiscalCancelada, at)
}

// ValidateCancelReason exige entre 15 e 255 caracteres, desconsiderando espaços nas pontas
func ValidateCancelReason(reason string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(reason))
	if n < MinCancelReasonLen {
		return NewValidationError("reason", MsgCancelReasonTooShort)
	}
	if n > MaxCancelReasonLen {
		return NewValidationError("reason", MsgCancelReasonTooLong)
	}
	return nil
}

// SolicitacaoNotaFiscal são os dados para solicitar a emissão de uma nota
type SolicitacaoNotaFiscal struct {
	TomadorID      string
	LocalPrestacao string
	Competencia    string // "MM/YYYY"
	Valor          int64  // Valor em centavos
	Descricao      string
	Simulate       bool
}

// Validate aplica as regras do formulário de solicitação com o "agora" informado
func (s SolicitacaoNotaFiscal) Validate(now time.Time) error {
	var errs ValidationErrors

	if strings.TrimSpace(s.TomadorID) == "" {
		errs.add("tomadorId", MsgSelectTomador)
	}
	if utf8.RuneCountInString(strings.TrimSpace(s.LocalPrestacao)) < 3 {
		errs.add("localPrestacao", MsgMin3Chars)
	}
	if strings.TrimSpace(s.Competencia) == "" {
		errs.add("competencia", MsgRequired)
	} else if !validation.IsValidCompetenciaAt(strings.TrimSpace(s.Competencia), now) {
		errs.add("competencia", MsgInvalidCompetencia)
	}
	if s.Valor <= 0 {
		errs.add("valor", MsgValorPositive)
	}
	if utf8.RuneCountInString(strings.TrimSpace(s.Descricao)) < 10 {
		errs.add("descricao", MsgMin10Chars)
	}

	return errs.errOrNil()
}

// NotaFiscalFilter são os filtros da listagem de notas
type NotaFiscalFilter struct {
	Page        int
	Limit       int
	TomadorID   string
	Competencia string
	Status      NotaFiscalStatus
}

// TomadorFilter são os filtros da listagem de tomadores
type TomadorFilter struct {
	Page  int
	Limit int
	Tipo  TomadorTipo
}

// Page é uma página de resultados
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}
