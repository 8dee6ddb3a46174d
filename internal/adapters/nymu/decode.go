package nymu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/magnani/nymu-app/client/internal/domain"
)

// dateLayouts são os formatos de data aceitos nas respostas
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate interpreta uma data textual; vazio resulta em nil
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("data %q em formato desconhecido", s)
}

// rawID aceita IDs numéricos ou textuais
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// resolvePhotoURL transforma caminhos relativos em URL absoluta; URLs http(s) e data URIs passam direto
func resolvePhotoURL(baseURL, foto string) string {
	switch {
	case foto == "":
		return ""
	case strings.HasPrefix(foto, "http://"), strings.HasPrefix(foto, "https://"):
		return foto
	case strings.HasPrefix(foto, "data:image"):
		return foto
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimPrefix(foto, "/")
}

// decodeLoginUser concilia as duas convenções de nome de campo do servidor
func decodeLoginUser(p *UserPayload) *domain.User {
	u := &domain.User{
		ID:       rawID(p.ID),
		Email:    p.Email,
		Name:     p.Name,
		CPF:      p.CPF,
		Telefone: p.Telefone,
		Avatar:   p.Avatar,
	}
	if u.Name == "" {
		u.Name = p.Nome
	}
	if u.Avatar == "" {
		u.Avatar = p.Foto
	}
	return u
}

// decodeProfileUser é decodeLoginUser com a foto tendo prioridade e URL resolvida
func decodeProfileUser(baseURL string, p *UserPayload) *domain.User {
	u := decodeLoginUser(p)
	if p.Foto != "" {
		u.Avatar = resolvePhotoURL(baseURL, p.Foto)
	}
	return u
}

func decodeTomador(p *TomadorPayload) (*domain.Tomador, error) {
	id := rawID(p.ID)
	if id == "" {
		return nil, fmt.Errorf("tomador sem id")
	}
	createdAt, err := parseDate(p.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseDate(p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Tomador{
		ID:                 id,
		Tipo:               domain.TomadorTipo(strings.ToUpper(p.Tipo)),
		Nome:               p.Nome,
		Documento:          p.Documento,
		InscricaoMunicipal: p.InscricaoMunicipal,
		Logradouro:         p.Logradouro,
		Numero:             p.Numero,
		CEP:                p.CEP,
		Bairro:             p.Bairro,
		Cidade:             p.Cidade,
		UF:                 p.UF,
		Telefone:           p.Telefone,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

// decodeTomadorBody aceita {tomador: {...}} ou o tomador sem envelope
func decodeTomadorBody(body []byte) (*TomadorPayload, string, error) {
	var env TomadorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, "", err
	}
	if env.Tomador != nil {
		return env.Tomador, env.Message, nil
	}
	var bare TomadorPayload
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, "", err
	}
	return &bare, env.Message, nil
}

// decodeInvoice converte a nota do formato de transporte para o domínio.
// createdAt/updatedAt ausentes assumem o instante da decodificação; as demais datas ficam nil.
func decodeInvoice(p *InvoicePayload, now time.Time) (*domain.NotaFiscal, error) {
	id := rawID(p.ID)
	if id == "" {
		return nil, fmt.Errorf("nota fiscal sem id")
	}
	status := domain.NotaFiscalStatus(strings.ToUpper(p.Status))
	if !status.IsValid() {
		return nil, fmt.Errorf("status desconhecido %q", p.Status)
	}

	n := &domain.NotaFiscal{
		ID:                 id,
		InvoiceNumber:      rawID(p.InvoiceNumber),
		Series:             p.Series,
		AccessKey:          p.AccessKey,
		Protocol:           p.Protocol,
		VerificationCode:   p.VerificationCode,
		Status:             status,
		TomadorID:          rawID(p.TomadorID),
		TomadorNome:        p.TomadorNome,
		TomadorDocumento:   p.TomadorDocumento,
		LocalPrestacao:     p.LocalPrestacao,
		Competencia:        p.Competencia,
		ServiceDescription: p.ServiceDescription,
		SefazMessage:       p.SefazMessage,
		XMLPath:            p.XMLPath,
		PDFPath:            p.PDFPath,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if p.ServiceValue.Valid {
		n.ServiceValue = p.ServiceValue.Decimal.Round(0).IntPart()
	}

	dates := []struct {
		raw string
		set func(*time.Time)
	}{
		{p.CreatedAt, func(t *time.Time) { n.CreatedAt = *t }},
		{p.UpdatedAt, func(t *time.Time) { n.UpdatedAt = *t }},
		{p.AuthorizedAt, func(t *time.Time) { n.AuthorizedAt = t }},
		{p.CancelledAt, func(t *time.Time) { n.CancelledAt = t }},
	}
	for _, d := range dates {
		t, err := parseDate(d.raw)
		if err != nil {
			return nil, err
		}
		if t != nil {
			d.set(t)
		}
	}
	return n, nil
}

func decodeInvoices(list []InvoicePayload, now time.Time) ([]*domain.NotaFiscal, error) {
	out := make([]*domain.NotaFiscal, 0, len(list))
	for i := range list {
		n, err := decodeInvoice(&list[i], now)
		if err != nil {
			return nil, fmt.Errorf("nota %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// joinMessage monta a mensagem de erro a partir de "message", que pode ser texto ou lista
func joinMessage(raw json.RawMessage) (string, []string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, ", "), list
	}
	return "", nil
}
