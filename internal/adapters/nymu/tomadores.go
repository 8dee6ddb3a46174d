package nymu

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
)

func tomadorPath(id string) string {
	return PathTomadores + "/" + url.PathEscape(id)
}

// CreateTomador cadastra um tomador; o formulário é normalizado antes do envio
func (c *Client) CreateTomador(ctx context.Context, form domain.TomadorForm) (*ports.TomadorResult, error) {
	body, err := c.doRequest(ctx, http.MethodPost, PathTomadores, form.Normalize(), WithAuth())
	if err != nil {
		return nil, err
	}
	return c.decodeTomadorResult(PathTomadores, body)
}

// ListTomadores lista os tomadores do usuário
func (c *Client) ListTomadores(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error) {
	q := url.Values{}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Tipo != "" {
		q.Set("tipo", string(filter.Tipo))
	}

	resp, err := Request[TomadorListResponse](ctx, c, http.MethodGet, PathTomadores, nil, WithAuth(), WithQuery(q))
	if err != nil {
		return nil, err
	}

	page := &domain.Page[*domain.Tomador]{
		Items: make([]*domain.Tomador, 0, len(resp.Tomadores)),
		Total: resp.Total,
		Page:  resp.Page,
		Limit: resp.Limit,
	}
	for i := range resp.Tomadores {
		t, err := decodeTomador(&resp.Tomadores[i])
		if err != nil {
			return nil, malformed(PathTomadores, "tomador inválido", err)
		}
		page.Items = append(page.Items, t)
	}
	return page, nil
}

// GetTomador busca um tomador pelo ID
func (c *Client) GetTomador(ctx context.Context, id string) (*domain.Tomador, error) {
	path := tomadorPath(id)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, WithAuth())
	if err != nil {
		return nil, err
	}
	res, err := c.decodeTomadorResult(path, body)
	if err != nil {
		return nil, err
	}
	return res.Tomador, nil
}

// UpdateTomador envia apenas os campos presentes no patch.
// Campos de texto vazios são omitidos, exceto inscrição municipal e telefone, que podem ser limpos.
func (c *Client) UpdateTomador(ctx context.Context, id string, patch domain.TomadorPatch) (*ports.TomadorResult, error) {
	path := tomadorPath(id)
	body, err := c.doRequest(ctx, http.MethodPut, path, updateTomadorBody(patch.Normalize()), WithAuth())
	if err != nil {
		return nil, err
	}
	return c.decodeTomadorResult(path, body)
}

// DeleteTomador remove um tomador
func (c *Client) DeleteTomador(ctx context.Context, id string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, tomadorPath(id), nil, WithAuth())
	return err
}

func updateTomadorBody(p domain.TomadorPatch) map[string]string {
	body := make(map[string]string)
	nonEmpty := func(key string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			body[key] = *v
		}
	}
	present := func(key string, v *string) {
		if v != nil {
			body[key] = *v
		}
	}

	if p.Tipo != nil && *p.Tipo != "" {
		body["tipo"] = string(*p.Tipo)
	}
	nonEmpty("nome", p.Nome)
	nonEmpty("documento", p.Documento)
	present("inscricaoMunicipal", p.InscricaoMunicipal)
	nonEmpty("logradouro", p.Logradouro)
	nonEmpty("numero", p.Numero)
	nonEmpty("cep", p.CEP)
	nonEmpty("bairro", p.Bairro)
	nonEmpty("cidade", p.Cidade)
	nonEmpty("uf", p.UF)
	present("telefone", p.Telefone)
	return body
}

func (c *Client) decodeTomadorResult(path string, body []byte) (*ports.TomadorResult, error) {
	payload, message, err := decodeTomadorBody(body)
	if err != nil {
		return nil, malformed(path, "JSON inválido", err)
	}
	t, err := decodeTomador(payload)
	if err != nil {
		return nil, malformed(path, "tomador inválido", err)
	}
	return &ports.TomadorResult{Tomador: t, Message: message}, nil
}
