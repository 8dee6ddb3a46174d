package nymu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
)

func invoicePath(id string) string {
	return PathInvoices + "/" + url.PathEscape(id)
}

// XMLURL retorna a URL de download do XML da nota
func (c *Client) XMLURL(id string) string {
	return c.rc.URL(invoicePath(id) + "/xml")
}

// PDFURL retorna a URL de download do PDF da nota
func (c *Client) PDFURL(id string) string {
	return c.rc.URL(invoicePath(id) + "/pdf")
}

// CreateNotaFiscal solicita a emissão de uma NFS-e
func (c *Client) CreateNotaFiscal(ctx context.Context, req domain.SolicitacaoNotaFiscal) (*ports.NotaFiscalResult, error) {
	resp, err := Request[CreateInvoiceResponse](ctx, c, http.MethodPost, PathInvoices, CreateInvoiceRequest{
		Type:           domain.NotaFiscalType,
		TomadorID:      req.TomadorID,
		LocalPrestacao: req.LocalPrestacao,
		Competencia:    req.Competencia,
		Valor:          req.Valor,
		Descricao:      req.Descricao,
		ISSRetention:   false,
		Observations:   "",
		Simulate:       req.Simulate,
	}, WithAuth())
	if err != nil {
		return nil, err
	}

	if resp.Invoice == nil {
		return nil, malformed(PathInvoices, "nota ausente", nil)
	}
	nota, err := decodeInvoice(resp.Invoice, c.now())
	if err != nil {
		return nil, malformed(PathInvoices, "nota inválida", err)
	}

	return &ports.NotaFiscalResult{
		Status:     resp.Status,
		Message:    resp.Message,
		NotaFiscal: nota,
	}, nil
}

// ListNotasFiscais lista as notas; paginação ausente assume page 1, limit 20, total 0
func (c *Client) ListNotasFiscais(ctx context.Context, filter domain.NotaFiscalFilter) (*domain.Page[*domain.NotaFiscal], error) {
	q := url.Values{}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.TomadorID != "" {
		q.Set("tomadorId", filter.TomadorID)
	}
	if filter.Competencia != "" {
		q.Set("competencia", filter.Competencia)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}

	resp, err := Request[InvoiceListResponse](ctx, c, http.MethodGet, PathInvoices, nil, WithAuth(), WithQuery(q))
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, malformed(PathInvoices, "result ausente", nil)
	}

	notas, err := decodeInvoices(resp.Result.Invoices, c.now())
	if err != nil {
		return nil, malformed(PathInvoices, "nota inválida", err)
	}

	page := &domain.Page[*domain.NotaFiscal]{
		Items: notas,
		Total: resp.Result.Total,
		Page:  resp.Result.Page,
		Limit: resp.Result.Limit,
	}
	if page.Page <= 0 {
		page.Page = DefaultPage
	}
	if page.Limit <= 0 {
		page.Limit = DefaultLimit
	}
	return page, nil
}

// GetNotaFiscal busca uma nota pelo ID
func (c *Client) GetNotaFiscal(ctx context.Context, id string) (*domain.NotaFiscal, error) {
	path := invoicePath(id)
	resp, err := Request[InvoiceResponse](ctx, c, http.MethodGet, path, nil, WithAuth())
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, malformed(path, "result ausente", nil)
	}
	nota, err := decodeInvoice(resp.Result, c.now())
	if err != nil {
		return nil, malformed(path, "nota inválida", err)
	}
	return nota, nil
}

// CancelNotaFiscal solicita o cancelamento de uma nota
func (c *Client) CancelNotaFiscal(ctx context.Context, id, reason string) (*ports.ActionResult, error) {
	path := invoicePath(id) + "/cancel"
	body, err := c.doRequest(ctx, http.MethodPost, path, CancelInvoiceRequest{Reason: reason}, WithAuth())
	if err != nil {
		return nil, err
	}

	// 2xx sem corpo (ex: 204) também confirma o cancelamento
	var resp CancelInvoiceResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, malformed(path, "JSON inválido", err)
		}
	}
	return &ports.ActionResult{Success: true, Message: resp.Message}, nil
}

// DownloadXML baixa o XML autorizado da nota
func (c *Client) DownloadXML(ctx context.Context, id string) ([]byte, error) {
	return c.download(ctx, invoicePath(id)+"/xml", "XML", "application/xml")
}

// DownloadPDF baixa o PDF da nota
func (c *Client) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	return c.download(ctx, invoicePath(id)+"/pdf", "PDF", "application/pdf")
}

func (c *Client) download(ctx context.Context, path, kind, accept string) ([]byte, error) {
	data, err := c.doRequest(ctx, http.MethodGet, path, nil, WithAuth(), withAccept(accept))
	if err != nil {
		return nil, fmt.Errorf("Erro ao baixar %s: %w", kind, err)
	}
	return data, nil
}
