package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/magnani/nymu-app/client/internal/domain"
)

const statusSuccess = "success"

// CreateInvoice registra a solicitação de emissão
// Endpoint: POST /api/invoices
func (h *Handler) CreateInvoice(c *gin.Context) {
	var req struct {
		Type           string `json:"type"`
		TomadorID      string `json:"tomadorId"`
		LocalPrestacao string `json:"localPrestacao"`
		Competencia    string `json:"competencia"`
		Valor          int64  `json:"valor"`
		Descricao      string `json:"descricao"`
		ISSRetention   bool   `json:"issRetention"`
		Observations   string `json:"observations"`
		Simulate       bool   `json:"simulate"`
	}
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Type != "" && req.Type != domain.NotaFiscalType {
		abortWithError(c, http.StatusBadRequest, []string{"type: tipo de documento não suportado"})
		return
	}

	nota, err := h.store.CreateNota(owner(c), domain.SolicitacaoNotaFiscal{
		TomadorID:      req.TomadorID,
		LocalPrestacao: req.LocalPrestacao,
		Competencia:    req.Competencia,
		Valor:          req.Valor,
		Descricao:      req.Descricao,
		Simulate:       req.Simulate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "Nota fiscal enviada para processamento"
	if nota.Status == domain.NotaFiscalSimulada {
		message = "Nota fiscal simulada com sucesso"
	}
	c.JSON(http.StatusCreated, gin.H{"status": statusSuccess, "message": message, "invoice": nota})
}

// ListInvoices lista as notas com filtros opcionais
// Endpoint: GET /api/invoices?page=&limit=&tomadorId=&competencia=&status=
func (h *Handler) ListInvoices(c *gin.Context) {
	page := h.store.ListNotas(owner(c), domain.NotaFiscalFilter{
		Page:        queryInt(c, "page"),
		Limit:       queryInt(c, "limit"),
		TomadorID:   c.Query("tomadorId"),
		Competencia: c.Query("competencia"),
		Status:      domain.NotaFiscalStatus(strings.ToUpper(c.Query("status"))),
	})
	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"result": gin.H{
			"invoices": page.Items,
			"page":     page.Page,
			"limit":    page.Limit,
			"total":    page.Total,
		},
	})
}

// GetInvoice devolve {status, result}
// Endpoint: GET /api/invoices/:id
func (h *Handler) GetInvoice(c *gin.Context) {
	nota, err := h.store.GetNota(owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "result": nota})
}

// CancelInvoice cancela uma nota emitida ou simulada
// Endpoint: POST /api/invoices/:id/cancel
func (h *Handler) CancelInvoice(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.store.CancelNota(owner(c), c.Param("id"), req.Reason); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": "Nota fiscal cancelada com sucesso"})
}

// InvoiceXML devolve o XML da nota autorizada
// Endpoint: GET /api/invoices/:id/xml
func (h *Handler) InvoiceXML(c *gin.Context) {
	data, err := h.store.NotaXML(owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

// InvoicePDF devolve o DANFSe da nota autorizada
// Endpoint: GET /api/invoices/:id/pdf
func (h *Handler) InvoicePDF(c *gin.Context) {
	data, err := h.store.NotaPDF(owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}
