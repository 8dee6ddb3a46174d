package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/magnani/nymu-app/client/internal/domain"
)

// CreateTomador cadastra um tomador e devolve {tomador, message}
// Endpoint: POST /api/tomadores
func (h *Handler) CreateTomador(c *gin.Context) {
	var form domain.TomadorForm
	if !h.bindJSON(c, &form) {
		return
	}

	t, err := h.store.CreateTomador(owner(c), form)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tomador": t, "message": "Tomador cadastrado com sucesso"})
}

// ListTomadores lista os tomadores com paginação e filtro por tipo
// Endpoint: GET /api/tomadores?page=&limit=&tipo=
func (h *Handler) ListTomadores(c *gin.Context) {
	page := h.store.ListTomadores(owner(c), domain.TomadorFilter{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
		Tipo:  domain.TomadorTipo(c.Query("tipo")),
	})
	c.JSON(http.StatusOK, gin.H{
		"tomadores": page.Items,
		"total":     page.Total,
		"page":      page.Page,
		"limit":     page.Limit,
	})
}

// GetTomador devolve o tomador sem envelope
// Endpoint: GET /api/tomadores/:id
func (h *Handler) GetTomador(c *gin.Context) {
	t, err := h.store.GetTomador(owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTomador aplica uma atualização parcial e devolve o tomador sem envelope
// Endpoint: PUT /api/tomadores/:id
func (h *Handler) UpdateTomador(c *gin.Context) {
	var patch domain.TomadorPatch
	if !h.bindJSON(c, &patch) {
		return
	}

	t, err := h.store.UpdateTomador(owner(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTomador remove o tomador
// Endpoint: DELETE /api/tomadores/:id
func (h *Handler) DeleteTomador(c *gin.Context) {
	if err := h.store.DeleteTomador(owner(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tomador removido com sucesso"})
}
