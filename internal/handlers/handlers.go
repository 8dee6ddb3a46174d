// Package handlers contém os handlers HTTP do sandbox da API Nymu
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/sandbox"
)

const ownerKey = "owner"

// Handler expõe o estado do sandbox pelos mesmos endpoints da API real
type Handler struct {
	store  *sandbox.Store
	logger *logrus.Logger
}

// NewHandler cria um novo Handler
func NewHandler(store *sandbox.Store, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{store: store, logger: logger}
}

// errorBody é o formato de erro da API: message pode ser texto ou lista
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

func abortWithError(c *gin.Context, status int, message any) {
	c.AbortWithStatusJSON(status, errorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// respondError traduz os erros do sandbox para status HTTP
func (h *Handler) respondError(c *gin.Context, err error) {
	var input *sandbox.InputError
	switch {
	case errors.As(err, &input):
		abortWithError(c, http.StatusBadRequest, input.Messages)
	case errors.Is(err, sandbox.ErrInvalidCredentials), errors.Is(err, sandbox.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, sandbox.ErrInvalidCode):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, sandbox.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, sandbox.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		h.logger.WithError(err).Error("sandbox: erro inesperado")
		abortWithError(c, http.StatusInternalServerError, "Erro interno do servidor")
	}
}

// bindJSON lê o corpo; em caso de erro já responde 400
func (h *Handler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.logger.WithError(err).Debug("sandbox: corpo inválido")
		abortWithError(c, http.StatusBadRequest, "JSON inválido")
		return false
	}
	return true
}

// AuthMiddleware exige "Authorization: Bearer <token>" de uma sessão aberta
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortWithError(c, http.StatusUnauthorized, "Token não informado")
			return
		}
		owner, err := h.store.Authenticate(strings.TrimSpace(token))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

// RequestLogger registra cada requisição no logrus
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetHeader("X-Request-Id"),
		}).Info("sandbox: requisição")
	}
}

func owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
