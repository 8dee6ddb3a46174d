package nymu

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/ports"
)

// HeaderInterceptor devolve headers a serem adicionados antes de cada requisição
type HeaderInterceptor func(ctx context.Context) (map[string]string, error)

// RequestContext guarda a URL base e a lista ordenada de interceptors.
// É criado uma vez na inicialização e compartilhado pelo cliente.
type RequestContext struct {
	baseURL string

	mu           sync.RWMutex
	interceptors []HeaderInterceptor
}

// NewRequestContext cria um contexto sem interceptors
func NewRequestContext(baseURL string) *RequestContext {
	return &RequestContext{baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL retorna a URL base sem barra final
func (rc *RequestContext) BaseURL() string {
	return rc.baseURL
}

// URL monta a URL completa de um caminho da API
func (rc *RequestContext) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return rc.baseURL + path
}

// AddHeaderInterceptor adiciona um interceptor ao final da lista
func (rc *RequestContext) AddHeaderInterceptor(ic HeaderInterceptor) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.interceptors = append(rc.interceptors, ic)
}

// ClearHeaderInterceptors remove todos os interceptors
func (rc *RequestContext) ClearHeaderInterceptors() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.interceptors = nil
}

// Len retorna a quantidade de interceptors registrados
func (rc *RequestContext) Len() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.interceptors)
}

// collectHeaders executa os interceptors em ordem; o último a definir uma chave vence
func (rc *RequestContext) collectHeaders(ctx context.Context) (http.Header, error) {
	rc.mu.RLock()
	list := make([]HeaderInterceptor, len(rc.interceptors))
	copy(list, rc.interceptors)
	rc.mu.RUnlock()

	h := make(http.Header)
	for i, ic := range list {
		headers, err := ic(ctx)
		if err != nil {
			return nil, fmt.Errorf("erro no interceptor de headers %d: %w", i, err)
		}
		for k, v := range headers {
			h.Set(k, v)
		}
	}
	return h, nil
}

// bearer formata o valor do header Authorization
func bearer(token string) string {
	return "Bearer " + token
}

// AuthInterceptor lê o token salvo e adiciona "Authorization: Bearer <token>".
// Falha na leitura do storage não interrompe a requisição: segue sem o header.
func AuthInterceptor(store ports.TokenStore, logger *logrus.Logger) HeaderInterceptor {
	return func(ctx context.Context) (map[string]string, error) {
		token, err := store.Get(ctx)
		if err != nil {
			logger.WithError(err).Warn("não foi possível ler o token salvo")
			return nil, nil
		}
		if token == "" {
			return nil, nil
		}
		return map[string]string{HeaderAuthorization: bearer(token)}, nil
	}
}

// RequestIDInterceptor adiciona um X-Request-Id novo a cada requisição
func RequestIDInterceptor() HeaderInterceptor {
	return func(ctx context.Context) (map[string]string, error) {
		return map[string]string{HeaderRequestID: uuid.NewString()}, nil
	}
}

// StaticHeaders devolve sempre os mesmos headers (ex: versão do app)
func StaticHeaders(headers map[string]string) HeaderInterceptor {
	return func(ctx context.Context) (map[string]string, error) {
		return headers, nil
	}
}
