package nymu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/magnani/nymu-app/client/internal/config"
	"github.com/magnani/nymu-app/client/internal/ports"
)

// Client implementa as portas de API (auth, tomadores, notas) sobre HTTP
type Client struct {
	rc         *RequestContext
	httpClient *http.Client
	tokens     ports.TokenStore
	logger     *logrus.Logger
	now        func() time.Time

	dedupe bool
	group  singleflight.Group
}

// NewClient cria um cliente com timeout e, se configurado, certificado mTLS
func NewClient(cfg *config.APIConfig, rc *RequestContext, tokens ports.TokenStore, logger *logrus.Logger) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.CertificatePath != "" {
		tlsConfig, err := loadCertificate(cfg.CertificatePath, cfg.CertificatePassword)
		if err != nil {
			return nil, fmt.Errorf("erro ao carregar certificado: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return newClient(rc, &http.Client{Timeout: timeout, Transport: transport}, tokens, logger, cfg.DedupeGets), nil
}

func newClient(rc *RequestContext, httpClient *http.Client, tokens ports.TokenStore, logger *logrus.Logger, dedupe bool) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		rc:         rc,
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
		now:        time.Now,
		dedupe:     dedupe,
	}
}

// BaseURL retorna a URL base da API
func (c *Client) BaseURL() string {
	return c.rc.BaseURL()
}

// RequestOption ajusta uma requisição individual
type RequestOption func(*requestOptions)

type requestOptions struct {
	requireAuth bool
	headers     map[string]string
	query       url.Values
	accept      string
}

// WithAuth lê o token diretamente do storage além dos interceptors
func WithAuth() RequestOption {
	return func(o *requestOptions) { o.requireAuth = true }
}

// WithHeader define um header explícito; tem prioridade sobre os interceptors
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithQuery adiciona parâmetros de query string
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

func withAccept(accept string) RequestOption {
	return func(o *requestOptions) { o.accept = accept }
}

// Request executa a requisição e decodifica a resposta JSON em T
func Request[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*T, error) {
	respBody, err := c.doRequest(ctx, method, path, body, opts...)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, malformed(path, "JSON inválido", err)
	}
	return &out, nil
}

// buildHeaders aplica, em ordem: padrões, interceptors, token direto e headers explícitos
func (c *Client) buildHeaders(ctx context.Context, o *requestOptions) (http.Header, error) {
	h, err := c.rc.collectHeaders(ctx)
	if err != nil {
		return nil, err
	}
	if h.Get(HeaderContentType) == "" {
		h.Set(HeaderContentType, contentTypeJSON)
	}
	if o.accept != "" {
		h.Set(HeaderAccept, o.accept)
	} else if h.Get(HeaderAccept) == "" {
		h.Set(HeaderAccept, contentTypeJSON)
	}

	if o.requireAuth && c.tokens != nil {
		token, err := c.tokens.Get(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("não foi possível ler o token salvo")
		} else if token != "" {
			h.Set(HeaderAuthorization, bearer(token))
		}
	}

	for k, v := range o.headers {
		h.Set(k, v)
	}
	return h, nil
}

// doRequest executa uma requisição HTTP e devolve o corpo de uma resposta 2xx
func (c *Client) doRequest(ctx context.Context, method, path string, body any, opts ...RequestOption) ([]byte, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	headers, err := c.buildHeaders(ctx, &o)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar body: %w", err)
		}
	}

	target := c.rc.URL(path)
	if len(o.query) > 0 {
		target += "?" + o.query.Encode()
	}

	if method != http.MethodGet || !c.dedupe {
		return c.send(ctx, method, target, path, headers, payload)
	}

	// GETs idênticos em voo (mesma URL, token e headers explícitos) compartilham uma única chamada
	key := dedupeKey(target, headers, o.headers)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.send(context.WithoutCancel(ctx), method, target, path, headers, nil)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func dedupeKey(target string, headers http.Header, explicit map[string]string) string {
	var b strings.Builder
	b.WriteString(target)
	b.WriteString("|")
	b.WriteString(headers.Get(HeaderAuthorization))
	b.WriteString("|")
	b.WriteString(headers.Get(HeaderAccept))
	keys := make([]string, 0, len(explicit))
	for k := range explicit {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(http.CanonicalHeaderKey(k))
		b.WriteString("=")
		b.WriteString(explicit[k])
	}
	return b.String()
}

func (c *Client) send(ctx context.Context, method, target, path string, headers http.Header, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar requisição: %w", err)
	}
	req.Header = headers.Clone()

	start := time.Now()
	fields := logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": headers.Get(HeaderRequestID),
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fields["duration"] = time.Since(start)
		if errors.Is(err, context.Canceled) {
			c.logger.WithFields(fields).Debug("requisição cancelada")
			return nil, fmt.Errorf("requisição cancelada: %w", err)
		}
		c.logger.WithFields(fields).WithError(err).Warn("falha de conexão com a API")
		if isNetworkFailure(err) {
			return nil, &NetworkError{Cause: err}
		}
		return nil, fmt.Errorf("erro na requisição HTTP: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	fields["status"] = resp.StatusCode
	fields["duration"] = time.Since(start)
	c.logger.WithFields(fields).Debug("requisição à API")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ClassifyError(parseAPIError(resp.StatusCode, respBody))
	}
	return respBody, nil
}

// parseAPIError monta o APIError a partir do corpo; sem corpo legível usa "Erro <status>: <texto>"
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var parsed apiErrorBody
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Message, apiErr.Messages = joinMessage(parsed.Message)
		apiErr.Label = parsed.Error
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Erro %d: %s", status, http.StatusText(status))
	}
	return apiErr
}

// Garante que Client implementa as portas de API
var (
	_ ports.AuthAPI       = (*Client)(nil)
	_ ports.TomadorAPI    = (*Client)(nil)
	_ ports.NotaFiscalAPI = (*Client)(nil)
)
