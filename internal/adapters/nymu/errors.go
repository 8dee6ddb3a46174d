package nymu

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/magnani/nymu-app/client/internal/ports"
)

// NetworkErrorMessage é exibida quando o servidor não pode ser alcançado
const NetworkErrorMessage = "Erro de conexão. Verifique:\n" +
	"1. Se o servidor está rodando\n" +
	"2. Se o IP da API está correto (não use localhost em dispositivos físicos)\n" +
	"3. Se o dispositivo está na mesma rede Wi-Fi"

// networkFailureMarkers são trechos de mensagem que identificam falha de rede
var networkFailureMarkers = []string{
	"Network request failed",
	"Failed to fetch",
	"NetworkError",
}

// Erros sentinela para condições comuns
var (
	// ErrNotFound indica que o recurso não foi encontrado
	ErrNotFound = errors.New("nymu: recurso não encontrado")

	// ErrUnauthorized indica falha de autenticação
	ErrUnauthorized = errors.New("nymu: não autorizado")

	// ErrForbidden indica acesso negado ao recurso
	ErrForbidden = errors.New("nymu: acesso negado")

	// ErrInvalidRequest indica requisição rejeitada pela validação do servidor
	ErrInvalidRequest = errors.New("nymu: requisição inválida")

	// ErrConflict indica conflito (ex: documento já cadastrado). É o mesmo valor de ports.ErrConflict.
	ErrConflict = ports.ErrConflict

	// ErrRateLimited indica rate limiting
	ErrRateLimited = errors.New("nymu: rate limit atingido")

	// ErrServerError indica erro interno do servidor
	ErrServerError = errors.New("nymu: erro do servidor")
)

// APIError representa uma resposta não-2xx da API.
// O corpo esperado é {statusCode, message: string|string[], error}.
type APIError struct {
	StatusCode int
	Message    string   // mensagem final exibida ao usuário
	Messages   []string // mensagens individuais quando o servidor envia uma lista
	Label      string   // campo "error" do corpo, ex: "Bad Request"
}

// Error implementa a interface error
func (e *APIError) Error() string {
	return e.Message
}

// NetworkError representa uma falha de transporte (DNS, conexão recusada, timeout)
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return NetworkErrorMessage
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is faz errors.Is(err, ports.ErrNetwork) reconhecer a falha fora deste pacote
func (e *NetworkError) Is(target error) bool {
	return target == ports.ErrNetwork
}

// MalformedResponseError indica uma resposta 2xx que não pôde ser decodificada
type MalformedResponseError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resposta inválida de %s: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("resposta inválida de %s: %s", e.Path, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

func malformed(path, reason string, cause error) error {
	return &MalformedResponseError{Path: path, Reason: reason, Cause: cause}
}

// isNetworkFailure reconhece falhas de transporte pelos tipos de erro de net e pelas mensagens conhecidas
func isNetworkFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return true
	case errors.As(err, &netErr) && netErr.Timeout():
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EHOSTUNREACH):
		return true
	}

	msg := err.Error()
	for _, marker := range networkFailureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsNetwork retorna true se o erro é uma falha de conexão
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsMalformed retorna true se a resposta de sucesso veio fora do formato
func IsMalformed(err error) bool {
	var mErr *MalformedResponseError
	return errors.As(err, &mErr)
}

// IsNotFound retorna true se o erro indica que o recurso não foi encontrado
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized retorna true se o erro indica falha de autenticação
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsValidation retorna true se o servidor rejeitou os dados enviados (400/422)
func IsValidation(err error) bool {
	if errors.Is(err, ErrInvalidRequest) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// IsServerError retorna true se o erro é do servidor (5xx)
func IsServerError(err error) bool {
	if errors.Is(err, ErrServerError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// classifiedError associa o APIError ao sentinela do seu status sem alterar a mensagem
type classifiedError struct {
	kind error
	api  *APIError
}

func (e *classifiedError) Error() string {
	return e.api.Error()
}

func (e *classifiedError) Unwrap() []error {
	return []error{e.kind, e.api}
}

// sentinelFor devolve o erro sentinela do status HTTP, ou nil
func sentinelFor(status int) error {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidRequest
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if status >= 500 {
		return ErrServerError
	}
	return nil
}

// ClassifyError faz o erro da API responder a errors.Is com o sentinela do status.
// A mensagem e o *APIError continuam acessíveis.
func ClassifyError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	kind := sentinelFor(apiErr.StatusCode)
	if kind == nil {
		return err
	}
	return &classifiedError{kind: kind, api: apiErr}
}
