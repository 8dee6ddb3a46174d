package nymu

const (
	// Autenticação
	PathLogin          = "/auth/login"
	PathValidateCode   = "/auth/validateCode"
	PathRegister       = "/auth/register"
	PathUpdateProfile  = "/auth/profile"
	PathChangePassword = "/auth/change-password"

	// Recursos
	PathTomadores = "/api/tomadores"
	PathInvoices  = "/api/invoices"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-Id"

	contentTypeJSON = "application/json"
)

// Padrões da listagem de notas quando o servidor omite a paginação
const (
	DefaultPage  = 1
	DefaultLimit = 20
)
