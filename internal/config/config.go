// Package config gerencia as configurações do cliente e do sandbox
// carregando variáveis de ambiente do arquivo .env
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de armazenamento do token
const (
	TokenStoreFile   = "file"
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// Config armazena todas as configurações da aplicação
type Config struct {
	Env string

	// API remota
	API APIConfig

	// Armazenamento do token
	Token TokenConfig

	// Logs
	Log LoggingConfig

	// Servidor sandbox
	Sandbox SandboxConfig
}

// APIConfig armazena configurações de acesso à API
type APIConfig struct {
	BaseURL             string
	Timeout             time.Duration
	CertificatePath     string // .p12 opcional para mTLS
	CertificatePassword string
	DedupeGets          bool
}

// TokenConfig armazena configurações do armazenamento do token
type TokenConfig struct {
	Driver    string
	FilePath  string
	Secret    string
	RedisURL  string
	Namespace string
	TTL       time.Duration // só no Redis; zero mantém o token sem expiração
}

// LoggingConfig armazena nível e formato dos logs
type LoggingConfig struct {
	Level  string
	Format string // json | text
}

// SandboxConfig armazena configurações do servidor sandbox
type SandboxConfig struct {
	Port            string
	Email           string
	Password        string
	ProcessInterval time.Duration
}

// Load carrega as configurações do arquivo .env e variáveis de ambiente
// O arquivo .env é opcional - variáveis de ambiente têm prioridade
func Load() (*Config, error) {
	// Tenta carregar .env (ignora erro se não existir)
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		API: APIConfig{
			BaseURL:             getEnv("NYMU_API_URL", getEnv("EXPO_PUBLIC_API_URL", "http://localhost:3000")),
			Timeout:             getEnvDuration("NYMU_API_TIMEOUT", 30*time.Second),
			CertificatePath:     getEnv("NYMU_CLIENT_CERT_PATH", ""),
			CertificatePassword: getEnv("NYMU_CLIENT_CERT_PASSWORD", ""),
			DedupeGets:          getEnvBool("NYMU_DEDUPE_GETS", true),
		},
		Token: TokenConfig{
			Driver:    getEnv("NYMU_TOKEN_STORE", TokenStoreFile),
			FilePath:  getEnv("NYMU_TOKEN_FILE", defaultTokenFile()),
			Secret:    getEnv("NYMU_TOKEN_SECRET", ""),
			RedisURL:  getEnv("REDIS_URL", ""),
			Namespace: getEnv("NYMU_TOKEN_NAMESPACE", "default"),
			TTL:       getEnvDuration("NYMU_TOKEN_TTL", 0),
		},
		Log: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Sandbox: SandboxConfig{
			Port:            getEnv("SANDBOX_PORT", "3000"),
			Email:           getEnv("SANDBOX_EMAIL", "demo@nymu.com.br"),
			Password:        getEnv("SANDBOX_PASSWORD", "nymu1234"),
			ProcessInterval: getEnvDuration("SANDBOX_PROCESS_INTERVAL", 5*time.Second),
		},
	}

	// Validação básica
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate verifica se as configurações obrigatórias estão presentes
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("NYMU_API_URL inválida: %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("NYMU_API_TIMEOUT deve ser positivo")
	}
	switch c.Token.Driver {
	case TokenStoreFile, TokenStoreMemory:
	case TokenStoreRedis:
		if c.Token.RedisURL == "" {
			return fmt.Errorf("REDIS_URL é obrigatório quando NYMU_TOKEN_STORE=redis")
		}
	default:
		return fmt.Errorf("NYMU_TOKEN_STORE desconhecido: %q", c.Token.Driver)
	}
	if c.Token.TTL < 0 {
		return fmt.Errorf("NYMU_TOKEN_TTL não pode ser negativo")
	}
	if c.Token.Driver == TokenStoreFile && c.Token.FilePath == "" {
		return fmt.Errorf("NYMU_TOKEN_FILE é obrigatório quando NYMU_TOKEN_STORE=file")
	}
	if c.Sandbox.ProcessInterval <= 0 {
		return fmt.Errorf("SANDBOX_PROCESS_INTERVAL deve ser positivo")
	}
	return nil
}

// IsDevelopment retorna true se estiver em ambiente de desenvolvimento
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction retorna true se estiver em ambiente de produção
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "nymu", "token")
}

// getEnv obtém uma variável de ambiente ou retorna o valor padrão
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool obtém uma variável de ambiente como bool
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// getEnvDuration aceita "30s", "2m" ou um número de segundos
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
