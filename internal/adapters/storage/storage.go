// Package storage implementa o armazenamento do token de autenticação:
// arquivo criptografado (padrão), memória e Redis.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/config"
	"github.com/magnani/nymu-app/client/internal/ports"
)

// TokenKey é a chave sob a qual o token é guardado
const TokenKey = "nymu_token"

// ErrStorageNotConfigured indica que o armazenamento seguro não está disponível.
// A mensagem é reconhecida pelo fluxo de login para exibir a dica de configuração.
var ErrStorageNotConfigured = errors.New("storage não configurado")

// NewTokenStore cria o armazenamento conforme o driver configurado
func NewTokenStore(ctx context.Context, cfg config.TokenConfig, logger *logrus.Logger) (ports.TokenStore, error) {
	switch cfg.Driver {
	case config.TokenStoreMemory:
		return NewMemoryStore(), nil
	case config.TokenStoreFile, "":
		return NewFileStore(cfg.FilePath, cfg.Secret, logger), nil
	case config.TokenStoreRedis:
		store, err := NewRedisStore(ctx, cfg.RedisURL, cfg.Namespace, logger)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar ao Redis: %w", err)
		}
		if cfg.TTL > 0 {
			store.WithTTL(cfg.TTL)
		}
		return store, nil
	}
	return nil, fmt.Errorf("driver de token desconhecido: %q", cfg.Driver)
}
