package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/ports"
)

const redisOpTimeout = 3 * time.Second

// RedisStore guarda o token no Redis, permitindo compartilhá-lo entre processos.
// A chave é "nymu_token:<namespace>".
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisStore conecta usando REDIS_URL e verifica a conexão com PING
func NewRedisStore(ctx context.Context, redisURL, namespace string, logger *logrus.Logger) (*RedisStore, error) {
	if redisURL == "" {
		return nil, ErrStorageNotConfigured
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL inválida: %w", err)
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = redisOpTimeout
	opt.WriteTimeout = redisOpTimeout

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("erro ao verificar Redis: %w", err)
	}

	return newRedisStore(client, namespace, logger), nil
}

func newRedisStore(client *redis.Client, namespace string, logger *logrus.Logger) *RedisStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStore{client: client, key: TokenKey + ":" + namespace, logger: logger}
}

// WithTTL faz o token expirar no Redis após o período informado
func (s *RedisStore) WithTTL(ttl time.Duration) *RedisStore {
	s.ttl = ttl
	return s
}

// Key retorna a chave usada no Redis
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) Get(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	v, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("erro ao ler token do Redis: %w", err)
	}
	return v, nil
}

func (s *RedisStore) Save(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("erro ao salvar token no Redis: %w", err)
	}
	s.logger.WithField("key", s.key).Debug("token salvo no Redis")
	return nil
}

func (s *RedisStore) Remove(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("erro ao remover token do Redis: %w", err)
	}
	return nil
}

// Close encerra a conexão com o Redis
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ ports.TokenStore = (*RedisStore)(nil)
