package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/magnani/nymu-app/client/internal/ports"
)

// Parâmetros do scrypt para derivar a chave a partir do segredo
const (
	scryptN  = 1 << 15
	scryptR  = 8
	scryptP  = 1
	saltSize = 16
	keySize  = chacha20poly1305.KeySize
	filePerm = 0o600
	dirPerm  = 0o700
)

// ErrCorruptedToken indica um arquivo de token que não pôde ser decifrado
var ErrCorruptedToken = errors.New("arquivo de token corrompido ou segredo incorreto")

// FileStore guarda o token em um arquivo cifrado com XChaCha20-Poly1305.
// Formato: salt (16) | nonce (24) | texto cifrado.
type FileStore struct {
	path   string
	secret []byte
	logger *logrus.Logger

	mu sync.Mutex
}

// NewFileStore cria o armazenamento; sem segredo todas as operações falham com ErrStorageNotConfigured
func NewFileStore(path, secret string, logger *logrus.Logger) *FileStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileStore{path: path, secret: []byte(secret), logger: logger}
}

func (s *FileStore) configured() error {
	if s.path == "" || len(s.secret) == 0 {
		return ErrStorageNotConfigured
	}
	return nil
}

func (s *FileStore) deriveKey(salt []byte) ([]byte, error) {
	key, err := scrypt.Key(s.secret, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("erro ao derivar chave: %w", err)
	}
	return key, nil
}

// Get lê e decifra o token; arquivo inexistente significa "sem token"
func (s *FileStore) Get(ctx context.Context) (string, error) {
	if err := s.configured(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("erro ao ler token: %w", err)
	}
	if len(data) < saltSize+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return "", ErrCorruptedToken
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := data[saltSize+chacha20poly1305.NonceSizeX:]

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("erro ao criar cifra: %w", err)
	}
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(TokenKey))
	if err != nil {
		return "", ErrCorruptedToken
	}
	return string(plain), nil
}

// Save cifra o token e grava o arquivo de forma atômica
func (s *FileStore) Save(ctx context.Context, token string) error {
	if err := s.configured(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	salt := make([]byte, saltSize)
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("erro ao gerar salt: %w", err)
	}
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("erro ao gerar nonce: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("erro ao criar cifra: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(token)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(token), []byte(TokenKey))

	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("erro ao criar diretório do token: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo temporário: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("erro ao gravar token: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("erro ao ajustar permissões do token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("erro ao gravar token: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("erro ao gravar token: %w", err)
	}

	s.logger.WithField("path", s.path).Debug("token salvo")
	return nil
}

// Remove apaga o arquivo do token
func (s *FileStore) Remove(ctx context.Context) error {
	if err := s.configured(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("erro ao remover token: %w", err)
	}
	return nil
}

var _ ports.TokenStore = (*FileStore)(nil)
