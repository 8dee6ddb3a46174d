package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/config"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if tok, err := s.Get(ctx); err != nil || tok != "" {
		t.Fatalf("Get() inicial = %q, %v", tok, err)
	}
	if err := s.Save(ctx, "abc"); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	if tok, _ := s.Get(ctx); tok != "abc" {
		t.Errorf("Get() = %q, want abc", tok)
	}
	if err := s.Remove(ctx); err != nil {
		t.Fatalf("Remove() = %v", err)
	}
	if tok, _ := s.Get(ctx); tok != "" {
		t.Errorf("Get() após Remove = %q", tok)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = s.Save(ctx, "token") }()
		go func() { defer wg.Done(); _, _ = s.Get(ctx) }()
	}
	wg.Wait()

	if tok, _ := s.Get(ctx); tok != "token" {
		t.Errorf("Get() = %q", tok)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nymu", "token")
	s := NewFileStore(path, "segredo-local", quietLogger())

	if tok, err := s.Get(ctx); err != nil || tok != "" {
		t.Fatalf("Get() sem arquivo = %q, %v", tok, err)
	}

	const token = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"
	if err := s.Save(ctx, token); err != nil {
		t.Fatalf("Save() = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(raw), token) {
		t.Error("token gravado em texto puro")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissões = %o, want 600", perm)
	}

	got, err := s.Get(ctx)
	if err != nil || got != token {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	// outra instância com o mesmo segredo lê o mesmo token
	other := NewFileStore(path, "segredo-local", quietLogger())
	if got, _ := other.Get(ctx); got != token {
		t.Errorf("outra instância leu %q", got)
	}

	if err := s.Remove(ctx); err != nil {
		t.Fatalf("Remove() = %v", err)
	}
	if err := s.Remove(ctx); err != nil {
		t.Errorf("Remove() repetido = %v, want nil", err)
	}
	if got, _ := s.Get(ctx); got != "" {
		t.Errorf("Get() após Remove = %q", got)
	}
}

func TestFileStore_WrongSecret(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "token")

	if err := NewFileStore(path, "certo", quietLogger()).Save(ctx, "abc"); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	_, err := NewFileStore(path, "errado", quietLogger()).Get(ctx)
	if !errors.Is(err, ErrCorruptedToken) {
		t.Errorf("Get() com segredo errado = %v, want ErrCorruptedToken", err)
	}

	if err := os.WriteFile(path, []byte("curto"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path, "certo", quietLogger()).Get(ctx); !errors.Is(err, ErrCorruptedToken) {
		t.Errorf("Get() com arquivo truncado = %v, want ErrCorruptedToken", err)
	}
}

func TestFileStore_NotConfigured(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(filepath.Join(t.TempDir(), "token"), "", quietLogger())

	if err := s.Save(ctx, "abc"); !errors.Is(err, ErrStorageNotConfigured) {
		t.Errorf("Save() = %v, want ErrStorageNotConfigured", err)
	}
	if _, err := s.Get(ctx); !errors.Is(err, ErrStorageNotConfigured) {
		t.Errorf("Get() = %v, want ErrStorageNotConfigured", err)
	}
	if !strings.Contains(ErrStorageNotConfigured.Error(), "storage não configurado") {
		t.Errorf("mensagem = %q", ErrStorageNotConfigured.Error())
	}
}

func TestNewTokenStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.TokenConfig
		want    string
		wantErr bool
	}{
		{"memory", config.TokenConfig{Driver: config.TokenStoreMemory}, "*storage.MemoryStore", false},
		{"file", config.TokenConfig{Driver: config.TokenStoreFile, FilePath: "/tmp/x", Secret: "s"}, "*storage.FileStore", false},
		{"redis sem url", config.TokenConfig{Driver: config.TokenStoreRedis}, "", true},
		{"desconhecido", config.TokenConfig{Driver: "keychain"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewTokenStore(ctx, tt.cfg, quietLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTokenStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := typeName(store); got != tt.want {
				t.Errorf("tipo = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *MemoryStore:
		return "*storage.MemoryStore"
	case *FileStore:
		return "*storage.FileStore"
	case *RedisStore:
		return "*storage.RedisStore"
	}
	return "?"
}
