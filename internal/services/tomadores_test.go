package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
)

func seededTomadores() []*domain.Tomador {
	return []*domain.Tomador{
		{ID: "1", Tipo: domain.TomadorPJ, Nome: "Padaria São João LTDA", Documento: "11222333000181"},
		{ID: "2", Tipo: domain.TomadorPF, Nome: "José Antônio", Documento: "52998224725"},
		{ID: "3", Tipo: domain.TomadorPJ, Nome: "Acme Serviços", Documento: "11444777000161"},
	}
}

func newSeededTomadorService(t *testing.T, api *mockTomadorAPI) *TomadorService {
	t.Helper()
	items := seededTomadores()
	if api.ListFn == nil {
		api.ListFn = func(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error) {
			return &domain.Page[*domain.Tomador]{Items: items, Total: len(items), Page: 1, Limit: filter.Limit}, nil
		}
	}
	s := NewTomadorService(api, quietLogger())
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() = %v", err)
	}
	return s
}

func TestTomadorService_RefreshPages(t *testing.T) {
	const total = 250
	var pages []int
	api := &mockTomadorAPI{
		ListFn: func(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error) {
			pages = append(pages, filter.Page)
			start := (filter.Page - 1) * filter.Limit
			end := min(start+filter.Limit, total)
			var items []*domain.Tomador
			for i := start; i < end; i++ {
				items = append(items, &domain.Tomador{ID: fmt.Sprint(i)})
			}
			return &domain.Page[*domain.Tomador]{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
		},
	}
	s := NewTomadorService(api, quietLogger())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() = %v", err)
	}
	if got := len(s.All()); got != total {
		t.Errorf("len(All()) = %d, want %d", got, total)
	}
	if len(pages) != 3 {
		t.Errorf("páginas = %v, want 3", pages)
	}
}

func TestTomadorService_RefreshShared(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	api := &mockTomadorAPI{
		ListFn: func(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error) {
			calls.Add(1)
			<-release
			return &domain.Page[*domain.Tomador]{Items: seededTomadores(), Total: 3}, nil
		},
	}
	s := NewTomadorService(api, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Refresh(context.Background()); err != nil {
				t.Errorf("Refresh() = %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("chamadas à API = %d, want 1", n)
	}
}

func TestTomadorService_RefreshErrorKeepsList(t *testing.T) {
	fail := false
	api := &mockTomadorAPI{}
	api.ListFn = func(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error) {
		if fail {
			return nil, errors.New("Erro 500: Internal Server Error")
		}
		return &domain.Page[*domain.Tomador]{Items: seededTomadores(), Total: 3}, nil
	}
	s := newSeededTomadorService(t, api)

	fail = true
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() deveria falhar")
	}
	if len(s.All()) != 3 {
		t.Error("lista descartada após erro")
	}
}

func TestTomadorService_Add(t *testing.T) {
	called := false
	api := &mockTomadorAPI{
		CreateFn: func(ctx context.Context, form domain.TomadorForm) (*ports.TomadorResult, error) {
			called = true
			return &ports.TomadorResult{Tomador: &domain.Tomador{ID: "9", Tipo: form.Tipo, Nome: form.Nome}}, nil
		},
	}
	s := newSeededTomadorService(t, api)

	if _, err := s.Add(context.Background(), domain.TomadorForm{Tipo: domain.TomadorPJ, Documento: "11.222.333/0001-00"}); !domain.IsValidation(err) {
		t.Errorf("formulário inválido = %v", err)
	}
	if called {
		t.Fatal("API chamada com formulário inválido")
	}

	form := domain.TomadorForm{
		Tipo: domain.TomadorPJ, Nome: "Nova Empresa", Documento: "45.997.418/0001-53",
		Logradouro: "Rua A", Numero: "10", CEP: "40000-000", Bairro: "Centro", Cidade: "Salvador", UF: "BA",
	}
	got, err := s.Add(context.Background(), form)
	if err != nil {
		t.Fatalf("Add() = %v", err)
	}
	all := s.All()
	if len(all) != 4 || all[0] != got {
		t.Errorf("novo tomador não está no início: %+v", all[0])
	}
}

func TestTomadorService_AddConflictRefreshes(t *testing.T) {
	var lists atomic.Int32
	remote := seededTomadores()
	api := &mockTomadorAPI{
		ListFn: func(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error) {
			lists.Add(1)
			return &domain.Page[*domain.Tomador]{Items: remote, Total: len(remote), Page: 1, Limit: filter.Limit}, nil
		},
		CreateFn: func(ctx context.Context, form domain.TomadorForm) (*ports.TomadorResult, error) {
			return nil, fmt.Errorf("%w: documento já cadastrado", ports.ErrConflict)
		},
	}
	s := newSeededTomadorService(t, api)

	remote = append(remote, &domain.Tomador{ID: "4", Tipo: domain.TomadorPJ, Nome: "Nova Empresa", Documento: "45997418000153"})
	form := domain.TomadorForm{
		Tipo: domain.TomadorPJ, Nome: "Nova Empresa", Documento: "45.997.418/0001-53",
		Logradouro: "Rua A", Numero: "10", CEP: "40000-000", Bairro: "Centro", Cidade: "Salvador", UF: "BA",
	}
	if _, err := s.Add(context.Background(), form); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("Add() = %v, want ErrConflict", err)
	}
	if got := lists.Load(); got != 2 {
		t.Errorf("ListTomadores chamado %d vezes, want 2", got)
	}
	if _, ok := s.Get("4"); !ok {
		t.Error("tomador existente no servidor não apareceu na lista após o conflito")
	}
}

func TestTomadorService_UpdateAndRemove(t *testing.T) {
	api := &mockTomadorAPI{
		UpdateFn: func(ctx context.Context, id string, patch domain.TomadorPatch) (*ports.TomadorResult, error) {
			return &ports.TomadorResult{Tomador: &domain.Tomador{ID: id, Nome: *patch.Nome}}, nil
		},
		DeleteFn: func(ctx context.Context, id string) error {
			if id == "404" {
				return errors.New("Tomador não encontrado")
			}
			return nil
		},
	}
	s := newSeededTomadorService(t, api)
	ctx := context.Background()

	nome := "Padaria Nova"
	if _, err := s.Update(ctx, "1", domain.TomadorPatch{Nome: &nome}); err != nil {
		t.Fatalf("Update() = %v", err)
	}
	if got, _ := s.Get("1"); got.Nome != "Padaria Nova" {
		t.Errorf("Nome = %q", got.Nome)
	}

	if err := s.Remove(ctx, "404"); err == nil {
		t.Error("Remove() deveria propagar o erro")
	}
	if len(s.All()) != 3 {
		t.Error("lista alterada após falha")
	}
	if err := s.Remove(ctx, "2"); err != nil {
		t.Fatalf("Remove() = %v", err)
	}
	if _, ok := s.Get("2"); ok || len(s.All()) != 2 {
		t.Error("tomador não removido")
	}
}

func TestTomadorService_Filters(t *testing.T) {
	s := newSeededTomadorService(t, &mockTomadorAPI{})

	if got := s.ByTipo(domain.TomadorPJ); len(got) != 2 {
		t.Errorf("ByTipo(PJ) = %d, want 2", len(got))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"sao joao", []string{"1"}},
		{"JOSÉ", []string{"2"}},
		{"servicos", []string{"3"}},
		{"529.982", []string{"2"}},
		{"11222333", []string{"1"}},
		{"Acme 2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := s.Search(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %d itens, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Search(%q)[%d] = %s, want %s", tt.query, i, got[i].ID, id)
				}
			}
		})
	}
}
