package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
	"github.com/magnani/nymu-app/client/internal/validation"
)

// refreshPageSize e maxRefreshPages limitam a carga completa da lista
const (
	refreshPageSize = 100
	maxRefreshPages = 50
)

// fetchAll percorre as páginas até reunir o total anunciado
func fetchAll[T any](ctx context.Context, fetch func(ctx context.Context, page int) (*domain.Page[T], error)) ([]T, error) {
	var all []T
	for page := 1; page <= maxRefreshPages; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if len(p.Items) == 0 || len(all) >= p.Total {
			break
		}
	}
	return all, nil
}

// TomadorService mantém a lista de tomadores do usuário
type TomadorService struct {
	api    ports.TomadorAPI
	logger *logrus.Logger

	mu    sync.RWMutex
	items []*domain.Tomador
	group singleflight.Group
}

// NewTomadorService cria o serviço com a lista vazia
func NewTomadorService(api ports.TomadorAPI, logger *logrus.Logger) *TomadorService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TomadorService{api: api, logger: logger}
}

// Refresh recarrega a lista da API; chamadas simultâneas compartilham a mesma carga
func (s *TomadorService) Refresh(ctx context.Context) error {
	ch := s.group.DoChan("refresh", func() (any, error) {
		items, err := fetchAll(context.WithoutCancel(ctx), func(ctx context.Context, page int) (*domain.Page[*domain.Tomador], error) {
			return s.api.ListTomadores(ctx, domain.TomadorFilter{Page: page, Limit: refreshPageSize})
		})
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.items = items
		s.mu.Unlock()
		return len(items), nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.WithError(res.Err).Error("erro ao carregar tomadores")
			return fmt.Errorf("erro ao carregar tomadores: %w", res.Err)
		}
		s.logger.WithField("total", res.Val).Debug("tomadores carregados")
		return nil
	}
}

// All devolve a lista atual, mais recentes primeiro
func (s *TomadorService) All() []*domain.Tomador {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Tomador, len(s.items))
	copy(out, s.items)
	return out
}

// Get busca um tomador na lista em memória
func (s *TomadorService) Get(id string) (*domain.Tomador, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Add valida, cadastra e coloca o tomador no início da lista
func (s *TomadorService) Add(ctx context.Context, form domain.TomadorForm) (*domain.Tomador, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	res, err := s.api.CreateTomador(ctx, form)
	if errors.Is(err, ports.ErrConflict) {
		// o documento já existe no servidor; a lista local está desatualizada
		s.logger.WithField("tipo", form.Tipo).Warn("tomador já cadastrado, recarregando lista")
		if rerr := s.Refresh(ctx); rerr != nil {
			s.logger.WithError(rerr).Debug("falha ao recarregar tomadores após conflito")
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items = append([]*domain.Tomador{res.Tomador}, s.items...)
	s.mu.Unlock()
	return res.Tomador, nil
}

// Update envia a atualização parcial e substitui o tomador na lista
func (s *TomadorService) Update(ctx context.Context, id string, patch domain.TomadorPatch) (*domain.Tomador, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	res, err := s.api.UpdateTomador(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i, t := range s.items {
		if t.ID == id {
			s.items[i] = res.Tomador
		}
	}
	s.mu.Unlock()
	return res.Tomador, nil
}

// Remove apaga o tomador na API e o retira da lista
func (s *TomadorService) Remove(ctx context.Context, id string) error {
	if err := s.api.DeleteTomador(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.items[:0:0]
	for _, t := range s.items {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return nil
}

// ByTipo filtra a lista por PF ou PJ
func (s *TomadorService) ByTipo(tipo domain.TomadorTipo) []*domain.Tomador {
	return s.filter(func(t *domain.Tomador) bool { return t.Tipo == tipo })
}

// Search procura pelo nome (sem diferenciar acentos e caixa) ou pelo documento
func (s *TomadorService) Search(query string) []*domain.Tomador {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return s.All()
	}
	var digits string
	if strings.Trim(query, "0123456789.-/ ") == "" {
		digits = validation.CleanDigits(query)
	}
	return s.filter(func(t *domain.Tomador) bool {
		if strings.Contains(fold(t.Nome), q) {
			return true
		}
		return digits != "" && strings.Contains(t.Documento, digits)
	})
}

func (s *TomadorService) filter(keep func(*domain.Tomador) bool) []*domain.Tomador {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Tomador
	for _, t := range s.items {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// fold remove acentos e coloca em minúsculas
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
