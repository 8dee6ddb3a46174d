package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
)

// NotaFiscalService mantém as notas do usuário e aplica as regras de solicitação e cancelamento
type NotaFiscalService struct {
	api    ports.NotaFiscalAPI
	logger *logrus.Logger
	now    func() time.Time

	mu    sync.RWMutex
	items []*domain.NotaFiscal
	group singleflight.Group
}

// NewNotaFiscalService cria o serviço com a lista vazia
func NewNotaFiscalService(api ports.NotaFiscalAPI, logger *logrus.Logger) *NotaFiscalService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotaFiscalService{api: api, logger: logger, now: time.Now}
}

// Refresh recarrega as notas da API. Em caso de erro a lista anterior é mantida.
func (s *NotaFiscalService) Refresh(ctx context.Context) error {
	ch := s.group.DoChan("refresh", func() (any, error) {
		items, err := fetchAll(context.WithoutCancel(ctx), func(ctx context.Context, page int) (*domain.Page[*domain.NotaFiscal], error) {
			return s.api.ListNotasFiscais(ctx, domain.NotaFiscalFilter{Page: page, Limit: refreshPageSize})
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
			s.logger.WithError(res.Err).Error("erro ao carregar notas fiscais")
			return fmt.Errorf("erro ao carregar notas fiscais: %w", res.Err)
		}
		return nil
	}
}

// All devolve as notas, mais recentes primeiro
func (s *NotaFiscalService) All() []*domain.NotaFiscal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.NotaFiscal, len(s.items))
	copy(out, s.items)
	return out
}

// Solicitar valida a solicitação, envia e coloca a nota no início da lista
func (s *NotaFiscalService) Solicitar(ctx context.Context, req domain.SolicitacaoNotaFiscal) (*domain.NotaFiscal, error) {
	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}
	res, err := s.api.CreateNotaFiscal(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items = append([]*domain.NotaFiscal{res.NotaFiscal}, s.items...)
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"nota_id": res.NotaFiscal.ID, "status": res.NotaFiscal.Status}).Info("nota fiscal solicitada")
	return res.NotaFiscal, nil
}

// Cancelar valida o motivo e o status antes de chamar a API; em sucesso marca a nota como CANCELADA.
// Uma nota fora da lista local é buscada na API para conferir o status.
func (s *NotaFiscalService) Cancelar(ctx context.Context, id, reason string) error {
	if err := domain.ValidateCancelReason(reason); err != nil {
		return err
	}
	n, ok := s.find(id)
	if !ok {
		fetched, err := s.api.GetNotaFiscal(ctx, id)
		if err != nil {
			return err
		}
		n = fetched
	}
	if !n.CanCancel() {
		return fmt.Errorf("%w: %s", domain.ErrCancelNotAllowed, n.Status)
	}

	if _, err := s.api.CancelNotaFiscal(ctx, id, reason); err != nil {
		return err
	}

	now := s.now()
	s.mu.Lock()
	for i, n := range s.items {
		if n.ID == id {
			cp := *n
			cp.Status = domain.NotaFiscalCancelada
			cp.UpdatedAt = now
			cp.CancelledAt = &now
			s.items[i] = &cp
		}
	}
	s.mu.Unlock()

	s.logger.WithField("nota_id", id).Info("nota fiscal cancelada")
	return nil
}

// Get busca a nota na API e atualiza a lista
func (s *NotaFiscalService) Get(ctx context.Context, id string) (*domain.NotaFiscal, error) {
	n, err := s.api.GetNotaFiscal(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	for i, cur := range s.items {
		if cur.ID == id {
			s.items[i] = n
		}
	}
	s.mu.Unlock()
	return n, nil
}

func (s *NotaFiscalService) find(id string) (*domain.NotaFiscal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.items {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// ByTomador filtra as notas de um tomador
func (s *NotaFiscalService) ByTomador(tomadorID string) []*domain.NotaFiscal {
	return s.filter(func(n *domain.NotaFiscal) bool { return n.TomadorID == tomadorID })
}

// ByStatus filtra as notas por status
func (s *NotaFiscalService) ByStatus(status domain.NotaFiscalStatus) []*domain.NotaFiscal {
	return s.filter(func(n *domain.NotaFiscal) bool { return n.Status == status })
}

// ByPeriod filtra pela data de criação, com início e fim inclusivos; zero desativa o limite
func (s *NotaFiscalService) ByPeriod(from, to time.Time) []*domain.NotaFiscal {
	return s.filter(func(n *domain.NotaFiscal) bool {
		if !from.IsZero() && n.CreatedAt.Before(from) {
			return false
		}
		if !to.IsZero() && n.CreatedAt.After(to) {
			return false
		}
		return true
	})
}

func (s *NotaFiscalService) filter(keep func(*domain.NotaFiscal) bool) []*domain.NotaFiscal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.NotaFiscal
	for _, n := range s.items {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// TotalFaturado soma, em centavos, as notas emitidas ou simuladas
func TotalFaturado(notas []*domain.NotaFiscal) int64 {
	var total int64
	for _, n := range notas {
		if n.CountsAsFaturada() {
			total += n.ServiceValue
		}
	}
	return total
}

// DownloadXML baixa o XML autorizado da nota
func (s *NotaFiscalService) DownloadXML(ctx context.Context, id string) ([]byte, error) {
	return s.api.DownloadXML(ctx, id)
}

// DownloadPDF baixa o DANFSe da nota
func (s *NotaFiscalService) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	return s.api.DownloadPDF(ctx, id)
}
