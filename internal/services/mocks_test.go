package services

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/ports"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type mockAuth struct {
	LoginFn          func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	ValidateCodeFn   func(ctx context.Context, email, code string) (*ports.ActionResult, error)
	RegisterFn       func(ctx context.Context, reg domain.Registration) (*ports.RegisterResult, error)
	UpdateProfileFn  func(ctx context.Context, update domain.ProfileUpdate) (*ports.ProfileResult, error)
	ChangePasswordFn func(ctx context.Context, current, next string) (*ports.ActionResult, error)
	calls            int
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	m.calls++
	return m.LoginFn(ctx, email, password)
}

func (m *mockAuth) ValidateCode(ctx context.Context, email, code string) (*ports.ActionResult, error) {
	m.calls++
	return m.ValidateCodeFn(ctx, email, code)
}

func (m *mockAuth) Register(ctx context.Context, reg domain.Registration) (*ports.RegisterResult, error) {
	m.calls++
	return m.RegisterFn(ctx, reg)
}

func (m *mockAuth) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*ports.ProfileResult, error) {
	m.calls++
	return m.UpdateProfileFn(ctx, update)
}

func (m *mockAuth) ChangePassword(ctx context.Context, current, next string) (*ports.ActionResult, error) {
	m.calls++
	return m.ChangePasswordFn(ctx, current, next)
}

type mockTokens struct {
	mu      sync.Mutex
	token   string
	saveErr error
}

func (m *mockTokens) Get(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *mockTokens) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *mockTokens) Remove(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

type mockTomadorAPI struct {
	CreateFn func(ctx context.Context, form domain.TomadorForm) (*ports.TomadorResult, error)
	ListFn   func(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error)
	GetFn    func(ctx context.Context, id string) (*domain.Tomador, error)
	UpdateFn func(ctx context.Context, id string, patch domain.TomadorPatch) (*ports.TomadorResult, error)
	DeleteFn func(ctx context.Context, id string) error
}

func (m *mockTomadorAPI) CreateTomador(ctx context.Context, form domain.TomadorForm) (*ports.TomadorResult, error) {
	return m.CreateFn(ctx, form)
}

func (m *mockTomadorAPI) ListTomadores(ctx context.Context, filter domain.TomadorFilter) (*domain.Page[*domain.Tomador], error) {
	return m.ListFn(ctx, filter)
}

func (m *mockTomadorAPI) GetTomador(ctx context.Context, id string) (*domain.Tomador, error) {
	return m.GetFn(ctx, id)
}

func (m *mockTomadorAPI) UpdateTomador(ctx context.Context, id string, patch domain.TomadorPatch) (*ports.TomadorResult, error) {
	return m.UpdateFn(ctx, id, patch)
}

func (m *mockTomadorAPI) DeleteTomador(ctx context.Context, id string) error {
	return m.DeleteFn(ctx, id)
}

type mockNotaAPI struct {
	CreateFn func(ctx context.Context, req domain.SolicitacaoNotaFiscal) (*ports.NotaFiscalResult, error)
	ListFn   func(ctx context.Context, filter domain.NotaFiscalFilter) (*domain.Page[*domain.NotaFiscal], error)
	GetFn    func(ctx context.Context, id string) (*domain.NotaFiscal, error)
	CancelFn func(ctx context.Context, id, reason string) (*ports.ActionResult, error)
	XMLFn    func(ctx context.Context, id string) ([]byte, error)
	PDFFn    func(ctx context.Context, id string) ([]byte, error)
	calls    int
}

func (m *mockNotaAPI) CreateNotaFiscal(ctx context.Context, req domain.SolicitacaoNotaFiscal) (*ports.NotaFiscalResult, error) {
	m.calls++
	return m.CreateFn(ctx, req)
}

func (m *mockNotaAPI) ListNotasFiscais(ctx context.Context, filter domain.NotaFiscalFilter) (*domain.Page[*domain.NotaFiscal], error) {
	m.calls++
	return m.ListFn(ctx, filter)
}

func (m *mockNotaAPI) GetNotaFiscal(ctx context.Context, id string) (*domain.NotaFiscal, error) {
	m.calls++
	return m.GetFn(ctx, id)
}

func (m *mockNotaAPI) CancelNotaFiscal(ctx context.Context, id, reason string) (*ports.ActionResult, error) {
	m.calls++
	return m.CancelFn(ctx, id, reason)
}

func (m *mockNotaAPI) DownloadXML(ctx context.Context, id string) ([]byte, error) {
	m.calls++
	return m.XMLFn(ctx, id)
}

func (m *mockNotaAPI) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	m.calls++
	return m.PDFFn(ctx, id)
}
