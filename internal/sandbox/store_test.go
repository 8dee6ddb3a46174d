package sandbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/domain"
)

const ownerEmail = "demo@nymu.com.br"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := NewStore(l)
	s.SetClock(func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) })
	s.SeedUser(ownerEmail, "nymu1234", "Maria Souza", "529.982.247-25")
	return s
}

func pjForm() domain.TomadorForm {
	return domain.TomadorForm{
		Tipo:       domain.TomadorPJ,
		Nome:       "Acme Ltda",
		Documento:  "11.222.333/0001-81",
		Logradouro: "Rua Chile",
		Numero:     "22",
		CEP:        "40020-000",
		Bairro:     "Centro",
		Cidade:     "Salvador",
		UF:         "ba",
	}
}

func solicitacao(tomadorID string, valor int64) domain.SolicitacaoNotaFiscal {
	return domain.SolicitacaoNotaFiscal{
		TomadorID:      tomadorID,
		LocalPrestacao: "Salvador/BA",
		Competencia:    "06/2025",
		Valor:          valor,
		Descricao:      "Consultoria em desenvolvimento de software",
	}
}

func TestStore_Login(t *testing.T) {
	s := newTestStore(t)

	token, user, err := s.Login("DEMO@nymu.com.br", "nymu1234")
	if err != nil {
		t.Fatalf("Login() = %v", err)
	}
	if user.Name != "Maria Souza" || user.CPF != "52998224725" {
		t.Errorf("user = %+v", user)
	}
	if got, err := s.Authenticate(token); err != nil || got != ownerEmail {
		t.Errorf("Authenticate() = %q, %v", got, err)
	}

	if _, _, err := s.Login(ownerEmail, "errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login com senha errada = %v", err)
	}
	if _, err := s.Authenticate("desconhecido"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Authenticate desconhecido = %v", err)
	}
}

func TestStore_Register(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Register("novo@nymu.com.br", "segredo", "111.444.777-35", ""); err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if _, err := s.Register("novo@nymu.com.br", "segredo", "11144477735", ""); !errors.Is(err, ErrConflict) {
		t.Errorf("Register duplicado = %v, want ErrConflict", err)
	}

	_, err := s.Register("outro@nymu.com.br", "segredo", "12345678900", "")
	var input *InputError
	if !errors.As(err, &input) {
		t.Fatalf("Register com CPF inválido = %v, want InputError", err)
	}
	if !strings.Contains(input.Error(), domain.MsgInvalidCPF) {
		t.Errorf("mensagens = %v", input.Messages)
	}

	if _, err := s.Register("terceiro@nymu.com.br", "segredo", "52998224725", "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("Register com código errado = %v", err)
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	s := newTestStore(t)

	nome := "  Maria S. "
	foto := "data:image/png;base64,AAAA"
	u, err := s.UpdateProfile(ownerEmail, domain.ProfileUpdate{Nome: &nome, Foto: &foto})
	if err != nil {
		t.Fatalf("UpdateProfile() = %v", err)
	}
	if u.Name != "Maria S." {
		t.Errorf("Name = %q", u.Name)
	}
	if !strings.HasPrefix(u.Avatar, "/uploads/avatars/") {
		t.Errorf("Avatar = %q, want caminho relativo", u.Avatar)
	}

	tel := "123"
	if _, err := s.UpdateProfile(ownerEmail, domain.ProfileUpdate{Telefone: &tel}); err == nil {
		t.Error("telefone inválido aceito")
	}
}

func TestStore_ChangePassword(t *testing.T) {
	s := newTestStore(t)

	if err := s.ChangePassword(ownerEmail, "errada", "novasenha"); err == nil {
		t.Error("senha atual errada aceita")
	}
	if err := s.ChangePassword(ownerEmail, "nymu1234", "123"); err == nil {
		t.Error("senha curta aceita")
	}
	if err := s.ChangePassword(ownerEmail, "nymu1234", "novasenha"); err != nil {
		t.Fatalf("ChangePassword() = %v", err)
	}
	if _, _, err := s.Login(ownerEmail, "novasenha"); err != nil {
		t.Errorf("Login com a nova senha = %v", err)
	}
}

func TestStore_Tomadores(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreateTomador(ownerEmail, pjForm())
	if err != nil {
		t.Fatalf("CreateTomador() = %v", err)
	}
	if created.Documento != "11222333000181" || created.UF != "BA" || created.CEP != "40020000" {
		t.Errorf("tomador não normalizado: %+v", created)
	}
	if _, err := s.CreateTomador(ownerEmail, pjForm()); !errors.Is(err, ErrConflict) {
		t.Errorf("documento duplicado = %v", err)
	}
	if _, err := s.CreateTomador(ownerEmail, domain.TomadorForm{Tipo: domain.TomadorPF}); err == nil {
		t.Error("formulário vazio aceito")
	}

	// outro usuário não enxerga
	if _, err := s.GetTomador("outro@nymu.com.br", created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTomador de outro dono = %v", err)
	}

	im := ""
	nome := "Acme Serviços"
	updated, err := s.UpdateTomador(ownerEmail, created.ID, domain.TomadorPatch{Nome: &nome, InscricaoMunicipal: &im})
	if err != nil {
		t.Fatalf("UpdateTomador() = %v", err)
	}
	if updated.Nome != "Acme Serviços" || updated.Documento != created.Documento {
		t.Errorf("updated = %+v", updated)
	}

	page := s.ListTomadores(ownerEmail, domain.TomadorFilter{Tipo: domain.TomadorPF})
	if page.Total != 0 {
		t.Errorf("filtro PF total = %d", page.Total)
	}
	page = s.ListTomadores(ownerEmail, domain.TomadorFilter{})
	if page.Total != 1 || page.Page != 1 || page.Limit != 20 {
		t.Errorf("page = %+v", page)
	}

	if err := s.DeleteTomador(ownerEmail, created.ID); err != nil {
		t.Fatalf("DeleteTomador() = %v", err)
	}
	if err := s.DeleteTomador(ownerEmail, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTomador repetido = %v", err)
	}
}

func TestStore_NotaLifecycle(t *testing.T) {
	s := newTestStore(t)
	tom, err := s.CreateTomador(ownerEmail, pjForm())
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.CreateNota(ownerEmail, solicitacao(tom.ID, 150000))
	if err != nil {
		t.Fatalf("CreateNota() = %v", err)
	}
	if ok.Status != domain.NotaFiscalProcessando || ok.TomadorNome != "Acme Ltda" {
		t.Errorf("nota = %+v", ok)
	}
	rejected, err := s.CreateNota(ownerEmail, solicitacao(tom.ID, MaxAuthorizedValue+1))
	if err != nil {
		t.Fatal(err)
	}

	// tomador com nota em andamento não pode ser removido
	if err := s.DeleteTomador(ownerEmail, tom.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("DeleteTomador com nota pendente = %v", err)
	}

	// cancelamento antes da emissão é recusado
	if err := s.CancelNota(ownerEmail, ok.ID, "Serviço não prestado ao cliente"); err == nil {
		t.Error("cancelamento em PROCESSANDO aceito")
	}
	if _, err := s.NotaXML(ownerEmail, ok.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("XML antes da emissão = %v", err)
	}

	if n := s.Process(); n != 2 {
		t.Fatalf("Process() = %d, want 2", n)
	}
	if n := s.Process(); n != 0 {
		t.Errorf("segundo Process() = %d, want 0", n)
	}

	got, _ := s.GetNota(ownerEmail, ok.ID)
	if got.Status != domain.NotaFiscalEmitida || got.InvoiceNumber == "" || len(got.AccessKey) != 50 || got.AuthorizedAt == nil {
		t.Errorf("nota emitida = %+v", got)
	}
	bad, _ := s.GetNota(ownerEmail, rejected.ID)
	if bad.Status != domain.NotaFiscalErro || bad.SefazMessage == "" {
		t.Errorf("nota rejeitada = %+v", bad)
	}

	xmlDoc, err := s.NotaXML(ownerEmail, ok.ID)
	if err != nil {
		t.Fatalf("NotaXML() = %v", err)
	}
	if !bytes.Contains(xmlDoc, []byte("<vServ>1500.00</vServ>")) {
		t.Errorf("XML sem valor: %s", xmlDoc)
	}
	pdf, err := s.NotaPDF(ownerEmail, ok.ID)
	if err != nil {
		t.Fatalf("NotaPDF() = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) || !bytes.HasSuffix(bytes.TrimSpace(pdf), []byte("%%EOF")) {
		t.Error("PDF malformado")
	}
	if !bytes.Contains(pdf, []byte(got.AccessKey)) {
		t.Error("PDF sem a chave de acesso")
	}

	if err := s.CancelNota(ownerEmail, ok.ID, "curto"); err == nil {
		t.Error("motivo curto aceito")
	}
	if err := s.CancelNota(ownerEmail, ok.ID, "Serviço não prestado ao cliente"); err != nil {
		t.Fatalf("CancelNota() = %v", err)
	}
	got, _ = s.GetNota(ownerEmail, ok.ID)
	if got.Status != domain.NotaFiscalCancelada || got.CancelledAt == nil {
		t.Errorf("nota cancelada = %+v", got)
	}
}

func TestStore_Simulate(t *testing.T) {
	s := newTestStore(t)
	tom, _ := s.CreateTomador(ownerEmail, pjForm())

	req := solicitacao(tom.ID, 5000)
	req.Simulate = true
	n, err := s.CreateNota(ownerEmail, req)
	if err != nil {
		t.Fatal(err)
	}
	if n.Status != domain.NotaFiscalSimulada {
		t.Errorf("Status = %s, want SIMULATED", n.Status)
	}
	if s.Process() != 0 {
		t.Error("nota simulada não deve ser processada")
	}
	if err := s.CancelNota(ownerEmail, n.ID, "Simulação descartada pelo usuário"); err != nil {
		t.Errorf("cancelar simulada = %v", err)
	}
}

func TestStore_ListNotasFilters(t *testing.T) {
	s := newTestStore(t)
	tom, _ := s.CreateTomador(ownerEmail, pjForm())
	for i := 0; i < 3; i++ {
		if _, err := s.CreateNota(ownerEmail, solicitacao(tom.ID, int64(1000*(i+1)))); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter domain.NotaFiscalFilter
		items  int
		total  int
	}{
		{"todas", domain.NotaFiscalFilter{}, 3, 3},
		{"página 2 de 2 em 2", domain.NotaFiscalFilter{Page: 2, Limit: 2}, 1, 3},
		{"por tomador", domain.NotaFiscalFilter{TomadorID: tom.ID}, 3, 3},
		{"tomador inexistente", domain.NotaFiscalFilter{TomadorID: "x"}, 0, 0},
		{"por status", domain.NotaFiscalFilter{Status: domain.NotaFiscalEmitida}, 0, 0},
		{"por competência", domain.NotaFiscalFilter{Competencia: "06/2025"}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := s.ListNotas(ownerEmail, tt.filter)
			if len(page.Items) != tt.items || page.Total != tt.total {
				t.Errorf("items = %d total = %d, want %d/%d", len(page.Items), page.Total, tt.items, tt.total)
			}
		})
	}
}

func TestStore_Run(t *testing.T) {
	s := newTestStore(t)
	tom, _ := s.CreateTomador(ownerEmail, pjForm())
	n, _ := s.CreateNota(ownerEmail, solicitacao(tom.ID, 1000))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		got, _ := s.GetNota(ownerEmail, n.ID)
		if got.Status == domain.NotaFiscalEmitida {
			break
		}
		select {
		case <-deadline:
			t.Fatal("nota não foi processada")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestRenderDANFSe(t *testing.T) {
	at := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	n := &domain.NotaFiscal{
		InvoiceNumber:      "42",
		Series:             "1",
		AccessKey:          "29250611222333000181000000000000042123456789012345",
		Protocol:           "000000000000042",
		Status:             domain.NotaFiscalEmitida,
		TomadorNome:        "Padaria São João (Matriz)",
		TomadorDocumento:   "11222333000181",
		Competencia:        "06/2025",
		LocalPrestacao:     "Salvador/BA",
		ServiceValue:       150000,
		ServiceDescription: "Consultoria em desenvolvimento de software",
		AuthorizedAt:       &at,
	}

	pdf, err := renderDANFSe(n)
	if err != nil {
		t.Fatalf("renderDANFSe() = %v", err)
	}
	for _, want := range []string{"%PDF-", "DANFSe - Documento Auxiliar da NFS-e", n.AccessKey, "11.222.333/0001-81", "15/06/2025 10:30", `\(Matriz\)`} {
		if !bytes.Contains(pdf, []byte(want)) {
			t.Errorf("PDF sem %q", want)
		}
	}
}
