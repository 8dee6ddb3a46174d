// Package sandbox mantém em memória o estado do servidor de testes:
// usuários, sessões, tomadores e notas fiscais com processamento simulado.
package sandbox

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/magnani/nymu-app/client/internal/domain"
	"github.com/magnani/nymu-app/client/internal/validation"
)

// VerificationCode é o código aceito pelo sandbox na validação de email
const VerificationCode = "123456"

// Erros do sandbox; os handlers os traduzem para status HTTP
var (
	ErrInvalidCredentials = errors.New("Credenciais inválidas")
	ErrUnauthorized       = errors.New("Token inválido ou expirado")
	ErrNotFound           = errors.New("Recurso não encontrado")
	ErrConflict           = errors.New("Registro já existe")
	ErrInvalidCode        = errors.New("Código inválido ou expirado")
)

// InputError carrega mensagens de validação no formato do servidor (lista)
type InputError struct {
	Messages []string
}

func (e *InputError) Error() string {
	return strings.Join(e.Messages, ", ")
}

func inputError(err error) error {
	var errs domain.ValidationErrors
	if errors.As(err, &errs) {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Field+": "+e.Message)
		}
		return &InputError{Messages: msgs}
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &InputError{Messages: []string{ve.Message}}
	}
	return &InputError{Messages: []string{err.Error()}}
}

// Account é um usuário do sandbox
type Account struct {
	User     domain.User
	Password string
	Verified bool
}

// Decider decide se uma nota em processamento é autorizada e com qual mensagem
type Decider func(n *domain.NotaFiscal) (authorized bool, message string)

// MaxAuthorizedValue é o maior valor (em centavos) autorizado pelo Decider padrão
const MaxAuthorizedValue int64 = 10_000_000

// DefaultDecider autoriza notas até R$ 100.000,00
func DefaultDecider(n *domain.NotaFiscal) (bool, string) {
	if n.ServiceValue > MaxAuthorizedValue {
		return false, "Rejeição: valor do serviço acima do limite permitido"
	}
	return true, "Autorizado o uso da NFS-e"
}

// Store guarda o estado do sandbox; seguro para uso concorrente
type Store struct {
	mu sync.Mutex

	accounts  map[string]*Account // por email
	sessions  map[string]string   // token -> email
	tomadores map[string]*ownedTomador
	notas     map[string]*ownedNota
	seq       int

	now    func() time.Time
	decide Decider
	logger *logrus.Logger
}

type ownedTomador struct {
	owner string
	*domain.Tomador
}

type ownedNota struct {
	owner string
	*domain.NotaFiscal
}

// NewStore cria um sandbox vazio
func NewStore(logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		accounts:  make(map[string]*Account),
		sessions:  make(map[string]string),
		tomadores: make(map[string]*ownedTomador),
		notas:     make(map[string]*ownedNota),
		now:       time.Now,
		decide:    DefaultDecider,
		logger:    logger,
	}
}

// SetClock troca o relógio (usado em testes)
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetDecider troca a regra de autorização das notas
func (s *Store) SetDecider(d Decider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decide = d
}

// SeedUser cria um usuário já verificado
func (s *Store) SeedUser(email, password, name, cpf string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := &Account{
		User: domain.User{
			ID:    uuid.NewString(),
			Email: strings.ToLower(email),
			Name:  name,
			CPF:   validation.CleanDigits(cpf),
		},
		Password: password,
		Verified: true,
	}
	s.accounts[acc.User.Email] = acc
	u := acc.User
	return &u
}

// ==================== Auth ====================

// Login valida as credenciais e abre uma sessão
func (s *Store) Login(email, password string) (string, domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acc.Password != password {
		return "", domain.User{}, ErrInvalidCredentials
	}
	token := uuid.NewString()
	s.sessions[token] = acc.User.Email
	s.logger.WithField("email", acc.User.Email).Info("sandbox: login")
	return token, acc.User, nil
}

// Authenticate resolve o token da sessão para o email do usuário
func (s *Store) Authenticate(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.sessions[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return email, nil
}

// ValidateCode confirma o código de verificação
func (s *Store) ValidateCode(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code != VerificationCode {
		return ErrInvalidCode
	}
	if acc, ok := s.accounts[strings.ToLower(email)]; ok {
		acc.Verified = true
	}
	return nil
}

// Register cadastra um novo usuário
func (s *Store) Register(email, password, cpf, code string) (domain.User, error) {
	reg := domain.Registration{Email: email, Password: password, CPF: cpf, Code: code}
	if err := reg.Validate(); err != nil {
		return domain.User{}, inputError(err)
	}
	if code != "" && code != VerificationCode {
		return domain.User{}, ErrInvalidCode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, exists := s.accounts[key]; exists {
		return domain.User{}, fmt.Errorf("%w: email já cadastrado", ErrConflict)
	}
	acc := &Account{
		User: domain.User{
			ID:    uuid.NewString(),
			Email: key,
			CPF:   validation.CleanDigits(cpf),
		},
		Password: password,
		Verified: code != "",
	}
	s.accounts[key] = acc
	return acc.User, nil
}

// UpdateProfile altera nome, telefone e foto. Fotos em data URI viram um caminho relativo.
func (s *Store) UpdateProfile(email string, update domain.ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[email]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	if update.Nome != nil {
		acc.User.Name = strings.TrimSpace(*update.Nome)
	}
	if update.Telefone != nil {
		if !validation.ValidatePhone(*update.Telefone) {
			return domain.User{}, &InputError{Messages: []string{"telefone: " + domain.MsgInvalidPhone}}
		}
		acc.User.Telefone = validation.CleanDigits(*update.Telefone)
	}
	if update.Foto != nil {
		foto := *update.Foto
		if strings.HasPrefix(foto, "data:image") {
			foto = "/uploads/avatars/" + acc.User.ID + ".png"
		}
		acc.User.Avatar = foto
	}
	return acc.User, nil
}

// ChangePassword troca a senha após conferir a atual
func (s *Store) ChangePassword(email, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[email]
	if !ok {
		return ErrNotFound
	}
	if acc.Password != current {
		return &InputError{Messages: []string{"Senha atual incorreta"}}
	}
	if len(next) < 6 {
		return &InputError{Messages: []string{"A nova senha deve ter no mínimo 6 caracteres"}}
	}
	acc.Password = next
	return nil
}

// ==================== Tomadores ====================

// CreateTomador valida e cadastra um tomador do usuário
func (s *Store) CreateTomador(owner string, form domain.TomadorForm) (domain.Tomador, error) {
	if err := form.Validate(); err != nil {
		return domain.Tomador{}, inputError(err)
	}
	form = form.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tomadores {
		if t.owner == owner && t.Documento == form.Documento {
			return domain.Tomador{}, fmt.Errorf("%w: documento já cadastrado", ErrConflict)
		}
	}

	now := s.now()
	t := &domain.Tomador{
		ID:                 uuid.NewString(),
		Tipo:               form.Tipo,
		Nome:               form.Nome,
		Documento:          form.Documento,
		InscricaoMunicipal: form.InscricaoMunicipal,
		Logradouro:         form.Logradouro,
		Numero:             form.Numero,
		CEP:                form.CEP,
		Bairro:             form.Bairro,
		Cidade:             form.Cidade,
		UF:                 form.UF,
		Telefone:           form.Telefone,
		CreatedAt:          &now,
		UpdatedAt:          &now,
	}
	s.tomadores[t.ID] = &ownedTomador{owner: owner, Tomador: t}
	return *t, nil
}

// ListTomadores devolve uma página dos tomadores do usuário, mais recentes primeiro
func (s *Store) ListTomadores(owner string, filter domain.TomadorFilter) domain.Page[domain.Tomador] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []domain.Tomador
	for _, t := range s.tomadores {
		if t.owner != owner {
			continue
		}
		if filter.Tipo != "" && t.Tipo != filter.Tipo {
			continue
		}
		all = append(all, *t.Tomador)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(*all[j].CreatedAt) })
	return paginate(all, filter.Page, filter.Limit)
}

// GetTomador busca um tomador do usuário
func (s *Store) GetTomador(owner, id string) (domain.Tomador, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tomadores[id]
	if !ok || t.owner != owner {
		return domain.Tomador{}, ErrNotFound
	}
	return *t.Tomador, nil
}

// UpdateTomador aplica uma atualização parcial
func (s *Store) UpdateTomador(owner, id string, patch domain.TomadorPatch) (domain.Tomador, error) {
	if err := patch.Validate(); err != nil {
		return domain.Tomador{}, inputError(err)
	}
	patch = patch.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tomadores[id]
	if !ok || t.owner != owner {
		return domain.Tomador{}, ErrNotFound
	}
	patch.Apply(t.Tomador)
	if t.Tipo == domain.TomadorPF {
		t.InscricaoMunicipal = ""
	}
	now := s.now()
	t.UpdatedAt = &now
	return *t.Tomador, nil
}

// DeleteTomador remove um tomador sem notas vinculadas
func (s *Store) DeleteTomador(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tomadores[id]
	if !ok || t.owner != owner {
		return ErrNotFound
	}
	for _, n := range s.notas {
		if n.TomadorID == id && !n.IsTerminal() {
			return fmt.Errorf("%w: tomador possui notas em andamento", ErrConflict)
		}
	}
	delete(s.tomadores, id)
	return nil
}

// ==================== Notas fiscais ====================

// CreateNota valida a solicitação e registra a nota em PROCESSANDO (ou SIMULATED)
func (s *Store) CreateNota(owner string, req domain.SolicitacaoNotaFiscal) (domain.NotaFiscal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if err := req.Validate(now); err != nil {
		return domain.NotaFiscal{}, inputError(err)
	}
	t, ok := s.tomadores[req.TomadorID]
	if !ok || t.owner != owner {
		return domain.NotaFiscal{}, fmt.Errorf("%w: tomador", ErrNotFound)
	}

	status := domain.NotaFiscalProcessando
	if req.Simulate {
		status = domain.NotaFiscalSimulada
	}
	n := &domain.NotaFiscal{
		ID:                 uuid.NewString(),
		Status:             status,
		TomadorID:          t.ID,
		TomadorNome:        t.Nome,
		TomadorDocumento:   t.Documento,
		LocalPrestacao:     strings.TrimSpace(req.LocalPrestacao),
		Competencia:        req.Competencia,
		ServiceValue:       req.Valor,
		ServiceDescription: strings.TrimSpace(req.Descricao),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.notas[n.ID] = &ownedNota{owner: owner, NotaFiscal: n}
	return *n, nil
}

// ListNotas devolve uma página das notas do usuário, mais recentes primeiro
func (s *Store) ListNotas(owner string, filter domain.NotaFiscalFilter) domain.Page[domain.NotaFiscal] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []domain.NotaFiscal
	for _, n := range s.notas {
		switch {
		case n.owner != owner:
		case filter.TomadorID != "" && n.TomadorID != filter.TomadorID:
		case filter.Competencia != "" && n.Competencia != filter.Competencia:
		case filter.Status != "" && n.Status != filter.Status:
		default:
			all = append(all, *n.NotaFiscal)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, filter.Page, filter.Limit)
}

// GetNota busca uma nota do usuário
func (s *Store) GetNota(owner, id string) (domain.NotaFiscal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notas[id]
	if !ok || n.owner != owner {
		return domain.NotaFiscal{}, ErrNotFound
	}
	return *n.NotaFiscal, nil
}

// CancelNota cancela uma nota emitida ou simulada
func (s *Store) CancelNota(owner, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notas[id]
	if !ok || n.owner != owner {
		return ErrNotFound
	}
	if err := n.Cancel(reason, s.now()); err != nil {
		return inputError(err)
	}
	s.logger.WithField("nota_id", id).Info("sandbox: nota cancelada")
	return nil
}

// Process decide todas as notas em PROCESSANDO e retorna quantas mudaram
func (s *Store) Process() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	processed := 0
	for _, n := range s.notas {
		if n.Status != domain.NotaFiscalProcessando {
			continue
		}
		ok, msg := s.decide(n.NotaFiscal)
		var err error
		if ok {
			s.seq++
			err = n.Authorize(now, msg)
			n.InvoiceNumber = fmt.Sprintf("%d", s.seq)
			n.Series = "1"
			n.Protocol = fmt.Sprintf("%015d", s.seq)
			n.VerificationCode = strings.ToUpper(uuid.NewString()[:8])
			n.AccessKey = accessKey(n.NotaFiscal, s.seq)
			n.XMLPath = "/api/invoices/" + n.ID + "/xml"
			n.PDFPath = "/api/invoices/" + n.ID + "/pdf"
		} else {
			err = n.Reject(now, msg)
		}
		if err != nil {
			s.logger.WithError(err).WithField("nota_id", n.ID).Error("sandbox: transição inválida")
			continue
		}
		processed++
		s.logger.WithFields(logrus.Fields{"nota_id": n.ID, "status": n.Status}).Info("sandbox: nota processada")
	}
	return processed
}

// accessKey monta uma chave de acesso de 50 dígitos a partir do documento do tomador e da sequência
func accessKey(n *domain.NotaFiscal, seq int) string {
	key := fmt.Sprintf("29%s%014s%020d", n.CreatedAt.Format("0601"), n.TomadorDocumento, seq)
	for len(key) < 50 {
		key += "0"
	}
	return key[:50]
}

func paginate[T any](all []T, page, limit int) domain.Page[T] {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return domain.Page[T]{Items: items, Total: len(all), Page: page, Limit: limit}
}
