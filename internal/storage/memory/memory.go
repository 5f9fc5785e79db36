// Package memory is the process-local storage backend. Records live in maps
// guarded by one mutex per collection and are lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
	"rentfunnel/internal/storage/seed"
)

type Provider struct {
	now func() time.Time

	vehicles  *vehicleStore
	users     *userStore
	favorites *favoriteStore
	quotes    *quoteStore
	leads     *leadStore
}

type Option func(*Provider)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New builds an empty backend seeded with the vehicle catalogue
func New(opts ...Option) *Provider {
	p := &Provider{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	p.vehicles = &vehicleStore{}
	p.users = &userStore{now: p.now}
	p.favorites = &favoriteStore{now: p.now}
	p.quotes = &quoteStore{now: p.now}
	p.leads = &leadStore{now: p.now}
	p.reset()
	return p
}

func (p *Provider) reset() {
	p.vehicles.load(seed.MustVehicles())
	p.users.reset()
	p.favorites.reset()
	p.quotes.reset()
	p.leads.reset()
}

func (p *Provider) Name() string { return "memory" }

func (p *Provider) Ready(ctx context.Context) error { return ctx.Err() }

func (p *Provider) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return storage.Normalize(err)
	}
	p.reset()
	return nil
}

func (p *Provider) Vehicles() storage.VehicleStore   { return p.vehicles }
func (p *Provider) Users() storage.UserStore         { return p.users }
func (p *Provider) Favorites() storage.FavoriteStore { return p.favorites }
func (p *Provider) Quotes() storage.QuoteStore       { return p.quotes }
func (p *Provider) Leads() storage.LeadStore         { return p.leads }

var _ storage.Provider = (*Provider)(nil)

// ---------------------------------------------------------------------------
// vehicles

type vehicleStore struct {
	mu   sync.RWMutex
	list []domain.Vehicle
}

func (s *vehicleStore) load(vehicles []domain.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = vehicles
}

func (s *vehicleStore) snapshot() []domain.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Vehicle, len(s.list))
	copy(out, s.list)
	return out
}

func (s *vehicleStore) GetAll(ctx context.Context) ([]domain.Vehicle, error) {
	return s.snapshot(), nil
}

func (s *vehicleStore) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	for _, v := range s.snapshot() {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, storage.NotFound("vehicle", id)
}

func (s *vehicleStore) GetBySlug(ctx context.Context, slug string) (*domain.Vehicle, error) {
	for _, v := range s.snapshot() {
		if v.Slug == slug {
			return &v, nil
		}
	}
	return nil, storage.NotFound("vehicle", slug)
}

func (s *vehicleStore) GetFeatured(ctx context.Context, limit int) ([]domain.Vehicle, error) {
	if limit <= 0 {
		limit = storage.DefaultFeaturedLimit
	}
	out := make([]domain.Vehicle, 0, limit)
	for _, v := range s.snapshot() {
		if v.InEvidenza && v.Disponibile {
			out = append(out, v)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *vehicleStore) Search(ctx context.Context, params domain.VehicleSearchParams) (*domain.VehicleSearchResult, error) {
	params.Normalize()
	matched := make([]domain.Vehicle, 0)
	for _, v := range s.snapshot() {
		if storage.MatchVehicle(&v, params.Filters) {
			matched = append(matched, v)
		}
	}
	storage.SortVehicles(matched, params.Sort)
	return storage.Paginate(matched, params.Page, params.Limit), nil
}

func (s *vehicleStore) Brands(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, v := range s.snapshot() {
		if !seen[v.Marca] {
			seen[v.Marca] = true
			out = append(out, v.Marca)
		}
	}
	sortStrings(out)
	return out, nil
}

func (s *vehicleStore) Categories(ctx context.Context) ([]domain.VehicleCategory, error) {
	seen := map[domain.VehicleCategory]bool{}
	out := []domain.VehicleCategory{}
	for _, v := range s.snapshot() {
		if !seen[v.Categoria] {
			seen[v.Categoria] = true
			out = append(out, v.Categoria)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// users

type userStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	byID    map[string]*domain.User
	byEmail map[string]string
}

func (s *userStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = map[string]*domain.User{}
	s.byEmail = map[string]string{}
}

func (s *userStore) Create(ctx context.Context, data domain.CreateUserData) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if email == "" {
		return nil, storage.Validation("email is required", "email")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storage.Validation("password cannot be hashed", "password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, storage.AlreadyExists("user", email)
	}

	role := data.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := s.now()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         data.Name,
		Cognome:      data.Cognome,
		Phone:        data.Phone,
		Company:      data.Company,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.byID[u.ID] = u
	s.byEmail[email] = u.ID
	out := *u
	return &out, nil
}

func (s *userStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, storage.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.NotFound("user", email)
	}
	out := *s.byID[id]
	return &out, nil
}

func (s *userStore) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, storage.NotFound("user", id)
	}
	applyUserUpdate(u, upd)
	u.UpdatedAt = s.now()
	out := *u
	return &out, nil
}

func (s *userStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, storage.Unauthorized()
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, storage.Unauthorized()
	}
	return u, nil
}

func applyUserUpdate(u *domain.User, upd domain.UserUpdate) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Cognome != nil {
		u.Cognome = *upd.Cognome
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Company != nil {
		u.Company = *upd.Company
	}
	if upd.PartitaIva != nil {
		u.PartitaIva = *upd.PartitaIva
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
}

// ---------------------------------------------------------------------------
// favorites

type favoriteStore struct {
	mu   sync.RWMutex
	now  func() time.Time
	list []domain.Favorite
}

func (s *favoriteStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = nil
}

func (s *favoriteStore) Add(ctx context.Context, userID, vehicleID string) (*domain.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.list {
		if f.UserID == userID && f.VehicleID == vehicleID {
			out := f
			return &out, nil
		}
	}
	f := domain.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		VehicleID: vehicleID,
		CreatedAt: s.now(),
	}
	s.list = append(s.list, f)
	return &f, nil
}

func (s *favoriteStore) Remove(ctx context.Context, userID, vehicleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.list {
		if f.UserID == userID && f.VehicleID == vehicleID {
			s.list = append(s.list[:i], s.list[i+1:]...)
			return nil
		}
	}
	return storage.NotFound("favorite", vehicleID)
}

func (s *favoriteStore) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Favorite{}
	// newest first
	for i := len(s.list) - 1; i >= 0; i-- {
		if s.list[i].UserID == userID {
			out = append(out, s.list[i])
		}
	}
	return out, nil
}

func (s *favoriteStore) Exists(ctx context.Context, userID, vehicleID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.list {
		if f.UserID == userID && f.VehicleID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *favoriteStore) Count(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, f := range s.list {
		if f.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// quotes

type quoteStore struct {
	mu   sync.RWMutex
	now  func() time.Time
	byID map[string]*domain.Quote
	// insertion order, for stable newest-first listings
	order []string
}

func (s *quoteStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = map[string]*domain.Quote{}
	s.order = nil
}

func (s *quoteStore) Create(ctx context.Context, q *domain.Quote) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *q
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, ok := s.byID[stored.ID]; ok {
		return nil, storage.AlreadyExists("quote", stored.ID)
	}
	stored.Servizi = append([]string(nil), q.Servizi...)
	s.byID[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	out := stored
	return &out, nil
}

func (s *quoteStore) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.byID[id]
	if !ok {
		return nil, storage.NotFound("quote", id)
	}
	out := *q
	return &out, nil
}

func (s *quoteStore) ListByUser(ctx context.Context, userID string) ([]domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Quote{}
	for i := len(s.order) - 1; i >= 0; i-- {
		q := s.byID[s.order[i]]
		if q.UserID != nil && *q.UserID == userID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *quoteStore) Update(ctx context.Context, id string, upd domain.QuoteUpdate) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.byID[id]
	if !ok {
		return nil, storage.NotFound("quote", id)
	}
	if upd.Status != nil {
		q.Status = *upd.Status
	}
	if upd.UserID != nil {
		owner := *upd.UserID
		q.UserID = &owner
	}
	q.UpdatedAt = s.now()
	out := *q
	return &out, nil
}

func (s *quoteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return storage.NotFound("quote", id)
	}
	delete(s.byID, id)
	for i, qid := range s.order {
		if qid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// leads

type leadStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	byID  map[string]*domain.Lead
	byKey map[string]string
	order []string
}

func (s *leadStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = map[string]*domain.Lead{}
	s.byKey = map[string]string{}
	s.order = nil
}

// Create checks the idempotency key and inserts under the same lock
func (s *leadStore) Create(ctx context.Context, l *domain.Lead) (*domain.Lead, error) {
	if l.IdempotencyKey == "" {
		return nil, storage.Validation("idempotency key is required", "idempotency_key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[l.IdempotencyKey]; ok {
		out := *s.byID[id]
		return &out, nil
	}

	stored := *l
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if _, ok := s.byID[stored.ID]; ok {
		return nil, storage.AlreadyExists("lead", stored.ID)
	}
	s.byID[stored.ID] = &stored
	s.byKey[stored.IdempotencyKey] = stored.ID
	s.order = append(s.order, stored.ID)
	out := stored
	return &out, nil
}

func (s *leadStore) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.byID[id]
	if !ok {
		return nil, storage.NotFound("lead", id)
	}
	out := *l
	return &out, nil
}

func (s *leadStore) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, storage.NotFound("lead", key)
	}
	out := *s.byID[id]
	return &out, nil
}

func (s *leadStore) ListByUser(ctx context.Context, userID string) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Lead{}
	for i := len(s.order) - 1; i >= 0; i-- {
		l := s.byID[s.order[i]]
		if l.UserID != nil && *l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *leadStore) List(ctx context.Context) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Lead, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.byID[s.order[i]])
	}
	return out, nil
}

func (s *leadStore) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, notes string) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byID[id]
	if !ok {
		return nil, storage.NotFound("lead", id)
	}
	l.ApplyStatus(status, notes, s.now())
	out := *l
	return &out, nil
}

func sortStrings(list []string) {
	sort.Slice(list, func(i, j int) bool { return strings.ToLower(list[i]) < strings.ToLower(list[j]) })
}
