// Package storagetest holds behaviour checks every storage backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
)

// Factory returns a fresh, seeded backend whose clock is driven by now
type Factory func(t *testing.T, now func() time.Time) storage.Provider

// Clock is a settable test clock
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// NewLead builds a valid lead ready for LeadStore.Create
func NewLead(key string, at time.Time) *domain.Lead {
	return &domain.Lead{
		ID:              uuid.NewString(),
		IdempotencyKey:  key,
		Nome:            "Mario",
		Cognome:         "Rossi",
		Email:           "mario.rossi@example.it",
		Telefono:        "+393331234567",
		Messaggio:       "first",
		PrivacyAccepted: true,
		FunnelStep:      domain.StepContactForm,
		Source:          domain.SourceDirect,
		Status:          domain.LeadNew,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

// Run executes the whole suite against the backend built by factory
func Run(t *testing.T, factory Factory) {
	t.Run("Vehicles", func(t *testing.T) { testVehicles(t, factory) })
	t.Run("Users", func(t *testing.T) { testUsers(t, factory) })
	t.Run("Favorites", func(t *testing.T) { testFavorites(t, factory) })
	t.Run("Quotes", func(t *testing.T) { testQuotes(t, factory) })
	t.Run("Leads", func(t *testing.T) { testLeads(t, factory) })
	t.Run("LeadIdempotencyUnderConcurrency", func(t *testing.T) { testLeadConcurrency(t, factory) })
	t.Run("Clear", func(t *testing.T) { testClear(t, factory) })
}

func testVehicles(t *testing.T, factory Factory) {
	ctx := context.Background()
	p := factory(t, time.Now)
	require.NoError(t, p.Ready(ctx))

	all, err := p.Vehicles().GetAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	byID, err := p.Vehicles().GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Slug, byID.Slug)
	assert.Equal(t, all[0].KmAnno, byID.KmAnno)

	bySlug, err := p.Vehicles().GetBySlug(ctx, all[0].Slug)
	require.NoError(t, err)
	assert.Equal(t, all[0].ID, bySlug.ID)

	_, err = p.Vehicles().GetByID(ctx, "missing")
	assert.True(t, storage.IsNotFound(err))

	featured, err := p.Vehicles().GetFeatured(ctx, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(featured), 2)
	for _, v := range featured {
		assert.True(t, v.InEvidenza)
	}

	res, err := p.Vehicles().Search(ctx, domain.VehicleSearchParams{
		Filters: domain.VehicleFilters{Fuel: []domain.FuelType{domain.FuelDiesel}},
		Sort:    domain.SortCanoneAsc,
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.LessOrEqual(t, len(res.Vehicles), 2)
	for i, v := range res.Vehicles {
		assert.Equal(t, domain.FuelDiesel, v.Fuel)
		if i > 0 {
			assert.LessOrEqual(t, res.Vehicles[i-1].CanoneBase, v.CanoneBase)
		}
	}

	brands, err := p.Vehicles().Brands(ctx)
	require.NoError(t, err)
	assert.Contains(t, brands, all[0].Marca)

	cats, err := p.Vehicles().Categories(ctx)
	require.NoError(t, err)
	assert.Contains(t, cats, all[0].Categoria)
}

func testUsers(t *testing.T, factory Factory) {
	ctx := context.Background()
	p := factory(t, time.Now)
	users := p.Users()

	u, err := users.Create(ctx, domain.CreateUserData{Email: "Anna@Example.it", Password: "secret123", Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.it", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	_, err = users.Create(ctx, domain.CreateUserData{Email: "anna@example.it", Password: "other"})
	assert.True(t, storage.IsCode(err, storage.CodeAlreadyExists))

	got, err := users.GetByEmail(ctx, "ANNA@example.it")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	phone := "+393330000000"
	updated, err := users.Update(ctx, u.ID, domain.UserUpdate{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Anna", updated.Name)

	authed, err := users.Authenticate(ctx, "anna@example.it", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, authed.ID)

	_, err = users.Authenticate(ctx, "anna@example.it", "wrong")
	assert.True(t, storage.IsCode(err, storage.CodeUnauthorized))
	_, err = users.Authenticate(ctx, "nobody@example.it", "secret123")
	assert.True(t, storage.IsCode(err, storage.CodeUnauthorized))

	_, err = users.GetByID(ctx, "missing")
	assert.True(t, storage.IsNotFound(err))
}

func testFavorites(t *testing.T, factory Factory) {
	ctx := context.Background()
	p := factory(t, time.Now)
	favs := p.Favorites()

	first, err := favs.Add(ctx, "user-1", "veh-1")
	require.NoError(t, err)
	again, err := favs.Add(ctx, "user-1", "veh-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = favs.Add(ctx, "user-1", "veh-2")
	require.NoError(t, err)
	_, err = favs.Add(ctx, "user-2", "veh-1")
	require.NoError(t, err)

	n, err := favs.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := favs.Exists(ctx, "user-1", "veh-2")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, favs.Remove(ctx, "user-1", "veh-2"))
	ok, err = favs.Exists(ctx, "user-1", "veh-2")
	require.NoError(t, err)
	assert.False(t, ok)

	err = favs.Remove(ctx, "user-1", "veh-2")
	assert.True(t, storage.IsNotFound(err))

	list, err := favs.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "veh-1", list[0].VehicleID)
}

func testQuotes(t *testing.T, factory Factory) {
	ctx := context.Background()
	clock := NewClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	p := factory(t, clock.Now)
	quotes := p.Quotes()

	owner := "user-1"
	q := &domain.Quote{
		ID:        uuid.NewString(),
		UserID:    &owner,
		VehicleID: "veh-vw-golf",
		Vehicle:   domain.QuoteVehicle{ID: "veh-vw-golf", Marca: "Volkswagen", Modello: "Golf"},
		Params:    domain.QuoteParams{Durata: 36, KmAnno: 15000, Manutenzione: true, Assicurazione: true},
		Servizi:   []string{"gps"},
		Pricing:   domain.QuotePricing{CanoneBase: 297, ServiziExtra: 70, Subtotale: 367, Iva: 81, Totale: 448, TotalePeriodo: 16128},
		Status:    domain.QuoteDraft,
		CreatedAt: clock.Now(),
		UpdatedAt: clock.Now(),
	}
	q.ValidUntil = q.CreatedAt.Add(30 * 24 * time.Hour)

	created, err := quotes.Create(ctx, q)
	require.NoError(t, err)

	got, err := quotes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Pricing, got.Pricing)
	assert.Equal(t, q.Params, got.Params)
	assert.Equal(t, []string{"gps"}, got.Servizi)
	assert.Equal(t, "Golf", got.Vehicle.Modello)

	clock.Advance(time.Hour)
	sent := domain.QuoteSent
	updated, err := quotes.Update(ctx, created.ID, domain.QuoteUpdate{Status: &sent})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteSent, updated.Status)
	assert.Equal(t, q.Pricing, updated.Pricing)
	assert.True(t, updated.UpdatedAt.After(q.UpdatedAt))

	mine, err := quotes.ListByUser(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, quotes.Delete(ctx, created.ID))
	_, err = quotes.GetByID(ctx, created.ID)
	assert.True(t, storage.IsNotFound(err))
	assert.True(t, storage.IsNotFound(quotes.Delete(ctx, created.ID)))
}

func testLeads(t *testing.T, factory Factory) {
	ctx := context.Background()
	clock := NewClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	p := factory(t, clock.Now)
	leads := p.Leads()

	first := NewLead("key-1", clock.Now())
	created, err := leads.Create(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, created.ID)

	dup := NewLead("key-1", clock.Now())
	dup.Messaggio = "second"
	existing, err := leads.Create(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)
	assert.Equal(t, "first", existing.Messaggio)

	clock.Advance(time.Minute)
	owner := "user-9"
	second := NewLead("key-2", clock.Now())
	second.UserID = &owner
	_, err = leads.Create(ctx, second)
	require.NoError(t, err)

	byKey, err := leads.GetByIdempotencyKey(ctx, "key-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byKey.ID)

	_, err = leads.GetByIdempotencyKey(ctx, "key-404")
	assert.True(t, storage.IsNotFound(err))

	all, err := leads.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	mine, err := leads.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	clock.Advance(time.Hour)
	won, err := leads.UpdateStatus(ctx, first.ID, domain.LeadWon, "signed")
	require.NoError(t, err)
	assert.Equal(t, domain.LeadWon, won.Status)
	assert.Equal(t, "signed", won.Notes)
	require.NotNil(t, won.ConvertedAt)
	convertedAt := *won.ConvertedAt

	clock.Advance(time.Hour)
	lost, err := leads.UpdateStatus(ctx, first.ID, domain.LeadLost, "")
	require.NoError(t, err)
	assert.Equal(t, "signed", lost.Notes)
	require.NotNil(t, lost.ConvertedAt)
	assert.True(t, convertedAt.Equal(*lost.ConvertedAt))

	_, err = leads.UpdateStatus(ctx, "missing", domain.LeadContacted, "")
	assert.True(t, storage.IsNotFound(err))
}

func testLeadConcurrency(t *testing.T, factory Factory) {
	ctx := context.Background()
	p := factory(t, time.Now)

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := NewLead("same-key", time.Now())
			l.Messaggio = fmt.Sprintf("attempt %d", i)
			got, err := p.Leads().Create(ctx, l)
			errs[i] = err
			if got != nil {
				ids[i] = got.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	all, err := p.Leads().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testClear(t *testing.T, factory Factory) {
	ctx := context.Background()
	p := factory(t, time.Now)

	_, err := p.Leads().Create(ctx, NewLead("k", time.Now()))
	require.NoError(t, err)
	_, err = p.Favorites().Add(ctx, "u", "v")
	require.NoError(t, err)

	require.NoError(t, p.Clear(ctx))

	all, err := p.Leads().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	n, err := p.Favorites().Count(ctx, "u")
	require.NoError(t, err)
	assert.Zero(t, n)

	vehicles, err := p.Vehicles().GetAll(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, vehicles)
}
