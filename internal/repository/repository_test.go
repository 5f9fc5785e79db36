package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rentfunnel/internal/database"
	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
	"rentfunnel/internal/storage/storagetest"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:repo_test_%s?mode=memory&cache=shared", name)
	db, err := database.Connect(dsn, database.Options{MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func setupTestProvider(t *testing.T, now func() time.Time) *Provider {
	t.Helper()
	p, err := New(context.Background(), setupTestDB(t), WithClock(now))
	require.NoError(t, err)
	return p
}

func TestProvider(t *testing.T) {
	storagetest.Run(t, func(t *testing.T, now func() time.Time) storage.Provider {
		return setupTestProvider(t, now)
	})
}

func TestProvider_SeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p1, err := New(ctx, db)
	require.NoError(t, err)
	first, err := p1.Vehicles().GetAll(ctx)
	require.NoError(t, err)

	p2, err := New(ctx, db)
	require.NoError(t, err)
	second, err := p2.Vehicles().GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, len(first), len(second))
	assert.Equal(t, "sql:sqlite", p2.Name())
}

func TestVehicleRepository_JSONColumnsRoundTrip(t *testing.T) {
	p := setupTestProvider(t, time.Now)
	ctx := context.Background()

	v, err := p.Vehicles().GetBySlug(ctx, "jeep-compass-4xe-limited")
	require.NoError(t, err)
	assert.Equal(t, []int{10000, 15000, 20000}, v.KmAnno)
	require.NotNil(t, v.Promo)
	assert.True(t, v.Promo.Active)
	assert.NotEmpty(t, v.FirstImage())
}

func TestLeadRepository_ConflictReturnsExisting(t *testing.T) {
	p := setupTestProvider(t, time.Now)
	ctx := context.Background()

	first := storagetest.NewLead("dup", time.Now())
	_, err := p.Leads().Create(ctx, first)
	require.NoError(t, err)

	second := storagetest.NewLead("dup", time.Now())
	second.Messaggio = "second"
	got, err := p.Leads().Create(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "first", got.Messaggio)

	_, err = p.Leads().GetByID(ctx, second.ID)
	assert.True(t, storage.IsNotFound(err))
}

func TestLeadRepository_SourceRoundTrip(t *testing.T) {
	p := setupTestProvider(t, time.Now)
	ctx := context.Background()

	campaign := "spring_sale"
	l := storagetest.NewLead("k-src", time.Now())
	l.Source = domain.SourceFacebookAds
	l.UTMCampaign = &campaign

	_, err := p.Leads().Create(ctx, l)
	require.NoError(t, err)

	got, err := p.Leads().GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFacebookAds, got.Source)
	require.NotNil(t, got.UTMCampaign)
	assert.Equal(t, campaign, *got.UTMCampaign)
	assert.Nil(t, got.UTMMedium)
}

func TestSessionStore(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, Migrate(db))
	s := NewSessionStore(db)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", []byte(`{"version":1}`)))
	require.NoError(t, s.Set(ctx, "k", []byte(`{"version":2}`)))

	val, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"version":2}`, string(val))

	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
