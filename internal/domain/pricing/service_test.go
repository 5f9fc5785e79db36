package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/storage"
	"rentfunnel/internal/storage/memory"
)

var testNow = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*QuoteService, *time.Time) {
	t.Helper()
	now := testNow
	clock := func() time.Time { return now }
	p := memory.New(memory.WithClock(clock))
	svc := NewQuoteService(p.Vehicles(), p.Quotes(), 30*24*time.Hour).WithClock(clock)
	return svc, &now
}

func golfInput(userID *string) Input {
	return Input{
		VehicleID: "veh-vw-golf",
		Params:    domain.QuoteParams{Durata: 36, KmAnno: 15000, Manutenzione: true, Assicurazione: true},
		UserID:    userID,
	}
}

func strPtr(s string) *string { return &s }

func TestQuoteService_Calculate(t *testing.T) {
	svc, _ := setupService(t)

	q, err := svc.Calculate(context.Background(), golfInput(nil))
	require.NoError(t, err)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, "veh-vw-golf", q.VehicleID)
	assert.Equal(t, "Volkswagen", q.Vehicle.Marca)
	assert.Equal(t, int64(429), q.Pricing.Totale)
	assert.Equal(t, domain.QuoteDraft, q.Status)
	assert.Equal(t, testNow.Add(30*24*time.Hour), q.ValidUntil)
	assert.Nil(t, q.UserID)
}

func TestQuoteService_Calculate_Validation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	in := golfInput(nil)
	in.Params.Durata = 0
	_, err := svc.Calculate(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	in = golfInput(nil)
	in.Params.Anticipo = 101
	_, err = svc.Calculate(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidDownPayment)

	in = golfInput(nil)
	in.Params.Anticipo = -1
	_, err = svc.Calculate(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidDownPayment)
}

func TestQuoteService_Calculate_UnknownVehicle(t *testing.T) {
	svc, _ := setupService(t)

	in := golfInput(nil)
	in.VehicleID = "veh-missing"
	_, err := svc.Calculate(context.Background(), in)
	assert.True(t, storage.IsNotFound(err))
}

func TestQuoteService_Calculate_MileageNotOffered(t *testing.T) {
	svc, _ := setupService(t)

	in := golfInput(nil)
	in.VehicleID = "veh-honda-sh125"
	in.Params.KmAnno = 30000
	q, err := svc.Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, Calculate(89, in.Params, nil), q.Pricing)
}

func TestQuoteService_SaveAndGet(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, golfInput(strPtr("user-1")))
	require.NoError(t, err)

	got, err := svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Pricing, got.Pricing)
	assert.Equal(t, "user-1", *got.UserID)

	mine, err := svc.ListMine(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := svc.ListMine(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestQuoteService_Get_ReportsExpired(t *testing.T) {
	svc, now := setupService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, golfInput(nil))
	require.NoError(t, err)

	*now = now.Add(31 * 24 * time.Hour)
	got, err := svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteExpired, got.Status)
}

func TestQuoteService_UpdateStatus(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, golfInput(strPtr("user-1")))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, saved.ID, "user-2", domain.QuoteAccepted)
	assert.ErrorIs(t, err, ErrQuoteNotOwned)

	_, err = svc.UpdateStatus(ctx, saved.ID, "user-1", "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	q, err := svc.UpdateStatus(ctx, saved.ID, "user-1", domain.QuoteAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteAccepted, q.Status)
	assert.Equal(t, saved.Pricing, q.Pricing)
}

func TestQuoteService_Claim(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, golfInput(nil))
	require.NoError(t, err)

	q, err := svc.Claim(ctx, saved.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", *q.UserID)

	_, err = svc.Claim(ctx, saved.ID, "user-1")
	assert.NoError(t, err)

	_, err = svc.Claim(ctx, saved.ID, "user-2")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestQuoteService_Delete(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, golfInput(strPtr("user-1")))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, saved.ID, "user-2"), ErrQuoteNotOwned)
	require.NoError(t, svc.Delete(ctx, saved.ID, "user-1"))

	_, err = svc.Get(ctx, saved.ID)
	assert.True(t, storage.IsNotFound(err))
}
