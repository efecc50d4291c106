package slot

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/ledger"
	"github.com/Alijeyrad/jyotish_backend/internal/store/memstore"
)

type fixture struct {
	svc    Service
	ms     *memstore.Store
	ledger *ledger.Ledger
	userID uuid.UUID
}

func setup(t *testing.T) fixture {
	t.Helper()
	ms := memstore.New()
	u := &model.User{ID: uuid.New(), Username: "u", Email: "u@x", Mobile: "+1"}
	require.NoError(t, ms.CreateUser(context.Background(), u))

	l := ledger.New(ms, time.UTC, 15*time.Minute)
	cfg := bookingconfig.New(ms, bookingconfig.Options{})
	return fixture{svc: New(ms, l, cfg), ms: ms, ledger: l, userID: u.ID}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		enabled, booked bool
		want            Status
	}{
		{true, false, StatusAvailable},
		{true, true, StatusBooked},
		{false, false, StatusDisabled},
		{false, true, StatusDisabled},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveStatus(tt.enabled, tt.booked), "enabled=%v booked=%v", tt.enabled, tt.booked)
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 9, 15, 0, 0, time.UTC)

	sl, created, err := f.svc.Create(ctx, at, true)
	require.NoError(t, err)
	assert.True(t, created)

	views, err := f.svc.ListForDate(ctx, at)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, sl.ID, views[0].ID)
	assert.True(t, views[0].Date.Equal(at))
	assert.Equal(t, StatusAvailable, views[0].Status)
}

func TestCreate_InsertOrIgnore(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	first, created, err := f.svc.Create(ctx, at, true)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.svc.Create(ctx, at, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsEnabled, "existing slot must be returned unchanged")
}

func TestListForDate_DerivesStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	free := day.Add(9 * time.Hour)
	taken := day.Add(9*time.Hour + 15*time.Minute)
	off := day.Add(9*time.Hour + 30*time.Minute)
	cancelled := day.Add(9*time.Hour + 45*time.Minute)

	for _, at := range []time.Time{free, taken, cancelled} {
		_, _, err := f.svc.Create(ctx, at, true)
		require.NoError(t, err)
	}
	_, _, err := f.svc.Create(ctx, off, false)
	require.NoError(t, err)
	// next day must not leak into the listing
	_, _, err = f.svc.Create(ctx, day.AddDate(0, 0, 1).Add(9*time.Hour), true)
	require.NoError(t, err)

	_, err = f.ledger.Create(ctx, f.userID, taken)
	require.NoError(t, err)

	other := &model.User{ID: uuid.New(), Username: "o", Email: "o@x", Mobile: "+2"}
	require.NoError(t, f.ms.CreateUser(ctx, other))
	a, err := f.ledger.Create(ctx, other.ID, cancelled)
	require.NoError(t, err)
	st := model.StatusCancelled
	_, err = f.ledger.Update(ctx, a.ID, model.AppointmentPatch{Status: &st})
	require.NoError(t, err)

	views, err := f.svc.ListForDate(ctx, day.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, views, 4)

	want := []Status{StatusAvailable, StatusBooked, StatusDisabled, StatusAvailable}
	for i, v := range views {
		assert.Equal(t, want[i], v.Status, "slot %s", v.Date.Format(time.Kitchen))
		assert.Equal(t, want[i] == StatusBooked, v.IsBooked)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	sl, _, err := f.svc.Create(ctx, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), true)
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, sl.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsEnabled)

	require.NoError(t, f.svc.Delete(ctx, sl.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, sl.ID), ErrNotFound)

	_, err = f.svc.Update(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnabledAt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	ok, err := f.svc.EnabledAt(ctx, at)
	require.NoError(t, err)
	assert.False(t, ok)

	sl, _, err := f.svc.Create(ctx, at, true)
	require.NoError(t, err)
	ok, err = f.svc.EnabledAt(ctx, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.EnabledAt(ctx, at.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok, "only the exact instant counts")

	_, err = f.svc.Update(ctx, sl.ID, false)
	require.NoError(t, err)
	ok, err = f.svc.EnabledAt(ctx, at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	// Sunday; the default config disables Tuesday and Saturday
	from := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)

	res, err := f.svc.Generate(ctx, from, 7)
	require.NoError(t, err)
	// five open days, 16 morning + 8 afternoon instants each
	assert.Equal(t, 120, res.Created)
	assert.Equal(t, 0, res.Skipped)

	tuesday, err := f.svc.ListForDate(ctx, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, tuesday)

	again, err := f.svc.Generate(ctx, from, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 120, again.Skipped)
}

func TestGenerate_RangeLimits(t *testing.T) {
	f := setup(t)
	for _, days := range []int{0, -1, 63} {
		_, err := f.svc.Generate(context.Background(), time.Now(), days)
		assert.ErrorIs(t, err, ErrInvalidRange, "days=%d", days)
	}
}
