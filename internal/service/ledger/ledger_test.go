package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/internal/store/memstore"
)

func setup(t *testing.T) (*Ledger, *memstore.Store, uuid.UUID) {
	t.Helper()
	ms := memstore.New()
	u := &model.User{ID: uuid.New(), Username: "u", Email: "u@x", Mobile: "+1"}
	require.NoError(t, ms.CreateUser(context.Background(), u))
	return New(ms, time.UTC, 15*time.Minute), ms, u.ID
}

func TestCreate_ForcesServerFields(t *testing.T) {
	l, _, uid := setup(t)
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	a, err := l.Create(context.Background(), uid, start)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.Equal(t, start.Add(15*time.Minute), a.End)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), a.WeekStart)
}

func TestUpdate_RecomputesEndAndWeek(t *testing.T) {
	l, _, uid := setup(t)
	ctx := context.Background()
	a, err := l.Create(ctx, uid, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	moved := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	bogusEnd := moved.Add(3 * time.Hour)
	got, err := l.Update(ctx, a.ID, model.AppointmentPatch{Date: &moved, End: &bogusEnd})
	require.NoError(t, err)
	assert.Equal(t, moved.Add(15*time.Minute), got.End)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), got.WeekStart)

	bad := model.AppointmentStatus("pending")
	_, err = l.Update(ctx, a.ID, model.AppointmentPatch{Status: &bad})
	assert.Error(t, err)
}

func TestByDateRange_HalfOpen(t *testing.T) {
	l, _, uid := setup(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	_, err := l.Create(ctx, uid, at)
	require.NoError(t, err)

	got, err := l.ByDateRange(ctx, at, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = l.ByDateRange(ctx, at.Add(-time.Hour), at)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = l.ByDateRange(ctx, at, at)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestActiveInWeek(t *testing.T) {
	l, _, uid := setup(t)
	ctx := context.Background()
	mon := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	a, err := l.Create(ctx, uid, mon)
	require.NoError(t, err)

	sat := time.Date(2025, 3, 8, 23, 0, 0, 0, time.UTC)
	nextSun := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	busy, err := l.ActiveInWeek(ctx, uid, sat, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = l.ActiveInWeek(ctx, uid, nextSun, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, busy)

	busy, err = l.ActiveInWeek(ctx, uid, sat, a.ID)
	require.NoError(t, err)
	assert.False(t, busy, "excluded appointment must not count")

	cancelled := model.StatusCancelled
	_, err = l.Update(ctx, a.ID, model.AppointmentPatch{Status: &cancelled})
	require.NoError(t, err)
	busy, err = l.ActiveInWeek(ctx, uid, sat, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestCompleteBefore_Idempotent(t *testing.T) {
	l, ms, uid := setup(t)
	ctx := context.Background()
	_, err := l.Create(ctx, uid, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	cutoff := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	n, err := l.CompleteBefore(ctx, cutoff, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	first, _ := ms.ListAppointmentsByUser(ctx, uid)
	n, err = l.CompleteBefore(ctx, cutoff, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
	second, _ := ms.ListAppointmentsByUser(ctx, uid)
	assert.Equal(t, first, second)
}

func TestDelete_NotFound(t *testing.T) {
	l, _, _ := setup(t)
	assert.ErrorIs(t, l.Delete(context.Background(), uuid.New()), store.ErrNotFound)
}

func TestCreateExempt_SkipsWeeklyBackstop(t *testing.T) {
	l, _, uid := setup(t)
	ctx := context.Background()
	mon := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	_, err := l.Create(ctx, uid, mon)
	require.NoError(t, err)
	_, err = l.Create(ctx, uid, mon.Add(time.Hour))
	assert.ErrorIs(t, err, store.ErrWeekTaken)

	ex, err := l.CreateExempt(ctx, uid, mon.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ex.WeekStart.IsZero())

	// moving an exempt booking keeps it exempt
	moved := mon.Add(2 * time.Hour)
	got, err := l.Update(ctx, ex.ID, model.AppointmentPatch{Date: &moved})
	require.NoError(t, err)
	assert.True(t, got.WeekStart.IsZero())
	assert.Equal(t, moved.Add(15*time.Minute), got.End)

	active, err := l.ActiveInWeek(ctx, uid, mon, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, active)
}
