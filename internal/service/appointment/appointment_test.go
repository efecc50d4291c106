package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/booking"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/ledger"
	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/internal/store/memstore"
)

var (
	sundayNoon = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	monday9    = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	thursday15 = time.Date(2025, 3, 6, 15, 0, 0, 0, time.UTC)
)

type cancelNotifier struct{ sent chan uuid.UUID }

func (n *cancelNotifier) SendCancellation(_ context.Context, _ model.User, a model.Appointment) error {
	n.sent <- a.ID
	return nil
}

type fixture struct {
	svc    Service
	ms     *memstore.Store
	slots  slot.Service
	now    *time.Time
	client Actor
	other  Actor
	admin  Actor
	notes  *cancelNotifier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWith(t, booking.Options{})
}

// setupWith builds the fixture with extra validator options; Now is always
// the fixture clock.
func setupWith(t *testing.T, opts booking.Options) *fixture {
	t.Helper()
	ms := memstore.New()
	l := ledger.New(ms, time.UTC, 15*time.Minute)
	cfg := bookingconfig.New(ms, bookingconfig.Options{})
	slots := slot.New(ms, l, cfg)

	now := sundayNoon
	clock := func() time.Time { return now }
	opts.Now = clock
	v := booking.New(l, slots, cfg, opts)
	notes := &cancelNotifier{sent: make(chan uuid.UUID, 4)}

	f := &fixture{
		svc:   New(ms, l, v, Options{Now: clock, Notifier: notes}),
		ms:    ms,
		slots: slots,
		now:   &now,
		notes: notes,
	}
	f.client = f.user(t, "alice", false)
	f.other = f.user(t, "bob", false)
	f.admin = f.user(t, "root", true)

	for _, at := range []time.Time{monday9, monday9.Add(15 * time.Minute), thursday15} {
		_, _, err := slots.Create(context.Background(), at, true)
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) user(t *testing.T, name string, admin bool) Actor {
	t.Helper()
	u := &model.User{ID: uuid.New(), Username: name, Email: name + "@x", Mobile: "+" + name, IsAdmin: admin}
	require.NoError(t, f.ms.CreateUser(context.Background(), u))
	return Actor{UserID: u.ID, IsAdmin: admin}
}

func (f *fixture) book(t *testing.T, actor Actor, at time.Time) *model.Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), actor, BookRequest{Date: at})
	require.NoError(t, err)
	return a
}

func TestBook_UsesStoredUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	until := sundayNoon.Add(48 * time.Hour)
	_, err := f.ms.SetUserBlockedUntil(ctx, f.client.UserID, &until)
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, f.client, BookRequest{Date: monday9})
	assert.ErrorIs(t, err, booking.ErrBlockedAccount)

	_, err = f.svc.Book(ctx, Actor{UserID: uuid.New()}, BookRequest{Date: monday9})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGet_OwnerOrAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, f.client, monday9)

	_, err := f.svc.Get(ctx, f.client, a.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, f.admin, a.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, f.other, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, f.client, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.book(t, f.client, monday9)
	f.book(t, f.other, thursday15)

	own, err := f.svc.List(ctx, f.client, ListRequest{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.client.UserID, own[0].UserID)

	// clients cannot widen their view
	own, err = f.svc.List(ctx, f.client, ListRequest{UserID: &f.other.UserID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.client.UserID, own[0].UserID)

	week, err := f.svc.List(ctx, f.admin, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, week, 2)

	from := monday9
	to := monday9.Add(time.Hour)
	ranged, err := f.svc.List(ctx, f.admin, ListRequest{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	_, err = f.svc.List(ctx, f.admin, ListRequest{From: &to, To: &from})
	assert.ErrorIs(t, err, ErrInvalidRange)

	byUser, err := f.svc.List(ctx, f.admin, ListRequest{UserID: &f.other.UserID})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.True(t, byUser[0].Date.Equal(thursday15))
}

func TestCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, f.client, monday9)

	_, err := f.svc.Cancel(ctx, f.other, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Cancel(ctx, f.client, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)

	select {
	case id := <-f.notes.sent:
		assert.Equal(t, a.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation not sent")
	}

	_, err = f.svc.Cancel(ctx, f.client, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// the freed week and slot can be booked again
	f.book(t, f.other, monday9)
}

func TestComplete_AdminOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, f.client, monday9)

	_, err := f.svc.Complete(ctx, f.client, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Complete(ctx, f.admin, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)

	_, err = f.svc.Cancel(ctx, f.admin, a.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdate_StatusTransitions(t *testing.T) {
	tests := []struct {
		name  string
		actor func(*fixture) Actor
		to    model.AppointmentStatus
		want  error
	}{
		{"owner cancels", func(f *fixture) Actor { return f.client }, model.StatusCancelled, nil},
		{"owner completes", func(f *fixture) Actor { return f.client }, model.StatusCompleted, ErrForbidden},
		{"admin completes", func(f *fixture) Actor { return f.admin }, model.StatusCompleted, nil},
		{"unknown status", func(f *fixture) Actor { return f.admin }, "pending", ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			a := f.book(t, f.client, monday9)
			to := tt.to
			got, err := f.svc.Update(context.Background(), tt.actor(f), a.ID, UpdateRequest{Status: &to})
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}
}

func TestUpdate_Reschedule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, f.client, monday9)
	b := f.book(t, f.other, monday9.Add(15*time.Minute))

	_, err := f.svc.Update(ctx, f.client, a.ID, UpdateRequest{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	// moving within the same week does not trip the weekly limit
	moved := thursday15
	got, err := f.svc.Update(ctx, f.client, a.ID, UpdateRequest{Date: &moved})
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(moved))
	assert.Equal(t, moved.Add(15*time.Minute), got.End)

	// onto another booking
	taken := monday9.Add(15 * time.Minute)
	_, err = f.svc.Update(ctx, f.client, a.ID, UpdateRequest{Date: &taken})
	assert.ErrorIs(t, err, booking.ErrSlotAlreadyBooked)

	// off the grid
	odd := monday9.Add(5 * time.Minute)
	_, err = f.svc.Update(ctx, f.other, b.ID, UpdateRequest{Date: &odd})
	assert.ErrorIs(t, err, booking.ErrInvalidTimeSlot)

	// terminal appointments stay where they are
	_, err = f.svc.Cancel(ctx, f.other, b.ID)
	require.NoError(t, err)
	back := monday9
	_, err = f.svc.Update(ctx, f.other, b.ID, UpdateRequest{Date: &back})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, f.client, monday9)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, a.ID), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.client, a.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin, a.ID), ErrNotFound)
}

func TestCompletePast_CutoffAndIdempotence(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	mon := f.book(t, f.client, monday9)
	thu := f.book(t, f.other, thursday15)

	status := func(id uuid.UUID) model.AppointmentStatus {
		a, err := f.svc.Get(ctx, f.admin, id)
		require.NoError(t, err)
		return a.Status
	}

	// Monday 18:59: the day has not passed the completion hour yet
	*f.now = time.Date(2025, 3, 3, 18, 59, 0, 0, time.UTC)
	n, err := f.svc.CompletePast(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, model.StatusConfirmed, status(mon.ID))

	// Monday 19:00
	*f.now = time.Date(2025, 3, 3, 19, 0, 0, 0, time.UTC)
	n, err = f.svc.CompletePast(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, model.StatusCompleted, status(mon.ID))
	assert.Equal(t, model.StatusConfirmed, status(thu.ID))

	n, err = f.svc.CompletePast(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second sweep must change nothing")
	assert.Equal(t, model.StatusCompleted, status(mon.ID))

	// Friday morning: Thursday is over
	*f.now = time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC)
	n, err = f.svc.CompletePast(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, model.StatusCompleted, status(thu.ID))
}

func TestCompletePast_SkipsCancelled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.book(t, f.client, monday9)
	_, err := f.svc.Cancel(ctx, f.client, a.ID)
	require.NoError(t, err)

	*f.now = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	n, err := f.svc.CompletePast(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := f.svc.Get(ctx, f.client, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

func TestUpdate_AdminRescheduleIgnoresWindow(t *testing.T) {
	f := setupWith(t, booking.Options{EnforceWindow: true})
	ctx := context.Background()

	// booked while the Sunday window is open
	a := f.book(t, f.client, monday9)

	*f.now = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	moved := thursday15

	_, err := f.svc.Update(ctx, f.client, a.ID, UpdateRequest{Date: &moved})
	var closed *booking.WindowClosedError
	require.ErrorAs(t, err, &closed)

	got, err := f.svc.Update(ctx, f.admin, a.ID, UpdateRequest{Date: &moved})
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(moved))
	assert.Equal(t, f.client.UserID, got.UserID)
}
