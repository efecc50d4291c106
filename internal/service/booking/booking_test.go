package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/ledger"
	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/internal/store/memstore"
)

var (
	// Sunday 2 March 2025, noon; inside the default booking window.
	sundayNoon = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)
	monday9    = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	tuesday9   = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	wed10      = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
)

type chanNotifier struct {
	sent chan model.Appointment
	err  error
}

func (n *chanNotifier) SendConfirmation(_ context.Context, _ model.User, a model.Appointment) error {
	n.sent <- a
	return n.err
}

type env struct {
	ms     *memstore.Store
	slots  slot.Service
	ledger *ledger.Ledger
	config bookingconfig.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ms := memstore.New()
	l := ledger.New(ms, time.UTC, 15*time.Minute)
	cfg := bookingconfig.New(ms, bookingconfig.Options{})
	return &env{ms: ms, slots: slot.New(ms, l, cfg), ledger: l, config: cfg}
}

func (e *env) validator(opts Options) Service {
	if opts.Now == nil {
		opts.Now = func() time.Time { return sundayNoon }
	}
	return New(e.ledger, e.slots, e.config, opts)
}

func (e *env) user(t *testing.T, name string, admin bool) model.User {
	t.Helper()
	u := model.User{ID: uuid.New(), Username: name, Email: name + "@x", Mobile: "+" + name, IsAdmin: admin}
	require.NoError(t, e.ms.CreateUser(context.Background(), &u))
	return u
}

func (e *env) slot(t *testing.T, at time.Time, enabled bool) {
	t.Helper()
	_, _, err := e.slots.Create(context.Background(), at, enabled)
	require.NoError(t, err)
}

func TestBook_ConfirmsOnGridSlot(t *testing.T) {
	e := newEnv(t)
	e.slot(t, monday9, true)
	u := e.user(t, "alice", false)
	n := &chanNotifier{sent: make(chan model.Appointment, 1)}

	clientEnd := monday9.Add(time.Hour)
	a, err := e.validator(Options{Notifier: n}).Book(context.Background(), Request{User: u, Start: monday9, End: &clientEnd})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.Equal(t, monday9.Add(15*time.Minute), a.End)
	assert.Equal(t, u.ID, a.UserID)

	select {
	case got := <-n.sent:
		assert.Equal(t, a.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation not sent")
	}
}

func TestBook_OnePerWeek(t *testing.T) {
	e := newEnv(t)
	e.slot(t, monday9, true)
	e.slot(t, wed10, true)
	u := e.user(t, "alice", false)
	v := e.validator(Options{})

	_, err := v.Book(context.Background(), Request{User: u, Start: monday9})
	require.NoError(t, err)

	_, err = v.Book(context.Background(), Request{User: u, Start: wed10})
	assert.ErrorIs(t, err, ErrWeeklyLimitExceeded)

	// next week is a new week
	next := monday9.AddDate(0, 0, 7)
	e.slot(t, next, true)
	_, err = v.Book(context.Background(), Request{User: u, Start: next})
	assert.NoError(t, err)
}

func TestBook_WeeklyLimitIgnoresCancelled(t *testing.T) {
	e := newEnv(t)
	e.slot(t, monday9, true)
	e.slot(t, wed10, true)
	u := e.user(t, "alice", false)
	v := e.validator(Options{})

	a, err := v.Book(context.Background(), Request{User: u, Start: monday9})
	require.NoError(t, err)
	st := model.StatusCancelled
	_, err = e.ledger.Update(context.Background(), a.ID, model.AppointmentPatch{Status: &st})
	require.NoError(t, err)

	_, err = v.Book(context.Background(), Request{User: u, Start: wed10})
	assert.NoError(t, err)
}

func TestBook_DisabledDayRejected(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		e := newEnv(t)
		e.slot(t, tuesday9, enabled)
		u := e.user(t, "alice", false)

		_, err := e.validator(Options{}).Book(context.Background(), Request{User: u, Start: tuesday9})
		assert.ErrorIs(t, err, ErrDayUnavailable, "slot enabled=%v", enabled)
	}
}

func TestBook_OffGridRejected(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
	}{
		{"off the quarter hour", monday9.Add(5 * time.Minute)},
		{"before morning block", monday9.Add(-time.Hour)},
		{"lunch gap", monday9.Add(4 * time.Hour)},
		{"after afternoon block", monday9.Add(8 * time.Hour)},
		{"seconds set", monday9.Add(30 * time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			u := e.user(t, "alice", false)
			_, err := e.validator(Options{}).Book(context.Background(), Request{User: u, Start: tt.at})
			assert.ErrorIs(t, err, ErrInvalidTimeSlot)
		})
	}
}

func TestBook_BlockedUserRejected(t *testing.T) {
	e := newEnv(t)
	e.slot(t, monday9, true)
	until := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	u := e.user(t, "alice", false)
	u.BlockedUntil = &until

	_, err := e.validator(Options{}).Book(context.Background(), Request{User: u, Start: monday9})
	require.ErrorIs(t, err, ErrBlockedAccount)

	var blocked *BlockedError
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, until, blocked.Until)
	assert.Contains(t, err.Error(), "2025-04-01")

	// an expired block no longer applies
	past := sundayNoon.Add(-time.Minute)
	u.BlockedUntil = &past
	_, err = e.validator(Options{}).Book(context.Background(), Request{User: u, Start: monday9})
	assert.NoError(t, err)
}

func TestBook_BlockedBeforeOtherRules(t *testing.T) {
	e := newEnv(t)
	until := sundayNoon.Add(time.Hour)
	u := e.user(t, "alice", false)
	u.BlockedUntil = &until

	// Tuesday, off-grid, no slot: the block still wins
	_, err := e.validator(Options{}).Book(context.Background(), Request{User: u, Start: tuesday9.Add(7 * time.Minute)})
	assert.ErrorIs(t, err, ErrBlockedAccount)
}

func TestBook_ConcurrentSameInstantOneWins(t *testing.T) {
	e := newEnv(t)
	e.slot(t, monday9, true)
	v := e.validator(Options{})

	const n = 8
	users := make([]model.User, n)
	for i := range users {
		users[i] = e.user(t, "user"+string(rune('a'+i)), false)
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, n)
	)
	start := make(chan struct{})
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = v.Book(context.Background(), Request{User: users[i], Start: monday9})
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
	}
	assert.Equal(t, 1, ok)
}

func TestBook_SlotUnavailable(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "alice", false)
	v := e.validator(Options{})

	_, err := v.Book(context.Background(), Request{User: u, Start: monday9})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	e.slot(t, monday9, false)
	_, err = v.Book(context.Background(), Request{User: u, Start: monday9})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBook_AdminBypass(t *testing.T) {
	tests := []struct {
		name   string
		bypass bool
		admin  bool
		want   error
	}{
		{"flag off, admin", false, true, ErrDayUnavailable},
		{"flag on, admin", true, true, nil},
		{"flag on, client", true, false, ErrDayUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.slot(t, tuesday9, true)
			u := e.user(t, "root", tt.admin)

			_, err := e.validator(Options{AdminBypass: tt.bypass}).Book(context.Background(), Request{User: u, Start: tuesday9})
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestBook_AdminBypassKeepsSlotAndConflictChecks(t *testing.T) {
	e := newEnv(t)
	admin := e.user(t, "root", true)
	v := e.validator(Options{AdminBypass: true})

	// off-grid and without a slot
	_, err := v.Book(context.Background(), Request{User: admin, Start: tuesday9.Add(7 * time.Minute)})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	e.slot(t, monday9, true)
	client := e.user(t, "alice", false)
	_, err = v.Book(context.Background(), Request{User: client, Start: monday9})
	require.NoError(t, err)

	_, err = v.Book(context.Background(), Request{User: admin, Start: monday9})
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)

	// two bookings in one week are fine for the admin
	e.slot(t, wed10, true)
	e.slot(t, wed10.Add(15*time.Minute), true)
	_, err = v.Book(context.Background(), Request{User: admin, Start: wed10})
	require.NoError(t, err)
	_, err = v.Book(context.Background(), Request{User: admin, Start: wed10.Add(15 * time.Minute)})
	assert.NoError(t, err)

	// with the flag off the same admin is held to the weekly limit
	e.slot(t, wed10.Add(30*time.Minute), true)
	_, err = e.validator(Options{}).Book(context.Background(), Request{User: admin, Start: wed10.Add(30 * time.Minute)})
	assert.ErrorIs(t, err, ErrWeeklyLimitExceeded)
}

func TestBook_EnforceWindow(t *testing.T) {
	monNoon := func() time.Time { return time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC) }
	nextMonday := monday9.AddDate(0, 0, 7)

	e := newEnv(t)
	e.slot(t, nextMonday, true)
	client := e.user(t, "alice", false)
	admin := e.user(t, "root", true)

	_, err := e.validator(Options{EnforceWindow: true, Now: monNoon}).Book(context.Background(), Request{User: client, Start: nextMonday})
	require.ErrorIs(t, err, ErrWindowClosed)
	var closed *WindowClosedError
	require.True(t, errors.As(err, &closed))
	assert.Equal(t, time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC), closed.Opens)

	// the flag off leaves the window advisory
	require.NoError(t, e.validator(Options{Now: monNoon}).Check(context.Background(), Request{User: client, Start: nextMonday}))

	// an admin acting for the client lifts the window only
	require.NoError(t, e.validator(Options{EnforceWindow: true, Now: monNoon}).Check(context.Background(),
		Request{User: client, Start: nextMonday, ActorIsAdmin: true}))

	// admins are never held to the window
	_, err = e.validator(Options{EnforceWindow: true, Now: monNoon}).Book(context.Background(), Request{User: admin, Start: nextMonday})
	assert.NoError(t, err)
}

func TestCheck_ExcludeAllowsReschedule(t *testing.T) {
	e := newEnv(t)
	e.slot(t, monday9, true)
	e.slot(t, wed10, true)
	u := e.user(t, "alice", false)
	v := e.validator(Options{})

	a, err := v.Book(context.Background(), Request{User: u, Start: monday9})
	require.NoError(t, err)

	assert.ErrorIs(t, v.Check(context.Background(), Request{User: u, Start: wed10}), ErrWeeklyLimitExceeded)
	assert.NoError(t, v.Check(context.Background(), Request{User: u, Start: wed10, ExcludeID: a.ID}))
	assert.NoError(t, v.Check(context.Background(), Request{User: u, Start: monday9, ExcludeID: a.ID}))
}

func TestBook_NotifierFailureDoesNotFailBooking(t *testing.T) {
	e := newEnv(t)
	e.slot(t, monday9, true)
	u := e.user(t, "alice", false)
	n := &chanNotifier{sent: make(chan model.Appointment, 1), err: errors.New("smtp down")}

	_, err := e.validator(Options{Notifier: n}).Book(context.Background(), Request{User: u, Start: monday9})
	require.NoError(t, err)
	select {
	case <-n.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier not called")
	}
}

func TestFromStoreError(t *testing.T) {
	assert.ErrorIs(t, FromStoreError(store.ErrDateTaken), ErrSlotAlreadyBooked)
	assert.ErrorIs(t, FromStoreError(store.ErrWeekTaken), ErrWeeklyLimitExceeded)
	other := errors.New("boom")
	assert.Equal(t, other, FromStoreError(other))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "accepted", Reason(nil))
	assert.Equal(t, "blocked", Reason(&BlockedError{Until: sundayNoon}))
	assert.Equal(t, "window_closed", Reason(&WindowClosedError{}))
	assert.Equal(t, "already_booked", Reason(ErrSlotAlreadyBooked))
	assert.Equal(t, "error", Reason(errors.New("db")))
}
