package store

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
)

// testStore connects to JYOTISH_TEST_DATABASE_URL, migrates, and truncates
// every table. Tests skip when the variable is unset.
func testStore(t *testing.T) *Postgres {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("JYOTISH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("JYOTISH_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `TRUNCATE appointments, available_slots, booking_configurations, users CASCADE`)
	require.NoError(t, err)

	return New(pool)
}

func newUser(t *testing.T, s *Postgres, username string) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		Mobile:       "+9198" + uuid.NewString()[:8],
		PasswordHash: "x",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newAppointment(userID uuid.UUID, at time.Time) *model.Appointment {
	return &model.Appointment{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		Date:      at,
		End:       at.Add(15 * time.Minute),
		Status:    model.StatusConfirmed,
		WeekStart: at.Truncate(24 * time.Hour),
	}
}

func TestMapError(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_active_date_uniq"})
	assert.ErrorIs(t, err, ErrDateTaken)

	err = mapError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.True(t, IsConflict(err))

	other := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(other), mapError(other))
	assert.False(t, IsConflict(other))
}

func TestMigrationFilesSorted(t *testing.T) {
	names, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_init.sql", names[0])
}

func TestPostgres_UserUniqueness(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := newUser(t, s, "asha")

	dup := *u
	dup.ID = uuid.Must(uuid.NewV7())
	dup.Email = "other@example.com"
	dup.Mobile = "+919800000001"
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), ErrUsernameTaken)

	name := "Asha R"
	got, err := s.UpdateUser(ctx, u.ID, model.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)

	_, err = s.GetUserByID(ctx, uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_SlotInsertOrIgnore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	first, created, err := s.InsertSlot(ctx, at, true)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := s.InsertSlot(ctx, at, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsEnabled, "existing row must be left unchanged")
}

// Two concurrent inserts for the same instant: the partial unique index lets
// exactly one through.
func TestPostgres_ConcurrentSameInstant(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	a := newUser(t, s, "a")
	b := newUser(t, s, "b")
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, u := range []*model.User{a, b} {
		wg.Add(1)
		go func(i int, u *model.User) {
			defer wg.Done()
			errs[i] = s.InsertAppointment(ctx, newAppointment(u.ID, at))
		}(i, u)
	}
	wg.Wait()

	ok, taken := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDateTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, taken)
}

func TestPostgres_WeekBackstopIgnoresCancelled(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := newUser(t, s, "w")
	mon := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	first := newAppointment(u.ID, mon)
	require.NoError(t, s.InsertAppointment(ctx, first))

	second := newAppointment(u.ID, mon.Add(time.Hour))
	second.WeekStart = first.WeekStart
	assert.ErrorIs(t, s.InsertAppointment(ctx, second), ErrWeekTaken)

	cancelled := model.StatusCancelled
	_, err := s.UpdateAppointment(ctx, first.ID, model.AppointmentPatch{Status: &cancelled})
	require.NoError(t, err)
	assert.NoError(t, s.InsertAppointment(ctx, second))
}

func TestPostgres_CompleteAppointmentsBefore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := newUser(t, s, "c")
	v := newUser(t, s, "d")

	past := newAppointment(u.ID, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	future := newAppointment(v.ID, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, s.InsertAppointment(ctx, past))
	require.NoError(t, s.InsertAppointment(ctx, future))

	cutoff := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	n, err := s.CompleteAppointmentsBefore(ctx, cutoff, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.CompleteAppointmentsBefore(ctx, cutoff, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := s.GetAppointment(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}

func TestPostgres_UpsertSettingKeepsDescription(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.UpsertSetting(ctx, model.Setting{Key: "disabled_days", Value: "2,6", Description: "weekdays"})
	require.NoError(t, err)

	got, err := s.UpsertSetting(ctx, model.Setting{Key: "disabled_days", Value: "0"})
	require.NoError(t, err)
	assert.Equal(t, "0", got.Value)
	assert.Equal(t, "weekdays", got.Description)
}
