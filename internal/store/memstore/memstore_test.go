package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
)

func seedUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New(), Username: name, Email: name + "@x", Mobile: "+91" + name}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestUserUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := seedUser(t, s, "a")
	b := seedUser(t, s, "b")

	dup := &model.User{ID: uuid.New(), Username: "c", Email: a.Email, Mobile: "+91c"}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), store.ErrEmailTaken)

	taken := a.Mobile
	_, err := s.UpdateUser(ctx, b.ID, model.UserPatch{Mobile: &taken})
	assert.ErrorIs(t, err, store.ErrMobileTaken)

	got, err := s.GetUserByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "+91b", got.Mobile, "failed update must not persist")
}

func TestDeleteUserCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s, "a")
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertAppointment(ctx, &model.Appointment{ID: uuid.New(), UserID: u.ID, Date: at, Status: model.StatusConfirmed}))

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	list, _ := s.ListAppointmentsByUser(ctx, u.ID)
	assert.Empty(t, list)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestConcurrentInsertSameInstant(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	const n = 8
	users := make([]*model.User, n)
	for i := range users {
		users[i] = seedUser(t, s, uuid.NewString())
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, taken := 0, 0
	for _, u := range users {
		wg.Add(1)
		go func(u *model.User) {
			defer wg.Done()
			err := s.InsertAppointment(ctx, &model.Appointment{
				ID: uuid.New(), UserID: u.ID, Date: at, Status: model.StatusConfirmed, WeekStart: at,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, store.ErrDateTaken) {
				taken++
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, taken)
}

func TestSlotInsertOrIgnore(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	first, created, err := s.InsertSlot(ctx, at, true)
	require.NoError(t, err)
	assert.True(t, created)

	// same instant expressed in another zone
	ist := time.FixedZone("IST", 5*3600+1800)
	again, created, err := s.InsertSlot(ctx, at.In(ist), false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsEnabled)
}

func TestListUsersPaging(t *testing.T) {
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.Now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		seedUser(t, s, string(rune('a'+i)))
	}

	page, err := s.ListUsers(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Username)
	assert.Equal(t, "c", page[1].Username)

	empty, err := s.ListUsers(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
