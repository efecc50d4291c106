package bookingconfig

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/store/memstore"
)

// countingStore counts ListSettings calls to observe cache hits.
type countingStore struct {
	*memstore.Store
	lists int
}

func (c *countingStore) ListSettings(ctx context.Context) ([]model.Setting, error) {
	c.lists++
	return c.Store.ListSettings(ctx)
}

type mapCache struct {
	vals        map[string]string
	invalidated int
}

func (m *mapCache) Load(context.Context) (map[string]string, bool, error) {
	if m.vals == nil {
		return nil, false, nil
	}
	return m.vals, true, nil
}

func (m *mapCache) Save(_ context.Context, v map[string]string) error {
	m.vals = v
	return nil
}

func (m *mapCache) Invalidate(context.Context) error {
	m.vals = nil
	m.invalidated++
	return nil
}

func TestRules_Defaults(t *testing.T) {
	svc := New(memstore.New(), Options{})
	r, err := svc.Rules(context.Background())
	require.NoError(t, err)

	assert.True(t, r.IsDisabled(time.Tuesday))
	assert.True(t, r.IsDisabled(time.Saturday))
	assert.False(t, r.IsDisabled(time.Monday))
	assert.Equal(t, Grid{9, 13, 15, 17, 15 * time.Minute}, r.Grid)
	assert.Equal(t, Window{Day: time.Sunday, StartHour: 10, EndHour: 22}, r.Window)
}

func TestGet_FallsBackToCallerDefault(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New(), Options{})

	v, err := svc.Get(ctx, "not_stored", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	_, err = svc.Set(ctx, KeyMorningStart, "8")
	require.NoError(t, err)
	v, err = svc.Get(ctx, KeyMorningStart, "9")
	require.NoError(t, err)
	assert.Equal(t, "8", v)
}

func TestSet_Validation(t *testing.T) {
	svc := New(memstore.New(), Options{})
	ctx := context.Background()

	tests := []struct {
		key, value string
		wantErr    error
	}{
		{"nope", "1", ErrUnknownKey},
		{KeyMorningStart, "nine", ErrInvalidValue},
		{KeyMorningEnd, "25", ErrInvalidValue},
		{KeyWindowDay, "7", ErrInvalidValue},
		{KeyDisabledDays, "1,x", ErrInvalidValue},
		{KeyDisabledDays, "", nil},
		{KeyDisabledDays, " 0 , 3 ", nil},
		{KeyAfternoonEnd, "24", nil},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			_, err := svc.Set(ctx, tt.key, tt.value)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRules_MalformedStoredValues(t *testing.T) {
	ms := memstore.New()
	ctx := context.Background()
	// written behind the service's back, e.g. by hand in psql
	_, _ = ms.UpsertSetting(ctx, model.Setting{Key: KeyMorningStart, Value: "abc"})
	_, _ = ms.UpsertSetting(ctx, model.Setting{Key: KeyDisabledDays, Value: "1, foo, 9, 3"})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := New(ms, Options{Logger: logger})

	r, err := svc.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, r.Grid.MorningStart)
	assert.Equal(t, map[time.Weekday]struct{}{time.Monday: {}, time.Wednesday: {}}, r.DisabledDays)
	assert.True(t, strings.Contains(buf.String(), "malformed booking config value"))
	assert.True(t, strings.Contains(buf.String(), "skipping malformed weekday"))
}

func TestCache_HitAndInvalidate(t *testing.T) {
	cs := &countingStore{Store: memstore.New()}
	cache := &mapCache{}
	svc := New(cs, Options{Cache: cache})
	ctx := context.Background()

	_, err := svc.Rules(ctx)
	require.NoError(t, err)
	_, err = svc.Rules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cs.lists, "second read must be served from cache")

	_, err = svc.Set(ctx, KeyDisabledDays, "0")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	days, err := svc.DisabledDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[time.Weekday]struct{}{time.Sunday: {}}, days)
	assert.Equal(t, 2, cs.lists)
}

func TestAll_MergesDefaults(t *testing.T) {
	svc := New(memstore.New(), Options{})
	ctx := context.Background()
	_, err := svc.Set(ctx, KeyWindowDay, "1")
	require.NoError(t, err)

	entries, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(Definitions))

	for _, e := range entries {
		if e.Key == KeyWindowDay {
			assert.Equal(t, "1", e.Value)
			assert.False(t, e.IsDefault)
			assert.NotNil(t, e.UpdatedAt)
		} else {
			assert.True(t, e.IsDefault, e.Key)
		}
	}
}

func TestGrid_Contains(t *testing.T) {
	g := Grid{9, 13, 15, 17, 15 * time.Minute}
	day := func(h, m, s int) time.Time { return time.Date(2025, 3, 3, h, m, s, 0, time.UTC) }

	tests := []struct {
		at   time.Time
		want bool
	}{
		{day(9, 0, 0), true},
		{day(12, 45, 0), true},
		{day(13, 0, 0), false},
		{day(14, 0, 0), false},
		{day(15, 30, 0), true},
		{day(16, 45, 0), true},
		{day(17, 0, 0), false},
		{day(8, 45, 0), false},
		{day(9, 5, 0), false},
		{day(9, 0, 30), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.Contains(tt.at), tt.at.Format("15:04:05"))
	}
}

func TestGrid_Instants(t *testing.T) {
	g := Grid{9, 13, 15, 17, 15 * time.Minute}
	got := g.Instants(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), time.UTC)
	// 4h morning + 2h afternoon, 4 per hour
	require.Len(t, got, 24)
	assert.Equal(t, "09:00", got[0].Format("15:04"))
	assert.Equal(t, "16:45", got[len(got)-1].Format("15:04"))
	for _, at := range got {
		assert.True(t, g.Contains(at))
	}
}

func TestWindow(t *testing.T) {
	w := Window{Day: time.Sunday, StartHour: 10, EndHour: 22}
	loc := time.UTC
	sun := func(h int) time.Time { return time.Date(2025, 3, 2, h, 0, 0, 0, loc) }

	assert.False(t, w.IsOpen(sun(9)))
	assert.True(t, w.IsOpen(sun(10)))
	assert.True(t, w.IsOpen(sun(21)))
	assert.False(t, w.IsOpen(sun(22)))

	assert.Equal(t, sun(10), w.NextOpening(sun(9), loc))
	assert.Equal(t, sun(15), w.NextOpening(sun(15), loc))
	// after close on Sunday: next Sunday
	assert.Equal(t, time.Date(2025, 3, 9, 10, 0, 0, 0, loc), w.NextOpening(sun(23), loc))
	// midweek
	wed := time.Date(2025, 3, 5, 12, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 3, 9, 10, 0, 0, 0, loc), w.NextOpening(wed, loc))
}
