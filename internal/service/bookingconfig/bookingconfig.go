// Package bookingconfig is the runtime-editable booking configuration: the
// slot grid, disabled weekdays and the weekly booking window. Values are
// stored as strings; absent keys fall back to built-in defaults.
package bookingconfig

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Entry is one key with its effective value.
type Entry struct {
	Key         string     `json:"key"`
	Value       string     `json:"value"`
	Default     string     `json:"default"`
	Description string     `json:"description"`
	IsDefault   bool       `json:"is_default"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Options struct {
	Cache    Cache
	SlotStep time.Duration
	Logger   *slog.Logger
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Get(ctx context.Context, key, def string) (string, error)
	Set(ctx context.Context, key, value string) (*model.Setting, error)
	All(ctx context.Context) ([]Entry, error)

	DisabledDays(ctx context.Context) (map[time.Weekday]struct{}, error)
	SlotGrid(ctx context.Context) (Grid, error)
	BookingWindow(ctx context.Context) (Window, error)
	// Rules parses every setting from a single snapshot.
	Rules(ctx context.Context) (Rules, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type configService struct {
	settings store.SettingStore
	cache    Cache
	step     time.Duration
	log      *slog.Logger
}

func New(settings store.SettingStore, opts Options) Service {
	s := &configService{
		settings: settings,
		cache:    opts.Cache,
		step:     opts.SlotStep,
		log:      opts.Logger,
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	if s.step <= 0 {
		s.step = 15 * time.Minute
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// snapshot returns stored values, served from cache when possible. A cache
// failure degrades to a direct read.
func (s *configService) snapshot(ctx context.Context) (map[string]string, error) {
	vals, ok, err := s.cache.Load(ctx)
	if err != nil {
		s.log.Warn("booking config cache read failed", "error", err)
	}
	if ok {
		return vals, nil
	}

	rows, err := s.settings.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	vals = lo.SliceToMap(rows, func(st model.Setting) (string, string) { return st.Key, st.Value })

	if err := s.cache.Save(ctx, vals); err != nil {
		s.log.Warn("booking config cache write failed", "error", err)
	}
	return vals, nil
}

func (s *configService) Get(ctx context.Context, key, def string) (string, error) {
	vals, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if v, ok := vals[key]; ok {
		return v, nil
	}
	return def, nil
}

// Set validates and persists a value, then drops the cached snapshot.
func (s *configService) Set(ctx context.Context, key, value string) (*model.Setting, error) {
	def, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)
	if err := validate(def, value); err != nil {
		return nil, err
	}

	st, err := s.settings.UpsertSetting(ctx, model.Setting{Key: key, Value: value, Description: def.Description})
	if err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("booking config cache invalidate failed", "key", key, "error", err)
	}
	return st, nil
}

func (s *configService) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.settings.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	stored := lo.KeyBy(rows, func(st model.Setting) string { return st.Key })

	return lo.Map(Definitions, func(d Definition, _ int) Entry {
		e := Entry{Key: d.Key, Value: d.Default, Default: d.Default, Description: d.Description, IsDefault: true}
		if st, ok := stored[d.Key]; ok {
			updated := st.UpdatedAt
			e.Value, e.IsDefault, e.UpdatedAt = st.Value, false, &updated
			if st.Description != "" {
				e.Description = st.Description
			}
		}
		return e
	}), nil
}

func (s *configService) DisabledDays(ctx context.Context) (map[time.Weekday]struct{}, error) {
	r, err := s.Rules(ctx)
	return r.DisabledDays, err
}

func (s *configService) SlotGrid(ctx context.Context) (Grid, error) {
	r, err := s.Rules(ctx)
	return r.Grid, err
}

func (s *configService) BookingWindow(ctx context.Context) (Window, error) {
	r, err := s.Rules(ctx)
	return r.Window, err
}

func (s *configService) Rules(ctx context.Context) (Rules, error) {
	vals, err := s.snapshot(ctx)
	if err != nil {
		return Rules{}, err
	}
	p := parser{vals: vals, log: s.log}

	return Rules{
		DisabledDays: p.weekdays(KeyDisabledDays),
		Grid: Grid{
			MorningStart:   p.num(KeyMorningStart),
			MorningEnd:     p.num(KeyMorningEnd),
			AfternoonStart: p.num(KeyAfternoonStart),
			AfternoonEnd:   p.num(KeyAfternoonEnd),
			Step:           s.step,
		},
		Window: Window{
			Day:       time.Weekday(p.num(KeyWindowDay)),
			StartHour: p.num(KeyWindowStartHour),
			EndHour:   p.num(KeyWindowEndHour),
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

type parser struct {
	vals map[string]string
	log  *slog.Logger
}

func (p parser) raw(key string) string {
	if v, ok := p.vals[key]; ok {
		return v
	}
	d, _ := Lookup(key)
	return d.Default
}

// num parses key, falling back to the default when the stored value is
// malformed or out of range.
func (p parser) num(key string) int {
	d, _ := Lookup(key)
	v := p.raw(key)
	if n, err := parseInt(d.kind, v); err == nil {
		return n
	}
	p.log.Warn("malformed booking config value, using default", "key", key, "value", v, "default", d.Default)
	n, _ := strconv.Atoi(d.Default)
	return n
}

// weekdays parses a comma list, skipping malformed entries.
func (p parser) weekdays(key string) map[time.Weekday]struct{} {
	out := map[time.Weekday]struct{}{}
	for _, part := range splitList(p.raw(key)) {
		n, err := parseInt(kindWeekday, part)
		if err != nil {
			p.log.Warn("skipping malformed weekday", "key", key, "entry", part)
			continue
		}
		out[time.Weekday(n)] = struct{}{}
	}
	return out
}

func splitList(v string) []string {
	return lo.Compact(lo.Map(strings.Split(v, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

func parseInt(kind valueKind, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	switch kind {
	case kindWeekday:
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday out of range: %d", n)
		}
	case kindHour:
		// end hours may be 24 for a block running to midnight
		if n < 0 || n > 24 {
			return 0, fmt.Errorf("hour out of range: %d", n)
		}
	}
	return n, nil
}

func validate(d Definition, value string) error {
	if d.kind == kindWeekdayList {
		for _, part := range splitList(value) {
			if _, err := parseInt(kindWeekday, part); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidValue, d.Key, err)
			}
		}
		return nil
	}
	if _, err := parseInt(d.kind, value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, d.Key, err)
	}
	return nil
}
