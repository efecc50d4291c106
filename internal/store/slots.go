package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
)

const slotColumns = `id, date, is_enabled, created_at`

func scanSlot(row pgx.Row) (*model.Slot, error) {
	sl := &model.Slot{}
	if err := row.Scan(&sl.ID, &sl.Date, &sl.IsEnabled, &sl.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return sl, nil
}

func (s *Postgres) InsertSlot(ctx context.Context, date time.Time, enabled bool) (*model.Slot, bool, error) {
	sl, err := scanSlot(s.pool.QueryRow(ctx,
		`INSERT INTO available_slots (id, date, is_enabled) VALUES ($1, $2, $3)
		 ON CONFLICT (date) DO NOTHING
		 RETURNING `+slotColumns,
		uuid.Must(uuid.NewV7()), date, enabled))
	if err == nil {
		return sl, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	// conflict: hand back the row that won
	sl, err = scanSlot(s.pool.QueryRow(ctx,
		`SELECT `+slotColumns+` FROM available_slots WHERE date = $1`, date))
	if err != nil {
		return nil, false, err
	}
	return sl, false, nil
}

func (s *Postgres) GetSlot(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	return scanSlot(s.pool.QueryRow(ctx, `SELECT `+slotColumns+` FROM available_slots WHERE id = $1`, id))
}

func (s *Postgres) ListSlotsBetween(ctx context.Context, start, end time.Time) ([]model.Slot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+slotColumns+` FROM available_slots WHERE date >= $1 AND date < $2 ORDER BY date`, start, end)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Slot, error) {
		sl, err := scanSlot(row)
		if err != nil {
			return model.Slot{}, err
		}
		return *sl, nil
	})
}

func (s *Postgres) SetSlotEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*model.Slot, error) {
	return scanSlot(s.pool.QueryRow(ctx,
		`UPDATE available_slots SET is_enabled = $2 WHERE id = $1 RETURNING `+slotColumns, id, enabled))
}

func (s *Postgres) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, `DELETE FROM available_slots WHERE id = $1`, id)
}
