package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
)

func scanSetting(row pgx.Row) (*model.Setting, error) {
	st := &model.Setting{}
	if err := row.Scan(&st.Key, &st.Value, &st.Description, &st.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return st, nil
}

func (s *Postgres) GetSetting(ctx context.Context, key string) (*model.Setting, error) {
	return scanSetting(s.pool.QueryRow(ctx,
		`SELECT key, value, description, updated_at FROM booking_configurations WHERE key = $1`, key))
}

func (s *Postgres) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value, description, updated_at FROM booking_configurations ORDER BY key`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Setting, error) {
		st, err := scanSetting(row)
		if err != nil {
			return model.Setting{}, err
		}
		return *st, nil
	})
}

// UpsertSetting writes value and description and stamps updated_at. An empty
// description keeps the stored one.
func (s *Postgres) UpsertSetting(ctx context.Context, st model.Setting) (*model.Setting, error) {
	return scanSetting(s.pool.QueryRow(ctx,
		`INSERT INTO booking_configurations (key, value, description, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (key) DO UPDATE SET
		     value = EXCLUDED.value,
		     description = COALESCE(NULLIF(EXCLUDED.description, ''), booking_configurations.description),
		     updated_at = NOW()
		 RETURNING key, value, description, updated_at`,
		st.Key, st.Value, st.Description))
}
