package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Alijeyrad/jyotish_backend/internal/model"
)

const appointmentColumns = `id, user_id, date, end_time, status, week_start, created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	a := &model.Appointment{}
	var week *time.Time
	err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.End, &a.Status, &week, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if week != nil {
		a.WeekStart = *week
	}
	return a, nil
}

// nullWeek stores a zero week start as NULL, which the weekly index skips.
func nullWeek(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func collectAppointments(rows pgx.Rows, err error) ([]model.Appointment, error) {
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Appointment, error) {
		a, err := scanAppointment(row)
		if err != nil {
			return model.Appointment{}, err
		}
		return *a, nil
	})
}

func (s *Postgres) InsertAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, user_id, date, end_time, status, week_start)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.Date, a.End, a.Status, nullWeek(a.WeekStart),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapError(err)
}

func (s *Postgres) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
}

func (s *Postgres) ListAppointmentsByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	return collectAppointments(s.pool.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE user_id = $1 ORDER BY date DESC`, userID))
}

func (s *Postgres) ListAppointmentsBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error) {
	return collectAppointments(s.pool.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		 WHERE date >= $1 AND date < $2 ORDER BY date`, start, end))
}

func (s *Postgres) ListAppointmentsAt(ctx context.Context, instant time.Time) ([]model.Appointment, error) {
	return collectAppointments(s.pool.Query(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE date = $1 ORDER BY created_at`, instant))
}

func (s *Postgres) UpdateAppointment(ctx context.Context, id uuid.UUID, p model.AppointmentPatch) (*model.Appointment, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.Date != nil {
		add("date", *p.Date)
	}
	if p.End != nil {
		add("end_time", *p.End)
	}
	if p.WeekStart != nil {
		add("week_start", nullWeek(*p.WeekStart))
	}
	if len(sets) == 0 {
		return s.GetAppointment(ctx, id)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE appointments SET %s, updated_at = NOW() WHERE id = $%d RETURNING `+appointmentColumns,
		strings.Join(sets, ", "), len(args))
	return scanAppointment(s.pool.QueryRow(ctx, q, args...))
}

func (s *Postgres) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, `DELETE FROM appointments WHERE id = $1`, id)
}

func (s *Postgres) CompleteAppointmentsBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status = 'completed', updated_at = $2
		 WHERE status = 'confirmed' AND date < $1`, cutoff, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
