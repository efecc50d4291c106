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

const userColumns = `id, name, username, email, mobile, address, password_hash,
	is_admin, blocked_until, email_opt_out, sms_opt_out, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Mobile, &u.Address, &u.PasswordHash,
		&u.IsAdmin, &u.BlockedUntil, &u.EmailOptOut, &u.SMSOptOut, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, username, email, mobile, address, password_hash, is_admin, blocked_until,
		                    email_opt_out, sms_opt_out)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Username, u.Email, u.Mobile, u.Address, u.PasswordHash, u.IsAdmin, u.BlockedUntil,
		u.EmailOptOut, u.SMSOptOut,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapError(err)
}

func (s *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *Postgres) GetUserByMobile(ctx context.Context, mobile string) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE mobile = $1`, mobile))
}

func (s *Postgres) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.User, error) {
		u, err := scanUser(row)
		if err != nil {
			return model.User{}, err
		}
		return *u, nil
	})
}

func (s *Postgres) UpdateUser(ctx context.Context, id uuid.UUID, p model.UserPatch) (*model.User, error) {
	if p.IsEmpty() {
		return s.GetUserByID(ctx, id)
	}

	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Username != nil {
		add("username", *p.Username)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Mobile != nil {
		add("mobile", *p.Mobile)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.EmailOptOut != nil {
		add("email_opt_out", *p.EmailOptOut)
	}
	if p.SMSOptOut != nil {
		add("sms_opt_out", *p.SMSOptOut)
	}
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE users SET %s, updated_at = NOW() WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args))
	return scanUser(s.pool.QueryRow(ctx, q, args...))
}

func (s *Postgres) SetUserPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return s.execOne(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (s *Postgres) SetUserBlockedUntil(ctx context.Context, id uuid.UUID, until *time.Time) (*model.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`UPDATE users SET blocked_until = $2, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns,
		id, until))
}

func (s *Postgres) SetUserAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	return s.execOne(ctx, `UPDATE users SET is_admin = $2, updated_at = NOW() WHERE id = $1`, id, admin)
}

func (s *Postgres) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, `DELETE FROM users WHERE id = $1`, id)
}

// execOne runs a statement that must touch exactly one row.
func (s *Postgres) execOne(ctx context.Context, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
