package token

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	createSessionTable = `CREATE TABLE IF NOT EXISTS storefront_session (
		sid TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		expires_at TIMESTAMPTZ
	)`
	getSessionQuery    = `SELECT token FROM storefront_session WHERE sid = $1 AND (expires_at IS NULL OR expires_at > $2)`
	upsertSessionQuery = `INSERT INTO storefront_session (sid, token, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (sid) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`
	deleteSessionQuery = `DELETE FROM storefront_session WHERE sid = $1`
	purgeSessionsQuery = `DELETE FROM storefront_session WHERE expires_at IS NOT NULL AND expires_at <= $1`
)

// PostgresRepository implements SessionRepository on a `storefront_session` table.
type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// EnsureSchema creates the session table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createSessionTable)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, sid string) (string, error) {
	var tok string
	if err := r.db.QueryRowContext(ctx, getSessionQuery, sid, r.now().UTC()).Scan(&tok); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return tok, nil
}

func (r *PostgresRepository) Put(ctx context.Context, sid, token string, ttl time.Duration) error {
	var expires sql.NullTime
	if ttl > 0 {
		expires = sql.NullTime{Time: r.now().UTC().Add(ttl), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, upsertSessionQuery, sid, token, expires)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, sid string) error {
	res, err := r.db.ExecContext(ctx, deleteSessionQuery, sid)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Purge removes expired sessions and reports how many were deleted.
func (r *PostgresRepository) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, purgeSessionsQuery, r.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
