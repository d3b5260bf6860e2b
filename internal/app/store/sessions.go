package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sessions provides query access to the sessions table.
type Sessions struct {
	pool *pgxpool.Pool
}

// NewSessions constructs a Sessions store over the given connection pool.
func NewSessions(pool *pgxpool.Pool) *Sessions {
	return &Sessions{pool: pool}
}

// Create records a newly issued login token. Multiple live sessions per user
// are allowed; every login inserts a fresh row.
func (s *Sessions) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1::uuid, $2, $3)`,
		userID, token, expiresAt)
	return err
}

// ValidateSession reports whether the token belongs to a live, unexpired session.
func (s *Sessions) ValidateSession(ctx context.Context, token string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE token = $1 AND expires_at > now()
		)`, token).Scan(&ok)
	return ok, err
}

// DeleteByToken revokes a single session (logout). Missing tokens are not an error.
func (s *Sessions) DeleteByToken(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpired sweeps sessions whose expiry has passed and returns the count removed.
func (s *Sessions) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
