package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Users provides query access to the users table.
type Users struct {
	pool *pgxpool.Pool
}

// NewUsers constructs a Users store over the given connection pool.
func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

const userColumns = `id::text, email, name, COALESCE(password_hash, ''), COALESCE(google_id, ''), picture, is_online, last_seen, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.GoogleID, &u.Picture, &u.IsOnline, &u.LastSeen, &u.CreatedAt)
	return u, err
}

// Create inserts a password-based account and returns the stored row.
func (s *Users) Create(ctx context.Context, email, name, passwordHash string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, is_online)
		VALUES ($1, $2, $3, TRUE)
		RETURNING `+userColumns,
		email, name, passwordHash)

	return scanUser(row)
}

// UpsertGoogle creates or updates an account from a verified Google identity.
// An existing row with the same email is claimed by attaching the Google ID,
// mirroring how a password account upgrades to OAuth sign-in.
func (s *Users) UpsertGoogle(ctx context.Context, googleID, email, name, picture string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, google_id, picture, is_online)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET google_id = EXCLUDED.google_id,
		    name      = EXCLUDED.name,
		    picture   = EXCLUDED.picture,
		    is_online = TRUE
		RETURNING `+userColumns,
		email, name, googleID, picture)

	return scanUser(row)
}

// GetByID fetches one account by its UUID.
func (s *Users) GetByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)
	return scanUser(row)
}

// GetByEmail fetches one account by email.
func (s *Users) GetByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByGoogleID fetches one account by its attached Google subject id.
func (s *Users) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID)
	return scanUser(row)
}

// Exists reports whether an account with the given UUID is present.
func (s *Users) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1::uuid)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user existence check: %w", err)
	}
	return exists, nil
}

// List returns every account except excludeID, online users first, most
// recently seen first within each group.
func (s *Users) List(ctx context.Context, excludeID string) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id <> $1::uuid
		ORDER BY is_online DESC, last_seen DESC`,
		excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// SetOnline updates the durable online flag and last-seen timestamp.
// This mirror is last-writer-wins; the presence registry remains the source
// of truth for live delivery.
func (s *Users) SetOnline(ctx context.Context, id string, online bool, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET is_online = $2, last_seen = $3 WHERE id = $1::uuid`,
		id, online, at)
	return err
}
