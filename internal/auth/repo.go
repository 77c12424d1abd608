package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asetdesk/asetdesk/internal/shared"
)

// Repository loads users from PostgreSQL.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// PgRepository is the pgx-backed Repository.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository constructs PgRepository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// FindByUsername fetches a single user row.
func (r *PgRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `SELECT id, username, role, password_hash, is_active, created_at
FROM users WHERE username = $1`
	var u User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	return &u, nil
}
