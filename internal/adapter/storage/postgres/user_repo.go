package postgres

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user within a transaction. The caller commits
// the user together with their wallet.
func (r *UserRepo) Create(ctx context.Context, tx pgx.Tx, user *domain.User) error {
	query := `INSERT INTO users (id, email, google_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		user.ID, user.Email, user.GoogleID, user.Name,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT id, email, google_id, name, created_at, updated_at
		FROM users WHERE id = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.GoogleID, &u.Name, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByGoogleID fetches a user by their Google subject identifier.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := `SELECT id, email, google_id, name, created_at, updated_at
		FROM users WHERE google_id = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, googleID).Scan(
		&u.ID, &u.Email, &u.GoogleID, &u.Name, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by google id: %w", err)
	}
	return u, nil
}
