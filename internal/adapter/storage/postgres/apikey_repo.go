package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApiKeyRepo implements ports.ApiKeyRepository.
type ApiKeyRepo struct {
	pool Pool
}

// NewApiKeyRepo creates a new ApiKeyRepo.
func NewApiKeyRepo(pool Pool) *ApiKeyRepo {
	return &ApiKeyRepo{pool: pool}
}

// permissionsToStrings converts typed permissions to a plain string slice
// for the text[] column.
func permissionsToStrings(perms []domain.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func stringsToPermissions(raw []string) []domain.Permission {
	out := make([]domain.Permission, len(raw))
	for i, s := range raw {
		out[i] = domain.Permission(s)
	}
	return out
}

// Create inserts a new API key.
func (r *ApiKeyRepo) Create(ctx context.Context, key *domain.ApiKey) error {
	query := `INSERT INTO api_keys (id, user_id, name, key_hash, permissions, expires_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		key.ID, key.UserID, key.Name, key.KeyHash,
		permissionsToStrings(key.Permissions), key.ExpiresAt, key.IsActive,
		key.CreatedAt, key.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

// CountActive counts a user's active, unexpired keys.
func (r *ApiKeyRepo) CountActive(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM api_keys WHERE user_id = $1 AND is_active = TRUE AND expires_at > $2`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active api keys: %w", err)
	}
	return count, nil
}

// ListActive fetches every active, unexpired key system-wide.
func (r *ApiKeyRepo) ListActive(ctx context.Context, now time.Time) ([]domain.ApiKey, error) {
	query := `SELECT id, user_id, name, key_hash, permissions, expires_at, is_active, created_at, updated_at
		FROM api_keys WHERE is_active = TRUE AND expires_at > $1`

	return r.queryKeys(ctx, query, now)
}

// ListByUser fetches all of a user's keys, newest first.
func (r *ApiKeyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error) {
	query := `SELECT id, user_id, name, key_hash, permissions, expires_at, is_active, created_at, updated_at
		FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`

	return r.queryKeys(ctx, query, userID)
}

// GetByIDForUser fetches a key by ID scoped to its owner.
func (r *ApiKeyRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.ApiKey, error) {
	query := `SELECT id, user_id, name, key_hash, permissions, expires_at, is_active, created_at, updated_at
		FROM api_keys WHERE id = $1 AND user_id = $2`

	k := &domain.ApiKey{}
	var perms []string
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&k.ID, &k.UserID, &k.Name, &k.KeyHash, &perms,
		&k.ExpiresAt, &k.IsActive, &k.CreatedAt, &k.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	k.Permissions = stringsToPermissions(perms)
	return k, nil
}

// Deactivate permanently disables a key.
func (r *ApiKeyRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE api_keys SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("api key not found: %s", id)
	}
	return nil
}

func (r *ApiKeyRepo) queryKeys(ctx context.Context, query string, args ...any) ([]domain.ApiKey, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query api keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.ApiKey
	for rows.Next() {
		k := domain.ApiKey{}
		var perms []string
		err := rows.Scan(
			&k.ID, &k.UserID, &k.Name, &k.KeyHash, &perms,
			&k.ExpiresAt, &k.IsActive, &k.CreatedAt, &k.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan api key row: %w", err)
		}
		k.Permissions = stringsToPermissions(perms)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api key rows: %w", err)
	}
	return keys, nil
}
