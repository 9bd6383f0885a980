package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const (
	CredentialResource = "credential"
)

// CredentialRepository stores credential records as JSONB documents
type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) CreateCredential(ctx context.Context, c *domain.Credential) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential %s: %w", c.ID, err)
	}

	const query = `INSERT INTO credentials (id, user_id, kind, expiration_date, document, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, query,
		c.ID, c.UserID, string(c.Kind), expiration(c), doc, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	return nil
}

func (r *CredentialRepository) GetCredentialByID(ctx context.Context, userID, id uuid.UUID) (*domain.Credential, error) {
	return getDocument[domain.Credential](ctx, r.pool, CredentialResource, id,
		"SELECT document FROM credentials WHERE id = $1 AND user_id = $2", id, userID,
	)
}

func (r *CredentialRepository) ListCredentials(ctx context.Context, userID uuid.UUID) ([]*domain.Credential, error) {
	return listDocuments[domain.Credential](ctx, r.pool, CredentialResource,
		"SELECT document FROM credentials WHERE user_id = $1 ORDER BY kind, created_at", userID,
	)
}

// ListExpiring returns credentials expiring in [from, to], soonest first.
func (r *CredentialRepository) ListExpiring(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Credential, error) {
	const query = `SELECT document FROM credentials
WHERE user_id = $1 AND expiration_date IS NOT NULL AND expiration_date BETWEEN $2 AND $3
ORDER BY expiration_date`

	return listDocuments[domain.Credential](ctx, r.pool, CredentialResource, query, userID, from, to)
}

func (r *CredentialRepository) UpdateCredential(ctx context.Context, c *domain.Credential) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential %s: %w", c.ID, err)
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE credentials SET kind = $3, expiration_date = $4, document = $5, updated_at = $6 WHERE id = $1 AND user_id = $2",
		c.ID, c.UserID, string(c.Kind), expiration(c), doc, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update credential %s: %w", c.ID, err)
	}

	return expectAffected(tag, CredentialResource, c.ID)
}

func (r *CredentialRepository) DeleteCredential(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM credentials WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential %s: %w", id, err)
	}

	return expectAffected(tag, CredentialResource, id)
}

func expiration(c *domain.Credential) *time.Time {
	if c.ExpirationDate.IsZero() {
		return nil
	}
	t := c.ExpirationDate.Time
	return &t
}
