package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

const (
	ClientResource = "client"
)

// ClientRepository stores client records as JSONB documents
type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func (r *ClientRepository) CreateClient(ctx context.Context, client *domain.Client) error {
	doc, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("encode client %s: %w", client.ID, err)
	}

	_, err = r.pool.Exec(ctx,
		"INSERT INTO clients (id, user_id, document, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
		client.ID, client.UserID, doc, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

func (r *ClientRepository) GetClientByID(ctx context.Context, userID, id uuid.UUID) (*domain.Client, error) {
	return getDocument[domain.Client](ctx, r.pool, ClientResource, id,
		"SELECT document FROM clients WHERE id = $1 AND user_id = $2", id, userID,
	)
}

// ListClients returns the user's clients sorted by company, then first name.
func (r *ClientRepository) ListClients(ctx context.Context, userID uuid.UUID) ([]*domain.Client, error) {
	const query = `SELECT document FROM clients WHERE user_id = $1
ORDER BY lower(coalesce(document->>'companyName', '')), lower(coalesce(document->'fullName'->>'first', ''))`

	return listDocuments[domain.Client](ctx, r.pool, ClientResource, query, userID)
}

func (r *ClientRepository) UpdateClient(ctx context.Context, client *domain.Client) error {
	doc, err := json.Marshal(client)
	if err != nil {
		return fmt.Errorf("encode client %s: %w", client.ID, err)
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE clients SET document = $3, updated_at = $4 WHERE id = $1 AND user_id = $2",
		client.ID, client.UserID, doc, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update client %s: %w", client.ID, err)
	}

	return expectAffected(tag, ClientResource, client.ID)
}

func (r *ClientRepository) DeleteClient(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete client %s: %w", id, err)
	}

	return expectAffected(tag, ClientResource, id)
}
