package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/nsa-protrack/internal/repository"
)

const uniqueViolationCode = "23505"

//go:embed schema.sql
var schema string

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// getDocument runs a single-row query returning a JSONB document and decodes it into T.
func getDocument[T any](ctx context.Context, pool *pgxpool.Pool, resource string, id uuid.UUID, query string, args ...any) (*T, error) {
	var data []byte
	err := pool.QueryRow(ctx, query, args...).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: resource,
				Key:      "id",
				Value:    id.String(),
			}
		}
		return nil, fmt.Errorf("failed to retrieve %s with id %s: %w", resource, id, err)
	}

	doc := new(T)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", resource, id, err)
	}

	return doc, nil
}

// listDocuments runs a query returning one JSONB document per row.
func listDocuments[T any](ctx context.Context, pool *pgxpool.Pool, resource string, query string, args ...any) ([]*T, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resource, err)
	}

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*T, error) {
		var data []byte
		if err := row.Scan(&data); err != nil {
			return nil, err
		}

		doc := new(T)
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", resource, err)
		}
		return doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", resource, err)
	}

	return docs, nil
}

// expectAffected turns a zero-row write into a NotFoundError.
func expectAffected(tag pgconn.CommandTag, resource string, id uuid.UUID) error {
	if tag.RowsAffected() == 0 {
		return &repository.NotFoundError{
			Resource: resource,
			Key:      "id",
			Value:    id.String(),
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
