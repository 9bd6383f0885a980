package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

// setupTestDB connects to POSTGRES_DB_TEST and applies the schema. Tests are
// skipped when no database is configured.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("POSTGRES_HOST") == "" || os.Getenv("POSTGRES_DB_TEST") == "" {
		t.Skip("POSTGRES_HOST and POSTGRES_DB_TEST are required for repository tests")
	}

	pg := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_DB_TEST"),
		os.Getenv("POSTGRES_SSL"),
	)

	pool, err := pgxpool.New(context.Background(), pg)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), pool))

	t.Cleanup(func() {
		cleanupTestData(t, pool)
		pool.Close()
	})
	cleanupTestData(t, pool)

	return pool
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE reports, credentials, clients, orders, users")
	require.NoError(t, err)
}

func createTestUser(t *testing.T, pool *pgxpool.Pool, email string) *domain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test Agent",
		PasswordHash: "hash",
		Roles:        []string{domain.RoleAgent},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	require.NoError(t, NewUserRepository(pool).CreateUser(context.Background(), user))
	return user
}
