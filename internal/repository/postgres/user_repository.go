package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

const (
	UserResource = "user"
)

const userColumns = "id, email, name, password_hash, roles, profile, created_at, updated_at"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new user. A duplicate email yields a ConflictError.
func (r *UserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	profile, err := json.Marshal(user.Profile)
	if err != nil {
		return fmt.Errorf("encode profile for user %s: %w", user.ID, err)
	}

	const query = `INSERT INTO users (id, email, name, password_hash, roles, profile, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Roles, profile, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &repository.ConflictError{Resource: UserResource, Key: "email", Value: user.Email}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user, including the password hash, by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	user, err := r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{Resource: UserResource, Key: "email", Value: email}
		}
		return nil, fmt.Errorf("query user by email %s: %w", email, err)
	}

	return user, nil
}

// GetUserByID retrieves a user by id.
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{Resource: UserResource, Key: "id", Value: id.String()}
		}
		return nil, fmt.Errorf("query user %s: %w", id, err)
	}

	return user, nil
}

// GetUserIDByEmail retrieves a user ID by email address.
func (r *UserRepository) GetUserIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// GetRoles returns the roles of the user identified by the token subject.
func (r *UserRepository) GetRoles(ctx context.Context, subject string) ([]string, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject %q: %w", subject, err)
	}

	var roles []string
	err = r.pool.QueryRow(ctx, "SELECT roles FROM users WHERE id = $1", id).Scan(&roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{Resource: UserResource, Key: "id", Value: subject}
		}
		return nil, fmt.Errorf("query roles for user %s: %w", subject, err)
	}

	return roles, nil
}

// ListUsers returns every user ordered by email.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY email")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}

	return users, nil
}

// UpdateProfile replaces the display name and profile settings.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, profile domain.Profile, now time.Time) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile for user %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET name = $2, profile = $3, updated_at = $4 WHERE id = $1",
		id, name, data, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile for user %s: %w", id, err)
	}

	return expectAffected(tag, UserResource, id)
}

// UpdatePasswordHash stores a new bcrypt hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, now time.Time) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1",
		id, hash, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", id, err)
	}

	return expectAffected(tag, UserResource, id)
}

func (r *UserRepository) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}

	return pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (*domain.User, error) {
		return scanUser(row)
	})
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user    domain.User
		profile []byte
	)

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Roles, &profile, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &user.Profile); err != nil {
			return nil, fmt.Errorf("decode profile for user %s: %w", user.ID, err)
		}
	}

	return &user, nil
}
