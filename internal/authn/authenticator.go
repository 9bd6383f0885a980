// Package authn verifies account credentials.
package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PasswordAuthenticator checks a bcrypt password hash stored with the user
type PasswordAuthenticator struct {
	users UserRepository
}

func NewPasswordAuthenticator(users UserRepository) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := a.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			// Spend the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// HashPassword returns the bcrypt hash of password at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()
