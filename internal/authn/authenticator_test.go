package authn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestPasswordAuthenticator_Authenticate(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	user := &domain.User{Email: "agent@example.com", PasswordHash: hash}

	cases := map[string]struct {
		email        string
		password     string
		mockUser     *domain.User
		mockErr      error
		expectedUser *domain.User
		expectedErr  error
		errContains  string
	}{
		"should authenticate with the right password": {
			email:        " Agent@Example.com ",
			password:     "correct horse",
			mockUser:     user,
			expectedUser: user,
		},
		"should reject a wrong password": {
			email:       "agent@example.com",
			password:    "battery staple",
			mockUser:    user,
			expectedErr: ErrInvalidCredentials,
		},
		"should hide unknown emails": {
			email:       "agent@example.com",
			password:    "correct horse",
			mockErr:     &repository.NotFoundError{Resource: "user", Key: "email", Value: "agent@example.com"},
			expectedErr: ErrInvalidCredentials,
		},
		"should surface repository failures": {
			email:       "agent@example.com",
			password:    "correct horse",
			mockErr:     errors.New("connection reset"),
			errContains: "look up user: connection reset",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockUserRepository)
			repo.On("GetUserByEmail", mock.Anything, "agent@example.com").Return(tc.mockUser, tc.mockErr)

			got, err := NewPasswordAuthenticator(repo).Authenticate(context.Background(), tc.email, tc.password)

			switch {
			case tc.expectedErr != nil:
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, got)
			case tc.errContains != "":
				assert.ErrorContains(t, err, tc.errContains)
				assert.NotErrorIs(t, err, ErrInvalidCredentials)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expectedUser, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "other-pass"))
}
