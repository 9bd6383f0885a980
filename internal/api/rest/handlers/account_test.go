package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/nsa-protrack/internal/authn"
	"github.com/CameronXie/nsa-protrack/internal/domain"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockAccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name string, profile domain.Profile, now time.Time) error {
	return m.Called(ctx, id, name, profile, now).Error(0)
}

func (m *mockAccountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, now time.Time) error {
	return m.Called(ctx, id, hash, now).Error(0)
}

func testAccount(t *testing.T) *domain.User {
	t.Helper()

	hash, err := authn.HashPassword("old-password")
	require.NoError(t, err)

	return &domain.User{
		ID:           testUserID,
		Email:        "agent@example.com",
		Name:         "Ada Agent",
		PasswordHash: hash,
		Roles:        []string{domain.RoleAgent},
		Profile:      domain.Profile{Timezone: "America/Los_Angeles"},
	}
}

func newTestAccountHandler(repo AccountRepository) *AccountHandler {
	h := NewAccountHandler(repo, discardLogger())
	h.now = fixedNow
	return h
}

func TestAccountHandler_GetAccount(t *testing.T) {
	testCases := map[string]struct {
		user           *domain.User
		err            error
		expectedStatus int
	}{
		"should return the signed in user": {
			user:           &domain.User{ID: testUserID, Email: "agent@example.com", Name: "Ada Agent"},
			expectedStatus: http.StatusOK,
		},
		"should return not found when the account was removed": {
			err:            &repository.NotFoundError{Resource: "user", Key: "id", Value: testUserID.String()},
			expectedStatus: http.StatusNotFound,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockAccountRepository)
			if tc.user != nil {
				repo.On("GetUserByID", mock.Anything, testUserID).Return(tc.user, nil)
			} else {
				repo.On("GetUserByID", mock.Anything, testUserID).Return(nil, tc.err)
			}

			rr := httptest.NewRecorder()
			newTestAccountHandler(repo).GetAccount(rr, newRequest(t, http.MethodGet, "/api/v1/account", nil))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	testCases := map[string]struct {
		body           any
		setupMock      func(*mockAccountRepository)
		expectedStatus int
	}{
		"should update name and profile": {
			body: map[string]any{
				"name":    "Ada Lovelace",
				"profile": map[string]any{"businessName": "Ada Mobile Notary", "timezone": "UTC"},
			},
			setupMock: func(m *mockAccountRepository) {
				m.On("UpdateProfile", mock.Anything, testUserID, "Ada Lovelace", mock.MatchedBy(func(p domain.Profile) bool {
					return p.BusinessName == "Ada Mobile Notary" && p.Timezone == "UTC"
				}), testNow).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		"should reject an unknown time zone": {
			body:           map[string]any{"profile": map[string]any{"timezone": "Mars/Olympus"}},
			setupMock:      func(_ *mockAccountRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockAccountRepository)
			repo.On("GetUserByID", mock.Anything, testUserID).Return(&domain.User{ID: testUserID, Email: "agent@example.com", Name: "Ada Agent"}, nil)
			tc.setupMock(repo)

			rr := httptest.NewRecorder()
			newTestAccountHandler(repo).UpdateAccount(rr, newRequest(t, http.MethodPut, "/api/v1/account", tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestAccountHandler_ChangePassword(t *testing.T) {
	testCases := map[string]struct {
		body           any
		expectUpdate   bool
		expectedStatus int
	}{
		"should store a new hash": {
			body:           map[string]any{"currentPassword": "old-password", "newPassword": "new-password"},
			expectUpdate:   true,
			expectedStatus: http.StatusNoContent,
		},
		"should reject a wrong current password": {
			body:           map[string]any{"currentPassword": "guess", "newPassword": "new-password"},
			expectedStatus: http.StatusBadRequest,
		},
		"should reject a short new password": {
			body:           map[string]any{"currentPassword": "old-password", "newPassword": "short"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockAccountRepository)
			repo.On("GetUserByID", mock.Anything, testUserID).Return(testAccount(t), nil)
			if tc.expectUpdate {
				repo.On("UpdatePasswordHash", mock.Anything, testUserID, mock.MatchedBy(func(hash string) bool {
					return authn.CheckPassword(hash, "new-password")
				}), testNow).Return(nil)
			}

			rr := httptest.NewRecorder()
			newTestAccountHandler(repo).ChangePassword(rr, newRequest(t, http.MethodPut, "/api/v1/account/password", tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			repo.AssertExpectations(t)
		})
	}
}
