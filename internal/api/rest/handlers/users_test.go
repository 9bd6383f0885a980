package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CameronXie/nsa-protrack/internal/domain"
)

type mockUserLister struct {
	mock.Mock
}

func (m *mockUserLister) ListUsers(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(_ context.Context) error {
	return s.err
}

func TestUserHandler_ListUsers(t *testing.T) {
	repo := new(mockUserLister)
	repo.On("ListUsers", mock.Anything).Return([]*domain.User{
		{ID: uuid.New(), Email: "admin@example.com", PasswordHash: "secret-hash", Roles: []string{domain.RoleAdmin}},
	}, nil)

	rr := httptest.NewRecorder()
	NewUserHandler(repo, discardLogger()).ListUsers(rr, newRequest(t, http.MethodGet, "/api/v1/users", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "admin@example.com")
	assert.NotContains(t, rr.Body.String(), "secret-hash")
	repo.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	testCases := map[string]struct {
		db             Pinger
		expectedStatus int
		expectedBody   string
	}{
		"should report ok without a database check": {
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		"should report ok when the database answers": {
			db:             stubPinger{},
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		"should report unavailable when the database is down": {
			db:             stubPinger{err: errors.New("connection refused")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "unavailable",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Health(tc.db)(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedBody, decodeBody[HealthResponse](t, rr).Status)
		})
	}
}
