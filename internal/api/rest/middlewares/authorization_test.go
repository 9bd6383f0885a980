package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CameronXie/nsa-protrack/internal/enforcer"
)

type mockEnforcer struct {
	mock.Mock
}

func (m *mockEnforcer) Enforce(ctx context.Context, req *enforcer.AccessRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func TestAuthorizationMiddleware_Handle(t *testing.T) {
	testCases := map[string]struct {
		userID         string
		setupMock      func(*mockEnforcer)
		expectedStatus int
	}{
		"should call next handler when access is allowed": {
			userID: "user-1",
			setupMock: func(m *mockEnforcer) {
				m.On("Enforce", mock.Anything, &enforcer.AccessRequest{
					Subject:  "user-1",
					Resource: "/api/v1/orders",
					Action:   http.MethodPost,
				}).Return(true, nil)
			},
			expectedStatus: http.StatusOK,
		},
		"should return forbidden when access is denied": {
			userID: "user-1",
			setupMock: func(m *mockEnforcer) {
				m.On("Enforce", mock.Anything, mock.Anything).Return(false, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		"should return internal server error when enforcer fails": {
			userID: "user-1",
			setupMock: func(m *mockEnforcer) {
				m.On("Enforce", mock.Anything, mock.Anything).Return(false, errors.New("policy store unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		"should return unauthorized when no user is in context": {
			setupMock:      func(_ *mockEnforcer) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			e := new(mockEnforcer)
			tc.setupMock(e)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", http.NoBody)
			if tc.userID != "" {
				req = req.WithContext(WithUserID(req.Context(), tc.userID))
			}

			rr := httptest.NewRecorder()
			NewAuthorizationMiddleware(e, discardLogger()).Handle(okHandler()).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			e.AssertExpectations(t)
		})
	}
}
