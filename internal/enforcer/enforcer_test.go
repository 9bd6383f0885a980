package enforcer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CameronXie/nsa-protrack/internal/decisionmaker"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

type mockDecisionMaker struct {
	mock.Mock
}

func (m *mockDecisionMaker) MakeDecision(ctx context.Context, req *decisionmaker.DecisionRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

type mockInfoProvider struct {
	mock.Mock
}

func (m *mockInfoProvider) GetRoles(ctx context.Context, id string) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestEnforcer_Enforce(t *testing.T) {
	const subject = "4D1C7C52-1F40-4A5B-8D6B-1C3E0C6F9A10"
	const lowered = "4d1c7c52-1f40-4a5b-8d6b-1c3e0c6f9a10"

	cases := map[string]struct {
		roles         []string
		rolesErr      error
		decision      bool
		decisionErr   error
		expected      bool
		wantErr       string
		expectDecide  bool
		expectedRoles []string
	}{
		"should pass lower-cased input and roles to the decision maker": {
			roles:         []string{"Admin"},
			decision:      true,
			expected:      true,
			expectDecide:  true,
			expectedRoles: []string{"admin"},
		},
		"should return the decision maker's denial": {
			roles:         []string{"agent"},
			expectDecide:  true,
			expectedRoles: []string{"agent"},
		},
		"should deny unknown subjects": {
			rolesErr: &repository.NotFoundError{Resource: "user", Key: "id", Value: lowered},
		},
		"should fail when roles cannot be loaded": {
			rolesErr: errors.New("timeout"),
			wantErr:  "failed to get roles: timeout",
		},
		"should fail when the decision maker fails": {
			roles:         []string{"agent"},
			decisionErr:   errors.New("bad policy"),
			wantErr:       "bad policy",
			expectDecide:  true,
			expectedRoles: []string{"agent"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			info := new(mockInfoProvider)
			info.On("GetRoles", mock.Anything, lowered).Return(tc.roles, tc.rolesErr)

			dm := new(mockDecisionMaker)
			dm.On("MakeDecision", mock.Anything, mock.MatchedBy(func(req *decisionmaker.DecisionRequest) bool {
				return req.Subject == lowered &&
					req.Resource == "/api/v1/orders" &&
					req.Action == "get"
			})).Return(tc.decision, tc.decisionErr)

			got, err := NewEnforcer(dm, info).Enforce(context.Background(), &AccessRequest{
				Subject:  subject,
				Resource: "/API/v1/Orders",
				Action:   "GET",
			})

			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, got)

			if tc.expectDecide {
				dm.AssertNumberOfCalls(t, "MakeDecision", 1)
				req := dm.Calls[0].Arguments.Get(1).(*decisionmaker.DecisionRequest)
				assert.Equal(t, tc.expectedRoles, req.Roles)
			} else {
				dm.AssertNotCalled(t, "MakeDecision", mock.Anything, mock.Anything)
			}
		})
	}
}
