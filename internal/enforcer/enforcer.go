// Package enforcer decides whether an authenticated subject may call an API route.
package enforcer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CameronXie/nsa-protrack/internal/decisionmaker"
	"github.com/CameronXie/nsa-protrack/internal/infoprovider"
	"github.com/CameronXie/nsa-protrack/internal/repository"
)

type Enforcer interface {
	Enforce(ctx context.Context, req *AccessRequest) (bool, error)
}

type AccessRequest struct {
	Subject  string
	Resource string
	Action   string
}

type enforcer struct {
	decisionMaker decisionmaker.DecisionMaker
	infoProvider  infoprovider.InfoProvider
}

// Enforce lower-cases the request, resolves the subject's roles and asks the
// decision maker. Unknown subjects are denied without an error.
func (e *enforcer) Enforce(ctx context.Context, req *AccessRequest) (bool, error) {
	subject := strings.ToLower(req.Subject)

	roles, err := e.infoProvider.GetRoles(ctx, subject)
	if err != nil {
		var notFoundErr *repository.NotFoundError
		if errors.As(err, &notFoundErr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get roles: %w", err)
	}

	lowered := make([]string, len(roles))
	for i, r := range roles {
		lowered[i] = strings.ToLower(r)
	}

	return e.decisionMaker.MakeDecision(
		ctx,
		&decisionmaker.DecisionRequest{
			Subject:  subject,
			Roles:    lowered,
			Resource: strings.ToLower(req.Resource),
			Action:   strings.ToLower(req.Action),
		},
	)
}

func NewEnforcer(decisionMaker decisionmaker.DecisionMaker, infoProvider infoprovider.InfoProvider) Enforcer {
	return &enforcer{
		decisionMaker: decisionMaker,
		infoProvider:  infoProvider,
	}
}
