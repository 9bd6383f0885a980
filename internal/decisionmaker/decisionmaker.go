// Package decisionmaker defines the policy decision point consulted by the enforcer.
package decisionmaker

import "context"

// DecisionRequest asks whether Subject, holding Roles, may perform Action on Resource.
type DecisionRequest struct {
	Subject  string
	Roles    []string
	Resource string
	Action   string
}

type DecisionMaker interface {
	MakeDecision(ctx context.Context, req *DecisionRequest) (bool, error)
}
