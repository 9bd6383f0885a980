package casbin

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"

	"github.com/CameronXie/nsa-protrack/internal/decisionmaker"
)

type decisionMaker struct {
	enforcer casbin.IEnforcer
}

// MakeDecision reloads the policy and allows the request when the subject or any of its roles is granted access.
func (d *decisionMaker) MakeDecision(_ context.Context, req *decisionmaker.DecisionRequest) (bool, error) {
	err := d.enforcer.LoadPolicy()
	if err != nil {
		return false, err
	}

	subjects := append([]string{req.Subject}, req.Roles...)
	for _, sub := range subjects {
		ok, err := d.enforcer.Enforce(sub, req.Resource, req.Action)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

type Option func(*options)

type options struct {
	policies  [][]string
	groupings [][]string
}

// WithDefaultPolicies adds the given policy and grouping rules when the store does not hold them yet.
func WithDefaultPolicies(policies, groupings [][]string) Option {
	return func(o *options) {
		o.policies = append(o.policies, policies...)
		o.groupings = append(o.groupings, groupings...)
	}
}

// NewDecisionMaker creates a DecisionMaker from a Casbin model and a policy adapter.
func NewDecisionMaker(config string, policyRepo persist.Adapter, opts ...Option) (decisionmaker.DecisionMaker, error) {
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}

	m, err := model.NewModelFromString(config)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m, policyRepo)
	if err != nil {
		return nil, err
	}

	if err := seed(enforcer, o); err != nil {
		return nil, err
	}

	return &decisionMaker{enforcer: enforcer}, nil
}

func seed(e *casbin.Enforcer, o *options) error {
	for _, rule := range o.policies {
		if _, err := e.AddPolicy(toAny(rule)...); err != nil {
			return fmt.Errorf("seed policy %v: %w", rule, err)
		}
	}

	for _, rule := range o.groupings {
		if _, err := e.AddGroupingPolicy(toAny(rule)...); err != nil {
			return fmt.Errorf("seed grouping %v: %w", rule, err)
		}
	}

	return nil
}

func toAny(rule []string) []any {
	out := make([]any, len(rule))
	for i, v := range rule {
		out[i] = v
	}
	return out
}
