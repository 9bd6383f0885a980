// Package infoprovider looks up the attributes the enforcer needs about a subject.
package infoprovider

import (
	"context"
)

type InfoProvider interface {
	GetRoles(ctx context.Context, id string) ([]string, error)
}

type defaultRolesProvider struct {
	next     InfoProvider
	defaults []string
}

func (p *defaultRolesProvider) GetRoles(ctx context.Context, id string) ([]string, error) {
	roles, err := p.next.GetRoles(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		return p.defaults, nil
	}
	return roles, nil
}

// WithDefaultRoles returns defaults for subjects that have no roles assigned.
func WithDefaultRoles(next InfoProvider, defaults ...string) InfoProvider {
	return &defaultRolesProvider{next: next, defaults: defaults}
}
