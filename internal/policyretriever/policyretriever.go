// Package policyretriever supplies Rego policy text to the OPA decision maker.
package policyretriever

import (
	"fmt"
	"os"
)

type PolicyRetriever interface {
	GetPolicy() (string, error)
}

type staticPolicyRetriever struct {
	policy string
}

func (p *staticPolicyRetriever) GetPolicy() (string, error) {
	return p.policy, nil
}

// NewStaticPolicyRetriever always returns policy.
func NewStaticPolicyRetriever(policy string) PolicyRetriever {
	return &staticPolicyRetriever{policy: policy}
}

type filePolicyRetriever struct {
	path string
}

// GetPolicy reads the file on every call so edits apply to the next decision.
func (p *filePolicyRetriever) GetPolicy() (string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", fmt.Errorf("read policy file: %w", err)
	}
	return string(data), nil
}

func NewFilePolicyRetriever(path string) PolicyRetriever {
	return &filePolicyRetriever{path: path}
}
