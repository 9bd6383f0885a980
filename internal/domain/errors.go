package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports invalid input, keyed by the offending field path.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

type validator struct {
	fields map[string]string
}

func newValidator() *validator {
	return &validator{fields: make(map[string]string)}
}

// check records msg against field when ok is false. The first failure per field wins.
func (v *validator) check(ok bool, field, msg string) {
	if ok {
		return
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = msg
	}
}

func (v *validator) required(value, field string) {
	v.check(strings.TrimSpace(value) != "", field, "is required")
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
