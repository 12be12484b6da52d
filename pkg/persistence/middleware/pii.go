package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/domino/pkg/domain"
	"github.com/aretw0/domino/pkg/ports"
	"github.com/mohae/deepcopy"
)

// Mask replaces every value whose key matches a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the patterns,
// at any nesting depth, in defaults, initial defaults and mutations alike.
// Masking is one-way: Load returns the masked values.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, id string, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return m.next.Save(ctx, id, nil)
	}
	// The caller's snapshot may still back a live domino.
	cloned := deepcopy.Copy(snapshot).(*domain.Snapshot)

	maskMap(cloned.Defaults, m.patterns)
	maskMap(cloned.InitialDefaults, m.patterns)
	maskMap(cloned.Mutations, m.patterns)

	return m.next.Save(ctx, id, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		switch nested := v.(type) {
		case map[string]any:
			maskMap(nested, patterns)
		case domain.Values:
			maskMap(nested, patterns)
		case []any:
			for _, item := range nested {
				if sub, ok := item.(map[string]any); ok {
					maskMap(sub, patterns)
				}
			}
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
