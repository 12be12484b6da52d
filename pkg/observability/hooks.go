package observability

import (
	"log/slog"

	"github.com/aretw0/domino/pkg/domain"
)

// Logging returns hooks that log every commit at debug level.
func Logging(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(e *domain.CommitEvent) {
			attrs := []any{"op", e.Op}
			if e.Diff != nil {
				attrs = append(attrs, "changed", len(e.Diff.Values), "mutations", e.Diff.Mutations)
				if e.Diff.IsModified != nil {
					attrs = append(attrs, "modified", *e.Diff.IsModified)
				}
			}
			logger.Debug("commit", attrs...)
		},
	}
}

// Chain runs every hook in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var commits []func(*domain.CommitEvent)
	for _, h := range hooks {
		if h.OnCommit != nil {
			commits = append(commits, h.OnCommit)
		}
	}
	if len(commits) == 0 {
		return domain.LifecycleHooks{}
	}
	return domain.LifecycleHooks{
		OnCommit: func(e *domain.CommitEvent) {
			for _, fn := range commits {
				fn(e)
			}
		},
	}
}
