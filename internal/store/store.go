// Package store persists scoring runs.
package store

import (
	"context"

	"github.com/sells-group/autoscore/internal/model"
)

// Store is the persistence interface for scoring runs.
type Store interface {
	// SaveRun inserts a run. An empty ID is replaced by a new UUID and a
	// zero CreatedAt by the current time.
	SaveRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// RunFilter controls run listing.
type RunFilter struct {
	Status model.RunStatus
	Limit  int
	Offset int
}

// defaultListLimit caps ListRuns when no limit is given.
const defaultListLimit = 100

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
