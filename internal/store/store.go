package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")

// JobRecord is one completed job in the ledger: what ran, with which resolved
// parameters, and what it produced.
type JobRecord struct {
	ID         uuid.UUID
	Kind       string
	Params     map[string]any
	SavedFiles []string
	DurationMS int64
	CreatedAt  time.Time
}

// Store is the data access interface. All database operations go through
// here.
type Store interface {
	Ping(ctx context.Context) error
	RecordJob(ctx context.Context, job *JobRecord) error
	ListRecentJobs(ctx context.Context, limit int) ([]*JobRecord, error)
}
