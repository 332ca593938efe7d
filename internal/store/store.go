// Package store defines the read/write contracts the pipeline has with its
// persistent backend, plus the Postgres and in-memory implementations. The
// store is treated as an external transactional resource: the pipeline only
// issues idempotent upserts keyed by dedupe_key and per-user delivery
// updates, never multi-row transactions across jobs.
package store

import (
	"context"
	"time"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

// UpsertStats summarizes one batch upsert.
type UpsertStats struct {
	Inserted int
	Updated  int
	Errors   int
}

// Filter narrows LoadActiveJobs. Zero value loads everything active.
type Filter struct {
	Source   string
	Category string
	Country  string
}

// JobStore persists canonical jobs.
type JobStore interface {
	// UpsertJobs writes the batch keyed by dedupe key. Known rows only get
	// last_seen_at (and status) refreshed; re-fetching a posting never
	// creates a duplicate row.
	UpsertJobs(ctx context.Context, jobs []*job.CanonicalJob) (UpsertStats, error)
	// LoadActiveJobs returns the current matching pool.
	LoadActiveJobs(ctx context.Context, f Filter) ([]*job.CanonicalJob, error)
}

// UserStore reads profiles and records deliveries.
type UserStore interface {
	LoadProfiles(ctx context.Context) ([]*profile.UserProfile, error)
	// RecordDelivery bumps the user's delivery bookkeeping atomically with
	// respect to that user's own row.
	RecordDelivery(ctx context.Context, userID string, delivered int, completesOnboarding bool, at time.Time) error
}
