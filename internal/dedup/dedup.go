// Package dedup provides the time-bounded seen-set that lets the pipeline
// skip postings it already processed within the retention window. It is the
// cheap first pass; the canonical dedupe key on the store is the authority.
package dedup

import "context"

// Cache is a per-source membership set with TTL semantics. Implementations
// must be safe for concurrent checks and inserts.
type Cache interface {
	Seen(ctx context.Context, source, fingerprint string) (bool, error)
	MarkSeen(ctx context.Context, source, fingerprint string) error
}
