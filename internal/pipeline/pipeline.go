// Package pipeline orchestrates one full cycle: governed fetches across all
// sources, normalization and hard gating, idempotent storage, then matching
// and tiered delivery per due user.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/dedup"
	"github.com/jobsift/jobsift/internal/deliver"
	"github.com/jobsift/jobsift/internal/gate"
	"github.com/jobsift/jobsift/internal/governor"
	"github.com/jobsift/jobsift/internal/match"
	"github.com/jobsift/jobsift/internal/source"
	"github.com/jobsift/jobsift/internal/store"
)

const defaultConcurrency = 4

// Pipeline wires every component of the ingestion-and-matching cycle.
type Pipeline struct {
	adapters []source.Adapter
	governor *governor.Governor
	retry    *source.RetryPolicy
	cache    dedup.Cache
	chain    *gate.Chain
	engine   *match.Engine
	schedule *deliver.Schedule
	sink     deliver.Sink
	jobs     store.JobStore
	users    store.UserStore

	queries     []string
	locations   []string
	concurrency int

	logger *zap.Logger
	now    func() time.Time
}

// Options collects the pipeline's dependencies.
type Options struct {
	Adapters    []source.Adapter
	Governor    *governor.Governor
	Retry       *source.RetryPolicy
	Cache       dedup.Cache
	Chain       *gate.Chain
	Engine      *match.Engine
	Schedule    *deliver.Schedule
	Sink        deliver.Sink
	Jobs        store.JobStore
	Users       store.UserStore
	Queries     []string
	Locations   []string
	Concurrency int
}

// New assembles a pipeline from its parts.
func New(opts Options, logger *zap.Logger) *Pipeline {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Pipeline{
		adapters:    opts.Adapters,
		governor:    opts.Governor,
		retry:       opts.Retry,
		cache:       opts.Cache,
		chain:       opts.Chain,
		engine:      opts.Engine,
		schedule:    opts.Schedule,
		sink:        opts.Sink,
		jobs:        opts.Jobs,
		users:       opts.Users,
		queries:     opts.Queries,
		locations:   opts.Locations,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// WithNow overrides the pipeline clock. For tests.
func (p *Pipeline) WithNow(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run executes one full cycle. Ingest failures for individual sources are
// already isolated inside the stage; an error here means the cycle could
// not reach the store at all.
func (p *Pipeline) Run(ctx context.Context) error {
	stats, err := p.Ingest(ctx)
	if err != nil {
		return err
	}

	p.logger.Info("ingest complete",
		zap.Int("fetched", stats.Fetched),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Int("normalize_errors", stats.NormalizeErrors),
		zap.Int("gate_rejected", stats.GateRejected),
		zap.Int("inserted", stats.Inserted),
		zap.Int("updated", stats.Updated),
	)

	return p.Deliver(ctx)
}
