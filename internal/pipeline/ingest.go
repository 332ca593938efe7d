package pipeline

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jobsift/jobsift/internal/governor"
	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/source"
)

// IngestStats summarizes one ingest stage.
type IngestStats struct {
	Fetched         int
	CacheHits       int
	NormalizeErrors int
	GateRejected    int
	Inserted        int
	Updated         int
	UpsertErrors    int
}

// fetchTask is one (source x query x location) unit of work.
type fetchTask struct {
	adapter  source.Adapter
	query    string
	location string
}

// collector accumulates normalized jobs and counters across workers.
type collector struct {
	mu    sync.Mutex
	jobs  []*job.CanonicalJob
	stats IngestStats
}

func (c *collector) add(j *job.CanonicalJob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = append(c.jobs, j)
}

// Ingest runs all fetch tasks through a bounded worker pool, then upserts
// the surviving jobs in one batch. Source-level failures (budget spent,
// repeated 429) stop only that source; the batch continues.
func (p *Pipeline) Ingest(ctx context.Context) (IngestStats, error) {
	tasks := p.expandTasks()
	col := &collector{}
	exhausted := newExhaustedSet()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, task := range tasks {
		g.Go(func() error {
			if exhausted.has(task.adapter.Name()) {
				return nil
			}
			p.runFetchTask(gctx, task, col, exhausted)
			return nil
		})
	}

	// Workers never return errors; the group only propagates cancellation.
	if err := g.Wait(); err != nil {
		return col.stats, err
	}

	if len(col.jobs) > 0 {
		upserted, err := p.jobs.UpsertJobs(ctx, col.jobs)
		if err != nil {
			return col.stats, err
		}
		col.stats.Inserted = upserted.Inserted
		col.stats.Updated = upserted.Updated
		col.stats.UpsertErrors = upserted.Errors
	}

	return col.stats, nil
}

func (p *Pipeline) expandTasks() []fetchTask {
	var tasks []fetchTask
	for _, adapter := range p.adapters {
		for _, query := range p.queries {
			for _, location := range p.locations {
				tasks = append(tasks, fetchTask{adapter: adapter, query: query, location: location})
			}
		}
	}
	return tasks
}

// runFetchTask pages through one (query, location) pair in ascending order,
// stopping early on a short page, a spent budget or a persistent 429.
func (p *Pipeline) runFetchTask(ctx context.Context, task fetchTask, col *collector, exhausted *exhaustedSet) {
	name := task.adapter.Name()

	for page := 1; ; page++ {
		if err := p.governor.Reserve(ctx, name); err != nil {
			if errors.Is(err, governor.ErrBudgetExceeded) {
				exhausted.mark(name)
				p.logger.Info("source budget exhausted, stopping source for this batch",
					zap.String("source", name),
				)
			} else if !errors.Is(err, context.Canceled) {
				p.logger.Warn("governor reservation failed",
					zap.String("source", name),
					zap.Error(err),
				)
			}
			return
		}

		postings, err := p.retry.Do(ctx, name, func() ([]source.RawPosting, error) {
			return task.adapter.FetchPage(ctx, task.query, task.location, page)
		})
		if err != nil {
			if errors.Is(err, source.ErrRateLimited) {
				exhausted.mark(name)
				p.logger.Warn("source still rate limited after retry, stopping source for this batch",
					zap.String("source", name),
				)
			} else if !errors.Is(err, context.Canceled) {
				p.logger.Warn("fetch page failed",
					zap.String("source", name),
					zap.String("query", task.query),
					zap.String("location", task.location),
					zap.Int("page", page),
					zap.Error(err),
				)
			}
			return
		}

		p.processPostings(ctx, name, postings, col)

		if len(postings) < task.adapter.PageSize() {
			return
		}
		if p.governor.Remaining(name) == 0 {
			return
		}
	}
}

// processPostings runs the record-level part of ingestion: dedup-cache
// check, normalization, hard gating. Record failures drop that one posting.
func (p *Pipeline) processPostings(ctx context.Context, src string, postings []source.RawPosting, col *collector) {
	now := p.now()

	for _, raw := range postings {
		col.mu.Lock()
		col.stats.Fetched++
		col.mu.Unlock()

		fp := job.Fingerprint(raw.Title, raw.Company, raw.Location)
		seen, err := p.cache.Seen(ctx, src, fp)
		if err != nil {
			p.logger.Warn("dedup cache check failed", zap.String("source", src), zap.Error(err))
		} else if seen {
			col.mu.Lock()
			col.stats.CacheHits++
			col.mu.Unlock()
			continue
		}

		canonical, err := job.Normalize(raw, src, now)
		if err != nil {
			col.mu.Lock()
			col.stats.NormalizeErrors++
			col.mu.Unlock()
			p.logger.Debug("posting dropped", zap.String("source", src), zap.Error(err))
			continue
		}

		if reason := p.chain.Screen(canonical, nil); reason != "" {
			// Filtered jobs are stored anyway so rejections stay observable.
			canonical.MarkFiltered(reason)
			col.mu.Lock()
			col.stats.GateRejected++
			col.mu.Unlock()
		}

		col.add(canonical)

		if err := p.cache.MarkSeen(ctx, src, fp); err != nil {
			p.logger.Warn("dedup cache insert failed", zap.String("source", src), zap.Error(err))
		}
	}
}

// exhaustedSet tracks sources that should issue no further requests in the
// current batch.
type exhaustedSet struct {
	mu  sync.Mutex
	set map[string]bool
}

func newExhaustedSet() *exhaustedSet {
	return &exhaustedSet{set: make(map[string]bool)}
}

func (s *exhaustedSet) mark(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set[source] = true
}

func (s *exhaustedSet) has(source string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set[source]
}
