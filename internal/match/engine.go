package match

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

const defaultPrimaryTimeout = 30 * time.Second

// Eligible decides whether a job may enter a user's candidate pool. The
// hard-gate chain supplies this.
type Eligible func(j *job.CanonicalJob, p *profile.UserProfile) bool

// RunRecord is the structured per-user observability record every match
// request emits.
type RunRecord struct {
	MatchAlgorithm   string `json:"matchAlgorithm"`
	MatchesGenerated int    `json:"matchesGenerated"`
	Success          bool   `json:"success"`
	FallbackUsed     bool   `json:"fallbackUsed"`
	ErrorMessage     string `json:"errorMessage,omitempty"`
}

// Engine walks one match request through
// collect -> primary -> (fallback) -> rank -> truncate.
type Engine struct {
	primary  Scorer // may be nil when no model scorer is configured
	fallback Scorer
	eligible Eligible
	timeout  time.Duration
	logger   *zap.Logger
}

// NewEngine builds the engine. A nil primary sends every request straight
// to the fallback scorer.
func NewEngine(primary Scorer, eligible Eligible, timeout time.Duration, logger *zap.Logger) *Engine {
	if timeout <= 0 {
		timeout = defaultPrimaryTimeout
	}
	return &Engine{
		primary:  primary,
		fallback: NewFallbackScorer(),
		eligible: eligible,
		timeout:  timeout,
		logger:   logger,
	}
}

// Match scores the pool for one user and returns the ranked, truncated
// result list plus the audit record. Primary-scorer failures downgrade to
// the fallback and are never returned as errors; an empty pool is a
// legitimate zero-match outcome.
func (e *Engine) Match(ctx context.Context, pool []*job.CanonicalJob, p *profile.UserProfile, limit int) ([]*Result, *RunRecord) {
	record := &RunRecord{Success: true}

	candidates := e.collect(pool, p)
	if len(candidates) == 0 {
		record.MatchAlgorithm = string(AlgorithmNone)
		return nil, record
	}

	results, primaryErr := e.scorePrimary(ctx, candidates, p)
	if primaryErr != nil || len(results) == 0 {
		if primaryErr != nil {
			record.ErrorMessage = primaryErr.Error()
			e.logger.Warn("primary scorer failed, using fallback",
				zap.String("user_id", p.ID),
				zap.Error(primaryErr),
			)
		}
		record.FallbackUsed = true
		results = e.scoreFallback(ctx, candidates, p)
	}

	rank(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	record.MatchAlgorithm = string(AlgorithmPrimary)
	if record.FallbackUsed {
		record.MatchAlgorithm = string(AlgorithmFallback)
	}
	record.MatchesGenerated = len(results)
	return results, record
}

func (e *Engine) collect(pool []*job.CanonicalJob, p *profile.UserProfile) []*job.CanonicalJob {
	candidates := make([]*job.CanonicalJob, 0, len(pool))
	for _, j := range pool {
		if !j.IsActive || j.Status != job.StatusActive {
			continue
		}
		if e.eligible != nil && !e.eligible(j, p) {
			continue
		}
		candidates = append(candidates, j)
	}
	return candidates
}

// scorePrimary runs the model-assisted scorer per candidate under a shared
// deadline. The first error abandons the primary pass; partial results are
// discarded so ranking is never a mix of scorers.
func (e *Engine) scorePrimary(ctx context.Context, candidates []*job.CanonicalJob, p *profile.UserProfile) ([]*Result, error) {
	if e.primary == nil {
		return nil, nil
	}

	results := make([]*Result, 0, len(candidates))
	for _, j := range candidates {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		assessment, err := e.primary.Score(callCtx, j, p)
		cancel()
		if err != nil {
			return nil, err
		}
		if assessment == nil {
			continue
		}

		score := Clamp(assessment.Score)
		bucket := assessment.Bucket
		if bucket == "" {
			bucket = BucketForScore(score)
		}
		results = append(results, &Result{
			Job:       j,
			Score:     score,
			Reason:    assessment.Reason,
			Bucket:    bucket,
			Algorithm: AlgorithmPrimary,
		})
	}
	return results, nil
}

func (e *Engine) scoreFallback(ctx context.Context, candidates []*job.CanonicalJob, p *profile.UserProfile) []*Result {
	results := make([]*Result, 0, len(candidates))
	for _, j := range candidates {
		assessment, err := e.fallback.Score(ctx, j, p)
		if err != nil {
			// The deterministic scorer has no failure modes today; guard
			// anyway so a future one cannot sink the whole request.
			e.logger.Warn("fallback scorer error", zap.String("dedupe_key", j.DedupeKey), zap.Error(err))
			continue
		}
		results = append(results, &Result{
			Job:       j,
			Score:     assessment.Score,
			Reason:    assessment.Reason,
			Bucket:    assessment.Bucket,
			Algorithm: AlgorithmFallback,
		})
	}
	return results
}

// rank sorts by score descending, breaking ties by most recent posting.
// The sort is stable so equal jobs keep their pool order.
func rank(results []*Result) {
	sort.SliceStable(results, func(i, k int) bool {
		if results[i].Score != results[k].Score {
			return results[i].Score > results[k].Score
		}
		return results[i].Job.PostedAt.After(results[k].Job.PostedAt)
	})
}
