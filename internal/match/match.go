// Package match scores the active job pool against one user's preference
// profile. A model-assisted primary scorer does the heavy lifting; a
// deterministic rule-based scorer takes over whenever the primary errors,
// times out or returns nothing.
package match

import (
	"context"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

// Algorithm names the scorer that produced a result, for downstream
// auditing.
type Algorithm string

const (
	AlgorithmPrimary  Algorithm = "primary"
	AlgorithmFallback Algorithm = "fallback"
	// AlgorithmNone marks a run where no scorer ran at all (empty candidate
	// pool), as opposed to a fallback-scored run.
	AlgorithmNone Algorithm = "none"
)

// Bucket is the human-facing quality band of a match.
type Bucket string

const (
	BucketExcellent Bucket = "excellent"
	BucketGood      Bucket = "good"
	BucketFair      Bucket = "fair"
)

// BucketForScore maps a 0-100 score onto a quality bucket.
func BucketForScore(score float64) Bucket {
	switch {
	case score >= 75:
		return BucketExcellent
	case score >= 50:
		return BucketGood
	default:
		return BucketFair
	}
}

// Assessment is one scorer's verdict on a (job, profile) pair.
type Assessment struct {
	Score  float64 // clamped to [0,100]
	Reason string
	Bucket Bucket
}

// Scorer is the capability interface both implementations satisfy.
type Scorer interface {
	Name() string
	Score(ctx context.Context, j *job.CanonicalJob, p *profile.UserProfile) (*Assessment, error)
}

// Result is the ephemeral per-delivery output of the engine. It is not
// persisted by the pipeline itself.
type Result struct {
	Job       *job.CanonicalJob
	Score     float64
	Reason    string
	Bucket    Bucket
	Algorithm Algorithm
}

// Clamp bounds a score to [0,100].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
