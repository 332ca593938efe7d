package match

import (
	"context"
	"strings"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

// Dimension weights of the deterministic scorer. Partial credit is additive
// across independent dimensions and the sum is clamped to [0,100].
const (
	categoryWeight  = 40
	locationWeight  = 25
	seniorityWeight = 15
	workModeWeight  = 10
	languageWeight  = 10
)

// FallbackScorer is the deterministic rule-based scorer. Identical inputs
// always yield identical scores.
type FallbackScorer struct{}

// NewFallbackScorer returns the deterministic scorer.
func NewFallbackScorer() *FallbackScorer { return &FallbackScorer{} }

func (s *FallbackScorer) Name() string { return string(AlgorithmFallback) }

func (s *FallbackScorer) Score(_ context.Context, j *job.CanonicalJob, p *profile.UserProfile) (*Assessment, error) {
	var score float64
	var reasons []string

	if overlaps(j.Categories, p.CareerTags) {
		score += categoryWeight
		reasons = append(reasons, "category overlap")
	}
	if fallbackLocationMatch(j, p) {
		score += locationWeight
		reasons = append(reasons, "location match")
	}
	if p.Seniority != "" && containsFold(j.Seniority, p.Seniority) {
		score += seniorityWeight
		reasons = append(reasons, "seniority match")
	}
	if p.WorkMode != "" && strings.EqualFold(string(j.WorkMode), p.WorkMode) {
		score += workModeWeight
		reasons = append(reasons, "work mode match")
	}
	if overlaps(j.Languages, p.Languages) {
		score += languageWeight
		reasons = append(reasons, "language match")
	}

	reason := "no preference overlap"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}

	score = Clamp(score)
	return &Assessment{
		Score:  score,
		Reason: reason,
		Bucket: BucketForScore(score),
	}, nil
}

func fallbackLocationMatch(j *job.CanonicalJob, p *profile.UserProfile) bool {
	if len(p.TargetLocations) == 0 {
		return false
	}
	if j.WorkMode == job.WorkModeRemote || j.City == job.RemoteLocation {
		return true
	}
	for _, target := range p.TargetLocations {
		if strings.EqualFold(target, j.City) || strings.EqualFold(target, j.Country) {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if containsFold(b, x) {
			return true
		}
	}
	return false
}

func containsFold(list []string, want string) bool {
	for _, item := range list {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}
