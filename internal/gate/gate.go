// Package gate implements the non-negotiable eligibility predicates applied
// before a job enters any matching pool. Gates run sequentially; the first
// failure names the reason. At ingestion time (nil profile) a failure marks
// the job filtered; at match time a locale failure only keeps the job out of
// that one user's pool.
package gate

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

// DefaultStalenessHorizon protects matching quality independent of any
// janitor-level deactivation.
const DefaultStalenessHorizon = 90 * 24 * time.Hour

// Gate is one predicate. An empty reason means pass.
type Gate interface {
	Name() string
	Check(j *job.CanonicalJob, p *profile.UserProfile, now time.Time) (reason string)
}

// Chain runs gates in order and reports the first rejection.
type Chain struct {
	gates  []Gate
	logger *zap.Logger
	now    func() time.Time
}

// NewChain builds the standard gate sequence: required fields, staleness,
// locale relevance.
func NewChain(stalenessHorizon time.Duration, logger *zap.Logger) *Chain {
	if stalenessHorizon <= 0 {
		stalenessHorizon = DefaultStalenessHorizon
	}
	return &Chain{
		gates: []Gate{
			requiredGate{},
			stalenessGate{horizon: stalenessHorizon},
			localeGate{},
		},
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the chain's clock. For tests.
func (c *Chain) WithNow(now func() time.Time) *Chain {
	c.now = now
	return c
}

// Screen returns the name of the first failing gate, or "" when the job
// passes all of them. A nil profile skips the locale gate.
func (c *Chain) Screen(j *job.CanonicalJob, p *profile.UserProfile) string {
	now := c.now()
	for _, g := range c.gates {
		if reason := g.Check(j, p, now); reason != "" {
			if c.logger != nil {
				c.logger.Debug("hard gate rejection",
					zap.String("gate", g.Name()),
					zap.String("reason", reason),
					zap.String("dedupe_key", j.DedupeKey),
				)
			}
			return reason
		}
	}
	return ""
}

// Relevant reports whether the job may enter this user's candidate pool.
// Only the locale gate applies per user; ingestion-level gates already ran.
func (c *Chain) Relevant(j *job.CanonicalJob, p *profile.UserProfile) bool {
	return (localeGate{}).Check(j, p, c.now()) == ""
}

type requiredGate struct{}

func (requiredGate) Name() string { return "required_fields" }

func (requiredGate) Check(j *job.CanonicalJob, _ *profile.UserProfile, _ time.Time) string {
	switch {
	case strings.TrimSpace(j.Title) == "":
		return "missing_title"
	case strings.TrimSpace(j.Company) == "":
		return "missing_company"
	case len(j.Categories) == 0:
		return "missing_category"
	case !hasResolvableLocation(j):
		return "missing_location"
	}
	return ""
}

func hasResolvableLocation(j *job.CanonicalJob) bool {
	if j.WorkMode == job.WorkModeRemote || j.City == job.RemoteLocation {
		return true
	}
	return j.City != "" && j.City != job.UnknownLocation
}

type stalenessGate struct {
	horizon time.Duration
}

func (stalenessGate) Name() string { return "staleness" }

func (g stalenessGate) Check(j *job.CanonicalJob, _ *profile.UserProfile, now time.Time) string {
	if j.PostedAt.IsZero() {
		return ""
	}
	if now.Sub(j.PostedAt) > g.horizon {
		return "stale"
	}
	return ""
}

type localeGate struct{}

func (localeGate) Name() string { return "locale" }

func (localeGate) Check(j *job.CanonicalJob, p *profile.UserProfile, _ time.Time) string {
	if p == nil {
		return ""
	}

	if !locationMatches(j, p) {
		return "locale_mismatch"
	}
	if !languagesCompatible(j, p) {
		return "language_mismatch"
	}
	return ""
}

func locationMatches(j *job.CanonicalJob, p *profile.UserProfile) bool {
	if len(p.TargetLocations) == 0 {
		return true
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

// languagesCompatible passes when the job names no language requirement or
// shares at least one language with the user.
func languagesCompatible(j *job.CanonicalJob, p *profile.UserProfile) bool {
	if len(j.Languages) == 0 || len(p.Languages) == 0 {
		return true
	}
	for _, want := range j.Languages {
		for _, have := range p.Languages {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}
