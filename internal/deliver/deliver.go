// Package deliver decides, per user and tier, how many matches to release
// and how often, and hands the final list to the delivery sink.
package deliver

import (
	"time"

	"github.com/jobsift/jobsift/internal/profile"
)

// Phase of the per-user delivery state machine.
type Phase string

const (
	PhaseWelcome  Phase = "welcome"
	PhaseFollowup Phase = "followup"
	PhaseRegular  Phase = "regular"
)

// Default schedule constants. Deployments may override them via config.
const (
	DefaultFollowupCount = 5
	followupWindowStart  = 48 * time.Hour
	followupWindowEnd    = 72 * time.Hour
)

// TierPolicy is the delivery cadence for one subscription tier.
type TierPolicy struct {
	Interval time.Duration
	Count    int
}

// DefaultTiers returns the shipped premium/free cadences.
func DefaultTiers() map[profile.Tier]TierPolicy {
	return map[profile.Tier]TierPolicy{
		profile.TierPremium: {Interval: 48 * time.Hour, Count: 15},
		profile.TierFree:    {Interval: 168 * time.Hour, Count: 6},
	}
}

// Decision is the scheduler's verdict for one user this cycle.
type Decision struct {
	Deliver             bool
	Phase               Phase
	Count               int
	CompletesOnboarding bool
}

// Schedule evaluates the welcome -> followup(48h) -> regular state machine.
type Schedule struct {
	tiers         map[profile.Tier]TierPolicy
	followupCount int
}

// NewSchedule builds a schedule; nil tiers and a non-positive followup
// count fall back to the defaults.
func NewSchedule(tiers map[profile.Tier]TierPolicy, followupCount int) *Schedule {
	if tiers == nil {
		tiers = DefaultTiers()
	}
	if followupCount <= 0 {
		followupCount = DefaultFollowupCount
	}
	return &Schedule{tiers: tiers, followupCount: followupCount}
}

// Decide returns what this user should receive now. A user outside every
// window is skipped this cycle; that is a no-op, not an error.
func (s *Schedule) Decide(p *profile.UserProfile, now time.Time) Decision {
	policy, ok := s.tiers[p.Tier]
	if !ok {
		policy = s.tiers[profile.TierFree]
	}

	// Welcome: the very first delivery, unconstrained by any interval.
	if p.DeliveryCount == 0 {
		return Decision{Deliver: true, Phase: PhaseWelcome, Count: policy.Count}
	}

	if !p.OnboardingComplete {
		sinceSignup := now.Sub(p.SignupAt)
		if sinceSignup >= followupWindowStart && sinceSignup < followupWindowEnd {
			// Exactly one tier-independent followup inside [48h, 72h).
			return Decision{
				Deliver:             true,
				Phase:               PhaseFollowup,
				Count:               s.followupCount,
				CompletesOnboarding: true,
			}
		}
		if sinceSignup < followupWindowStart {
			return Decision{Phase: PhaseFollowup}
		}
		// Window missed; fall through to the regular cadence and let the
		// next delivery close onboarding.
		if now.Sub(p.LastDelivery) >= policy.Interval {
			return Decision{
				Deliver:             true,
				Phase:               PhaseRegular,
				Count:               policy.Count,
				CompletesOnboarding: true,
			}
		}
		return Decision{Phase: PhaseRegular}
	}

	if now.Sub(p.LastDelivery) >= policy.Interval {
		return Decision{Deliver: true, Phase: PhaseRegular, Count: policy.Count}
	}
	return Decision{Phase: PhaseRegular}
}
