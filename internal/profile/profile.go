// Package profile holds the read-only user preference model consumed by
// matching and distribution.
package profile

import "time"

// Tier is the subscription level controlling delivery frequency and count.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// UserProfile is a read-only input to matching. Delivery bookkeeping
// (LastDelivery, DeliveryCount, OnboardingComplete) is mutated only through
// the user store, atomically per user.
type UserProfile struct {
	ID    string
	Email string

	TargetLocations []string // normalized city or country names
	Languages       []string // spoken language codes
	CareerTags      []string // category tags the user is after
	Seniority       string   // e.g. "graduate"
	WorkMode        string   // "" means no preference

	Tier               Tier
	SignupAt           time.Time
	LastDelivery       time.Time
	DeliveryCount      int
	OnboardingComplete bool
}
