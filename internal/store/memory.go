package store

import (
	"context"
	"sync"
	"time"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

// Memory implements JobStore and UserStore in process. Used by tests and
// the interactive review command.
type Memory struct {
	mu       sync.Mutex
	jobs     map[string]*job.CanonicalJob
	profiles map[string]*profile.UserProfile
}

func NewMemory() *Memory {
	return &Memory{
		jobs:     make(map[string]*job.CanonicalJob),
		profiles: make(map[string]*profile.UserProfile),
	}
}

func (s *Memory) UpsertJobs(_ context.Context, jobs []*job.CanonicalJob) (UpsertStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats UpsertStats
	for _, j := range jobs {
		existing, ok := s.jobs[j.DedupeKey]
		if !ok {
			clone := *j
			s.jobs[j.DedupeKey] = &clone
			stats.Inserted++
			continue
		}
		existing.LastSeenAt = j.LastSeenAt
		existing.Status = j.Status
		existing.IsActive = j.IsActive
		existing.FilteredReason = j.FilteredReason
		stats.Updated++
	}
	return stats, nil
}

func (s *Memory) LoadActiveJobs(_ context.Context, f Filter) ([]*job.CanonicalJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var jobs []*job.CanonicalJob
	for _, j := range s.jobs {
		if !j.IsActive || j.Status != job.StatusActive {
			continue
		}
		if f.Source != "" && j.Source != f.Source {
			continue
		}
		if f.Country != "" && j.Country != f.Country {
			continue
		}
		if f.Category != "" && !hasCategory(j, f.Category) {
			continue
		}
		clone := *j
		jobs = append(jobs, &clone)
	}
	return jobs, nil
}

// Job returns the stored row for a dedupe key, or nil.
func (s *Memory) Job(dedupeKey string) *job.CanonicalJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[dedupeKey]
	if !ok {
		return nil
	}
	clone := *j
	return &clone
}

// JobCount reports all stored rows, filtered ones included.
func (s *Memory) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// AddProfile seeds a user profile.
func (s *Memory) AddProfile(p *profile.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *p
	s.profiles[p.ID] = &clone
}

func (s *Memory) LoadProfiles(_ context.Context) ([]*profile.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := make([]*profile.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		clone := *p
		profiles = append(profiles, &clone)
	}
	return profiles, nil
}

func (s *Memory) RecordDelivery(_ context.Context, userID string, delivered int, completesOnboarding bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return &NotFoundError{UserID: userID}
	}
	p.LastDelivery = at
	p.DeliveryCount += delivered
	if completesOnboarding {
		p.OnboardingComplete = true
	}
	return nil
}

// Profile returns the stored profile for an ID, or nil.
func (s *Memory) Profile(userID string) *profile.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil
	}
	clone := *p
	return &clone
}

func hasCategory(j *job.CanonicalJob, want string) bool {
	for _, c := range j.Categories {
		if c == want {
			return true
		}
	}
	return false
}

// NotFoundError reports a delivery update against an unknown user.
type NotFoundError struct {
	UserID string
}

func (e *NotFoundError) Error() string {
	return "user " + e.UserID + " not found"
}
