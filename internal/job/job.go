// Package job holds the canonical posting model and the normalizer that
// turns source-native payloads into it.
package job

import (
	"strings"
	"time"
	"unicode"
)

// Status is the lifecycle state of a canonical job.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusFiltered Status = "filtered"
)

// WorkMode classifies where the work happens.
type WorkMode string

const (
	WorkModeOnSite WorkMode = "on-site"
	WorkModeHybrid WorkMode = "hybrid"
	WorkModeRemote WorkMode = "remote"
)

// CanonicalJob is the durable, source-agnostic unit of the pipeline.
// DedupeKey is unique among active rows; re-fetching a known posting updates
// LastSeenAt instead of creating a second row.
type CanonicalJob struct {
	DedupeKey      string `json:"dedupe_key"`
	Source         string `json:"source"`
	SourceNativeID string `json:"source_native_id,omitempty"`

	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	City        string `json:"city"`
	Country     string `json:"country"`
	URL         string `json:"url,omitempty"`

	Categories []string `json:"categories,omitempty"`
	Seniority  []string `json:"seniority,omitempty"`
	WorkMode   WorkMode `json:"work_mode"`
	Languages  []string `json:"languages,omitempty"`

	PostedAt    time.Time `json:"posted_at"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`

	IsActive       bool   `json:"is_active"`
	Status         Status `json:"status"`
	FilteredReason string `json:"filtered_reason,omitempty"`
}

// MarkFiltered records a hard-gate rejection. Filtered jobs are kept for
// observability but never enter a matching pool.
func (j *CanonicalJob) MarkFiltered(reason string) {
	j.Status = StatusFiltered
	j.FilteredReason = reason
	j.IsActive = false
}

// Fingerprint is the cheap first-pass duplicate key used by the dedup
// cache: title+company+location, lowercased with whitespace collapsed.
func Fingerprint(title, company, location string) string {
	parts := []string{title, company, location}
	for i, p := range parts {
		parts[i] = collapseWhitespace(strings.ToLower(p))
	}
	return strings.Join(parts, "|")
}

// DedupeKey derives the stable cross-source identity of a posting. The same
// role fetched through two boards collides on purpose so it collapses into
// one row.
func DedupeKey(title, company, city string) string {
	parts := []string{title, company, city}
	for i, p := range parts {
		parts[i] = collapseWhitespace(stripPunctuation(strings.ToLower(p)))
	}
	return strings.Join(parts, "-")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
