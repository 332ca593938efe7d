// Package source defines the adapter contract for external job boards and
// the adapters shipped with the pipeline. An adapter knows how to issue one
// page-request against one source and translate the raw response into
// RawPosting records. Adapters are stateless per call; pacing and budgets
// are enforced by the governor, not here.
package source

import (
	"context"
	"errors"
)

// ErrRateLimited is returned by adapters when the underlying source answers
// with HTTP 429. The retry policy treats it as transient.
var ErrRateLimited = errors.New("source rate limited")

// RawPosting is the source-native shape of a job posting. It lives only for
// the duration of one fetch and is converted to a canonical job by the
// normalizer.
type RawPosting struct {
	ExternalID  string         `json:"external_id,omitempty"`
	Title       string         `json:"title"`
	Company     string         `json:"company"`
	Location    string         `json:"location,omitempty"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	PostedAt    string         `json:"posted_at,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Adapter is implemented once per external source.
type Adapter interface {
	Name() string
	// PageSize reports how many results a full page carries. The fetch loop
	// stops paging once a page comes back shorter than this.
	PageSize() int
	// FetchPage requests a single page (1-based) of postings for the given
	// query and location. It returns ErrRateLimited on HTTP 429.
	FetchPage(ctx context.Context, query, location string, page int) ([]RawPosting, error)
}
