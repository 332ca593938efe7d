package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/jobsift/jobsift/internal/source"
)

// NormalizationError marks a RawPosting that cannot become a canonical job.
// Record-level: the pipeline drops the one posting and continues the batch.
type NormalizationError struct {
	Field  string
	Source string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s posting: %s is empty", e.Source, e.Field)
}

// postedAtLayouts covers the timestamp shapes the shipped sources emit.
var postedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a source-native posting into a CanonicalJob. Only an
// empty title or company fails; a missing location degrades to the
// Remote/Unknown markers and an unparseable posted-at degrades to now.
func Normalize(raw source.RawPosting, src string, now time.Time) (*CanonicalJob, error) {
	title := collapseWhitespace(strings.TrimSpace(raw.Title))
	company := collapseWhitespace(strings.TrimSpace(raw.Company))

	if title == "" {
		return nil, &NormalizationError{Field: "title", Source: src}
	}
	if company == "" {
		return nil, &NormalizationError{Field: "company", Source: src}
	}

	city, country := SplitLocation(raw.Location)
	classification := Classify(title, raw.Description)

	// A location-less posting is treated as remote rather than discarded;
	// the classifier may still have found an explicit mode in the text.
	if city == UnknownLocation && classification.WorkMode == WorkModeRemote {
		city, country = RemoteLocation, RemoteLocation
	}
	if city == RemoteLocation {
		classification.WorkMode = WorkModeRemote
	}

	j := &CanonicalJob{
		DedupeKey:      DedupeKey(title, company, city),
		Source:         src,
		SourceNativeID: strings.TrimSpace(raw.ExternalID),
		Title:          title,
		Company:        company,
		Description:    strings.TrimSpace(raw.Description),
		Location:       strings.TrimSpace(raw.Location),
		City:           city,
		Country:        country,
		URL:            strings.TrimSpace(raw.URL),
		Categories:     classification.Categories,
		Seniority:      classification.Seniority,
		WorkMode:       classification.WorkMode,
		Languages:      classification.Languages,
		PostedAt:       parsePostedAt(raw.PostedAt, now),
		FirstSeenAt:    now,
		LastSeenAt:     now,
		IsActive:       true,
		Status:         StatusActive,
	}

	return j, nil
}

func parsePostedAt(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	for _, layout := range postedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now
}
