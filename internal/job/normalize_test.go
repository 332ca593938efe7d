package job

import (
	"errors"
	"testing"
	"time"

	"github.com/jobsift/jobsift/internal/source"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestNormalizeGraduateAnalystInLondon(t *testing.T) {
	raw := source.RawPosting{
		Title:    "  Graduate  Analyst ",
		Company:  "Acme Ltd",
		Location: "London, UK",
		PostedAt: "2025-03-08",
	}

	j, err := Normalize(raw, "boardA", testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if j.Title != "Graduate Analyst" {
		t.Fatalf("expected trimmed collapsed title, got %q", j.Title)
	}
	if j.City != "London" || j.Country != "United Kingdom" {
		t.Fatalf("expected London/United Kingdom, got %s/%s", j.City, j.Country)
	}
	if len(j.Categories) == 0 {
		t.Fatalf("expected at least one category for an analyst role")
	}
	if len(j.Seniority) == 0 || j.Seniority[0] != "graduate" {
		t.Fatalf("expected graduate seniority, got %v", j.Seniority)
	}
	if j.Status != StatusActive || !j.IsActive {
		t.Fatalf("a normalized posting should start active")
	}
	if !j.PostedAt.Equal(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected posted-at: %s", j.PostedAt)
	}
}

func TestNormalizeRejectsEmptyTitleAndCompany(t *testing.T) {
	cases := []struct {
		raw   source.RawPosting
		field string
	}{
		{source.RawPosting{Title: "   ", Company: "Acme"}, "title"},
		{source.RawPosting{Title: "Engineer", Company: ""}, "company"},
	}

	for _, tc := range cases {
		_, err := Normalize(tc.raw, "boardA", testNow)
		var nerr *NormalizationError
		if !errors.As(err, &nerr) {
			t.Fatalf("expected a NormalizationError, got %v", err)
		}
		if nerr.Field != tc.field {
			t.Fatalf("expected failure on %s, got %s", tc.field, nerr.Field)
		}
	}
}

func TestNormalizeMissingLocationFallsBack(t *testing.T) {
	j, err := Normalize(source.RawPosting{Title: "Engineer", Company: "Acme"}, "boardA", testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if j.City != UnknownLocation || j.Country != UnknownLocation {
		t.Fatalf("expected Unknown markers, got %s/%s", j.City, j.Country)
	}
}

func TestNormalizeRemoteTextSetsRemoteMarkers(t *testing.T) {
	j, err := Normalize(source.RawPosting{
		Title:       "Engineer",
		Company:     "Acme",
		Description: "Fully remote role, work from anywhere",
	}, "boardA", testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if j.City != RemoteLocation || j.Country != RemoteLocation {
		t.Fatalf("expected Remote markers, got %s/%s", j.City, j.Country)
	}
	if j.WorkMode != WorkModeRemote {
		t.Fatalf("expected remote work mode, got %s", j.WorkMode)
	}
}

func TestNormalizeUnparseablePostedAtDefaultsToNow(t *testing.T) {
	j, err := Normalize(source.RawPosting{
		Title:    "Engineer",
		Company:  "Acme",
		Location: "Berlin",
		PostedAt: "three days ago",
	}, "boardA", testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !j.PostedAt.Equal(testNow) {
		t.Fatalf("expected posted-at to default to now, got %s", j.PostedAt)
	}
}

func TestDedupeKeyCollidesAcrossSources(t *testing.T) {
	a, err := Normalize(source.RawPosting{
		Title:    "Backend Developer",
		Company:  "Acme GmbH",
		Location: "Berlin, Germany",
	}, "boardA", testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	b, err := Normalize(source.RawPosting{
		Title:    "Backend  Developer",
		Company:  "ACME GmbH.",
		Location: "Berlin",
	}, "boardB", testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if a.DedupeKey != b.DedupeKey {
		t.Fatalf("the same role on two boards must share a dedupe key: %q vs %q", a.DedupeKey, b.DedupeKey)
	}
}

func TestFingerprintCollapsesCaseAndWhitespace(t *testing.T) {
	a := Fingerprint("Data  Engineer", "Acme", "Paris, France")
	b := Fingerprint("data engineer", " ACME ", "paris,   france")
	if a != b {
		t.Fatalf("fingerprints should match: %q vs %q", a, b)
	}
}

func TestSplitLocationAliases(t *testing.T) {
	cases := []struct {
		in      string
		city    string
		country string
	}{
		{"London", "London", "United Kingdom"},
		{"Smalltown, UK", "Smalltown", "United Kingdom"},
		{"Smalltown", "Smalltown", UnknownLocation},
		{"Remote (EU)", RemoteLocation, RemoteLocation},
		{"", UnknownLocation, UnknownLocation},
	}

	for _, tc := range cases {
		city, country := SplitLocation(tc.in)
		if city != tc.city || country != tc.country {
			t.Fatalf("SplitLocation(%q) = %s/%s, want %s/%s", tc.in, city, country, tc.city, tc.country)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify("Junior Data Engineer", "Hybrid role in Berlin, fluent English required")
	second := Classify("Junior Data Engineer", "Hybrid role in Berlin, fluent English required")

	if len(first.Categories) != len(second.Categories) ||
		len(first.Seniority) != len(second.Seniority) ||
		first.WorkMode != second.WorkMode {
		t.Fatalf("classification is not stable: %+v vs %+v", first, second)
	}
	if first.WorkMode != WorkModeHybrid {
		t.Fatalf("expected hybrid mode, got %s", first.WorkMode)
	}
	if len(first.Languages) == 0 || first.Languages[0] != "en" {
		t.Fatalf("expected english language tag, got %v", first.Languages)
	}
}

func TestClassifyRemoteWinsOverHybrid(t *testing.T) {
	c := Classify("Engineer", "Remote-first with optional hybrid office days")
	if c.WorkMode != WorkModeRemote {
		t.Fatalf("remote should win over hybrid, got %s", c.WorkMode)
	}
}
