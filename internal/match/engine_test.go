package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

var poolNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type stubScorer struct {
	name        string
	assessments map[string]*Assessment
	err         error
	calls       int
}

func (s *stubScorer) Name() string { return s.name }

func (s *stubScorer) Score(_ context.Context, j *job.CanonicalJob, _ *profile.UserProfile) (*Assessment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.assessments[j.DedupeKey], nil
}

func poolJob(key string, postedAgo time.Duration) *job.CanonicalJob {
	return &job.CanonicalJob{
		DedupeKey:  key,
		Title:      "Engineer",
		Company:    "Acme",
		City:       "Berlin",
		Country:    "Germany",
		Categories: []string{"software-engineering"},
		Seniority:  []string{"graduate"},
		WorkMode:   job.WorkModeHybrid,
		Languages:  []string{"en"},
		PostedAt:   poolNow.Add(-postedAgo),
		IsActive:   true,
		Status:     job.StatusActive,
	}
}

func matchingUser() *profile.UserProfile {
	return &profile.UserProfile{
		ID:              "u1",
		TargetLocations: []string{"Berlin"},
		Languages:       []string{"en"},
		CareerTags:      []string{"software-engineering"},
		Seniority:       "graduate",
		WorkMode:        "hybrid",
	}
}

func TestFallbackScorerIsDeterministicAndAdditive(t *testing.T) {
	scorer := NewFallbackScorer()
	j := poolJob("a", time.Hour)
	user := matchingUser()

	first, err := scorer.Score(context.Background(), j, user)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	second, err := scorer.Score(context.Background(), j, user)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if first.Score != second.Score || first.Reason != second.Reason {
		t.Fatalf("scores diverged: %+v vs %+v", first, second)
	}
	// All five dimensions line up: 40+25+15+10+10.
	if first.Score != 100 {
		t.Fatalf("expected a perfect 100, got %.1f", first.Score)
	}
	if first.Bucket != BucketExcellent {
		t.Fatalf("expected excellent bucket, got %s", first.Bucket)
	}
}

func TestFallbackScorerPartialCredit(t *testing.T) {
	scorer := NewFallbackScorer()
	j := poolJob("a", time.Hour)
	j.Seniority = nil
	j.WorkMode = job.WorkModeOnSite
	j.Languages = nil

	a, err := scorer.Score(context.Background(), j, matchingUser())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	// Category and location only: 40+25.
	if a.Score != 65 {
		t.Fatalf("expected 65, got %.1f", a.Score)
	}
	if a.Bucket != BucketGood {
		t.Fatalf("expected good bucket, got %s", a.Bucket)
	}
}

func TestFallbackScorerNoOverlap(t *testing.T) {
	scorer := NewFallbackScorer()
	j := poolJob("a", time.Hour)
	j.Categories = []string{"legal"}
	j.Seniority = nil
	j.WorkMode = job.WorkModeOnSite
	j.Languages = nil
	j.City = "Tokyo"
	j.Country = "Japan"

	a, err := scorer.Score(context.Background(), j, matchingUser())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if a.Score != 0 {
		t.Fatalf("expected 0, got %.1f", a.Score)
	}
	if a.Reason != "no preference overlap" {
		t.Fatalf("unexpected reason: %q", a.Reason)
	}
	if a.Bucket != BucketFair {
		t.Fatalf("expected fair bucket, got %s", a.Bucket)
	}
}

func TestMatchUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubScorer{
		name: "stub",
		assessments: map[string]*Assessment{
			"a": {Score: 90, Reason: "strong fit"},
			"b": {Score: 55, Reason: "partial fit"},
		},
	}
	engine := NewEngine(primary, nil, time.Second, zap.NewNop())

	pool := []*job.CanonicalJob{poolJob("a", time.Hour), poolJob("b", 2*time.Hour)}
	results, record := engine.Match(context.Background(), pool, matchingUser(), 0)

	if record.FallbackUsed {
		t.Fatalf("fallback should not run when the primary succeeds")
	}
	if record.MatchAlgorithm != string(AlgorithmPrimary) {
		t.Fatalf("expected primary algorithm, got %s", record.MatchAlgorithm)
	}
	if len(results) != 2 || results[0].Job.DedupeKey != "a" {
		t.Fatalf("expected a ranked first, got %+v", results)
	}
	if results[0].Bucket != BucketExcellent {
		t.Fatalf("expected a derived bucket, got %s", results[0].Bucket)
	}
}

func TestMatchFallsBackOnPrimaryError(t *testing.T) {
	primary := &stubScorer{name: "stub", err: errors.New("model unavailable")}
	engine := NewEngine(primary, nil, time.Second, zap.NewNop())

	pool := []*job.CanonicalJob{poolJob("a", time.Hour), poolJob("b", 2*time.Hour)}
	results, record := engine.Match(context.Background(), pool, matchingUser(), 0)

	if !record.FallbackUsed {
		t.Fatalf("expected the fallback to run")
	}
	if record.MatchAlgorithm != string(AlgorithmFallback) {
		t.Fatalf("expected fallback algorithm, got %s", record.MatchAlgorithm)
	}
	if record.ErrorMessage == "" {
		t.Fatalf("expected the primary error to be recorded")
	}
	if !record.Success {
		t.Fatalf("a degraded run is still a successful run")
	}
	if len(results) != 2 {
		t.Fatalf("expected a full fallback result set, got %d", len(results))
	}
	for _, r := range results {
		if r.Algorithm != AlgorithmFallback {
			t.Fatalf("mixed algorithms in one ranking: %s", r.Algorithm)
		}
	}
}

type blockingScorer struct{}

func (blockingScorer) Name() string { return "blocking" }

func (blockingScorer) Score(ctx context.Context, _ *job.CanonicalJob, _ *profile.UserProfile) (*Assessment, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestMatchFallsBackWhenPrimaryTimesOut(t *testing.T) {
	engine := NewEngine(blockingScorer{}, nil, 10*time.Millisecond, zap.NewNop())

	pool := []*job.CanonicalJob{poolJob("a", time.Hour)}
	results, record := engine.Match(context.Background(), pool, matchingUser(), 0)

	if !record.FallbackUsed {
		t.Fatalf("a primary timeout should trigger the fallback")
	}
	if len(results) != 1 || results[0].Algorithm != AlgorithmFallback {
		t.Fatalf("expected fallback results after the timeout, got %+v", results)
	}
}

func TestMatchFallsBackOnEmptyPrimaryResults(t *testing.T) {
	primary := &stubScorer{name: "stub", assessments: map[string]*Assessment{}}
	engine := NewEngine(primary, nil, time.Second, zap.NewNop())

	pool := []*job.CanonicalJob{poolJob("a", time.Hour)}
	results, record := engine.Match(context.Background(), pool, matchingUser(), 0)

	if !record.FallbackUsed {
		t.Fatalf("an empty primary result set should trigger the fallback")
	}
	if len(results) != 1 {
		t.Fatalf("expected one fallback result, got %d", len(results))
	}
}

func TestMatchNilPrimaryGoesStraightToFallback(t *testing.T) {
	engine := NewEngine(nil, nil, 0, zap.NewNop())

	pool := []*job.CanonicalJob{poolJob("a", time.Hour)}
	results, record := engine.Match(context.Background(), pool, matchingUser(), 0)

	if !record.FallbackUsed || len(results) != 1 {
		t.Fatalf("expected a fallback-only run, got %+v", record)
	}
}

func TestMatchSkipsInactiveAndIrrelevantJobs(t *testing.T) {
	inactive := poolJob("inactive", time.Hour)
	inactive.IsActive = false
	inactive.Status = job.StatusInactive

	filtered := poolJob("filtered", time.Hour)
	filtered.MarkFiltered("stale")

	eligible := func(j *job.CanonicalJob, _ *profile.UserProfile) bool {
		return j.DedupeKey != "blocked"
	}

	engine := NewEngine(nil, eligible, 0, zap.NewNop())
	pool := []*job.CanonicalJob{inactive, filtered, poolJob("blocked", time.Hour), poolJob("a", time.Hour)}

	results, record := engine.Match(context.Background(), pool, matchingUser(), 0)
	if len(results) != 1 || results[0].Job.DedupeKey != "a" {
		t.Fatalf("expected only the eligible active job, got %+v", results)
	}
	if record.MatchesGenerated != 1 {
		t.Fatalf("expected matchesGenerated=1, got %d", record.MatchesGenerated)
	}
}

func TestMatchEmptyPoolIsZeroMatchesNotAnError(t *testing.T) {
	engine := NewEngine(nil, nil, 0, zap.NewNop())
	results, record := engine.Match(context.Background(), nil, matchingUser(), 0)

	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if !record.Success || record.MatchesGenerated != 0 {
		t.Fatalf("an empty pool is a legitimate zero-match run: %+v", record)
	}
	// No scorer ran, so the record must not claim a fallback-scored run.
	if record.MatchAlgorithm != string(AlgorithmNone) || record.FallbackUsed {
		t.Fatalf("a zero-candidate run should report no algorithm: %+v", record)
	}
}

func TestRankTiesBreakByRecency(t *testing.T) {
	primary := &stubScorer{
		name: "stub",
		assessments: map[string]*Assessment{
			"old": {Score: 80},
			"new": {Score: 80},
		},
	}
	engine := NewEngine(primary, nil, time.Second, zap.NewNop())

	pool := []*job.CanonicalJob{poolJob("old", 48*time.Hour), poolJob("new", time.Hour)}
	results, _ := engine.Match(context.Background(), pool, matchingUser(), 0)

	if results[0].Job.DedupeKey != "new" {
		t.Fatalf("equal scores should rank the newer posting first")
	}
}

func TestMatchTruncatesAfterRanking(t *testing.T) {
	primary := &stubScorer{
		name: "stub",
		assessments: map[string]*Assessment{
			"a": {Score: 30},
			"b": {Score: 90},
			"c": {Score: 60},
		},
	}
	engine := NewEngine(primary, nil, time.Second, zap.NewNop())

	pool := []*job.CanonicalJob{poolJob("a", time.Hour), poolJob("b", time.Hour), poolJob("c", time.Hour)}
	results, record := engine.Match(context.Background(), pool, matchingUser(), 2)

	if len(results) != 2 {
		t.Fatalf("expected the list truncated to 2, got %d", len(results))
	}
	if results[0].Job.DedupeKey != "b" || results[1].Job.DedupeKey != "c" {
		t.Fatalf("truncation must happen after ranking, got %s then %s",
			results[0].Job.DedupeKey, results[1].Job.DedupeKey)
	}
	if record.MatchesGenerated != 2 {
		t.Fatalf("expected matchesGenerated=2, got %d", record.MatchesGenerated)
	}
}

func TestClampBounds(t *testing.T) {
	if Clamp(-5) != 0 || Clamp(120) != 100 || Clamp(42) != 42 {
		t.Fatalf("Clamp is not bounding to [0,100]")
	}
}

func TestBucketForScoreBoundaries(t *testing.T) {
	cases := []struct {
		score  float64
		bucket Bucket
	}{
		{75, BucketExcellent},
		{74.9, BucketGood},
		{50, BucketGood},
		{49.9, BucketFair},
		{0, BucketFair},
	}
	for _, tc := range cases {
		if got := BucketForScore(tc.score); got != tc.bucket {
			t.Fatalf("BucketForScore(%.1f) = %s, want %s", tc.score, got, tc.bucket)
		}
	}
}
