package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/profile"
)

// Postgres implements JobStore and UserStore on a pgx pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres connects to databaseURL and verifies connectivity.
func NewPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

const upsertJobSQL = `
INSERT INTO jobs (
  dedupe_key, source, source_native_id, title, company, description,
  location, city, country, url, categories, seniority, work_mode, languages,
  posted_at, first_seen_at, last_seen_at, is_active, status, filtered_reason
) VALUES (
  $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
  $15, $16, $17, $18, $19, NULLIF($20, '')
)
ON CONFLICT (dedupe_key) DO UPDATE SET
  last_seen_at    = EXCLUDED.last_seen_at,
  status          = EXCLUDED.status,
  is_active       = EXCLUDED.is_active,
  filtered_reason = EXCLUDED.filtered_reason
RETURNING (xmax = 0) AS inserted`

func (s *Postgres) UpsertJobs(ctx context.Context, jobs []*job.CanonicalJob) (UpsertStats, error) {
	var stats UpsertStats
	for _, j := range jobs {
		var inserted bool
		err := s.pool.QueryRow(ctx, upsertJobSQL,
			j.DedupeKey, j.Source, j.SourceNativeID, j.Title, j.Company, j.Description,
			j.Location, j.City, j.Country, j.URL, j.Categories, j.Seniority, string(j.WorkMode), j.Languages,
			j.PostedAt, j.FirstSeenAt, j.LastSeenAt, j.IsActive, string(j.Status), j.FilteredReason,
		).Scan(&inserted)
		if err != nil {
			stats.Errors++
			s.logger.Warn("job upsert failed",
				zap.String("dedupe_key", j.DedupeKey),
				zap.Error(err),
			)
			continue
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Updated++
		}
	}
	return stats, nil
}

const loadActiveJobsSQL = `
SELECT dedupe_key, source, source_native_id, title, company, description,
       location, city, country, url, categories, seniority, work_mode, languages,
       posted_at, first_seen_at, last_seen_at, is_active, status, COALESCE(filtered_reason, '')
FROM jobs
WHERE is_active = true AND status = 'active'
  AND ($1 = '' OR source = $1)
  AND ($2 = '' OR $2 = ANY(categories))
  AND ($3 = '' OR country = $3)`

func (s *Postgres) LoadActiveJobs(ctx context.Context, f Filter) ([]*job.CanonicalJob, error) {
	rows, err := s.pool.Query(ctx, loadActiveJobsSQL, f.Source, f.Category, f.Country)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*job.CanonicalJob
	for rows.Next() {
		var j job.CanonicalJob
		var workMode, status string
		if err := rows.Scan(
			&j.DedupeKey, &j.Source, &j.SourceNativeID, &j.Title, &j.Company, &j.Description,
			&j.Location, &j.City, &j.Country, &j.URL, &j.Categories, &j.Seniority, &workMode, &j.Languages,
			&j.PostedAt, &j.FirstSeenAt, &j.LastSeenAt, &j.IsActive, &status, &j.FilteredReason,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.WorkMode = job.WorkMode(workMode)
		j.Status = job.Status(status)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

const loadProfilesSQL = `
SELECT id, email, target_locations, languages, career_tags, seniority,
       work_mode, tier, signup_at, last_delivery, delivery_count, onboarding_complete
FROM user_profiles
WHERE is_active = true`

func (s *Postgres) LoadProfiles(ctx context.Context) ([]*profile.UserProfile, error) {
	rows, err := s.pool.Query(ctx, loadProfilesSQL)
	if err != nil {
		return nil, fmt.Errorf("query user_profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*profile.UserProfile
	for rows.Next() {
		var p profile.UserProfile
		var tier string
		var lastDelivery *time.Time
		if err := rows.Scan(
			&p.ID, &p.Email, &p.TargetLocations, &p.Languages, &p.CareerTags, &p.Seniority,
			&p.WorkMode, &tier, &p.SignupAt, &lastDelivery, &p.DeliveryCount, &p.OnboardingComplete,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.Tier = profile.Tier(tier)
		if lastDelivery != nil {
			p.LastDelivery = *lastDelivery
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

const recordDeliverySQL = `
UPDATE user_profiles
SET last_delivery = $2,
    delivery_count = delivery_count + $3,
    onboarding_complete = onboarding_complete OR $4
WHERE id = $1`

func (s *Postgres) RecordDelivery(ctx context.Context, userID string, delivered int, completesOnboarding bool, at time.Time) error {
	tag, err := s.pool.Exec(ctx, recordDeliverySQL, userID, at, delivered, completesOnboarding)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record delivery: user %s not found", userID)
	}
	return nil
}
