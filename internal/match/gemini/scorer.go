package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/job"
	"github.com/jobsift/jobsift/internal/logger"
	"github.com/jobsift/jobsift/internal/match"
	"github.com/jobsift/jobsift/internal/profile"
)

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Scorer is the primary match.Scorer backed by Gemini.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewScorer wires a generator into the scoring contract.
func NewScorer(generator contentGenerator, maxLogLength int, log *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Scorer{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Name() string { return "gemini" }

// Score builds the prompt for one (job, profile) pair and parses the model's
// JSON verdict. Errors (timeouts, quota, malformed output) bubble up so the
// engine can fall back to the deterministic scorer.
func (s *Scorer) Score(ctx context.Context, j *job.CanonicalJob, p *profile.UserProfile) (*match.Assessment, error) {
	if j == nil {
		return nil, fmt.Errorf("job is required")
	}
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}

	prompt, err := buildPrompt(j, p)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini score request",
		zap.String("dedupe_key", j.DedupeKey),
		zap.String("user_id", p.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini score response",
		zap.String("dedupe_key", j.DedupeKey),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(j *job.CanonicalJob, p *profile.UserProfile) (string, error) {
	profileJSON, err := json.MarshalIndent(map[string]any{
		"target_locations": p.TargetLocations,
		"languages":        p.Languages,
		"career_tags":      p.CareerTags,
		"seniority":        p.Seniority,
		"work_mode":        p.WorkMode,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_JSON}}", string(jobJSON))
	return prompt, nil
}

func parseResponse(raw string) (*match.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("gemini response has no usable score")
	}
	score = match.Clamp(score)

	bucket := match.Bucket(strings.ToLower(coerceString(data["bucket"])))
	switch bucket {
	case match.BucketExcellent, match.BucketGood, match.BucketFair:
	default:
		bucket = match.BucketForScore(score)
	}

	return &match.Assessment{
		Score:  score,
		Reason: coerceString(data["reason"]),
		Bucket: bucket,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
