package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/dedup"
	"github.com/jobsift/jobsift/internal/deliver"
	"github.com/jobsift/jobsift/internal/gate"
	"github.com/jobsift/jobsift/internal/governor"
	"github.com/jobsift/jobsift/internal/logger"
	"github.com/jobsift/jobsift/internal/match"
	"github.com/jobsift/jobsift/internal/match/gemini"
	"github.com/jobsift/jobsift/internal/pipeline"
	"github.com/jobsift/jobsift/internal/profile"
	"github.com/jobsift/jobsift/internal/secrets"
	"github.com/jobsift/jobsift/internal/source"
	"github.com/jobsift/jobsift/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full ingest-and-deliver cycle",
	Run: func(_ *cobra.Command, _ []string) {
		runOnce()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce() {
	ctx := context.Background()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fatalBootstrap("creating a logger", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting jobsift", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	p, cleanup, err := buildPipeline(ctx, config, log)
	if err != nil {
		log.Fatal("building the pipeline", zap.Error(err))
	}
	defer cleanup()

	if err := p.Run(ctx); err != nil {
		log.Fatal("pipeline cycle failed", zap.Error(err))
	}

	log.Info("cycle complete")
}

// buildPipeline validates the config and assembles every component. The
// returned cleanup closes the store and cache connections.
func buildPipeline(ctx context.Context, config *Config, log *zap.Logger) (*pipeline.Pipeline, func(), error) {
	if err := validateConfig(config); err != nil {
		return nil, nil, err
	}

	adapters, limits, err := buildSources(config.Sources, log)
	if err != nil {
		return nil, nil, err
	}

	cleanups := make([]func(), 0, 2)
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	pg, err := store.NewPostgres(ctx, config.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, pg.Close)

	cache, cacheCleanup, err := buildCache(ctx, config)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cacheCleanup != nil {
		cleanups = append(cleanups, cacheCleanup)
	}

	primary, err := buildPrimaryScorer(ctx, config.Scorer, log)
	if err != nil {
		// A broken scorer config must not take ingestion down with it;
		// matching falls back to the deterministic scorer.
		log.Warn("primary scorer unavailable, matching will use the fallback scorer", zap.Error(err))
	}

	chain := gate.NewChain(time.Duration(config.StalenessDays)*24*time.Hour, log)

	var timeout time.Duration
	if config.Scorer != nil {
		timeout = config.Scorer.Timeout
	}
	engine := match.NewEngine(primary, chain.Relevant, timeout, log)

	p := pipeline.New(pipeline.Options{
		Adapters:    adapters,
		Governor:    governor.New(limits, nil),
		Retry:       source.NewRetryPolicy(0, 0, log),
		Cache:       cache,
		Chain:       chain,
		Engine:      engine,
		Schedule:    buildSchedule(config.Delivery),
		Sink:        &deliver.LogSink{Logger: log},
		Jobs:        pg,
		Users:       pg,
		Queries:     config.Queries,
		Locations:   config.Locations,
		Concurrency: config.Concurrency,
	}, log)

	return p, cleanup, nil
}

func validateConfig(config *Config) error {
	if config == nil {
		return errors.New("config is required")
	}
	if config.DatabaseURL == "" {
		return errors.New("database-url is required (or set DATABASE_URL)")
	}
	if config.Sources == nil {
		return errors.New("at least one source must be configured under sources")
	}
	if len(config.Queries) == 0 {
		return errors.New("at least one search query is required under queries")
	}
	if len(config.Locations) == 0 {
		return errors.New("at least one location is required under locations")
	}
	return nil
}

// buildSources turns the sources config into adapters plus governor limits.
// An enabled source without a budget is a configuration error: budgets are
// the one thing the pipeline refuses to guess.
func buildSources(cfg *SourcesConfig, log *zap.Logger) ([]source.Adapter, map[string]governor.Limits, error) {
	var adapters []source.Adapter
	limits := make(map[string]governor.Limits)

	register := func(a source.Adapter, l SourceLimits) error {
		if l.DailyBudget <= 0 {
			return fmt.Errorf("source %s: daily-budget is required", a.Name())
		}
		if l.MinInterval <= 0 {
			return fmt.Errorf("source %s: min-interval is required", a.Name())
		}
		adapters = append(adapters, a)
		limits[a.Name()] = governor.Limits{
			DailyBudget: l.DailyBudget,
			MinInterval: l.MinInterval,
		}
		return nil
	}

	if cfg.Adzuna != nil && cfg.Adzuna.Enabled {
		a := source.NewAdzuna(cfg.Adzuna.AppID, cfg.Adzuna.AppKey, cfg.Adzuna.Country, log)
		if err := register(a, cfg.Adzuna.Limits); err != nil {
			return nil, nil, err
		}
	}

	for _, board := range cfg.Boards {
		a, err := source.NewJSONBoard(board.BoardConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := register(a, board.Limits); err != nil {
			return nil, nil, err
		}
	}

	for _, careers := range cfg.Careers {
		a, err := source.NewCareersPage(careers.CareersConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := register(a, careers.Limits); err != nil {
			return nil, nil, err
		}
	}

	if len(adapters) == 0 {
		return nil, nil, errors.New("no sources are enabled")
	}
	return adapters, limits, nil
}

func buildCache(ctx context.Context, config *Config) (dedup.Cache, func(), error) {
	ttl := 7 * 24 * time.Hour
	if config.DedupTTLDays > 0 {
		ttl = time.Duration(config.DedupTTLDays) * 24 * time.Hour
	}

	if config.RedisURL != "" {
		cache, err := dedup.NewRedisCache(ctx, config.RedisURL, ttl)
		if err != nil {
			return nil, nil, err
		}
		return cache, func() { cache.Close() }, nil
	}

	cache := dedup.NewMemoryCache(ttl)
	cache.StartSweeper(ctx, time.Hour)
	return cache, nil, nil
}

func buildPrimaryScorer(ctx context.Context, cfg *ScorerConfig, log *zap.Logger) (match.Scorer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when the scorer is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set scorer.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := log.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewScorer(generator, cfg.MaxLogLength, genLogger), nil
}

func buildSchedule(cfg *DeliveryConfig) *deliver.Schedule {
	if cfg == nil {
		return deliver.NewSchedule(nil, 0)
	}

	tiers := deliver.DefaultTiers()
	for name, tc := range cfg.Tiers {
		if tc == nil || tc.IntervalHours <= 0 || tc.Count <= 0 {
			continue
		}
		tiers[profile.Tier(strings.ToLower(name))] = deliver.TierPolicy{
			Interval: time.Duration(tc.IntervalHours) * time.Hour,
			Count:    tc.Count,
		}
	}

	return deliver.NewSchedule(tiers, cfg.FollowupCount)
}

func fatalBootstrap(msg string, err error) {
	log.Fatalf("%s: %s", msg, err)
}
