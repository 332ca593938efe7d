package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobsift/jobsift/internal/source"
)

const (
	app = "jobsift"
)

// Config is the full configuration surface, unmarshalled by viper.
type Config struct {
	Queries   []string `mapstructure:"queries"`
	Locations []string `mapstructure:"locations"`

	DatabaseURL string `mapstructure:"database-url"`
	RedisURL    string `mapstructure:"redis-url"`

	StalenessDays int `mapstructure:"staleness-days"`
	DedupTTLDays  int `mapstructure:"dedup-ttl-days"`
	Concurrency   int `mapstructure:"concurrency"`
	IntervalHours int `mapstructure:"interval-hours"`

	Sources  *SourcesConfig  `mapstructure:"sources"`
	Scorer   *ScorerConfig   `mapstructure:"scorer"`
	Delivery *DeliveryConfig `mapstructure:"delivery"`
}

// SourceLimits is the per-source budget every enabled source must carry.
type SourceLimits struct {
	DailyBudget int           `mapstructure:"daily-budget"`
	MinInterval time.Duration `mapstructure:"min-interval"`
}

type SourcesConfig struct {
	Adzuna  *AdzunaConfig   `mapstructure:"adzuna"`
	Boards  []BoardSource   `mapstructure:"boards"`
	Careers []CareersSource `mapstructure:"careers"`
}

type AdzunaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	AppID   string `mapstructure:"app-id"`
	AppKey  string `mapstructure:"app-key"`
	Country string `mapstructure:"country"`

	Limits SourceLimits `mapstructure:",squash"`
}

type BoardSource struct {
	source.BoardConfig `mapstructure:",squash"`

	Limits SourceLimits `mapstructure:",squash"`
}

type CareersSource struct {
	source.CareersConfig `mapstructure:",squash"`

	Limits SourceLimits `mapstructure:",squash"`
}

type ScorerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type DeliveryConfig struct {
	Tiers         map[string]*TierConfig `mapstructure:"tiers"`
	FollowupCount int                    `mapstructure:"followup-count"`
}

type TierConfig struct {
	IntervalHours int `mapstructure:"interval-hours"`
	Count         int `mapstructure:"count"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobsift pulls postings from external job boards and delivers ranked matches per user",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database-url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("redis-url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsift.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
