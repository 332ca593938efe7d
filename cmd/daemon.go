package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/logger"
)

const defaultIntervalHours = 6

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run recurring ingest-and-deliver cycles on an interval",
	Run: func(_ *cobra.Command, _ []string) {
		daemon()
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func daemon() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fatalBootstrap("creating a logger", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	p, cleanup, err := buildPipeline(ctx, config, log)
	if err != nil {
		log.Fatal("building the pipeline", zap.Error(err))
	}
	defer cleanup()

	interval := config.IntervalHours
	if interval <= 0 {
		interval = defaultIntervalHours
	}
	spec := fmt.Sprintf("@every %dh", interval)

	runCycle := func() {
		if err := p.Run(ctx); err != nil {
			log.Error("pipeline cycle failed", zap.Error(err))
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, runCycle); err != nil {
		log.Fatal("registering the cron job", zap.Error(err))
	}

	c.Start()
	log.Info("daemon started", zap.String("spec", spec))

	// Populate the feed immediately instead of waiting for the first tick.
	go runCycle()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()
	<-c.Stop().Done()
}
