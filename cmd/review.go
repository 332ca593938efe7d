package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/gate"
	"github.com/jobsift/jobsift/internal/logger"
	"github.com/jobsift/jobsift/internal/match"
	"github.com/jobsift/jobsift/internal/profile"
	"github.com/jobsift/jobsift/internal/store"
)

const promptBack = "back"

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively inspect how the stored pool matches each user",
	Run: func(_ *cobra.Command, _ []string) {
		review()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

// review runs the deterministic scorer against the live pool for a chosen
// user, without delivering anything. Handy when tuning keyword tables or a
// user's preferences.
func review() {
	ctx := context.Background()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fatalBootstrap("creating a logger", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.DatabaseURL == "" {
		log.Fatal("database-url is required (or set DATABASE_URL)")
	}

	pg, err := store.NewPostgres(ctx, config.DatabaseURL, log)
	if err != nil {
		log.Fatal("connecting to the store", zap.Error(err))
	}
	defer pg.Close()

	profiles, err := pg.LoadProfiles(ctx)
	if err != nil {
		log.Fatal("loading profiles", zap.Error(err))
	}
	if len(profiles) == 0 {
		log.Info("exiting", zap.String("reason", "no user profiles found"))
		return
	}

	pool, err := pg.LoadActiveJobs(ctx, store.Filter{})
	if err != nil {
		log.Fatal("loading active jobs", zap.Error(err))
	}

	chain := gate.NewChain(0, log)
	engine := match.NewEngine(nil, chain.Relevant, 0, log)

	for {
		user := pickProfile(profiles)
		if user == nil {
			return
		}

		results, record := engine.Match(ctx, pool, user, 0)
		log.Info("match run",
			zap.String("user_id", user.ID),
			zap.Int("matchesGenerated", record.MatchesGenerated),
		)

		for i, r := range results {
			fmt.Printf("%2d. [%5.1f %-9s] %s @ %s (%s, %s) — %s\n",
				i+1, r.Score, r.Bucket, r.Job.Title, r.Job.Company,
				r.Job.City, r.Job.Country, r.Reason,
			)
		}
		if len(results) == 0 {
			fmt.Println("no eligible candidates for this user")
		}
	}
}

func pickProfile(profiles []*profile.UserProfile) *profile.UserProfile {
	items := make([]string, 0, len(profiles)+1)
	for _, p := range profiles {
		items = append(items, fmt.Sprintf("%s (%s, %s)", p.Email, p.Tier, p.Seniority))
	}
	items = append(items, promptBack)

	prompt := promptui.Select{
		Label: "Choose a user and press ENTER",
		Items: items,
	}

	idx, choice, err := prompt.Run()
	if err != nil || choice == promptBack {
		return nil
	}
	return profiles[idx]
}
