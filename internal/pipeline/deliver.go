package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/store"
)

// Deliver runs the match-and-distribute stage for every user whose tier
// window is due. Per-user failures are isolated; only a store outage aborts
// the stage.
func (p *Pipeline) Deliver(ctx context.Context) error {
	profiles, err := p.users.LoadProfiles(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	pool, err := p.jobs.LoadActiveJobs(ctx, store.Filter{})
	if err != nil {
		return fmt.Errorf("load active jobs: %w", err)
	}

	now := p.now()
	delivered, skipped := 0, 0

	for _, user := range profiles {
		decision := p.schedule.Decide(user, now)
		if !decision.Deliver {
			skipped++
			continue
		}

		results, record := p.engine.Match(ctx, pool, user, decision.Count)

		p.logger.Info("match run",
			zap.String("user_id", user.ID),
			zap.String("phase", string(decision.Phase)),
			zap.String("matchAlgorithm", record.MatchAlgorithm),
			zap.Int("matchesGenerated", record.MatchesGenerated),
			zap.Bool("success", record.Success),
			zap.Bool("fallbackUsed", record.FallbackUsed),
			zap.String("errorMessage", record.ErrorMessage),
		)

		// Zero matches is a legitimate outcome: the user simply receives
		// no delivery this cycle.
		if len(results) == 0 {
			continue
		}

		if err := p.sink.Deliver(ctx, user.Email, results); err != nil {
			p.logger.Warn("delivery failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}

		if err := p.users.RecordDelivery(ctx, user.ID, len(results), decision.CompletesOnboarding, now); err != nil {
			p.logger.Warn("recording delivery failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	p.logger.Info("delivery cycle complete",
		zap.Int("users", len(profiles)),
		zap.Int("delivered", delivered),
		zap.Int("skipped", skipped),
	)
	return nil
}
