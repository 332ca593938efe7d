package deliver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/match"
)

// Sink accepts a ranked job list for one recipient. Email composition and
// sending live behind this boundary.
type Sink interface {
	Deliver(ctx context.Context, email string, results []*match.Result) error
}

// LogSink writes deliveries to the log instead of sending them. The default
// sink until a mail collaborator is wired in.
type LogSink struct {
	Logger *zap.Logger
}

func (s *LogSink) Deliver(_ context.Context, email string, results []*match.Result) error {
	fields := []zap.Field{
		zap.String("email", email),
		zap.Int("count", len(results)),
	}
	for i, r := range results {
		if i >= 3 {
			break
		}
		fields = append(fields, zap.String(fmt.Sprintf("match_%d", i+1), r.Job.Title+" @ "+r.Job.Company))
	}
	s.Logger.Info("delivering matches", fields...)
	return nil
}
