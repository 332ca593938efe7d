// Package governor enforces per-source request budgets and pacing. Every
// adapter call reserves a slot first: the day counter rolls over at local
// midnight, a spent budget rejects the call, and a min-interval limiter
// makes same-source callers queue while different sources stay independent.
package governor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jobsift/jobsift/internal/utils"
)

// ErrBudgetExceeded means the source spent its daily request budget.
// Recoverable at the next day rollover; other sources are unaffected.
var ErrBudgetExceeded = errors.New("daily request budget exceeded")

// Clock is injected so tests can drive day rollovers without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Limits holds the configured budget for one source.
type Limits struct {
	DailyBudget int
	MinInterval time.Duration
}

// SourceBudgetState tracks consumption for one source.
type SourceBudgetState struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	used        int
	lastRequest time.Time
	day         string // local date of the last reset, "2006-01-02"
}

// Governor gates adapter calls for all configured sources.
type Governor struct {
	mu     sync.Mutex
	clock  Clock
	limits map[string]Limits
	states map[string]*SourceBudgetState

	wait func(ctx context.Context, d time.Duration) error
}

// New builds a governor for the given per-source limits. A nil clock means
// wall time.
func New(limits map[string]Limits, clock Clock) *Governor {
	if clock == nil {
		clock = systemClock{}
	}
	return &Governor{
		clock:  clock,
		limits: limits,
		states: make(map[string]*SourceBudgetState),
		wait:   utils.WaitFor,
	}
}

// Reserve blocks until the source may issue its next request, then counts
// it. It returns ErrBudgetExceeded when today's budget is spent. The state
// lock is held across the interval wait so concurrent callers for the same
// source are serialized; callers for other sources never block here.
func (g *Governor) Reserve(ctx context.Context, source string) error {
	st, limits, err := g.state(source)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	now := g.clock.Now()
	day := now.Format("2006-01-02")
	if st.day != day {
		st.day = day
		st.used = 0
	}

	if st.used >= limits.DailyBudget {
		return fmt.Errorf("source %s: %w", source, ErrBudgetExceeded)
	}

	if limits.MinInterval > 0 {
		res := st.limiter.ReserveN(now, 1)
		if d := res.DelayFrom(now); d > 0 {
			if err := g.wait(ctx, d); err != nil {
				res.CancelAt(now)
				return err
			}
		}
	}

	st.used++
	st.lastRequest = g.clock.Now()
	return nil
}

// Remaining reports how many requests the source may still issue today.
func (g *Governor) Remaining(source string) int {
	st, limits, err := g.state(source)
	if err != nil {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.day != g.clock.Now().Format("2006-01-02") {
		return limits.DailyBudget
	}
	left := limits.DailyBudget - st.used
	if left < 0 {
		return 0
	}
	return left
}

// LastRequest reports when the source last issued a request.
func (g *Governor) LastRequest(source string) time.Time {
	st, _, err := g.state(source)
	if err != nil {
		return time.Time{}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lastRequest
}

func (g *Governor) state(source string) (*SourceBudgetState, Limits, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	limits, ok := g.limits[source]
	if !ok {
		return nil, Limits{}, fmt.Errorf("source %s has no configured limits", source)
	}

	st, ok := g.states[source]
	if !ok {
		limit := rate.Inf
		if limits.MinInterval > 0 {
			limit = rate.Every(limits.MinInterval)
		}
		st = &SourceBudgetState{
			limiter: rate.NewLimiter(limit, 1),
			day:     g.clock.Now().Format("2006-01-02"),
		}
		g.states[source] = st
	}

	return st, limits, nil
}
