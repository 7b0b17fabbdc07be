package activity

import (
	"context"
	"time"

	"imperial-warden/internal/storage"

	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Tracker fronts the persistent per-user message counters and owns the
// weekly reset decision.
type Tracker struct {
	store  *storage.Store
	logger *zap.Logger
	clock  Clock

	lastResetYear int
	lastResetWeek int
}

func New(store *storage.Store, logger *zap.Logger) *Tracker {
	return &Tracker{store: store, logger: logger, clock: realClock{}}
}

func (t *Tracker) WithClock(clock Clock) {
	t.clock = clock
}

func (t *Tracker) HandleMessage(ctx context.Context, guildID, userID string) {
	if err := t.store.IncrementUserStats(ctx, userID, guildID, t.clock.Now()); err != nil {
		t.logger.Warn("user stats increment failed", zap.Error(err))
	}
}

func (t *Tracker) Stats(ctx context.Context, guildID, userID string) (storage.UserStats, bool, error) {
	return t.store.GetUserStats(ctx, userID, guildID)
}

func (t *Tracker) Top(ctx context.Context, guildID string, limit int) ([]storage.UserStats, error) {
	return t.store.TopUsers(ctx, guildID, limit)
}

// WeeklyTick fires the reset on the first tick seen on an ISO Monday.
// Returns the pre-reset weekly leader when the reset ran. The in-memory
// week marker is lost on restart, so a restart straddling Monday may
// reset twice; accepted.
func (t *Tracker) WeeklyTick(ctx context.Context, guildID string) (*storage.UserStats, bool, error) {
	now := t.clock.Now().UTC()
	if now.Weekday() != time.Monday {
		return nil, false, nil
	}
	year, week := now.ISOWeek()
	if year == t.lastResetYear && week == t.lastResetWeek {
		return nil, false, nil
	}

	var mvp *storage.UserStats
	if guildID != "" {
		top, err := t.store.TopUsers(ctx, guildID, 1)
		if err == nil && len(top) > 0 && top[0].MessagesWeek > 0 {
			mvp = &top[0]
		}
	}

	if err := t.store.ResetWeeklyStats(ctx); err != nil {
		return nil, false, err
	}
	t.lastResetYear = year
	t.lastResetWeek = week
	t.logger.Info("weekly stats reset", zap.Int("iso_year", year), zap.Int("iso_week", week))
	return mvp, true, nil
}
