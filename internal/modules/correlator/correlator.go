package correlator

import (
	"context"
	"time"

	"imperial-warden/internal/utils"

	"go.uber.org/zap"
)

type Kind string

const (
	KindBan     Kind = "ban"
	KindKick    Kind = "kick"
	KindTimeout Kind = "timeout"
)

const (
	settleDelay = time.Second
	fetchLimit  = 5
	kickMaxAge  = 15 * time.Second
	dedupWindow = 10 * time.Second
)

// Entry is one audit-log record, already resolved by the platform layer.
type Entry struct {
	ActorID   string
	TargetID  string
	Reason    string
	CreatedAt time.Time
}

// Notification describes a manual moderator action worth reporting.
type Notification struct {
	GuildID  string
	TargetID string
	ActorID  string
	Reason   string
	Kind     Kind
	Until    *time.Time
}

type Config struct {
	// Fetch reads the most recent audit entries for the action kind.
	Fetch func(guildID string, kind Kind, limit int) ([]Entry, error)
	// BotID is this bot's own user id; matching actors are skipped.
	BotID func() string
	// Notify delivers the DM and staff-log side effects.
	Notify func(ctx context.Context, n Notification)
}

type Module struct {
	cfg    Config
	dedup  *utils.RecentActions
	logger *zap.Logger
	sleep  func(time.Duration)
	clock  func() time.Time
}

func New(cfg Config, logger *zap.Logger) *Module {
	return &Module{
		cfg:    cfg,
		dedup:  utils.NewRecentActions(dedupWindow),
		logger: logger,
		sleep:  time.Sleep,
		clock:  time.Now,
	}
}

// WithTimers overrides sleep and clock for tests.
func (m *Module) WithTimers(sleep func(time.Duration), clock func() time.Time) {
	m.sleep = sleep
	m.clock = clock
	m.dedup.WithClock(clock)
}

// Stamp pre-marks a (target, kind) pair so the bot's own enforcement is
// not reported as a manual action.
func (m *Module) Stamp(targetID string, kind Kind) {
	m.dedup.Stamp(targetID, string(kind))
}

// HandleEvent correlates a gateway event with the audit log and, when a
// human moderator caused it, notifies the target and the staff log. The
// caller has already verified audit-log read authority.
func (m *Module) HandleEvent(ctx context.Context, guildID, targetID string, kind Kind, until *time.Time) {
	// Give the platform a moment to publish the matching audit entry.
	m.sleep(settleDelay)

	entries, err := m.cfg.Fetch(guildID, kind, fetchLimit)
	if err != nil {
		m.logger.Warn("audit fetch failed", zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	now := m.clock()
	var match *Entry
	for i := range entries {
		entry := entries[i]
		if entry.TargetID != targetID {
			continue
		}
		// Kicks and plain leaves share the member-remove event; stale
		// kick entries belong to an earlier removal.
		if kind == KindKick && now.Sub(entry.CreatedAt) > kickMaxAge {
			continue
		}
		match = &entry
		break
	}
	if match == nil {
		return
	}
	if match.ActorID == m.cfg.BotID() {
		return
	}
	if !m.dedup.Observe(targetID, string(kind)) {
		return
	}

	m.cfg.Notify(ctx, Notification{
		GuildID:  guildID,
		TargetID: targetID,
		ActorID:  match.ActorID,
		Reason:   match.Reason,
		Kind:     kind,
		Until:    until,
	})
}
