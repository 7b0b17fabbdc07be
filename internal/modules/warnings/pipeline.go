package warnings

import (
	"context"
	"fmt"
	"time"

	"imperial-warden/internal/modules/modlog"
	"imperial-warden/internal/storage"

	"github.com/google/uuid"
)

type Escalation int

const (
	EscalateNone Escalation = iota
	EscalateTimeout
	EscalateKick
	EscalateBan
)

const timeoutDuration = time.Hour

func (e Escalation) String() string {
	switch e {
	case EscalateTimeout:
		return "timeout"
	case EscalateKick:
		return "kick"
	case EscalateBan:
		return "ban"
	default:
		return "none"
	}
}

// Escalate maps a post-increment warning count to an action. Pure.
func Escalate(count int) Escalation {
	switch {
	case count >= 7:
		return EscalateBan
	case count == 5:
		return EscalateKick
	case count == 3:
		return EscalateTimeout
	default:
		return EscalateNone
	}
}

// Actions is the platform surface the pipeline needs. The bot implements
// it over the live session; tests fake it.
type Actions interface {
	Timeout(guildID, userID string, until time.Time, reason string) error
	Kick(guildID, userID, reason string) error
	Ban(guildID, userID, reason string) error
	NotifyTarget(userID, title, body string)
}

type Pipeline struct {
	store   *storage.Store
	modlog  *modlog.Logger
	actions Actions
	stamp   func(userID, kind string)
	clock   func() time.Time
}

func New(store *storage.Store, logger *modlog.Logger, actions Actions, stamp func(userID, kind string)) *Pipeline {
	return &Pipeline{
		store:   store,
		modlog:  logger,
		actions: actions,
		stamp:   stamp,
		clock:   time.Now,
	}
}

func (p *Pipeline) WithClock(clock func() time.Time) {
	p.clock = clock
}

// Warn appends a warning record and applies the escalation the new count
// demands. An escalation stamps the correlator dedup map for its action
// kind first so the bot's own enforcement is not re-reported as manual
// moderation.
func (p *Pipeline) Warn(ctx context.Context, guildID, userID, issuedBy, reason, severity string) (int, Escalation, error) {
	now := p.clock()
	record := storage.Warning{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		UserID:    userID,
		IssuedBy:  issuedBy,
		Reason:    reason,
		Severity:  severity,
		CreatedAt: now,
	}
	if err := p.store.AddWarning(ctx, record); err != nil {
		return 0, EscalateNone, err
	}

	count, err := p.store.CountWarnings(ctx, guildID, userID)
	if err != nil {
		return 0, EscalateNone, err
	}

	// Stamp the dedup map before enforcing so the correlator does not
	// treat this escalation as a manual moderator action. Non-escalating
	// warnings leave the map alone: a genuine manual action on the same
	// user must still be reported.
	escalation := Escalate(count)
	if escalation != EscalateNone && p.stamp != nil {
		p.stamp(userID, escalation.String())
	}

	p.actions.NotifyTarget(userID, "Imperial Warning",
		fmt.Sprintf("You have been warned: %s (warning %d)", reason, count))
	p.modlog.Log(ctx, modlog.LevelWarn, guildID, userID, "warning_issued",
		fmt.Sprintf("count=%d severity=%s issued_by=%s reason=%s", count, severity, issuedBy, reason))

	switch escalation {
	case EscalateTimeout:
		until := now.Add(timeoutDuration)
		if err := p.actions.Timeout(guildID, userID, until, reason); err != nil {
			p.modlog.Log(ctx, modlog.LevelWarn, guildID, userID, "action_failed", "timeout failed")
			return count, escalation, nil
		}
		p.actions.NotifyTarget(userID, "Imperial Detention",
			fmt.Sprintf("You are timed out for one hour (until %s): %d warnings", until.UTC().Format(time.RFC1123), count))
		p.modlog.Log(ctx, modlog.LevelWarn, guildID, userID, "escalation_timeout", fmt.Sprintf("count=%d", count))
	case EscalateKick:
		// DM before the removal; afterwards the channel may be gone.
		p.actions.NotifyTarget(userID, "Imperial Expulsion",
			fmt.Sprintf("You have been kicked: %d warnings accumulated", count))
		if err := p.actions.Kick(guildID, userID, reason); err != nil {
			p.modlog.Log(ctx, modlog.LevelWarn, guildID, userID, "action_failed", "kick failed")
			return count, escalation, nil
		}
		p.modlog.Log(ctx, modlog.LevelCrit, guildID, userID, "escalation_kick", fmt.Sprintf("count=%d", count))
	case EscalateBan:
		p.actions.NotifyTarget(userID, "Imperial Banishment",
			fmt.Sprintf("You have been banned: %d warnings accumulated", count))
		if err := p.actions.Ban(guildID, userID, reason); err != nil {
			p.modlog.Log(ctx, modlog.LevelWarn, guildID, userID, "action_failed", "ban failed")
			return count, escalation, nil
		}
		p.modlog.Log(ctx, modlog.LevelCrit, guildID, userID, "escalation_ban", fmt.Sprintf("count=%d", count))
	}

	return count, escalation, nil
}
