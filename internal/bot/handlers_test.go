package bot

import (
	"context"
	"testing"
	"time"

	"imperial-warden/internal/modules/correlator"
	"imperial-warden/internal/modules/modlog"
	"imperial-warden/internal/modules/warnings"
	"imperial-warden/internal/state"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type recordedActions struct {
	events []string
}

func (a *recordedActions) Timeout(guildID, userID string, until time.Time, reason string) error {
	a.events = append(a.events, "timeout")
	return nil
}

func (a *recordedActions) Kick(guildID, userID, reason string) error {
	a.events = append(a.events, "kick")
	return nil
}

func (a *recordedActions) Ban(guildID, userID, reason string) error {
	a.events = append(a.events, "ban")
	return nil
}

func (a *recordedActions) NotifyTarget(userID, title, body string) {
	a.events = append(a.events, "dm:"+title)
}

// withRecordedActions swaps the live platform adapter for a recorder so
// handler tests never reach the network.
func withRecordedActions(b *Bot) *recordedActions {
	actions := &recordedActions{}
	b.warns = warnings.New(b.store, modlog.NewLogger(b.store, zap.NewNop()), actions, func(userID, kind string) {
		b.correlator.Stamp(userID, correlator.Kind(kind))
	})
	return actions
}

func TestMessageHandlerCountsUserMessages(t *testing.T) {
	b := newTestBot(t)

	b.onMessageCreate(nil, guildMessage("just chatting about the weather"))

	stats, found, err := b.activity.Stats(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !found || stats.MessagesTotal != 1 {
		t.Fatalf("expected one counted message, got found=%t stats=%+v", found, stats)
	}
}

func TestMessageHandlerSkipsBots(t *testing.T) {
	b := newTestBot(t)

	msg := guildMessage("beep boop")
	msg.Author.Bot = true
	b.onMessageCreate(nil, msg)

	_, found, err := b.activity.Stats(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if found {
		t.Fatalf("bot messages must not touch the activity store")
	}
}

func TestMessageHandlerSkipsDMs(t *testing.T) {
	b := newTestBot(t)

	msg := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "dm",
		Content:   "hello",
		Author:    &discordgo.User{ID: "u1"},
	}}
	b.onMessageCreate(nil, msg)

	_, found, err := b.activity.Stats(context.Background(), "", "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if found {
		t.Fatalf("direct messages must not touch the activity store")
	}
}

func TestMessageHandlerSkipsCommands(t *testing.T) {
	b := newTestBot(t)

	// A recognized but denied command is consumed and never counted.
	b.onMessageCreate(nil, guildMessage("!setupstaff"))

	_, found, err := b.activity.Stats(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if found {
		t.Fatalf("command messages must not touch the activity store")
	}
}

func TestSpamBurstRecordsOneWarning(t *testing.T) {
	b := newTestBot(t)
	actions := withRecordedActions(b)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		b.onMessageCreate(nil, guildMessage("!!!SPAM!!!"))
	}

	count, err := b.store.CountWarnings(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("count warnings: %v", err)
	}
	if count != 1 {
		t.Fatalf("a single burst must record exactly one warning, got %d", count)
	}
	for _, event := range actions.events {
		if event == "timeout" || event == "kick" || event == "ban" {
			t.Fatalf("a first burst must not escalate: %v", actions.events)
		}
	}

	stats, found, err := b.activity.Stats(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !found || stats.MessagesTotal != 6 {
		t.Fatalf("flagged messages still count toward activity, got found=%t stats=%+v", found, stats)
	}
}

func TestTimeoutAppliedDetection(t *testing.T) {
	future := time.Now().Add(time.Hour)
	member := &discordgo.Member{User: &discordgo.User{ID: "u1"}, CommunicationDisabledUntil: &future}

	event := &discordgo.GuildMemberUpdate{Member: member}
	if _, applied := timeoutApplied(event); !applied {
		t.Fatalf("a fresh timeout should correlate")
	}

	// Nickname or role change on a member already under the same timeout.
	event.BeforeUpdate = &discordgo.Member{CommunicationDisabledUntil: &future}
	if _, applied := timeoutApplied(event); applied {
		t.Fatalf("an unchanged timeout must not re-correlate")
	}

	earlier := future.Add(-30 * time.Minute)
	event.BeforeUpdate = &discordgo.Member{CommunicationDisabledUntil: &earlier}
	if _, applied := timeoutApplied(event); !applied {
		t.Fatalf("an extended timeout should correlate")
	}

	past := time.Now().Add(-time.Hour)
	expired := &discordgo.GuildMemberUpdate{Member: &discordgo.Member{User: &discordgo.User{ID: "u1"}, CommunicationDisabledUntil: &past}}
	if _, applied := timeoutApplied(expired); applied {
		t.Fatalf("an expired timeout must not correlate")
	}
}

func TestMessageHandlerHonorsTrackingFlag(t *testing.T) {
	b := newTestBot(t)
	b.state.Update(func(rec *state.Record) { rec.MessageTracking = false })

	b.onMessageCreate(nil, guildMessage("untracked chatter"))

	_, found, err := b.activity.Stats(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if found {
		t.Fatalf("tracking flag off must disable counting")
	}
}
