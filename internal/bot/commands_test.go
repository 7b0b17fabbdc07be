package bot

import (
	"context"
	"testing"

	"imperial-warden/internal/config"
	"imperial-warden/internal/metrics"
	"imperial-warden/internal/modules/activity"
	"imperial-warden/internal/modules/modlog"
	"imperial-warden/internal/modules/spamguard"
	"imperial-warden/internal/modules/staffwatch"
	"imperial-warden/internal/state"
	"imperial-warden/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Token = "test-token"
	logger := zap.NewNop()

	b, err := New(cfg, logger, store, state.NewManager(state.NewRecord()),
		modlog.NewLogger(store, logger), spamguard.New(), staffwatch.New(),
		activity.New(store, logger), metrics.New())
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	return b
}

func guildMessage(content string, roles ...string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1"},
		Member:    &discordgo.Member{Roles: roles},
	}}
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	b := newTestBot(t)
	rec := b.state.Snapshot()

	if b.dispatch(context.Background(), nil, guildMessage("hello there"), rec) {
		t.Fatalf("plain message must not dispatch")
	}
	if b.dispatch(context.Background(), nil, guildMessage("!unknowncommand"), rec) {
		t.Fatalf("unknown command must not dispatch")
	}
	if b.dispatch(context.Background(), nil, guildMessage("!"), rec) {
		t.Fatalf("bare prefix must not dispatch")
	}
}

func TestDispatchDeniesBelowLevel(t *testing.T) {
	b := newTestBot(t)
	rec := b.state.Update(func(r *state.Record) {
		r.StaffTiers[4] = "overseer-role"
	})

	// A recognized command from an unprivileged member is consumed
	// silently: no handler runs, no reply, no activity counting.
	msg := guildMessage("!setupstaff")
	if !b.dispatch(context.Background(), nil, msg, rec) {
		t.Fatalf("registered command should be consumed even when denied")
	}
}

func TestDispatchDeniesStaffCommandToMembers(t *testing.T) {
	b := newTestBot(t)
	rec := b.state.Update(func(r *state.Record) {
		r.StaffTiers[1] = "staff-role"
	})

	msg := guildMessage("!note @someone text")
	if !b.dispatch(context.Background(), nil, msg, rec) {
		t.Fatalf("denied staff command should still be consumed")
	}
}

func TestCommandRegistry(t *testing.T) {
	b := newTestBot(t)

	for _, name := range []string{
		"setupstaff", "welcome", "unwelcome", "supportlog", "unsupportlog",
		"botlog", "unbotlog", "autorole", "unautorole", "setvc", "unsetvc",
		"vcstatus", "config", "note", "notes", "staff", "profile",
		"panic", "unpanic", "status",
	} {
		if _, ok := b.commands[name]; !ok {
			t.Fatalf("command %q not registered", name)
		}
	}
}

func TestSeverityForVerdicts(t *testing.T) {
	if severityFor(spamguard.Kick) != "severe" {
		t.Fatalf("kick verdict should map to severe")
	}
	if severityFor(spamguard.Mute) != "major" {
		t.Fatalf("mute verdict should map to major")
	}
	if severityFor(spamguard.Warn) != "minor" {
		t.Fatalf("warn verdict should map to minor")
	}
}
