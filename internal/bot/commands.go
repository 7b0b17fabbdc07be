package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"imperial-warden/internal/modules/modlog"
	"imperial-warden/internal/perms"
	"imperial-warden/internal/state"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var (
	// ErrNotAuthorized marks a member below the command's level. Dropped
	// silently so the ladder cannot be probed.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrInsufficientPrivilege marks missing bot-side platform authority.
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	// ErrNotConfigured marks a required configuration id that is unset.
	ErrNotConfigured = errors.New("not configured")
)

type handlerFunc func(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error

type command struct {
	name      string
	minLevel  int
	adminOnly bool
	mutating  bool
	handler   handlerFunc
}

func (b *Bot) registerCommands() {
	list := []command{
		{name: "setupstaff", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdSetupStaff},
		{name: "welcome", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdWelcome},
		{name: "unwelcome", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdUnwelcome},
		{name: "supportlog", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdSupportLog},
		{name: "unsupportlog", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdUnsupportLog},
		{name: "botlog", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdBotLog},
		{name: "unbotlog", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdUnbotLog},
		{name: "autorole", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdAutorole},
		{name: "unautorole", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdUnautorole},
		{name: "setvc", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdSetVC},
		{name: "unsetvc", minLevel: perms.LevelOverseer, mutating: true, handler: b.cmdUnsetVC},
		{name: "vcstatus", minLevel: perms.LevelStaff, handler: b.cmdVCStatus},
		{name: "config", minLevel: perms.LevelOverseer, handler: b.cmdConfig},
		{name: "note", minLevel: perms.LevelStaff, mutating: true, handler: b.cmdNote},
		{name: "notes", minLevel: perms.LevelStaff, handler: b.cmdNotes},
		{name: "staff", minLevel: perms.LevelStaff, handler: b.cmdStaff},
		{name: "profile", minLevel: perms.LevelNone, handler: b.cmdProfile},
		{name: "panic", adminOnly: true, mutating: true, handler: b.cmdPanic},
		{name: "unpanic", adminOnly: true, mutating: true, handler: b.cmdUnpanic},
		{name: "status", minLevel: perms.LevelNone, handler: b.cmdStatus},
	}
	b.commands = make(map[string]command, len(list))
	for _, cmd := range list {
		b.commands[cmd.name] = cmd
	}
}

// dispatch resolves and runs a prefix command. The return value reports
// whether the message was a registered command, including denied ones:
// those never reach the activity counters either.
func (b *Bot) dispatch(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, rec state.Record) bool {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, b.cfg.Prefix) {
		return false
	}
	fields := strings.Fields(strings.TrimPrefix(content, b.cfg.Prefix))
	if len(fields) == 0 {
		return false
	}
	cmd, ok := b.commands[strings.ToLower(fields[0])]
	if !ok {
		return false
	}

	member := msg.Member
	if member != nil && member.User == nil {
		member.User = msg.Author
	}

	// The permission check precedes every mutation; a denial produces no
	// state change and no reply.
	if cmd.adminOnly {
		if !b.memberIsAdmin(msg.GuildID, member) {
			return true
		}
	} else if perms.Level(member, rec.StaffTiers) < cmd.minLevel {
		return true
	}

	b.runCommand(ctx, session, msg, cmd, fields[1:])
	return true
}

func (b *Bot) runCommand(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, cmd command, args []string) {
	defer func() {
		if r := recover(); r != nil {
			detail := truncate(fmt.Sprintf("%v", r), 200)
			b.logger.Error("command panicked", zap.String("command", cmd.name), zap.String("detail", detail))
			b.modlog.Log(ctx, modlog.LevelCrit, msg.GuildID, msg.Author.ID, "command_panic",
				fmt.Sprintf("command=%s detail=%s", cmd.name, detail))
		}
	}()

	err := cmd.handler(ctx, session, msg, args)
	switch {
	case err == nil:
		if cmd.mutating && (cmd.minLevel >= perms.LevelStaff || cmd.adminOnly) {
			b.staff.RecordAction(msg.Author.ID)
		}
	case errors.Is(err, ErrNotAuthorized):
		// Dropped without a reply so the ladder cannot be probed.
	case errors.Is(err, ErrInsufficientPrivilege):
		b.replyEmbed(session, msg, b.commandEmbed("Missing Authority",
			"I lack the platform permission this command needs.", b.cfg.Embeds.Error, nil))
	case errors.Is(err, ErrNotConfigured):
		b.replyEmbed(session, msg, b.commandEmbed("Not Configured",
			"A required channel or role has not been set up yet.", b.cfg.Embeds.Error, nil))
	default:
		detail := truncate(err.Error(), 200)
		b.logger.Error("command failed", zap.String("command", cmd.name), zap.Error(err))
		b.modlog.Log(ctx, modlog.LevelWarn, msg.GuildID, msg.Author.ID, "command_error",
			fmt.Sprintf("command=%s error=%s", cmd.name, detail))
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
