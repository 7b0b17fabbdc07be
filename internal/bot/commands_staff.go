package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"imperial-warden/internal/modules/modlog"
	"imperial-warden/internal/state"
	"imperial-warden/internal/storage"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) cmdVCStatus(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = ctx
	_ = args
	rec := b.state.Snapshot()
	if rec.VoiceChannelID == "" {
		return ErrNotConfigured
	}

	connected := "no"
	if vc := session.VoiceConnections[msg.GuildID]; vc != nil && vc.ChannelID == rec.VoiceChannelID {
		connected = "yes"
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Channel", Value: channelMention(rec.VoiceChannelID), Inline: true},
		{Name: "24/7", Value: fmt.Sprintf("%t", rec.VoiceStay), Inline: true},
		{Name: "Connected", Value: connected, Inline: true},
	}
	b.replyEmbed(session, msg, b.commandEmbed("Voice Status", "Current voice presence.", b.cfg.Embeds.Info, fields))
	return nil
}

func (b *Bot) cmdNote(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	userID := parseUserArg(msg, args)
	if userID == "" || len(args) < 2 {
		b.replyEmbed(session, msg, b.commandEmbed("Staff Note", "Usage: note @user <text>", b.cfg.Embeds.Error, nil))
		return nil
	}
	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		b.replyEmbed(session, msg, b.commandEmbed("Staff Note", "The note text is empty.", b.cfg.Embeds.Error, nil))
		return nil
	}

	err := b.store.AddStaffNote(ctx, storage.StaffNote{
		GuildID:   msg.GuildID,
		UserID:    userID,
		AuthorID:  msg.Author.ID,
		Note:      text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "staff_note_added", "target="+userID)
	b.replyEmbed(session, msg, b.commandEmbed("Staff Note", "Note recorded for <@"+userID+">.", b.cfg.Embeds.Action, nil))
	return nil
}

func (b *Bot) cmdNotes(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	userID := parseUserArg(msg, args)
	if userID == "" {
		b.replyEmbed(session, msg, b.commandEmbed("Staff Notes", "Usage: notes @user", b.cfg.Embeds.Error, nil))
		return nil
	}

	notes, err := b.store.ListStaffNotes(ctx, msg.GuildID, userID)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		b.replyEmbed(session, msg, b.commandEmbed("Staff Notes", "No notes for <@"+userID+">.", b.cfg.Embeds.Info, nil))
		return nil
	}

	// Oldest first; a long history is cut to the most recent ten.
	if len(notes) > 10 {
		notes = notes[len(notes)-10:]
	}
	fields := make([]*discordgo.MessageEmbedField, 0, len(notes))
	for _, n := range notes {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   n.CreatedAt.UTC().Format("2006-01-02 15:04") + " by " + "<@" + n.AuthorID + ">",
			Value:  truncate(n.Note, 512),
			Inline: false,
		})
	}
	b.replyEmbed(session, msg, b.commandEmbed("Staff Notes", "Notes for <@"+userID+">.", b.cfg.Embeds.Info, fields))
	return nil
}

func (b *Bot) cmdStaff(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	logged, err := b.store.CountModLogs(ctx, msg.GuildID, midnight)
	if err != nil {
		return err
	}

	stats := b.staff.Snapshot()
	fields := make([]*discordgo.MessageEmbedField, 0, len(stats)+1)
	fields = append(fields, &discordgo.MessageEmbedField{
		Name: "Logged Today", Value: fmt.Sprintf("%d", logged), Inline: true,
	})
	for i, item := range stats {
		if i >= 10 {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("#%d", i+1),
			Value:  fmt.Sprintf("<@%s> — %d total, %d today", item.StaffID, item.Actions, item.Today),
			Inline: false,
		})
	}
	b.replyEmbed(session, msg, b.commandEmbed("Staff Activity", "Moderation counters since start.", b.cfg.Embeds.Info, fields))
	return nil
}

func (b *Bot) cmdProfile(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	userID := parseUserArg(msg, args)
	if userID == "" {
		userID = msg.Author.ID
	}

	stats, found, err := b.activity.Stats(ctx, msg.GuildID, userID)
	if err != nil {
		return err
	}
	warnCount, err := b.store.CountWarnings(ctx, msg.GuildID, userID)
	if err != nil {
		return err
	}

	lastSeen := "never"
	week := int64(0)
	total := int64(0)
	if found {
		week = stats.MessagesWeek
		total = stats.MessagesTotal
		lastSeen = stats.LastMessageTS.UTC().Format("2006-01-02 15:04")
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Messages This Week", Value: fmt.Sprintf("%d", week), Inline: true},
		{Name: "Messages Total", Value: fmt.Sprintf("%d", total), Inline: true},
		{Name: "Last Message", Value: lastSeen, Inline: true},
		{Name: "Warnings", Value: fmt.Sprintf("%d", warnCount), Inline: true},
	}
	b.replyEmbed(session, msg, b.commandEmbed("Member Profile", "<@"+userID+">", b.cfg.Embeds.Info, fields))
	return nil
}

func (b *Bot) cmdPanic(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	b.state.Update(func(rec *state.Record) {
		rec.PanicMode = true
	})

	slow := 10
	if _, err := session.ChannelEditComplex(msg.ChannelID, &discordgo.ChannelEdit{RateLimitPerUser: &slow}); err != nil {
		b.modlog.Log(ctx, modlog.LevelWarn, msg.GuildID, msg.Author.ID, "panic_slowmode_failed", err.Error())
	}
	detail := "channel=" + msg.ChannelID
	if reason := strings.TrimSpace(strings.Join(args, " ")); reason != "" {
		detail += " reason=" + reason
	}
	b.modlog.Log(ctx, modlog.LevelCrit, msg.GuildID, msg.Author.ID, "panic_enabled", detail)
	b.replyEmbed(session, msg, b.commandEmbed("Panic Mode",
		"Panic mode is on. This channel is in 10s slowmode.", b.cfg.Embeds.Error, nil))
	return nil
}

func (b *Bot) cmdUnpanic(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	b.state.Update(func(rec *state.Record) {
		rec.PanicMode = false
	})

	slow := 0
	if _, err := session.ChannelEditComplex(msg.ChannelID, &discordgo.ChannelEdit{RateLimitPerUser: &slow}); err != nil {
		b.modlog.Log(ctx, modlog.LevelWarn, msg.GuildID, msg.Author.ID, "panic_slowmode_failed", err.Error())
	}
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "panic_disabled", "channel="+msg.ChannelID)
	b.replyEmbed(session, msg, b.commandEmbed("Panic Mode", "Panic mode is off.", b.cfg.Embeds.Action, nil))
	return nil
}

func (b *Bot) cmdStatus(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = ctx
	_ = args
	rec := b.state.Snapshot()

	uptime := time.Since(b.startedAt).Truncate(time.Second)
	members := 0
	if guild, err := session.State.Guild(msg.GuildID); err == nil && guild != nil {
		members = guild.MemberCount
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Uptime", Value: uptime.String(), Inline: true},
		{Name: "Latency", Value: session.HeartbeatLatency().Truncate(time.Millisecond).String(), Inline: true},
		{Name: "Guilds", Value: fmt.Sprintf("%d", len(session.State.Guilds)), Inline: true},
		{Name: "Members", Value: fmt.Sprintf("%d", members), Inline: true},
		{Name: "Panic", Value: fmt.Sprintf("%t", rec.PanicMode), Inline: true},
		{Name: "Automod", Value: fmt.Sprintf("%t", rec.AutomodEnabled), Inline: true},
		{Name: "Tracking", Value: fmt.Sprintf("%t", rec.MessageTracking), Inline: true},
	}
	b.replyEmbed(session, msg, b.commandEmbed("Status", "Operational summary.", b.cfg.Embeds.Info, fields))
	return nil
}
