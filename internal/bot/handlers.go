package bot

import (
	"context"
	"time"

	"imperial-warden/internal/modules/correlator"
	"imperial-warden/internal/modules/spamguard"
	"imperial-warden/internal/perms"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	b.metrics.MessagesSeen.Inc()

	ctx := context.Background()
	rec := b.state.Snapshot()

	member := msg.Member
	if member != nil && member.User == nil {
		member.User = msg.Author
	}

	if b.dispatch(ctx, session, msg, rec) {
		return
	}

	if rec.AutomodEnabled && perms.Level(member, rec.StaffTiers) < perms.LevelStaff {
		verdict, reason := b.spam.Inspect(spamguard.Sample{
			UserID:    msg.Author.ID,
			ChannelID: msg.ChannelID,
			Content:   msg.Content,
			Mentions:  len(msg.Mentions),
			At:        time.Now(),
		})
		b.metrics.SpamVerdicts.WithLabelValues(verdict.String()).Inc()
		// One burst, one warning: further flags on the same user are
		// suppressed until the cooldown expires.
		if verdict != spamguard.Clean && b.spamFlags.Observe(msg.Author.ID, "spam") {
			severity := severityFor(verdict)
			if _, _, err := b.warns.Warn(ctx, msg.GuildID, msg.Author.ID, b.botUserID(), "automod: "+reason, severity); err != nil {
				b.logger.Warn("warn pipeline failed", zap.Error(err))
			}
			b.metrics.WarningsIssued.Inc()
		}
	}

	if rec.MessageTracking {
		b.activity.HandleMessage(ctx, msg.GuildID, msg.Author.ID)
	}
}

func severityFor(verdict spamguard.Verdict) string {
	switch verdict {
	case spamguard.Kick:
		return "severe"
	case spamguard.Mute:
		return "major"
	default:
		return "minor"
	}
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.Member == nil || event.Member.User == nil {
		return
	}
	rec := b.state.Snapshot()
	if rec.GuildID == "" || event.GuildID != rec.GuildID {
		return
	}

	if rec.AutoroleID != "" && b.roleExists(rec.GuildID, rec.AutoroleID) {
		if err := session.GuildMemberRoleAdd(rec.GuildID, event.Member.User.ID, rec.AutoroleID); err != nil {
			b.logger.Warn("autorole grant failed", zap.Error(err))
		}
	}

	if rec.WelcomeChannelID != "" {
		embed := b.commandEmbed("A New Arrival",
			"Welcome <@"+event.Member.User.ID+"> to the server.",
			b.cfg.Embeds.Info, nil)
		_, _ = session.ChannelMessageSendEmbed(rec.WelcomeChannelID, embed)
	}
}

func (b *Bot) onGuildBanAdd(session *discordgo.Session, event *discordgo.GuildBanAdd) {
	if event.User == nil || event.GuildID == "" {
		return
	}
	if !b.botHasGuildPermission(event.GuildID, discordgo.PermissionViewAuditLogs) {
		return
	}
	go b.correlator.HandleEvent(context.Background(), event.GuildID, event.User.ID, correlator.KindBan, nil)
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.Member == nil || event.Member.User == nil || event.GuildID == "" {
		return
	}
	if !b.botHasGuildPermission(event.GuildID, discordgo.PermissionViewAuditLogs) {
		return
	}
	go b.correlator.HandleEvent(context.Background(), event.GuildID, event.Member.User.ID, correlator.KindKick, nil)
}

func (b *Bot) onGuildMemberUpdate(session *discordgo.Session, event *discordgo.GuildMemberUpdate) {
	if event.Member == nil || event.Member.User == nil || event.GuildID == "" {
		return
	}
	until, applied := timeoutApplied(event)
	if !applied {
		return
	}
	if !b.botHasGuildPermission(event.GuildID, discordgo.PermissionViewAuditLogs) {
		return
	}
	go b.correlator.HandleEvent(context.Background(), event.GuildID, event.Member.User.ID, correlator.KindTimeout, until)
}

// timeoutApplied reports whether this update put the member into a
// timeout it was not already under. Member updates carry nickname and
// role changes too; those must not re-correlate an older timeout.
func timeoutApplied(event *discordgo.GuildMemberUpdate) (*time.Time, bool) {
	until := event.Member.CommunicationDisabledUntil
	if until == nil || until.Before(time.Now()) {
		return nil, false
	}
	if event.BeforeUpdate != nil {
		prev := event.BeforeUpdate.CommunicationDisabledUntil
		if prev != nil && prev.Equal(*until) {
			return nil, false
		}
	}
	return until, true
}

func (b *Bot) fetchAuditEntries(guildID string, kind correlator.Kind, limit int) ([]correlator.Entry, error) {
	var action discordgo.AuditLogAction
	switch kind {
	case correlator.KindBan:
		action = discordgo.AuditLogActionMemberBanAdd
	case correlator.KindKick:
		action = discordgo.AuditLogActionMemberKick
	case correlator.KindTimeout:
		action = discordgo.AuditLogActionMemberUpdate
	default:
		return nil, nil
	}

	logs, err := b.session.GuildAuditLog(guildID, "", "", int(action), limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		return nil, nil
	}

	entries := make([]correlator.Entry, 0, len(logs.AuditLogEntries))
	for _, raw := range logs.AuditLogEntries {
		if raw == nil {
			continue
		}
		createdAt := time.Now()
		if ts, err := discordgo.SnowflakeTimestamp(raw.ID); err == nil {
			createdAt = ts
		}
		entries = append(entries, correlator.Entry{
			ActorID:   raw.UserID,
			TargetID:  raw.TargetID,
			Reason:    raw.Reason,
			CreatedAt: createdAt,
		})
	}
	return entries, nil
}

func (b *Bot) notifyManualAction(ctx context.Context, n correlator.Notification) {
	b.metrics.ManualActions.WithLabelValues(string(n.Kind)).Inc()
	b.staff.RecordAction(n.ActorID)

	reason := orDash(n.Reason)
	title := ""
	body := ""
	switch n.Kind {
	case correlator.KindBan:
		title = "Imperial Banishment"
		body = "You have been banned by <@" + n.ActorID + ">. Reason: " + reason
	case correlator.KindKick:
		title = "Imperial Expulsion"
		body = "You have been kicked by <@" + n.ActorID + ">. Reason: " + reason
	case correlator.KindTimeout:
		title = "Imperial Detention"
		body = "You have been timed out by <@" + n.ActorID + ">. Reason: " + reason
		if n.Until != nil {
			body += " Until: " + n.Until.UTC().Format(time.RFC1123)
		}
	}
	b.directMessage(n.TargetID, title, body)

	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: "<@" + n.TargetID + ">", Inline: true},
		{Name: "Moderator", Value: "<@" + n.ActorID + ">", Inline: true},
		{Name: "Action", Value: string(n.Kind), Inline: true},
		{Name: "Reason", Value: reason, Inline: false},
	}
	if n.Kind == correlator.KindTimeout && n.Until != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Until", Value: n.Until.UTC().Format(time.RFC1123), Inline: true,
		})
	}
	rec := b.state.Snapshot()
	embed := b.commandEmbed("Manual Moderation Detected", "An action was taken outside the bot.", b.cfg.Embeds.Warning, fields)
	if rec.BotLogChannelID != "" {
		_, _ = b.session.ChannelMessageSendEmbed(rec.BotLogChannelID, embed)
	}
	if rec.SupportLogChannelID != "" && rec.SupportLogChannelID != rec.BotLogChannelID {
		_, _ = b.session.ChannelMessageSendEmbed(rec.SupportLogChannelID, embed)
	}
}
