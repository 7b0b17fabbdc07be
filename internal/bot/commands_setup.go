package bot

import (
	"context"
	"fmt"
	"strings"

	"imperial-warden/internal/modules/modlog"
	"imperial-warden/internal/perms"
	"imperial-warden/internal/state"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) cmdSetupStaff(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	if !b.botHasGuildPermission(msg.GuildID, discordgo.PermissionManageRoles) {
		return ErrInsufficientPrivilege
	}

	roles, err := session.GuildRoles(msg.GuildID)
	if err != nil {
		return err
	}
	byName := make(map[string]string, len(roles))
	for _, role := range roles {
		if role != nil {
			byName[role.Name] = role.ID
		}
	}

	created := make(map[int]bool, 4)
	tierIDs := make(map[int]string, 4)
	for tier := 1; tier <= 4; tier++ {
		name := perms.TierName(tier)
		if roleID, ok := byName[name]; ok {
			tierIDs[tier] = roleID
			continue
		}
		// Existing role permissions are never touched; only creation.
		role, err := session.GuildRoleCreate(msg.GuildID, &discordgo.RoleParams{Name: name})
		if err != nil {
			return err
		}
		tierIDs[tier] = role.ID
		created[tier] = true
	}

	b.state.Update(func(rec *state.Record) {
		if rec.GuildID == "" {
			rec.GuildID = msg.GuildID
		}
		for tier, roleID := range tierIDs {
			rec.StaffTiers[tier] = roleID
		}
	})
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "staff_roles_configured", "")

	fields := make([]*discordgo.MessageEmbedField, 0, 4)
	for tier := 1; tier <= 4; tier++ {
		status := "existing"
		if created[tier] {
			status = "created"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   perms.TierName(tier),
			Value:  fmt.Sprintf("<@&%s> (%s)", tierIDs[tier], status),
			Inline: true,
		})
	}
	b.replyEmbed(session, msg, b.commandEmbed("Staff Roles", "Staff tier roles are recorded.", b.cfg.Embeds.Action, fields))
	return nil
}

func (b *Bot) cmdWelcome(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	return b.setChannelField(ctx, session, msg, args, "Welcome Channel", func(rec *state.Record, channelID string) {
		rec.WelcomeChannelID = channelID
	})
}

func (b *Bot) cmdUnwelcome(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	return b.clearField(ctx, session, msg, "Welcome Channel", func(rec *state.Record) {
		rec.WelcomeChannelID = ""
	})
}

func (b *Bot) cmdSupportLog(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	return b.setChannelField(ctx, session, msg, args, "Support Log", func(rec *state.Record, channelID string) {
		rec.SupportLogChannelID = channelID
	})
}

func (b *Bot) cmdUnsupportLog(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	return b.clearField(ctx, session, msg, "Support Log", func(rec *state.Record) {
		rec.SupportLogChannelID = ""
	})
}

func (b *Bot) cmdBotLog(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	return b.setChannelField(ctx, session, msg, args, "Bot Log", func(rec *state.Record, channelID string) {
		rec.BotLogChannelID = channelID
	})
}

func (b *Bot) cmdUnbotLog(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	return b.clearField(ctx, session, msg, "Bot Log", func(rec *state.Record) {
		rec.BotLogChannelID = ""
	})
}

func (b *Bot) cmdAutorole(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	roleID := parseRoleArg(msg, args)
	if roleID == "" || !b.roleExists(msg.GuildID, roleID) {
		b.replyEmbed(session, msg, b.commandEmbed("Autorole", "Mention a role or pass its id.", b.cfg.Embeds.Error, nil))
		return nil
	}
	b.state.Update(func(rec *state.Record) {
		rec.AutoroleID = roleID
	})
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "autorole_set", "role="+roleID)
	b.replyEmbed(session, msg, b.commandEmbed("Autorole", "New members will receive <@&"+roleID+">.", b.cfg.Embeds.Action, nil))
	return nil
}

func (b *Bot) cmdUnautorole(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	return b.clearField(ctx, session, msg, "Autorole", func(rec *state.Record) {
		rec.AutoroleID = ""
	})
}

func (b *Bot) cmdSetVC(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	channelID := parseChannelArg(args)
	if channelID == "" {
		b.replyEmbed(session, msg, b.commandEmbed("Voice Presence", "Pass the voice channel id or mention.", b.cfg.Embeds.Error, nil))
		return nil
	}
	channel, err := session.Channel(channelID)
	if err != nil || channel == nil || channel.Type != discordgo.ChannelTypeGuildVoice {
		b.replyEmbed(session, msg, b.commandEmbed("Voice Presence", "That channel is not a voice channel.", b.cfg.Embeds.Error, nil))
		return nil
	}
	b.state.Update(func(rec *state.Record) {
		rec.VoiceChannelID = channelID
		rec.VoiceStay = true
	})
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "voice_stay_enabled", "channel="+channelID)
	b.replyEmbed(session, msg, b.commandEmbed("Voice Presence", "24/7 presence enabled in <#"+channelID+">.", b.cfg.Embeds.Action, nil))
	return nil
}

func (b *Bot) cmdUnsetVC(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = args
	b.state.Update(func(rec *state.Record) {
		rec.VoiceChannelID = ""
		rec.VoiceStay = false
	})
	b.disconnectVoice()
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "voice_stay_disabled", "")
	b.replyEmbed(session, msg, b.commandEmbed("Voice Presence", "24/7 presence disabled.", b.cfg.Embeds.Action, nil))
	return nil
}

func (b *Bot) cmdConfig(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string) error {
	_ = ctx
	_ = args
	rec := b.state.Snapshot()

	tierLines := make([]string, 0, 4)
	for tier := 1; tier <= 4; tier++ {
		value := "not set"
		if roleID := rec.StaffTiers[tier]; roleID != "" {
			value = "<@&" + roleID + ">"
		}
		tierLines = append(tierLines, fmt.Sprintf("%s: %s", perms.TierName(tier), value))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Main Guild", Value: orDash(rec.GuildID), Inline: true},
		{Name: "Welcome", Value: channelMention(rec.WelcomeChannelID), Inline: true},
		{Name: "Support Log", Value: channelMention(rec.SupportLogChannelID), Inline: true},
		{Name: "Bot Log", Value: channelMention(rec.BotLogChannelID), Inline: true},
		{Name: "Autorole", Value: roleMention(rec.AutoroleID), Inline: true},
		{Name: "Voice", Value: fmt.Sprintf("%s (stay=%t)", channelMention(rec.VoiceChannelID), rec.VoiceStay), Inline: true},
		{Name: "Staff Tiers", Value: strings.Join(tierLines, "\n"), Inline: false},
		{Name: "Flags", Value: fmt.Sprintf("panic=%t automod=%t tracking=%t", rec.PanicMode, rec.AutomodEnabled, rec.MessageTracking), Inline: false},
	}
	b.replyEmbed(session, msg, b.commandEmbed("Configuration", "Current guild configuration.", b.cfg.Embeds.Info, fields))
	return nil
}

func (b *Bot) setChannelField(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, args []string, label string, apply func(*state.Record, string)) error {
	channelID := parseChannelArg(args)
	if channelID == "" {
		channelID = msg.ChannelID
	}
	b.state.Update(func(rec *state.Record) {
		if rec.GuildID == "" {
			rec.GuildID = msg.GuildID
		}
		apply(rec, channelID)
	})
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "config_updated", label+" set")
	b.replyEmbed(session, msg, b.commandEmbed(label, "Set to <#"+channelID+">.", b.cfg.Embeds.Action, nil))
	return nil
}

func (b *Bot) clearField(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, label string, apply func(*state.Record)) error {
	b.state.Update(apply)
	b.modlog.Log(ctx, modlog.LevelInfo, msg.GuildID, msg.Author.ID, "config_updated", label+" cleared")
	b.replyEmbed(session, msg, b.commandEmbed(label, "Cleared.", b.cfg.Embeds.Action, nil))
	return nil
}

func parseChannelArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.Trim(args[0], "<#>")
}

func parseRoleArg(msg *discordgo.MessageCreate, args []string) string {
	if len(msg.MentionRoles) > 0 {
		return msg.MentionRoles[0]
	}
	if len(args) == 0 {
		return ""
	}
	return strings.Trim(args[0], "<@&>")
}

func parseUserArg(msg *discordgo.MessageCreate, args []string) string {
	if len(msg.Mentions) > 0 {
		return msg.Mentions[0].ID
	}
	if len(args) == 0 {
		return ""
	}
	return strings.Trim(args[0], "<@!>")
}

func channelMention(channelID string) string {
	if channelID == "" {
		return "not set"
	}
	return "<#" + channelID + ">"
}

func roleMention(roleID string) string {
	if roleID == "" {
		return "not set"
	}
	return "<@&" + roleID + ">"
}
