package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// sessionActions adapts the live session to the warn pipeline's surface.
type sessionActions struct {
	bot *Bot
}

func (a sessionActions) Timeout(guildID, userID string, until time.Time, reason string) error {
	_ = reason
	return a.bot.session.GuildMemberTimeout(guildID, userID, &until)
}

func (a sessionActions) Kick(guildID, userID, reason string) error {
	return a.bot.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (a sessionActions) Ban(guildID, userID, reason string) error {
	return a.bot.session.GuildBanCreateWithReason(guildID, userID, reason, 0)
}

func (a sessionActions) NotifyTarget(userID, title, body string) {
	a.bot.directMessage(userID, title, body)
}

// directMessage delivers a DM embed. Delivery failures are transient and
// swallowed.
func (b *Bot) directMessage(userID, title, body string) {
	if userID == "" {
		return
	}
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(channel.ID, b.commandEmbed(title, body, b.cfg.Embeds.Info, nil))
}

func (b *Bot) memberIsAdmin(guildID string, member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	guild, err := b.session.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, _ = b.session.Guild(guildID)
	}
	if guild == nil {
		return false
	}
	if member.User != nil && member.User.ID == guild.OwnerID {
		return true
	}
	return memberPermissions(guild, member)&discordgo.PermissionAdministrator != 0
}

func (b *Bot) botHasGuildPermission(guildID string, permission int64) bool {
	botID := b.botUserID()
	if botID == "" || guildID == "" {
		return false
	}
	guild, err := b.session.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, _ = b.session.Guild(guildID)
	}
	if guild == nil {
		return false
	}
	member := b.memberForUser(guildID, botID)
	if member == nil {
		return false
	}
	perms := memberPermissions(guild, member)
	return perms&discordgo.PermissionAdministrator != 0 || perms&permission != 0
}

func (b *Bot) memberForUser(guildID, userID string) *discordgo.Member {
	member, err := b.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(guildID, userID)
	return member
}

func (b *Bot) roleExists(guildID, roleID string) bool {
	guild, err := b.session.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, _ = b.session.Guild(guildID)
	}
	if guild == nil {
		return false
	}
	for _, role := range guild.Roles {
		if role != nil && role.ID == roleID {
			return true
		}
	}
	return false
}

func memberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	perms := int64(0)
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			perms |= role.Permissions
			break
		}
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	return perms
}
