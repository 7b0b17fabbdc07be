package bot

import (
	"time"

	"imperial-warden/internal/modules/modlog"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) replyEmbed(session *discordgo.Session, msg *discordgo.MessageCreate, embed *discordgo.MessageEmbed) {
	if embed == nil {
		return
	}
	_, _ = session.ChannelMessageSendEmbed(msg.ChannelID, embed)
}

func (b *Bot) colorForLevel(level string) int {
	switch level {
	case modlog.LevelCrit:
		return b.cfg.Embeds.Error
	case modlog.LevelWarn:
		return b.cfg.Embeds.Warning
	default:
		return b.cfg.Embeds.Info
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
