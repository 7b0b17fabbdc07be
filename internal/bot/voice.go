package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const voiceCheckInterval = 20 * time.Second

// startVoiceGuard keeps the configured 24/7 voice channel occupied. The
// gateway drops voice sessions on its own schedule, so the guard polls
// and rejoins instead of reacting to disconnect events.
func (b *Bot) startVoiceGuard() {
	go func() {
		ticker := time.NewTicker(voiceCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.ensureVoice()
			case <-b.done:
				return
			}
		}
	}()
}

func (b *Bot) ensureVoice() {
	rec := b.state.Snapshot()
	if !rec.VoiceStay || rec.GuildID == "" || rec.VoiceChannelID == "" {
		return
	}
	if !b.botHasGuildPermission(rec.GuildID, discordgo.PermissionVoiceConnect) {
		return
	}

	if vc := b.session.VoiceConnections[rec.GuildID]; vc != nil {
		if vc.ChannelID == rec.VoiceChannelID {
			return
		}
		vc.Disconnect()
	}

	done := make(chan error, 1)
	go func() {
		_, err := b.session.ChannelVoiceJoin(rec.GuildID, rec.VoiceChannelID, true, true)
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			b.logger.Warn("voice join failed", zap.String("channel", rec.VoiceChannelID), zap.Error(err))
			return
		}
		b.metrics.VoiceReconnects.Inc()
		b.logger.Info("voice channel joined", zap.String("channel", rec.VoiceChannelID))
	case <-time.After(15 * time.Second):
		b.logger.Warn("voice join timed out", zap.String("channel", rec.VoiceChannelID))
	}
}

func (b *Bot) disconnectVoice() {
	rec := b.state.Snapshot()
	if rec.GuildID == "" {
		return
	}
	if vc := b.session.VoiceConnections[rec.GuildID]; vc != nil {
		vc.Disconnect()
	}
}
