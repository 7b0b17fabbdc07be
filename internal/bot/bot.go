package bot

import (
	"context"
	"fmt"
	"time"

	"imperial-warden/internal/config"
	"imperial-warden/internal/metrics"
	"imperial-warden/internal/modules/activity"
	"imperial-warden/internal/modules/correlator"
	"imperial-warden/internal/modules/modlog"
	"imperial-warden/internal/modules/spamguard"
	"imperial-warden/internal/modules/staffwatch"
	"imperial-warden/internal/modules/warnings"
	"imperial-warden/internal/state"
	"imperial-warden/internal/storage"
	"imperial-warden/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// spamFlagCooldown is how long a flagged user is exempt from further
// warn-pipeline invocations, so a single burst yields a single warning.
const spamFlagCooldown = 10 * time.Second

type Bot struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *storage.Store
	state      *state.Manager
	modlog     *modlog.Logger
	spam       *spamguard.Module
	spamFlags  *utils.RecentActions
	warns      *warnings.Pipeline
	correlator *correlator.Module
	staff      *staffwatch.Monitor
	activity   *activity.Tracker
	metrics    *metrics.Metrics
	session    *discordgo.Session
	commands   map[string]command
	startedAt  time.Time
	done       chan struct{}
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, manager *state.Manager, modLogger *modlog.Logger, spam *spamguard.Module, staff *staffwatch.Monitor, tracker *activity.Tracker, meters *metrics.Metrics) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	b := &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		state:     manager,
		modlog:    modLogger,
		spam:      spam,
		spamFlags: utils.NewRecentActions(spamFlagCooldown),
		staff:     staff,
		activity:  tracker,
		metrics:   meters,
		session:   session,
		done:      make(chan struct{}),
	}

	b.correlator = correlator.New(correlator.Config{
		Fetch:  b.fetchAuditEntries,
		BotID:  b.botUserID,
		Notify: b.notifyManualAction,
	}, logger)
	b.warns = warnings.New(store, modLogger, sessionActions{bot: b}, func(userID, kind string) {
		b.correlator.Stamp(userID, correlator.Kind(kind))
	})

	manager.OnUpdate(func(rec state.Record) {
		if rec.GuildID == "" {
			return
		}
		if err := store.SaveGuildConfig(context.Background(), rec); err != nil {
			logger.Warn("guild config persist failed", zap.Error(err))
		}
	})

	modLogger.SetNotifier(b.notifyModLog)
	b.registerCommands()

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onGuildBanAdd)
	b.session.AddHandler(b.onGuildMemberUpdate)
	b.session.AddHandler(b.onGuildCreate)
	b.session.AddHandler(b.onGuildDelete)

	if err := b.session.Open(); err != nil {
		return err
	}

	b.startedAt = time.Now()
	b.startVoiceGuard()
	b.startWeeklyReset()
	b.startStaffSweep()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	close(b.done)
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("gateway ready", zap.String("user", session.State.User.Username))

	if len(event.Guilds) == 0 {
		return
	}
	guildID := event.Guilds[0].ID
	ctx := context.Background()

	rec, found, err := b.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		b.logger.Warn("guild config load failed", zap.Error(err))
	}
	b.state.Update(func(current *state.Record) {
		if current.GuildID == "" {
			current.GuildID = guildID
		}
		if found && current.GuildID == guildID {
			*current = rec
		}
	})
}

func (b *Bot) onGuildCreate(session *discordgo.Session, event *discordgo.GuildCreate) {
	if event.Guild == nil {
		return
	}
	b.logger.Info("guild available", zap.String("guild_id", event.Guild.ID), zap.String("name", event.Guild.Name))
	b.state.Update(func(rec *state.Record) {
		if rec.GuildID == "" {
			rec.GuildID = event.Guild.ID
		}
	})
}

func (b *Bot) onGuildDelete(session *discordgo.Session, event *discordgo.GuildDelete) {
	if event.Guild == nil {
		return
	}
	b.logger.Warn("guild removed", zap.String("guild_id", event.Guild.ID))
}

func (b *Bot) botUserID() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

// startWeeklyReset drives the activity store's weekly window. The tick
// runs daily; the tracker fires only on ISO Mondays.
func (b *Bot) startWeeklyReset() {
	go func() {
		select {
		case <-time.After(30 * time.Second):
		case <-b.done:
			return
		}
		b.weeklyTick()
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.weeklyTick()
			case <-b.done:
				return
			}
		}
	}()
}

func (b *Bot) weeklyTick() {
	ctx := context.Background()
	rec := b.state.Snapshot()
	mvp, fired, err := b.activity.WeeklyTick(ctx, rec.GuildID)
	if err != nil {
		b.logger.Warn("weekly reset failed", zap.Error(err))
		return
	}
	if !fired || mvp == nil || rec.WelcomeChannelID == "" {
		return
	}
	embed := b.commandEmbed("Weekly MVP",
		fmt.Sprintf("<@%s> led the week with %d messages. Counters start fresh.", mvp.UserID, mvp.MessagesWeek),
		b.cfg.Embeds.Action, nil)
	_, _ = b.session.ChannelMessageSendEmbed(rec.WelcomeChannelID, embed)
}

func (b *Bot) startStaffSweep() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.staffSweep()
			case <-b.done:
				return
			}
		}
	}()
}

func (b *Bot) staffSweep() {
	rec := b.state.Snapshot()
	for _, alert := range b.staff.Sweep() {
		switch alert.Kind {
		case staffwatch.AlertWellness:
			b.directMessage(alert.StaffID, "Wellness Check",
				fmt.Sprintf("You have taken %d moderation actions today. Consider taking a break.", alert.Today))
		case staffwatch.AlertRapidRate:
			ownerID := b.guildOwnerID(rec.GuildID)
			if ownerID == "" {
				continue
			}
			b.directMessage(ownerID, "Unusual Moderation Rate",
				fmt.Sprintf("<@%s> has taken %d actions today at an unusually high rate.", alert.StaffID, alert.Today))
		}
	}
}

func (b *Bot) guildOwnerID(guildID string) string {
	if guildID == "" {
		return ""
	}
	guild, err := b.session.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, _ = b.session.Guild(guildID)
	}
	if guild == nil {
		return ""
	}
	return guild.OwnerID
}

func (b *Bot) notifyModLog(ctx context.Context, entry storage.ModLog) {
	_ = ctx
	rec := b.state.Snapshot()
	if rec.BotLogChannelID == "" {
		return
	}
	userValue := "<@" + entry.UserID + ">"
	if entry.UserID == "" {
		userValue = "system"
	}
	embed := b.commandEmbed("Moderation Log", entry.Event, b.colorForLevel(entry.Level), []*discordgo.MessageEmbedField{
		{Name: "Level", Value: entry.Level, Inline: true},
		{Name: "User", Value: userValue, Inline: true},
		{Name: "Details", Value: orDash(entry.Details), Inline: false},
	})
	_, _ = b.session.ChannelMessageSendEmbed(rec.BotLogChannelID, embed)
}
