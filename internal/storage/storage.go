package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"imperial-warden/internal/state"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type ModLog struct {
	ID        int64
	GuildID   string
	UserID    string
	Level     string
	Event     string
	Details   string
	CreatedAt time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// modernc sqlite serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent handler goroutines.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

func (s *Store) GetGuildConfig(ctx context.Context, guildID string) (state.Record, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT welcome_channel_id, support_log_channel_id, bot_log_channel_id,
		autorole_id, voice_channel_id, voice_stay,
		tier1_role_id, tier2_role_id, tier3_role_id, tier4_role_id,
		panic_mode, automod_enabled, message_tracking
		FROM guild_config WHERE guild_id = ?`, guildID)

	rec := state.NewRecord()
	rec.GuildID = guildID

	var voiceStay, panicMode, automod, tracking int
	var tier1, tier2, tier3, tier4 string
	err := row.Scan(
		&rec.WelcomeChannelID,
		&rec.SupportLogChannelID,
		&rec.BotLogChannelID,
		&rec.AutoroleID,
		&rec.VoiceChannelID,
		&voiceStay,
		&tier1, &tier2, &tier3, &tier4,
		&panicMode, &automod, &tracking,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, false, nil
		}
		return state.Record{}, false, err
	}

	rec.VoiceStay = voiceStay == 1
	rec.PanicMode = panicMode == 1
	rec.AutomodEnabled = automod == 1
	rec.MessageTracking = tracking == 1
	for tier, roleID := range map[int]string{1: tier1, 2: tier2, 3: tier3, 4: tier4} {
		if roleID != "" {
			rec.StaffTiers[tier] = roleID
		}
	}
	return rec, true, nil
}

func (s *Store) SaveGuildConfig(ctx context.Context, rec state.Record) error {
	if rec.GuildID == "" {
		return errors.New("guild id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_config (
			guild_id, welcome_channel_id, support_log_channel_id, bot_log_channel_id,
			autorole_id, voice_channel_id, voice_stay,
			tier1_role_id, tier2_role_id, tier3_role_id, tier4_role_id,
			panic_mode, automod_enabled, message_tracking
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			welcome_channel_id = excluded.welcome_channel_id,
			support_log_channel_id = excluded.support_log_channel_id,
			bot_log_channel_id = excluded.bot_log_channel_id,
			autorole_id = excluded.autorole_id,
			voice_channel_id = excluded.voice_channel_id,
			voice_stay = excluded.voice_stay,
			tier1_role_id = excluded.tier1_role_id,
			tier2_role_id = excluded.tier2_role_id,
			tier3_role_id = excluded.tier3_role_id,
			tier4_role_id = excluded.tier4_role_id,
			panic_mode = excluded.panic_mode,
			automod_enabled = excluded.automod_enabled,
			message_tracking = excluded.message_tracking
	`,
		rec.GuildID,
		rec.WelcomeChannelID,
		rec.SupportLogChannelID,
		rec.BotLogChannelID,
		rec.AutoroleID,
		rec.VoiceChannelID,
		boolToInt(rec.VoiceStay),
		rec.StaffTiers[1],
		rec.StaffTiers[2],
		rec.StaffTiers[3],
		rec.StaffTiers[4],
		boolToInt(rec.PanicMode),
		boolToInt(rec.AutomodEnabled),
		boolToInt(rec.MessageTracking),
	)
	return err
}

func (s *Store) AddModLog(ctx context.Context, entry ModLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mod_log (guild_id, user_id, level, event, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.GuildID, entry.UserID, entry.Level, entry.Event, entry.Details, entry.CreatedAt.Unix())
	return err
}

func (s *Store) CountModLogs(ctx context.Context, guildID string, since time.Time) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM mod_log WHERE guild_id = ? AND created_at >= ?
	`, guildID, since.Unix())
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
