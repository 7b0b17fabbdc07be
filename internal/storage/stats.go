package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type UserStats struct {
	UserID        string
	GuildID       string
	MessagesWeek  int64
	MessagesTotal int64
	LastMessageTS time.Time
}

// IncrementUserStats upserts the per-(user, guild) counters in a single
// statement so insert and update stay atomic.
func (s *Store) IncrementUserStats(ctx context.Context, userID, guildID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_stats (user_id, guild_id, messages_week, messages_total, last_message_ts)
		VALUES (?, ?, 1, 1, ?)
		ON CONFLICT(user_id, guild_id) DO UPDATE SET
			messages_week = messages_week + 1,
			messages_total = messages_total + 1,
			last_message_ts = excluded.last_message_ts
	`, userID, guildID, at.Unix())
	return err
}

func (s *Store) GetUserStats(ctx context.Context, userID, guildID string) (UserStats, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, guild_id, messages_week, messages_total, last_message_ts
		FROM user_stats WHERE user_id = ? AND guild_id = ?
	`, userID, guildID)

	var stats UserStats
	var lastTS int64
	err := row.Scan(&stats.UserID, &stats.GuildID, &stats.MessagesWeek, &stats.MessagesTotal, &lastTS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserStats{}, false, nil
		}
		return UserStats{}, false, err
	}
	stats.LastMessageTS = time.Unix(lastTS, 0)
	return stats, true, nil
}

func (s *Store) TopUsers(ctx context.Context, guildID string, limit int) ([]UserStats, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, guild_id, messages_week, messages_total, last_message_ts
		FROM user_stats WHERE guild_id = ?
		ORDER BY messages_week DESC
		LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserStats
	for rows.Next() {
		var stats UserStats
		var lastTS int64
		if err := rows.Scan(&stats.UserID, &stats.GuildID, &stats.MessagesWeek, &stats.MessagesTotal, &lastTS); err != nil {
			return nil, err
		}
		stats.LastMessageTS = time.Unix(lastTS, 0)
		out = append(out, stats)
	}
	return out, rows.Err()
}

// ResetWeeklyStats zeroes every weekly counter. Totals are untouched.
func (s *Store) ResetWeeklyStats(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `UPDATE user_stats SET messages_week = 0`)
	return err
}
