package storage

import (
	"context"
	"time"
)

type Warning struct {
	ID        string
	GuildID   string
	UserID    string
	IssuedBy  string
	Reason    string
	Severity  string
	CreatedAt time.Time
}

type StaffNote struct {
	ID        int64
	GuildID   string
	UserID    string
	AuthorID  string
	Note      string
	CreatedAt time.Time
}

func (s *Store) AddWarning(ctx context.Context, w Warning) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warnings (id, guild_id, user_id, issued_by, reason, severity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.GuildID, w.UserID, w.IssuedBy, w.Reason, w.Severity, w.CreatedAt.Unix())
	return err
}

func (s *Store) CountWarnings(ctx context.Context, guildID, userID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ListWarnings(ctx context.Context, guildID, userID string) ([]Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, issued_by, reason, severity, created_at
		FROM warnings WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at ASC
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Warning
	for rows.Next() {
		var w Warning
		var created int64
		if err := rows.Scan(&w.ID, &w.GuildID, &w.UserID, &w.IssuedBy, &w.Reason, &w.Severity, &created); err != nil {
			return nil, err
		}
		w.CreatedAt = time.Unix(created, 0)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) AddStaffNote(ctx context.Context, n StaffNote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_notes (guild_id, user_id, author_id, note, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.GuildID, n.UserID, n.AuthorID, n.Note, n.CreatedAt.Unix())
	return err
}

func (s *Store) ListStaffNotes(ctx context.Context, guildID, userID string) ([]StaffNote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, author_id, note, created_at
		FROM staff_notes WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at ASC
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StaffNote
	for rows.Next() {
		var n StaffNote
		var created int64
		if err := rows.Scan(&n.ID, &n.GuildID, &n.UserID, &n.AuthorID, &n.Note, &created); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(created, 0)
		out = append(out, n)
	}
	return out, rows.Err()
}
