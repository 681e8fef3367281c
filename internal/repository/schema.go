package repository

import (
	"context"
	"fmt"
)

// Bootstrap DDL, executed at startup. Mirrors the table shapes the bot has
// always used; CREATE IF NOT EXISTS keeps restarts idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id  BIGINT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS chats (
		chat_id       BIGINT PRIMARY KEY,
		title         TEXT NOT NULL DEFAULT '',
		members_count INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS riddles (
		id          BIGSERIAL PRIMARY KEY,
		chat_id     BIGINT NOT NULL,
		creator_id  BIGINT NOT NULL,
		riddle_text TEXT NOT NULL,
		answer      TEXT NOT NULL,
		prize       TEXT NOT NULL DEFAULT '',
		photo_id    TEXT NOT NULL DEFAULT '',
		time_limit  INT,
		hint        TEXT,
		hint_delay  INT,
		message_id  INT,
		active      BOOLEAN NOT NULL DEFAULT FALSE,
		start_time  TIMESTAMPTZ,
		end_time    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS riddles_active_message_idx
		ON riddles (chat_id, message_id) WHERE active`,
	`CREATE TABLE IF NOT EXISTS scores (
		user_id BIGINT NOT NULL,
		chat_id BIGINT NOT NULL,
		points  INT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, chat_id)
	)`,
}

func (r *Repository) InitSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
