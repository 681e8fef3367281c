package repository

import (
	"context"
	"database/sql"
	"errors"

	"riddlebot/internal/model"

	"github.com/Masterminds/squirrel"
)

type chatRow struct {
	ChatID       int64  `db:"chat_id"`
	Title        string `db:"title"`
	MembersCount int    `db:"members_count"`
}

func (r *Repository) UpsertChat(ctx context.Context, chat *model.Chat) error {
	query, args, err := squirrel.
		Insert("chats").
		SetMap(map[string]interface{}{
			"chat_id":       chat.ChatID,
			"title":         chat.Title,
			"members_count": chat.MembersCount,
		}).
		Suffix("ON CONFLICT (chat_id) DO UPDATE SET title = EXCLUDED.title, members_count = EXCLUDED.members_count").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) GetChat(ctx context.Context, chatID int64) (*model.Chat, error) {
	var row chatRow
	query, args, err := squirrel.
		Select("chat_id", "title", "members_count").
		From("chats").
		Where(squirrel.Eq{"chat_id": chatID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Chat{ChatID: row.ChatID, Title: row.Title, MembersCount: row.MembersCount}, nil
}

func (r *Repository) ListChats(ctx context.Context) ([]*model.Chat, error) {
	query, args, err := squirrel.
		Select("chat_id", "title", "members_count").
		From("chats").
		OrderBy("chat_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []chatRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	chats := make([]*model.Chat, len(rows))
	for i, row := range rows {
		chats[i] = &model.Chat{ChatID: row.ChatID, Title: row.Title, MembersCount: row.MembersCount}
	}
	return chats, nil
}

// DeleteChat drops an unreachable chat and its riddles.
func (r *Repository) DeleteChat(ctx context.Context, chatID int64) error {
	deleteChat, chatArgs, err := squirrel.
		Delete("chats").
		Where(squirrel.Eq{"chat_id": chatID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err = r.db.ExecContext(ctx, deleteChat, chatArgs...); err != nil {
		return err
	}

	return r.DeleteChatRiddles(ctx, chatID)
}

type chatStatsRow struct {
	Chats   int `db:"chats"`
	Members int `db:"members"`
}

func (r *Repository) ChatStats(ctx context.Context) (chats, members int, err error) {
	query, args, err := squirrel.
		Select("COUNT(*) AS chats", "COALESCE(SUM(members_count), 0) AS members").
		From("chats").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, 0, err
	}

	var row chatStatsRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return 0, 0, err
	}

	return row.Chats, row.Members, nil
}
