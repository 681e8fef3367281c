package repository

import (
	"context"

	"riddlebot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type scoreRow struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Points   int    `db:"points"`
}

// AwardPoint lazily creates the (user, chat) counter and increments it by one.
// The increment is a per-row SQL expression, never read-modify-write in the
// application, so concurrent awards for different users cannot lose updates.
func (r *Repository) AwardPoint(ctx context.Context, userID, chatID int64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		insertQuery, insertArgs, err := squirrel.
			Insert("scores").
			SetMap(map[string]interface{}{
				"user_id": userID,
				"chat_id": chatID,
				"points":  0,
			}).
			Suffix("ON CONFLICT (user_id, chat_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			return err
		}

		updateQuery, updateArgs, err := squirrel.
			Update("scores").
			Set("points", squirrel.Expr("points + 1")).
			Where(squirrel.Eq{"user_id": userID, "chat_id": chatID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		return err
	})
}

// GetTopGlobal sums points per user across all chats, descending. Users
// without a single win have no score row and never appear.
func (r *Repository) GetTopGlobal(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select("s.user_id", "COALESCE(u.username, '') AS username", "SUM(s.points) AS points").
		From("scores s").
		LeftJoin("users u ON u.user_id = s.user_id").
		GroupBy("s.user_id", "u.username").
		OrderBy("points DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []scoreRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	return toLeaderboard(rows), nil
}

func (r *Repository) GetTopForChat(ctx context.Context, chatID int64, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select("s.user_id", "COALESCE(u.username, '') AS username", "s.points").
		From("scores s").
		LeftJoin("users u ON u.user_id = s.user_id").
		Where(squirrel.Eq{"s.chat_id": chatID}).
		OrderBy("s.points DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []scoreRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	return toLeaderboard(rows), nil
}

func toLeaderboard(rows []scoreRow) []*model.LeaderboardEntry {
	entries := make([]*model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.LeaderboardEntry{
			UserID:   row.UserID,
			Username: row.Username,
			Points:   row.Points,
		}
	}
	return entries
}
