package repository

import (
	"context"
	"database/sql"
	"errors"

	"riddlebot/internal/model"

	"github.com/Masterminds/squirrel"
)

type userRow struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
}

func (r *Repository) UpsertUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"user_id":  user.UserID,
			"username": user.Username,
		}).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var row userRow
	query, args, err := squirrel.
		Select("user_id", "username").
		From("users").
		Where(squirrel.Eq{"user_id": userID}).
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

	return &model.User{UserID: row.UserID, Username: row.Username}, nil
}
