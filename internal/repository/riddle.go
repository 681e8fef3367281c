package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"riddlebot/internal/model"

	"github.com/Masterminds/squirrel"
)

type riddleRow struct {
	ID         int64      `db:"id"`
	ChatID     int64      `db:"chat_id"`
	CreatorID  int64      `db:"creator_id"`
	RiddleText string     `db:"riddle_text"`
	Answer     string     `db:"answer"`
	Prize      string     `db:"prize"`
	PhotoID    string     `db:"photo_id"`
	TimeLimit  *int       `db:"time_limit"`
	Hint       *string    `db:"hint"`
	HintDelay  *int       `db:"hint_delay"`
	MessageID  *int       `db:"message_id"`
	Active     bool       `db:"active"`
	StartTime  *time.Time `db:"start_time"`
	EndTime    *time.Time `db:"end_time"`
}

var riddleColumns = []string{
	"id", "chat_id", "creator_id", "riddle_text", "answer", "prize", "photo_id",
	"time_limit", "hint", "hint_delay", "message_id", "active", "start_time", "end_time",
}

func (row *riddleRow) toModel() *model.Riddle {
	r := &model.Riddle{
		ID:        row.ID,
		ChatID:    row.ChatID,
		CreatorID: row.CreatorID,
		Text:      row.RiddleText,
		Answer:    row.Answer,
		Prize:     row.Prize,
		PhotoID:   row.PhotoID,
		Timing:    model.UnlimitedTiming(),
		Hint:      model.NoHint(),
		MessageID: row.MessageID,
		Active:    row.Active,
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
	}

	if row.TimeLimit != nil {
		r.Timing = model.LimitedTiming(*row.TimeLimit)
	}

	if row.Hint != nil {
		switch {
		case row.TimeLimit != nil:
			r.Hint = model.Hint{Kind: model.HintAuto80, Text: *row.Hint}
		case row.HintDelay != nil && *row.HintDelay > 0:
			r.Hint = model.Hint{Kind: model.HintDelayed, Text: *row.Hint, DelayMinutes: *row.HintDelay}
		default:
			r.Hint = model.Hint{Kind: model.HintImmediate, Text: *row.Hint}
		}
	}

	return r
}

func timingColumn(t model.Timing) *int {
	if !t.Limited() {
		return nil
	}
	minutes := t.Minutes
	return &minutes
}

func hintColumns(h model.Hint) (text *string, delay *int) {
	if !h.Configured() {
		return nil, nil
	}
	t := h.Text
	text = &t
	if h.Kind == model.HintDelayed || h.Kind == model.HintImmediate {
		d := h.DelayMinutes
		delay = &d
	}
	return text, delay
}

func (r *Repository) CreateDraft(ctx context.Context, riddle *model.Riddle) (int64, error) {
	query, args, err := squirrel.
		Insert("riddles").
		SetMap(map[string]interface{}{
			"chat_id":     riddle.ChatID,
			"creator_id":  riddle.CreatorID,
			"riddle_text": riddle.Text,
			"answer":      riddle.Answer,
			"prize":       riddle.Prize,
			"photo_id":    riddle.PhotoID,
			"active":      false,
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.GetContext(ctx, &id, query, args...)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *Repository) GetRiddle(ctx context.Context, id int64) (*model.Riddle, error) {
	var row riddleRow
	query, args, err := squirrel.
		Select(riddleColumns...).
		From("riddles").
		Where(squirrel.Eq{"id": id}).
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

	return row.toModel(), nil
}

// GetActiveRiddleByMessage resolves the answer-routing key: an incoming reply
// matches a riddle only through (chat_id, bound message_id) while active.
func (r *Repository) GetActiveRiddleByMessage(ctx context.Context, chatID int64, messageID int) (*model.Riddle, error) {
	var row riddleRow
	query, args, err := squirrel.
		Select(riddleColumns...).
		From("riddles").
		Where(squirrel.Eq{"chat_id": chatID, "message_id": messageID, "active": true}).
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

	return row.toModel(), nil
}

func (r *Repository) UpdateRiddleTiming(ctx context.Context, id int64, timing model.Timing) error {
	query, args, err := squirrel.
		Update("riddles").
		Set("time_limit", timingColumn(timing)).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *Repository) UpdateRiddleHint(ctx context.Context, id int64, hint model.Hint) error {
	text, delay := hintColumns(hint)
	query, args, err := squirrel.
		Update("riddles").
		SetMap(map[string]interface{}{
			"hint":       text,
			"hint_delay": delay,
		}).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// ActivateRiddle performs the Draft->Active transition: binds the posted
// message and stamps the countdown window. Conditional on the row still being
// a draft so a double activation loses cleanly.
func (r *Repository) ActivateRiddle(ctx context.Context, id int64, messageID int, start time.Time, end *time.Time) error {
	query, args, err := squirrel.
		Update("riddles").
		SetMap(map[string]interface{}{
			"message_id": messageID,
			"start_time": start,
			"end_time":   end,
			"active":     true,
		}).
		Where(squirrel.Eq{"id": id, "active": false}).
		Where("message_id IS NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetRiddle(ctx, id); err != nil {
			return err
		}
		return ErrRiddleActive
	}

	return nil
}

// DeactivateRiddle is the single atomic Active->{Solved,Expired} transition.
// Exactly one concurrent caller wins; the loser gets ErrRiddleInactive and
// must perform no side effects.
func (r *Repository) DeactivateRiddle(ctx context.Context, id int64, end time.Time) error {
	query, args, err := squirrel.
		Update("riddles").
		SetMap(map[string]interface{}{
			"active":   false,
			"end_time": end,
		}).
		Where(squirrel.Eq{"id": id, "active": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetRiddle(ctx, id); err != nil {
			return err
		}
		return ErrRiddleInactive
	}

	return nil
}

// DeleteDraft removes a riddle that was never activated. Active or finished
// riddles are left untouched; deleting nothing is not an error.
func (r *Repository) DeleteDraft(ctx context.Context, id int64) error {
	query, args, err := squirrel.
		Delete("riddles").
		Where(squirrel.Eq{"id": id, "active": false}).
		Where("message_id IS NULL").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) CountActiveRiddles(ctx context.Context, chatID int64) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("riddles").
		Where(squirrel.Eq{"chat_id": chatID, "active": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) DeleteChatRiddles(ctx context.Context, chatID int64) error {
	query, args, err := squirrel.
		Delete("riddles").
		Where(squirrel.Eq{"chat_id": chatID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

type riddleStatsRow struct {
	Total    int      `db:"total"`
	Finished int      `db:"finished"`
	AvgMins  *float64 `db:"avg_minutes"`
}

// RiddleStats feeds the statistics screens: how many riddles were created,
// how many have finished, and the average minutes from start to end.
func (r *Repository) RiddleStats(ctx context.Context) (total, finished int, avgMinutes float64, err error) {
	query, args, err := squirrel.
		Select(
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE NOT active AND message_id IS NOT NULL) AS finished",
			"AVG(EXTRACT(EPOCH FROM (end_time - start_time)) / 60) FILTER (WHERE NOT active AND end_time IS NOT NULL) AS avg_minutes",
		).
		From("riddles").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, 0, 0, err
	}

	var row riddleStatsRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		return 0, 0, 0, err
	}

	if row.AvgMins != nil {
		avgMinutes = *row.AvgMins
	}
	return row.Total, row.Finished, avgMinutes, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
