package service

import (
	"context"
	"errors"
	"time"

	"riddlebot/internal/model"
)

var (
	ErrRiddleNotFound  = errors.New("riddle not found")
	ErrAlreadyActive   = errors.New("riddle is already active")
	ErrAlreadyInactive = errors.New("riddle is no longer active")
	ErrEmptyRiddle     = errors.New("riddle text and answer must not be empty")

	// ErrMessageNotFound is returned by Platform.EditMessage when the target
	// message was deleted externally. Countdown loops stop on it.
	ErrMessageNotFound = errors.New("message to edit not found")
)

type RiddleRepository interface {
	CreateDraft(ctx context.Context, riddle *model.Riddle) (int64, error)
	GetRiddle(ctx context.Context, id int64) (*model.Riddle, error)
	GetActiveRiddleByMessage(ctx context.Context, chatID int64, messageID int) (*model.Riddle, error)
	UpdateRiddleTiming(ctx context.Context, id int64, timing model.Timing) error
	UpdateRiddleHint(ctx context.Context, id int64, hint model.Hint) error
	ActivateRiddle(ctx context.Context, id int64, messageID int, start time.Time, end *time.Time) error
	DeactivateRiddle(ctx context.Context, id int64, end time.Time) error
	DeleteDraft(ctx context.Context, id int64) error
}

type ScoreRepository interface {
	AwardPoint(ctx context.Context, userID, chatID int64) error
	GetTopGlobal(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	GetTopForChat(ctx context.Context, chatID int64, limit int) ([]*model.LeaderboardEntry, error)
}

type StatsRepository interface {
	RiddleStats(ctx context.Context) (total, finished int, avgMinutes float64, err error)
	ChatStats(ctx context.Context) (chats, members int, err error)
}

type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (*model.User, error)
}

// Platform is the chat platform adapter contract. Failures are recoverable:
// callers log and either retry next tick, stop their loop, or ignore
// (best-effort deletes). They never escalate.
type Platform interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photoID, caption string) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	Reply(ctx context.Context, chatID int64, replyToID int, text string) (int, error)
}

// Resolver is the slice of the lifecycle engine the answer matcher needs: the
// authoritative Active->{Solved,Expired} transition.
type Resolver interface {
	Resolve(ctx context.Context, riddleID int64, outcome Outcome) error
}

type ScoreServiceI interface {
	TopGlobal(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	TopForChat(ctx context.Context, chatID int64, limit int) ([]*model.LeaderboardEntry, error)
	Stats(ctx context.Context) (*model.BotStats, error)
}

// GameConfig carries the countdown loop knobs. Zero values fall back to the
// defaults the bot has always used.
type GameConfig struct {
	PollInterval     time.Duration `yaml:"pollInterval"`
	SlowPollInterval time.Duration `yaml:"slowPollInterval"`
	CleanupGrace     time.Duration `yaml:"cleanupGrace"`
}

const (
	defaultPollInterval     = 5 * time.Second
	defaultSlowPollInterval = time.Minute
	defaultCleanupGrace     = 30 * time.Minute
)

func (c GameConfig) withDefaults() GameConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.SlowPollInterval <= 0 {
		c.SlowPollInterval = defaultSlowPollInterval
	}
	if c.CleanupGrace <= 0 {
		c.CleanupGrace = defaultCleanupGrace
	}
	return c
}
