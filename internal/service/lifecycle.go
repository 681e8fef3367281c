package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"riddlebot/internal/model"
	"riddlebot/internal/repository"
	"riddlebot/pkg/logger"

	"go.uber.org/zap"
)

type Outcome int

const (
	OutcomeSolved Outcome = iota
	OutcomeExpired
)

func (o Outcome) String() string {
	if o == OutcomeSolved {
		return "solved"
	}
	return "expired"
}

// LifecycleService owns the riddle state machine:
// Draft -> Active -> {Solved, Expired}, with Cancelled as a side exit from
// Draft. Once a riddle is active, this service is the sole writer of its
// runtime fields; the countdown goroutine and the answer matcher coordinate
// only through the store's conditional deactivate.
type LifecycleService struct {
	riddles  RiddleRepository
	platform Platform
	cfg      GameConfig
}

func NewLifecycleService(riddles RiddleRepository, platform Platform, cfg GameConfig) *LifecycleService {
	return &LifecycleService{
		riddles:  riddles,
		platform: platform,
		cfg:      cfg.withDefaults(),
	}
}

func (s *LifecycleService) CreateDraft(ctx context.Context, chatID, creatorID int64, text, answer, prize, photoID string) (int64, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(answer) == "" {
		return 0, ErrEmptyRiddle
	}

	id, err := s.riddles.CreateDraft(ctx, &model.Riddle{
		ChatID:    chatID,
		CreatorID: creatorID,
		Text:      text,
		Answer:    answer,
		Prize:     prize,
		PhotoID:   photoID,
		Timing:    model.UnlimitedTiming(),
		Hint:      model.NoHint(),
	})
	if err != nil {
		return 0, err
	}

	logger.Logger().Info("riddle draft created",
		zap.Int64("riddle_id", id), zap.Int64("chat_id", chatID), zap.Int64("creator_id", creatorID))
	return id, nil
}

// SetTiming stores the countdown variant. nil means unlimited; values above
// the 1440-minute cap are silently truncated.
func (s *LifecycleService) SetTiming(ctx context.Context, riddleID int64, minutes *int) error {
	timing := model.UnlimitedTiming()
	if minutes != nil {
		timing = model.LimitedTiming(*minutes)
	}

	err := s.riddles.UpdateRiddleTiming(ctx, riddleID, timing)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRiddleNotFound
		}
		return err
	}
	return nil
}

// SetHint stores the hint variant. With a time limit set the hint always fires
// at 80% of the limit and delayMinutes is ignored; without one, delayMinutes
// picks delayed (>0) or immediate (0) firing. Empty text clears the hint.
func (s *LifecycleService) SetHint(ctx context.Context, riddleID int64, text string, delayMinutes int) error {
	riddle, err := s.getRiddle(ctx, riddleID)
	if err != nil {
		return err
	}

	hint := model.NoHint()
	if strings.TrimSpace(text) != "" {
		switch {
		case riddle.Timing.Limited():
			hint = model.Hint{Kind: model.HintAuto80, Text: text}
		case delayMinutes > 0:
			hint = model.Hint{Kind: model.HintDelayed, Text: text, DelayMinutes: delayMinutes}
		default:
			hint = model.Hint{Kind: model.HintImmediate, Text: text}
		}
	}

	err = s.riddles.UpdateRiddleHint(ctx, riddleID, hint)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRiddleNotFound
		}
		return err
	}
	return nil
}

// Activate posts the riddle to its chat, binds the returned message id as the
// answer-routing key, stamps the countdown window and starts the background
// countdown task. Returns the bound message id.
func (s *LifecycleService) Activate(ctx context.Context, riddleID int64) (int, error) {
	log := logger.Logger()

	riddle, err := s.getRiddle(ctx, riddleID)
	if err != nil {
		return 0, err
	}
	if !riddle.Draft() {
		return 0, ErrAlreadyActive
	}

	text := announcementText(riddle)
	var messageID int
	if riddle.PhotoID != "" {
		messageID, err = s.platform.SendPhoto(ctx, riddle.ChatID, riddle.PhotoID, text)
	} else {
		messageID, err = s.platform.SendMessage(ctx, riddle.ChatID, text)
	}
	if err != nil {
		return 0, err
	}

	start := time.Now().UTC()
	var end *time.Time
	if riddle.Timing.Limited() {
		e := start.Add(riddle.Timing.Duration())
		end = &e
	}

	err = s.riddles.ActivateRiddle(ctx, riddleID, messageID, start, end)
	if err != nil {
		// Lost an activation race after posting; take the message back.
		_ = s.platform.DeleteMessage(ctx, riddle.ChatID, messageID)
		switch {
		case errors.Is(err, repository.ErrRiddleActive):
			return 0, ErrAlreadyActive
		case errors.Is(err, repository.ErrNotFound):
			return 0, ErrRiddleNotFound
		}
		return 0, err
	}

	riddle.MessageID = &messageID
	riddle.Active = true
	riddle.StartTime = &start
	riddle.EndTime = end

	log.Info("riddle activated",
		zap.Int64("riddle_id", riddleID),
		zap.Int64("chat_id", riddle.ChatID),
		zap.Int("message_id", messageID),
		zap.Bool("limited", riddle.Timing.Limited()))

	go s.countdown(riddle)

	return messageID, nil
}

// CancelDraft deletes a riddle that was never activated. Active riddles are
// never cancelled through this path.
func (s *LifecycleService) CancelDraft(ctx context.Context, riddleID int64) error {
	return s.riddles.DeleteDraft(ctx, riddleID)
}

// Resolve performs the terminal transition. It is idempotent under concurrent
// callers: the countdown task and the answer matcher may race to end the same
// riddle, and only the first transition wins. The loser gets
// ErrAlreadyInactive and must perform no side effects.
func (s *LifecycleService) Resolve(ctx context.Context, riddleID int64, outcome Outcome) error {
	err := s.riddles.DeactivateRiddle(ctx, riddleID, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRiddleInactive):
			return ErrAlreadyInactive
		case errors.Is(err, repository.ErrNotFound):
			return ErrRiddleNotFound
		}
		return err
	}

	logger.Logger().Info("riddle resolved",
		zap.Int64("riddle_id", riddleID), zap.String("outcome", outcome.String()))
	return nil
}

// countdown is the per-riddle background task. It polls the store's active
// flag rather than listening for in-memory signals, so a win resolved by the
// matcher stops it on the next tick. riddle is the task's working copy; the
// loop never writes runtime fields except through Resolve.
func (s *LifecycleService) countdown(riddle *model.Riddle) {
	ctx := context.Background()
	log := logger.Logger().With(
		zap.Int64("riddle_id", riddle.ID), zap.Int64("chat_id", riddle.ChatID))

	hintAt, hintPending := riddle.Hint.FireAt(*riddle.StartTime, riddle.Timing)

	for {
		current, err := s.riddles.GetRiddle(ctx, riddle.ID)
		if err != nil {
			log.Error("countdown stopped: riddle lookup failed", zap.Error(err))
			return
		}
		if !current.Active {
			log.Info("countdown stopped: riddle no longer active")
			return
		}

		now := time.Now().UTC()

		if hintPending && !now.Before(hintAt) {
			if _, err := s.platform.SendMessage(ctx, riddle.ChatID, hintText(riddle.Hint.Text)); err != nil {
				log.Error("countdown stopped: failed to send hint", zap.Error(err))
				return
			}
			hintPending = false
			log.Info("hint sent")
		}

		if !riddle.Timing.Limited() {
			time.Sleep(s.cfg.PollInterval)
			continue
		}

		remaining := riddle.EndTime.Sub(now)
		if remaining <= 0 {
			err := s.Resolve(ctx, riddle.ID, OutcomeExpired)
			if err != nil {
				// A correct answer landed in the same instant; the win owns
				// all side effects.
				if !errors.Is(err, ErrAlreadyInactive) {
					log.Error("failed to expire riddle", zap.Error(err))
				}
				return
			}
			if err := s.platform.EditMessage(ctx, riddle.ChatID, *riddle.MessageID, expiredText(riddle)); err != nil {
				log.Error("failed to post expiry notice", zap.Error(err))
			}
			s.scheduleCleanup(riddle.ChatID, *riddle.MessageID)
			log.Info("riddle expired by countdown")
			return
		}

		// Display failures end the task instead of retrying forever; the
		// riddle itself stays answerable.
		if err := s.platform.EditMessage(ctx, riddle.ChatID, *riddle.MessageID, countdownText(riddle, remaining)); err != nil {
			if errors.Is(err, ErrMessageNotFound) {
				log.Info("countdown stopped: riddle message was deleted")
				return
			}
			log.Error("countdown stopped: failed to update countdown", zap.Error(err))
			return
		}

		time.Sleep(s.sleepFor(remaining, hintAt, hintPending, now))
	}
}

// sleepFor picks the adaptive poll interval: coarse while plenty of time
// remains, fine near the hint fire time and during the final hour.
func (s *LifecycleService) sleepFor(remaining time.Duration, hintAt time.Time, hintPending bool, now time.Time) time.Duration {
	if remaining <= time.Hour {
		return s.cfg.PollInterval
	}
	if hintPending && hintAt.Sub(now) <= s.cfg.SlowPollInterval {
		return s.cfg.PollInterval
	}
	return s.cfg.SlowPollInterval
}

// scheduleCleanup deletes the expired riddle message after a grace period,
// best-effort.
func (s *LifecycleService) scheduleCleanup(chatID int64, messageID int) {
	time.AfterFunc(s.cfg.CleanupGrace, func() {
		if err := s.platform.DeleteMessage(context.Background(), chatID, messageID); err != nil {
			logger.Logger().Error("failed to delete expired riddle message",
				zap.Int64("chat_id", chatID), zap.Int("message_id", messageID), zap.Error(err))
		}
	})
}

func (s *LifecycleService) getRiddle(ctx context.Context, riddleID int64) (*model.Riddle, error) {
	riddle, err := s.riddles.GetRiddle(ctx, riddleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRiddleNotFound
		}
		return nil, err
	}
	return riddle, nil
}
