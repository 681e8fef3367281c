package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"riddlebot/internal/repository"
	"riddlebot/pkg/logger"

	"go.uber.org/zap"
)

// WrongAnswerCache tracks the ids of "wrong answer" reply messages per chat so
// they can be swept away when somebody wins. Process-lifetime, in-memory
// state: losing it on restart only costs cosmetic cleanup. The cache is
// cleared on a win and deliberately not on expiry, so wrong answers to a
// riddle that expires unsolved linger until the chat's next win.
type WrongAnswerCache struct {
	mu       sync.Mutex
	messages map[int64][]int
}

func NewWrongAnswerCache() *WrongAnswerCache {
	return &WrongAnswerCache{messages: make(map[int64][]int)}
}

func (c *WrongAnswerCache) Add(chatID int64, messageID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[chatID] = append(c.messages[chatID], messageID)
}

// Drain returns and clears the recorded message ids for a chat.
func (c *WrongAnswerCache) Drain(chatID int64) []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.messages[chatID]
	delete(c.messages, chatID)
	return ids
}

// MatcherService checks incoming chat replies against active riddles and
// drives the win path.
type MatcherService struct {
	riddles  RiddleRepository
	scores   ScoreRepository
	users    UserRepository
	platform Platform
	resolver Resolver
	wrong    *WrongAnswerCache
}

func NewMatcherService(riddles RiddleRepository, scores ScoreRepository, users UserRepository, platform Platform, resolver Resolver, wrong *WrongAnswerCache) *MatcherService {
	return &MatcherService{
		riddles:  riddles,
		scores:   scores,
		users:    users,
		platform: platform,
		resolver: resolver,
		wrong:    wrong,
	}
}

// HandleReply routes one group message that replies to some earlier message.
// Messages that do not reply to an active riddle are ignored silently.
func (m *MatcherService) HandleReply(ctx context.Context, chatID int64, messageID, replyToID int, userID int64, username, text string) error {
	log := logger.Logger()

	riddle, err := m.riddles.GetActiveRiddleByMessage(ctx, chatID, replyToID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if !answersMatch(text, riddle.Answer) {
		replyID, err := m.platform.Reply(ctx, chatID, messageID, incorrectReply)
		if err != nil {
			log.Error("failed to post wrong-answer reply",
				zap.Int64("riddle_id", riddle.ID), zap.Error(err))
			return nil
		}
		m.wrong.Add(chatID, replyID)
		return nil
	}

	// The win must be the authoritative first transition. If the countdown
	// task expired the riddle in the same instant, this answer is too late:
	// no points, no announcement.
	err = m.resolver.Resolve(ctx, riddle.ID, OutcomeSolved)
	if err != nil {
		if errors.Is(err, ErrAlreadyInactive) || errors.Is(err, ErrRiddleNotFound) {
			log.Info("correct answer arrived after riddle ended",
				zap.Int64("riddle_id", riddle.ID), zap.Int64("user_id", userID))
			return nil
		}
		return err
	}

	log.Info("riddle solved",
		zap.Int64("riddle_id", riddle.ID), zap.Int64("chat_id", chatID), zap.Int64("user_id", userID))

	if _, err := m.platform.Reply(ctx, chatID, messageID, winAnnouncement(username)); err != nil {
		log.Error("failed to announce win", zap.Int64("riddle_id", riddle.ID), zap.Error(err))
	}

	if err := m.scores.AwardPoint(ctx, userID, chatID); err != nil {
		log.Error("failed to award point",
			zap.Int64("user_id", userID), zap.Int64("chat_id", chatID), zap.Error(err))
	}

	m.cleanupMessages(ctx, chatID, *riddle.MessageID)
	m.notifyWinner(ctx, userID, riddle.Prize, riddle.CreatorID)

	return nil
}

// answersMatch compares a submitted guess with the stored answer: exact
// equality after trimming surrounding whitespace and folding case. No partial
// credit, no fuzzy matching.
func answersMatch(submitted, stored string) bool {
	return strings.ToLower(strings.TrimSpace(submitted)) == strings.ToLower(strings.TrimSpace(stored))
}

// cleanupMessages removes the riddle message and every recorded wrong-answer
// reply for the chat, best-effort.
func (m *MatcherService) cleanupMessages(ctx context.Context, chatID int64, riddleMessageID int) {
	log := logger.Logger()

	if err := m.platform.DeleteMessage(ctx, chatID, riddleMessageID); err != nil {
		log.Error("failed to delete riddle message",
			zap.Int64("chat_id", chatID), zap.Int("message_id", riddleMessageID), zap.Error(err))
	}

	for _, id := range m.wrong.Drain(chatID) {
		if err := m.platform.DeleteMessage(ctx, chatID, id); err != nil {
			log.Error("failed to delete wrong-answer message",
				zap.Int64("chat_id", chatID), zap.Int("message_id", id), zap.Error(err))
		}
	}
}

// notifyWinner messages the winner privately with the prize, or with the
// creator's contact when no prize was set.
func (m *MatcherService) notifyWinner(ctx context.Context, winnerID int64, prize string, creatorID int64) {
	log := logger.Logger()

	text := prizeNotification(prize)
	if prize == "" {
		creator, err := m.users.GetUser(ctx, creatorID)
		if err != nil {
			log.Error("failed to look up riddle creator",
				zap.Int64("creator_id", creatorID), zap.Error(err))
			return
		}
		text = contactCreatorNotification(creator.Username)
	}

	if _, err := m.platform.SendMessage(ctx, winnerID, text); err != nil {
		log.Error("failed to notify winner", zap.Int64("user_id", winnerID), zap.Error(err))
	}
}
