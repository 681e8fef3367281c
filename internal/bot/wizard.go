package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"riddlebot/internal/model"
	"riddlebot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RiddleEngine is the slice of the lifecycle engine the authoring flow uses.
type RiddleEngine interface {
	CreateDraft(ctx context.Context, chatID, creatorID int64, text, answer, prize, photoID string) (int64, error)
	SetTiming(ctx context.Context, riddleID int64, minutes *int) error
	SetHint(ctx context.Context, riddleID int64, text string, delayMinutes int) error
	Activate(ctx context.Context, riddleID int64) (int, error)
	CancelDraft(ctx context.Context, riddleID int64) error
}

type wizardStep int

const (
	stepText wizardStep = iota
	stepPhoto
	stepAnswer
	stepPrize
	stepTimeChoice
	stepTimeInput
	stepHintChoice
	stepHintText
	stepHintDelay
	stepPreview
)

// draftSession is one admin's in-flight riddle. The draft row is persisted
// once the prize step completes; before that cancellation is purely local.
type draftSession struct {
	targetChat int64
	step       wizardStep

	text    string
	photoID string
	answer  string
	prize   string

	timeLimit *int
	hintText  string

	riddleID int64
}

// Sender is the sending half of the Telegram client.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Wizard walks chat admins through riddle authoring in a private chat, one
// sequential step at a time. It talks to the engine only through its public
// draft operations.
type Wizard struct {
	mu       sync.Mutex
	sessions map[int64]*draftSession

	engine RiddleEngine
	api    Sender
}

func NewWizard(engine RiddleEngine, api Sender) *Wizard {
	return &Wizard{
		sessions: make(map[int64]*draftSession),
		engine:   engine,
		api:      api,
	}
}

func (w *Wizard) session(userID int64) *draftSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessions[userID]
}

func (w *Wizard) setSession(userID int64, s *draftSession) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s == nil {
		delete(w.sessions, userID)
	} else {
		w.sessions[userID] = s
	}
}

// InProgress reports whether the user is mid-authoring.
func (w *Wizard) InProgress(userID int64) bool {
	return w.session(userID) != nil
}

// Start begins a new draft for the given target group chat.
func (w *Wizard) Start(userID, targetChat int64) {
	w.setSession(userID, &draftSession{targetChat: targetChat, step: stepText})
	w.prompt(userID, textPromptRiddle, cancelKeyboard())
}

// Cancel abandons the session and deletes the persisted draft, if any.
func (w *Wizard) Cancel(ctx context.Context, userID int64) {
	s := w.session(userID)
	if s == nil {
		return
	}
	if s.riddleID != 0 {
		if err := w.engine.CancelDraft(ctx, s.riddleID); err != nil {
			logger.Logger().Error("failed to delete cancelled draft",
				zap.Int64("riddle_id", s.riddleID), zap.Error(err))
		}
	}
	w.setSession(userID, nil)
	w.prompt(userID, textCancelled, nil)
}

// HandleMessage consumes one private message for an in-progress session.
// Returns false when the user has no session.
func (w *Wizard) HandleMessage(ctx context.Context, userID int64, msg *tgbotapi.Message) bool {
	s := w.session(userID)
	if s == nil {
		return false
	}

	switch s.step {
	case stepText:
		if strings.TrimSpace(msg.Text) == "" {
			w.prompt(userID, textRiddleRequired, cancelKeyboard())
			return true
		}
		s.text = msg.Text
		s.step = stepPhoto
		w.prompt(userID, textPromptPhoto, photoKeyboard())
	case stepPhoto:
		if len(msg.Photo) == 0 {
			w.prompt(userID, textPhotoRequired, photoKeyboard())
			return true
		}
		s.photoID = msg.Photo[len(msg.Photo)-1].FileID
		s.step = stepAnswer
		w.prompt(userID, textPromptAnswer, cancelKeyboard())
	case stepAnswer:
		if strings.TrimSpace(msg.Text) == "" {
			w.prompt(userID, textAnswerRequired, cancelKeyboard())
			return true
		}
		s.answer = msg.Text
		s.step = stepPrize
		w.prompt(userID, textPromptPrize, cancelKeyboard())
	case stepPrize:
		s.prize = msg.Text
		w.persistDraft(ctx, userID, s)
	case stepTimeInput:
		minutes, err := strconv.Atoi(strings.TrimSpace(msg.Text))
		if err != nil || minutes < 0 {
			// Malformed input re-prompts, it never unwinds the flow.
			w.prompt(userID, textTimeNotANumber, cancelKeyboard())
			return true
		}
		if minutes > model.MaxTimeLimitMinutes {
			minutes = model.MaxTimeLimitMinutes
			w.prompt(userID, textTimeClamped, nil)
		}
		s.timeLimit = &minutes
		if err := w.engine.SetTiming(ctx, s.riddleID, s.timeLimit); err != nil {
			w.fail(ctx, userID, "failed to set riddle timing", err)
			return true
		}
		s.step = stepHintChoice
		w.prompt(userID, textPromptHintChoice, hintKeyboard())
	case stepHintText:
		s.hintText = msg.Text
		if s.timeLimit == nil {
			s.step = stepHintDelay
			w.prompt(userID, textPromptHintDelay, cancelKeyboard())
			return true
		}
		// With a time limit the hint fires at 80% elapsed; no delay to ask.
		if err := w.engine.SetHint(ctx, s.riddleID, s.hintText, 0); err != nil {
			w.fail(ctx, userID, "failed to set riddle hint", err)
			return true
		}
		w.preview(userID, s)
	case stepHintDelay:
		delay, err := strconv.Atoi(strings.TrimSpace(msg.Text))
		if err != nil || delay < 0 {
			w.prompt(userID, textDelayNotANumber, cancelKeyboard())
			return true
		}
		if err := w.engine.SetHint(ctx, s.riddleID, s.hintText, delay); err != nil {
			w.fail(ctx, userID, "failed to set riddle hint", err)
			return true
		}
		w.preview(userID, s)
	default:
		// Waiting on a button press; nudge instead of consuming the text.
		w.prompt(userID, textUseButtons, cancelKeyboard())
	}
	return true
}

// HandleCallback consumes one wizard button press. Returns false when the
// callback is not a wizard action or the user has no session.
func (w *Wizard) HandleCallback(ctx context.Context, userID int64, data string) bool {
	if data == callbackCancel {
		w.Cancel(ctx, userID)
		return true
	}

	s := w.session(userID)
	if s == nil {
		return false
	}

	switch data {
	case callbackPhotoSkip:
		if s.step != stepPhoto {
			return true
		}
		s.photoID = ""
		s.step = stepAnswer
		w.prompt(userID, textPromptAnswer, cancelKeyboard())
	case callbackTimeSet:
		if s.step != stepTimeChoice {
			return true
		}
		s.step = stepTimeInput
		w.prompt(userID, textPromptTimeInput, cancelKeyboard())
	case callbackTimeNone:
		if s.step != stepTimeChoice {
			return true
		}
		s.timeLimit = nil
		if err := w.engine.SetTiming(ctx, s.riddleID, nil); err != nil {
			w.fail(ctx, userID, "failed to set riddle timing", err)
			return true
		}
		s.step = stepHintChoice
		w.prompt(userID, textPromptHintChoice, hintKeyboard())
	case callbackHintAdd:
		if s.step != stepHintChoice {
			return true
		}
		s.step = stepHintText
		w.prompt(userID, textPromptHintText, cancelKeyboard())
	case callbackHintSkip:
		if s.step != stepHintChoice {
			return true
		}
		if err := w.engine.SetHint(ctx, s.riddleID, "", 0); err != nil {
			w.fail(ctx, userID, "failed to clear riddle hint", err)
			return true
		}
		w.preview(userID, s)
	case callbackSend:
		if s.step != stepPreview {
			return true
		}
		w.send(ctx, userID, s)
	default:
		return false
	}
	return true
}

func (w *Wizard) persistDraft(ctx context.Context, userID int64, s *draftSession) {
	id, err := w.engine.CreateDraft(ctx, s.targetChat, userID, s.text, s.answer, s.prize, s.photoID)
	if err != nil {
		w.fail(ctx, userID, "failed to create draft", err)
		return
	}
	s.riddleID = id
	s.step = stepTimeChoice
	w.prompt(userID, textPromptTimeChoice, timeKeyboard())
}

func (w *Wizard) preview(userID int64, s *draftSession) {
	s.step = stepPreview
	text := previewText(s)

	if s.photoID != "" {
		photo := tgbotapi.NewPhoto(userID, tgbotapi.FileID(s.photoID))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = previewKeyboard()
		if _, err := w.api.Send(photo); err != nil {
			logger.Logger().Error("failed to send preview", zap.Error(err))
		}
		return
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = previewKeyboard()
	if _, err := w.api.Send(msg); err != nil {
		logger.Logger().Error("failed to send preview", zap.Error(err))
	}
}

func (w *Wizard) send(ctx context.Context, userID int64, s *draftSession) {
	if _, err := w.engine.Activate(ctx, s.riddleID); err != nil {
		w.fail(ctx, userID, "failed to activate riddle", err)
		return
	}
	w.setSession(userID, nil)
	w.prompt(userID, textRiddleSent, nil)
}

// fail logs, tears the session down and tells the author to start over.
func (w *Wizard) fail(ctx context.Context, userID int64, msg string, err error) {
	logger.Logger().Error(msg, zap.Int64("user_id", userID), zap.Error(err))
	s := w.session(userID)
	if s != nil && s.riddleID != 0 {
		_ = w.engine.CancelDraft(ctx, s.riddleID)
	}
	w.setSession(userID, nil)
	w.prompt(userID, textWizardFailed, nil)
}

func (w *Wizard) prompt(userID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := w.api.Send(msg); err != nil {
		logger.Logger().Error("failed to send wizard prompt",
			zap.Int64("user_id", userID), zap.Error(err))
	}
}

func previewText(s *draftSession) string {
	limit := "unlimited"
	if s.timeLimit != nil {
		limit = fmt.Sprintf("%d min", *s.timeLimit)
	}
	text := fmt.Sprintf("🚨 *RIDDLE!* 🚨\n\n%s\n\n🎁 *PRIZE:*\n%s\n\n⏰ *Time:* %s",
		s.text, s.prize, limit)
	if s.hintText != "" {
		switch {
		case s.timeLimit != nil:
			text += fmt.Sprintf("\n\n💡 *Hint after:* %d sec", *s.timeLimit*60*8/10)
		default:
			text += "\n\n💡 *Hint configured*"
		}
	}
	return text
}
