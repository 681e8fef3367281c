package bot

import (
	"context"
	"errors"
	"testing"

	"riddlebot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize("error"); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeSender records every outgoing message text instead of hitting Telegram.
type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, msg.Text)
	case tgbotapi.PhotoConfig:
		f.sent = append(f.sent, msg.Caption)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) CreateDraft(ctx context.Context, chatID, creatorID int64, text, answer, prize, photoID string) (int64, error) {
	args := m.Called(ctx, chatID, creatorID, text, answer, prize, photoID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEngine) SetTiming(ctx context.Context, riddleID int64, minutes *int) error {
	args := m.Called(ctx, riddleID, minutes)
	return args.Error(0)
}

func (m *mockEngine) SetHint(ctx context.Context, riddleID int64, text string, delayMinutes int) error {
	args := m.Called(ctx, riddleID, text, delayMinutes)
	return args.Error(0)
}

func (m *mockEngine) Activate(ctx context.Context, riddleID int64) (int, error) {
	args := m.Called(ctx, riddleID)
	return args.Int(0), args.Error(1)
}

func (m *mockEngine) CancelDraft(ctx context.Context, riddleID int64) error {
	args := m.Called(ctx, riddleID)
	return args.Error(0)
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text}
}

func TestWizard_FullFlow(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	sender := &fakeSender{}
	w := NewWizard(engine, sender)

	engine.On("CreateDraft", mock.Anything, int64(-100), int64(5), "What has keys but no locks?", "a piano", "eternal glory", "").
		Return(int64(11), nil)
	engine.On("SetTiming", mock.Anything, int64(11), mock.MatchedBy(func(m *int) bool {
		return m != nil && *m == 30
	})).Return(nil)
	engine.On("SetHint", mock.Anything, int64(11), "", 0).Return(nil)
	engine.On("Activate", mock.Anything, int64(11)).Return(77, nil)

	w.Start(5, -100)
	assert.True(t, w.InProgress(5))
	assert.Equal(t, textPromptRiddle, sender.last())

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("What has keys but no locks?")))
	assert.Equal(t, textPromptPhoto, sender.last())

	assert.True(t, w.HandleCallback(ctx, 5, callbackPhotoSkip))
	assert.Equal(t, textPromptAnswer, sender.last())

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("a piano")))
	assert.Equal(t, textPromptPrize, sender.last())

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("eternal glory")))
	assert.Equal(t, textPromptTimeChoice, sender.last())

	assert.True(t, w.HandleCallback(ctx, 5, callbackTimeSet))
	assert.Equal(t, textPromptTimeInput, sender.last())

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("30")))
	assert.Equal(t, textPromptHintChoice, sender.last())

	assert.True(t, w.HandleCallback(ctx, 5, callbackHintSkip))
	assert.Contains(t, sender.last(), "What has keys but no locks?")

	assert.True(t, w.HandleCallback(ctx, 5, callbackSend))
	assert.Equal(t, textRiddleSent, sender.last())
	assert.False(t, w.InProgress(5))

	engine.AssertExpectations(t)
}

func TestWizard_TimeInputValidation(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPrompt string
		setMinutes *int
	}{
		{"not a number", "soon", textTimeNotANumber, nil},
		{"negative", "-5", textTimeNotANumber, nil},
		{"clamped to cap", "99999", textPromptHintChoice, intPtr(1440)},
		{"accepted", "15", textPromptHintChoice, intPtr(15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			engine := &mockEngine{}
			sender := &fakeSender{}
			w := NewWizard(engine, sender)
			w.setSession(5, &draftSession{targetChat: -100, step: stepTimeInput, riddleID: 11})

			if tt.setMinutes != nil {
				engine.On("SetTiming", mock.Anything, int64(11), mock.MatchedBy(func(m *int) bool {
					return m != nil && *m == *tt.setMinutes
				})).Return(nil)
			}

			assert.True(t, w.HandleMessage(ctx, 5, textMessage(tt.input)))

			assert.Equal(t, tt.wantPrompt, sender.last())
			engine.AssertExpectations(t)
			if tt.setMinutes == nil {
				// Bad input re-prompts and the session stays on the same step.
				assert.Equal(t, stepTimeInput, w.session(5).step)
			}
		})
	}
}

func TestWizard_EmptyTextAndAnswerReprompt(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	sender := &fakeSender{}
	w := NewWizard(engine, sender)

	w.Start(5, -100)

	// Blank riddle text re-prompts without advancing or ending the session.
	assert.True(t, w.HandleMessage(ctx, 5, textMessage("   ")))
	assert.Equal(t, textRiddleRequired, sender.last())
	assert.Equal(t, stepText, w.session(5).step)

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("riddle me this")))
	assert.True(t, w.HandleCallback(ctx, 5, callbackPhotoSkip))

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("")))
	assert.Equal(t, textAnswerRequired, sender.last())
	assert.Equal(t, stepAnswer, w.session(5).step)

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("a mirror")))
	assert.Equal(t, textPromptPrize, sender.last())
	engine.AssertNotCalled(t, "CreateDraft",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWizard_HintDelayForUntimedRiddle(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	sender := &fakeSender{}
	w := NewWizard(engine, sender)
	w.setSession(5, &draftSession{targetChat: -100, step: stepHintText, riddleID: 11})

	engine.On("SetHint", mock.Anything, int64(11), "it sings", 10).Return(nil)

	// Without a time limit the wizard must ask for a delay.
	assert.True(t, w.HandleMessage(ctx, 5, textMessage("it sings")))
	assert.Equal(t, textPromptHintDelay, sender.last())

	assert.True(t, w.HandleMessage(ctx, 5, textMessage("10")))
	assert.Equal(t, stepPreview, w.session(5).step)
	engine.AssertExpectations(t)
}

func TestWizard_CancelDeletesPersistedDraft(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	sender := &fakeSender{}
	w := NewWizard(engine, sender)
	w.setSession(5, &draftSession{targetChat: -100, step: stepTimeChoice, riddleID: 11})

	engine.On("CancelDraft", mock.Anything, int64(11)).Return(nil)

	assert.True(t, w.HandleCallback(ctx, 5, callbackCancel))

	assert.False(t, w.InProgress(5))
	assert.Equal(t, textCancelled, sender.last())
	engine.AssertExpectations(t)
}

func TestWizard_CancelBeforePersistSkipsEngine(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	sender := &fakeSender{}
	w := NewWizard(engine, sender)

	w.Start(5, -100)
	w.Cancel(ctx, 5)

	assert.False(t, w.InProgress(5))
	engine.AssertNotCalled(t, "CancelDraft", mock.Anything, mock.Anything)
}

func TestWizard_ActivationFailureTearsDown(t *testing.T) {
	ctx := context.Background()
	engine := &mockEngine{}
	sender := &fakeSender{}
	w := NewWizard(engine, sender)
	w.setSession(5, &draftSession{targetChat: -100, step: stepPreview, riddleID: 11})

	engine.On("Activate", mock.Anything, int64(11)).Return(0, errors.New("chat unreachable"))
	engine.On("CancelDraft", mock.Anything, int64(11)).Return(nil)

	assert.True(t, w.HandleCallback(ctx, 5, callbackSend))

	assert.False(t, w.InProgress(5))
	assert.Equal(t, textWizardFailed, sender.last())
	engine.AssertExpectations(t)
}

func TestWizard_IgnoresUnknownCallbacks(t *testing.T) {
	w := NewWizard(&mockEngine{}, &fakeSender{})

	assert.False(t, w.HandleCallback(context.Background(), 5, "something_else"))
	assert.False(t, w.HandleMessage(context.Background(), 5, textMessage("hello")))
}

func intPtr(v int) *int { return &v }
