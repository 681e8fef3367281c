package service

import (
	"context"
	"time"

	"riddlebot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRiddleRepository struct {
	mock.Mock
}

func (m *MockRiddleRepository) CreateDraft(ctx context.Context, riddle *model.Riddle) (int64, error) {
	args := m.Called(ctx, riddle)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRiddleRepository) GetRiddle(ctx context.Context, id int64) (*model.Riddle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Riddle), args.Error(1)
}

func (m *MockRiddleRepository) GetActiveRiddleByMessage(ctx context.Context, chatID int64, messageID int) (*model.Riddle, error) {
	args := m.Called(ctx, chatID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Riddle), args.Error(1)
}

func (m *MockRiddleRepository) UpdateRiddleTiming(ctx context.Context, id int64, timing model.Timing) error {
	args := m.Called(ctx, id, timing)
	return args.Error(0)
}

func (m *MockRiddleRepository) UpdateRiddleHint(ctx context.Context, id int64, hint model.Hint) error {
	args := m.Called(ctx, id, hint)
	return args.Error(0)
}

func (m *MockRiddleRepository) ActivateRiddle(ctx context.Context, id int64, messageID int, start time.Time, end *time.Time) error {
	args := m.Called(ctx, id, messageID, start, end)
	return args.Error(0)
}

func (m *MockRiddleRepository) DeactivateRiddle(ctx context.Context, id int64, end time.Time) error {
	args := m.Called(ctx, id, end)
	return args.Error(0)
}

func (m *MockRiddleRepository) DeleteDraft(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) AwardPoint(ctx context.Context, userID, chatID int64) error {
	args := m.Called(ctx, userID, chatID)
	return args.Error(0)
}

func (m *MockScoreRepository) GetTopGlobal(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

func (m *MockScoreRepository) GetTopForChat(ctx context.Context, chatID int64, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, chatID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) RiddleStats(ctx context.Context) (int, int, float64, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Get(2).(float64), args.Error(3)
}

func (m *MockStatsRepository) ChatStats(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	args := m.Called(ctx, chatID, text)
	return args.Int(0), args.Error(1)
}

func (m *MockPlatform) SendPhoto(ctx context.Context, chatID int64, photoID, caption string) (int, error) {
	args := m.Called(ctx, chatID, photoID, caption)
	return args.Int(0), args.Error(1)
}

func (m *MockPlatform) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	args := m.Called(ctx, chatID, messageID, text)
	return args.Error(0)
}

func (m *MockPlatform) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *MockPlatform) Reply(ctx context.Context, chatID int64, replyToID int, text string) (int, error) {
	args := m.Called(ctx, chatID, replyToID, text)
	return args.Int(0), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, riddleID int64, outcome Outcome) error {
	args := m.Called(ctx, riddleID, outcome)
	return args.Error(0)
}
