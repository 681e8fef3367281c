package service

import (
	"context"
	"errors"
	"testing"

	"riddlebot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestScoreService_Award(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(scores *MockScoreRepository)
		wantErr   bool
	}{
		{
			name: "success",
			mockSetup: func(scores *MockScoreRepository) {
				scores.On("AwardPoint", mock.Anything, int64(5), int64(7)).Return(nil)
			},
		},
		{
			name: "repository error",
			mockSetup: func(scores *MockScoreRepository) {
				scores.On("AwardPoint", mock.Anything, int64(5), int64(7)).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := &MockScoreRepository{}
			tt.mockSetup(scores)
			s := NewScoreService(scores, &MockStatsRepository{})

			err := s.Award(context.Background(), 5, 7)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			scores.AssertExpectations(t)
		})
	}
}

func TestScoreService_Leaderboards(t *testing.T) {
	entries := []*model.LeaderboardEntry{
		{UserID: 1, Username: "alice", Points: 12},
		{UserID: 2, Username: "bob", Points: 3},
	}

	scores := &MockScoreRepository{}
	scores.On("GetTopGlobal", mock.Anything, 10).Return(entries, nil)
	scores.On("GetTopForChat", mock.Anything, int64(7), 5).Return(entries[:1], nil)
	s := NewScoreService(scores, &MockStatsRepository{})

	global, err := s.TopGlobal(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, entries, global)

	chat, err := s.TopForChat(context.Background(), 7, 5)
	assert.NoError(t, err)
	assert.Equal(t, entries[:1], chat)

	scores.AssertExpectations(t)
}

func TestScoreService_Stats(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(stats *MockStatsRepository)
		want      *model.BotStats
		wantErr   bool
	}{
		{
			name: "combines riddle and chat stats",
			mockSetup: func(stats *MockStatsRepository) {
				stats.On("RiddleStats", mock.Anything).Return(20, 14, 6.5, nil)
				stats.On("ChatStats", mock.Anything).Return(3, 120, nil)
			},
			want: &model.BotStats{
				TotalRiddles:    20,
				FinishedRiddles: 14,
				AvgSolveMinutes: 6.5,
				TotalChats:      3,
				TotalMembers:    120,
			},
		},
		{
			name: "riddle stats error",
			mockSetup: func(stats *MockStatsRepository) {
				stats.On("RiddleStats", mock.Anything).Return(0, 0, 0.0, errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name: "chat stats error",
			mockSetup: func(stats *MockStatsRepository) {
				stats.On("RiddleStats", mock.Anything).Return(20, 14, 6.5, nil)
				stats.On("ChatStats", mock.Anything).Return(0, 0, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &MockStatsRepository{}
			tt.mockSetup(stats)
			s := NewScoreService(&MockScoreRepository{}, stats)

			got, err := s.Stats(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			stats.AssertExpectations(t)
		})
	}
}
