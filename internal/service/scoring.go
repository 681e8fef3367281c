package service

import (
	"context"
	"fmt"

	"riddlebot/internal/model"
)

// ScoreService is the scoring ledger plus the aggregate statistics screens.
type ScoreService struct {
	scores ScoreRepository
	stats  StatsRepository
}

func NewScoreService(scores ScoreRepository, stats StatsRepository) *ScoreService {
	return &ScoreService{
		scores: scores,
		stats:  stats,
	}
}

// Award gives userID one point in chatID. Atomicity lives in the repository's
// per-row increment.
func (s *ScoreService) Award(ctx context.Context, userID, chatID int64) error {
	err := s.scores.AwardPoint(ctx, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to award point: %w", err)
	}
	return nil
}

func (s *ScoreService) TopGlobal(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	entries, err := s.scores.GetTopGlobal(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get global leaderboard: %w", err)
	}
	return entries, nil
}

func (s *ScoreService) TopForChat(ctx context.Context, chatID int64, limit int) ([]*model.LeaderboardEntry, error) {
	entries, err := s.scores.GetTopForChat(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat leaderboard: %w", err)
	}
	return entries, nil
}

func (s *ScoreService) Stats(ctx context.Context) (*model.BotStats, error) {
	total, finished, avgMinutes, err := s.stats.RiddleStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get riddle stats: %w", err)
	}

	chats, members, err := s.stats.ChatStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat stats: %w", err)
	}

	return &model.BotStats{
		TotalRiddles:    total,
		FinishedRiddles: finished,
		AvgSolveMinutes: avgMinutes,
		TotalChats:      chats,
		TotalMembers:    members,
	}, nil
}
