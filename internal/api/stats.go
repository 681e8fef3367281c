package api

import (
	"net/http"
	"strconv"

	"riddlebot/internal/model"
	"riddlebot/internal/service"
	"riddlebot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultLeaderboardLimit = 10

type statsRoutes struct {
	ss service.ScoreServiceI
}

// NewStatsRoutes mounts the read-only statistics surface.
func NewStatsRoutes(handler *gin.RouterGroup, ss service.ScoreServiceI) {
	r := &statsRoutes{ss: ss}

	handler.GET("/health", r.Health)
	handler.GET("/leaderboard", r.GetGlobalLeaderboard)
	handler.GET("/chats/:chat_id/leaderboard", r.GetChatLeaderboard)
	handler.GET("/stats", r.GetStats)
}

type LeaderboardEntryResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

type StatsResponse struct {
	TotalRiddles    int     `json:"total_riddles"`
	FinishedRiddles int     `json:"finished_riddles"`
	AvgSolveMinutes float64 `json:"avg_solve_minutes"`
	TotalChats      int     `json:"total_chats"`
	TotalMembers    int     `json:"total_members"`
}

func (r *statsRoutes) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *statsRoutes) GetGlobalLeaderboard(c *gin.Context) {
	log := logger.Logger()

	entries, err := r.ss.TopGlobal(c.Request.Context(), limitParam(c))
	if err != nil {
		log.Error("failed to get global leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toLeaderboardResponse(entries))
}

func (r *statsRoutes) GetChatLeaderboard(c *gin.Context) {
	log := logger.Logger()

	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return
	}

	entries, err := r.ss.TopForChat(c.Request.Context(), chatID, limitParam(c))
	if err != nil {
		log.Error("failed to get chat leaderboard", zap.Int64("chat_id", chatID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toLeaderboardResponse(entries))
}

func (r *statsRoutes) GetStats(c *gin.Context) {
	log := logger.Logger()

	stats, err := r.ss.Stats(c.Request.Context())
	if err != nil {
		log.Error("failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		TotalRiddles:    stats.TotalRiddles,
		FinishedRiddles: stats.FinishedRiddles,
		AvgSolveMinutes: stats.AvgSolveMinutes,
		TotalChats:      stats.TotalChats,
		TotalMembers:    stats.TotalMembers,
	})
}

func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLeaderboardLimit)))
	if err != nil || limit <= 0 || limit > 100 {
		return defaultLeaderboardLimit
	}
	return limit
}

func toLeaderboardResponse(entries []*model.LeaderboardEntry) []LeaderboardEntryResponse {
	out := make([]LeaderboardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntryResponse{
			UserID:   e.UserID,
			Username: e.Username,
			Points:   e.Points,
		}
	}
	return out
}
