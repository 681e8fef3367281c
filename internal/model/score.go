package model

// LeaderboardEntry is a rendered leaderboard row.
type LeaderboardEntry struct {
	UserID   int64
	Username string
	Points   int
}

// BotStats aggregates the numbers shown on the statistics screens.
type BotStats struct {
	TotalRiddles     int
	FinishedRiddles  int
	AvgSolveMinutes  float64
	TotalChats       int
	TotalMembers     int
}
