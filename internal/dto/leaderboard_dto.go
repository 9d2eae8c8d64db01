package dto

import "time"

// LeaderboardQuery holds the sort options accepted by the leaderboard endpoint.
type LeaderboardQuery struct {
	Sort  string `query:"sort" validate:"omitempty,oneof=score name"`
	Order string `query:"order" validate:"omitempty,oneof=asc desc"`
}

// LeaderboardEntryResponse is one leaderboard row.
type LeaderboardEntryResponse struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// LeaderboardResponse lists leaderboard rows in the requested order.
type LeaderboardResponse struct {
	Sort    string                     `json:"sort"`
	Order   string                     `json:"order"`
	Entries []LeaderboardEntryResponse `json:"entries"`
}

// DashboardResponse carries the aggregate metrics shown to teachers.
type DashboardResponse struct {
	TotalSubmissions int       `json:"total_submissions"`
	AverageScore     float64   `json:"average_score"`
	HighestScore     int       `json:"highest_score"`
	Participants     int       `json:"participants"`
	GeneratedAt      time.Time `json:"generated_at"`
	CacheHit         bool      `json:"cache_hit"`
}
