package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BalanceResponse struct {
	AuthorID    string `json:"author_id"`
	TotalPoints int    `json:"total_points"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type LeaderboardEntryResponse struct {
	AuthorID    string `json:"author_id"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntryResponse `json:"entries"`
}
