package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ContestResponse struct {
	ContestID       string   `json:"contest_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	SupportPoints   []string `json:"support_points"`
	OpposePoints    []string `json:"oppose_points"`
	Status          string   `json:"status"`
	StartAt         string   `json:"start_at"`
	EndAt           string   `json:"end_at"`
	DurationHours   float64  `json:"duration_hours"`
	MaxParticipants int      `json:"max_participants"`
	LedgerRef       string   `json:"ledger_ref,omitempty"`
	Insight         *string  `json:"insight,omitempty"`
}

type CandidateResponse struct {
	SubmissionID string  `json:"submission_id"`
	AuthorID     string  `json:"author_id"`
	Score        float64 `json:"score"`
}

type WinnerRecordResponse struct {
	ContestID    string              `json:"contest_id"`
	SubmissionID string              `json:"submission_id"`
	AuthorID     string              `json:"author_id"`
	WinningSide  string              `json:"winning_side"`
	FinalScore   float64             `json:"final_score"`
	Method       string              `json:"method"`
	Reasoning    string              `json:"reasoning"`
	Candidates   []CandidateResponse `json:"candidates"`
	Insight      *string             `json:"insight,omitempty"`
	DecidedAt    string              `json:"decided_at"`
}

type SubmissionResponse struct {
	SubmissionID string `json:"submission_id"`
	ContestID    string `json:"contest_id"`
	AuthorID     string `json:"author_id"`
	Side         string `json:"side"`
	Content      string `json:"content"`
	Reactions    int    `json:"reactions"`
	CreatedAt    string `json:"created_at"`
}

type SubmissionListResponse struct {
	Items []SubmissionResponse `json:"items"`
}
