package entities

import "time"

// CandidateScore is one top-K finalist with its weighted total.
type CandidateScore struct {
	SubmissionID string
	AuthorID     string
	Score        float64
}

// WinnerRecord is the persisted outcome of a completed contest. Candidates
// holds the top-K set the final winner was drawn from.
type WinnerRecord struct {
	ContestID    string
	SubmissionID string
	AuthorID     string
	WinningSide  Side
	FinalScore   float64
	Method       string
	Reasoning    string
	Candidates   []CandidateScore
	Insight      *string
	DecidedAt    time.Time
}
