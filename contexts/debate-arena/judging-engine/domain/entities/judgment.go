package entities

import "agon/contexts/debate-arena/judging-engine/domain/scoring"

type Side string

const (
	SideSupport Side = "support"
	SideOppose  Side = "oppose"
)

// ContestInfo is the judging view of a contest: only the fields scoring and
// insight generation read.
type ContestInfo struct {
	ContestID   string
	Title       string
	Description string
}

type Submission struct {
	SubmissionID string
	AuthorID     string
	Side         Side
	Content      string
	Reactions    int
}

// Verdict is an advisory moderation judgment. The appropriateness flag is the
// only field winner determination consumes; the 1-10 advisory scores belong
// to the moderation layer and are deliberately kept out of engine scoring.
type Verdict struct {
	SubmissionID string
	Appropriate  bool
	Clarity      int
	Reasoning    int
	Civility     int
}

// ScoredSubmission pairs a submission with its component and total scores.
type ScoredSubmission struct {
	Submission Submission
	Components scoring.ComponentScores
	Total      float64
}

type Candidate struct {
	SubmissionID string
	AuthorID     string
	Score        float64
}

// WinnerRecord is the engine output for one completed contest.
type WinnerRecord struct {
	ContestID    string
	SubmissionID string
	AuthorID     string
	WinningSide  Side
	FinalScore   float64
	Method       string
	Reasoning    string
	Candidates   []Candidate
	Insight      *string
}
