package entities

import "time"

type Side string

const (
	SideSupport Side = "support"
	SideOppose  Side = "oppose"
)

// Submission is one participant's argument on a contest side. Content is
// immutable after creation; only the reaction counter moves, and it is moved
// by an external collaborator rather than this core.
type Submission struct {
	SubmissionID string
	ContestID    string
	AuthorID     string
	Side         Side
	Content      string
	Reactions    int
	CreatedAt    time.Time
}

func IsSupportedSide(value Side) bool {
	return value == SideSupport || value == SideOppose
}
