package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

// StructuredGenerator produces a JSON completion for a prompt. The platform
// llm client satisfies it.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, out any) error
}

// Verdict is the screening result for one submission. Appropriate gates
// eligibility for winner determination; the three scores are advisory.
type Verdict struct {
	SubmissionID string
	Appropriate  bool
	Clarity      float64
	Reasoning    float64
	Civility     float64
	Rationale    string
	CheckedAt    time.Time
}

// VerdictCache memoizes verdicts by submission so each submission is screened
// at most once per process lifetime.
type VerdictCache interface {
	GetVerdict(submissionID string) (Verdict, bool)
	PutVerdict(verdict Verdict)
}
