package ports

import (
	"context"
	"time"

	"agon/contexts/debate-arena/contest-service/domain/entities"
	"agon/internal/shared/events"
)

type ContestRepository interface {
	SaveContest(ctx context.Context, contest entities.Contest) error
	GetContest(ctx context.Context, contestID string) (entities.Contest, error)
	GetActiveContest(ctx context.Context) (entities.Contest, bool, error)
	// ListExpiredUnfinished returns expired contests that still need the
	// completion workflow: active ones, plus ones stranded in completing by
	// an earlier failed attempt.
	ListExpiredUnfinished(ctx context.Context, now time.Time, limit int) ([]entities.Contest, error)
	// ClaimForCompletion flips status active -> completing as a conditional
	// update so two scheduler instances cannot both win the same contest.
	// Returns ErrContestNotClaimable when the contest is no longer active.
	ClaimForCompletion(ctx context.Context, contestID string) error
	ListRecentCompleted(ctx context.Context, limit int) ([]entities.Contest, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

type SubmissionRepository interface {
	SaveSubmission(ctx context.Context, submission entities.Submission) error
	ListSubmissionsByContest(ctx context.Context, contestID string) ([]entities.Submission, error)
}

type WinnerRepository interface {
	SaveWinnerRecord(ctx context.Context, record entities.WinnerRecord) error
	GetWinnerRecord(ctx context.Context, contestID string) (entities.WinnerRecord, bool, error)
}

// Judge closes out an expired contest. The zero-submission case never reaches
// the judge; the scheduler completes those contests with an empty winner.
type Judge interface {
	DetermineWinner(
		ctx context.Context,
		contest entities.Contest,
		submissions []entities.Submission,
	) (entities.WinnerRecord, error)
}

// TopicDraft is the projection of a validated, deduplicated topic handed back
// by the topic pipeline for contest creation.
type TopicDraft struct {
	Title         string
	Description   string
	Category      string
	SupportPoints []string
	OpposePoints  []string
	Strategy      string
}

type TopicSource interface {
	GenerateTopic(ctx context.Context, sequence int) (TopicDraft, error)
}

type SettlementClient interface {
	DeclareWinner(ctx context.Context, contestExternalID string, winnerAddress string) (string, error)
}

type PointsBank interface {
	Credit(ctx context.Context, authorID string, points int, reference string, reason string) error
}

type OutboxMessage struct {
	OutboxID    string
	EventType   string
	Payload     []byte
	Status      string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, envelope events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
