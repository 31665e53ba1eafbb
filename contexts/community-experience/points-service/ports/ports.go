package ports

import (
	"context"
	"time"
)

type UserPoints struct {
	AuthorID    string
	TotalPoints int
	UpdatedAt   time.Time
}

type PointsLog struct {
	LogID     string
	AuthorID  string
	Points    int
	Reference string
	Reason    string
	CreatedAt time.Time
}

type LeaderboardEntry struct {
	AuthorID    string
	TotalPoints int
	Rank        int
}

type Repository interface {
	AppendPointsLog(ctx context.Context, log PointsLog) error
	IncrementPoints(ctx context.Context, authorID string, delta int, updatedAt time.Time) (UserPoints, error)
	GetPoints(ctx context.Context, authorID string) (UserPoints, error)
	ListLeaderboard(ctx context.Context, limit int, offset int) ([]LeaderboardEntry, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

// IdempotencyStore dedupes credits so a retried settlement cycle cannot
// double-award a winner.
type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
