package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	domainerrors "agon/contexts/community-experience/points-service/domain/errors"
	"agon/contexts/community-experience/points-service/ports"
)

// Service maintains author point balances. Credit is the write path used by
// contest settlement; it is idempotent on the (reference, author) pair so a
// replayed completion cycle cannot double-award a winner.
type Service struct {
	Repo           ports.Repository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func (s Service) Credit(ctx context.Context, authorID string, points int, reference string, reason string) error {
	authorID = strings.TrimSpace(authorID)
	reference = strings.TrimSpace(reference)
	reason = strings.TrimSpace(reason)
	if authorID == "" || reference == "" || points <= 0 {
		return domainerrors.ErrInvalidInput
	}

	now := s.now()
	key := reference + "|" + authorID
	requestHash := hashStrings(authorID, reference, reason, strconv.Itoa(points))

	record, found, err := s.Idempotency.GetRecord(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return nil
	}

	logID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	log := ports.PointsLog{
		LogID:     strings.TrimSpace(logID),
		AuthorID:  authorID,
		Points:    points,
		Reference: reference,
		Reason:    reason,
		CreatedAt: now,
	}
	if err := s.Repo.AppendPointsLog(ctx, log); err != nil {
		return err
	}
	balance, err := s.Repo.IncrementPoints(ctx, authorID, points, now)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(log)
	if err != nil {
		return err
	}
	if err := s.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             key,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}

	resolveLogger(s.Logger).Info("author points credited",
		"event", "points_credited",
		"module", "community-experience/points-service",
		"layer", "application",
		"author_id", authorID,
		"points", points,
		"reference", reference,
		"total_points", balance.TotalPoints,
	)
	return nil
}

// Balance returns the author's current total. Unknown authors report zero.
func (s Service) Balance(ctx context.Context, authorID string) (ports.UserPoints, error) {
	authorID = strings.TrimSpace(authorID)
	if authorID == "" {
		return ports.UserPoints{}, domainerrors.ErrInvalidInput
	}
	balance, err := s.Repo.GetPoints(ctx, authorID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPointsNotFound) {
			return ports.UserPoints{AuthorID: authorID}, nil
		}
		return ports.UserPoints{}, err
	}
	return balance, nil
}

func (s Service) Leaderboard(ctx context.Context, limit int, offset int) ([]ports.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListLeaderboard(ctx, limit, offset)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
