package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "agon/contexts/community-experience/points-service/domain/errors"
	"agon/contexts/community-experience/points-service/ports"
)

// Store backs the points service for tests and local runs. It also serves as
// the service's Clock and IDGenerator.
type Store struct {
	mu sync.RWMutex

	balances    map[string]ports.UserPoints
	logs        []ports.PointsLog
	idempotency map[string]ports.IdempotencyRecord
	now         time.Time
}

func NewStore() *Store {
	return &Store{
		balances:    make(map[string]ports.UserPoints),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) AppendPointsLog(ctx context.Context, log ports.PointsLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

func (s *Store) IncrementPoints(ctx context.Context, authorID string, delta int, updatedAt time.Time) (ports.UserPoints, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance := s.balances[authorID]
	balance.AuthorID = authorID
	balance.TotalPoints += delta
	balance.UpdatedAt = updatedAt
	s.balances[authorID] = balance
	return balance, nil
}

func (s *Store) GetPoints(ctx context.Context, authorID string) (ports.UserPoints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.balances[strings.TrimSpace(authorID)]
	if !ok {
		return ports.UserPoints{}, domainerrors.ErrPointsNotFound
	}
	return balance, nil
}

func (s *Store) ListLeaderboard(ctx context.Context, limit int, offset int) ([]ports.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]ports.LeaderboardEntry, 0, len(s.balances))
	for _, balance := range s.balances {
		entries = append(entries, ports.LeaderboardEntry{
			AuthorID:    balance.AuthorID,
			TotalPoints: balance.TotalPoints,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].AuthorID < entries[j].AuthorID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if offset >= len(entries) {
		return []ports.LeaderboardEntry{}, nil
	}
	entries = entries[offset:]
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Store) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.idempotency[key]
	if !ok || now.After(record.ExpiresAt) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[record.Key] = record
	return nil
}

// LogCount reports the number of appended credit logs. Test helper.
func (s *Store) LogCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}
