package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agon/contexts/debate-arena/contest-service/domain/entities"
	domainerrors "agon/contexts/debate-arena/contest-service/domain/errors"
	"agon/contexts/debate-arena/contest-service/ports"
	"agon/internal/shared/events"
	"agon/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message ports.OutboxMessage
}

// Store is the in-memory adapter backing tests and in-memory module wiring.
// It also serves as Clock and IDGenerator; tests pin time via SetNow.
type Store struct {
	mu sync.RWMutex

	contests    map[string]entities.Contest
	submissions map[string]entities.Submission
	winners     map[string]entities.WinnerRecord
	outbox      map[string]outboxRecord

	now time.Time
}

func NewStore(seed []entities.Contest) *Store {
	contests := make(map[string]entities.Contest, len(seed))
	for _, contest := range seed {
		contests[contest.ContestID] = contest
	}
	return &Store{
		contests:    contests,
		submissions: make(map[string]entities.Submission),
		winners:     make(map[string]entities.WinnerRecord),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) SaveContest(_ context.Context, contest entities.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[strings.TrimSpace(contest.ContestID)] = contest
	return nil
}

func (s *Store) GetContest(_ context.Context, contestID string) (entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	contest, ok := s.contests[strings.TrimSpace(contestID)]
	if !ok {
		return entities.Contest{}, domainerrors.ErrContestNotFound
	}
	return contest, nil
}

func (s *Store) GetActiveContest(_ context.Context) (entities.Contest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, contest := range s.contests {
		if contest.Status == entities.ContestStatusActive {
			return contest, true, nil
		}
	}
	return entities.Contest{}, false, nil
}

func (s *Store) ListExpiredUnfinished(_ context.Context, now time.Time, limit int) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []entities.Contest
	for _, contest := range s.contests {
		unfinished := contest.Status == entities.ContestStatusActive ||
			contest.Status == entities.ContestStatusCompleting
		if unfinished && contest.Expired(now) {
			expired = append(expired, contest)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].EndAt.Before(expired[j].EndAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

func (s *Store) ClaimForCompletion(_ context.Context, contestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contest, ok := s.contests[strings.TrimSpace(contestID)]
	if !ok {
		return domainerrors.ErrContestNotFound
	}
	if contest.Status != entities.ContestStatusActive {
		return domainerrors.ErrContestNotClaimable
	}
	contest.Status = entities.ContestStatusCompleting
	s.contests[contest.ContestID] = contest
	return nil
}

func (s *Store) ListRecentCompleted(_ context.Context, limit int) ([]entities.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var completed []entities.Contest
	for _, contest := range s.contests {
		if contest.Status == entities.ContestStatusCompleted {
			completed = append(completed, contest)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		left, right := completed[i].CompletedAt, completed[j].CompletedAt
		if left == nil || right == nil {
			return completed[i].EndAt.After(completed[j].EndAt)
		}
		return left.After(*right)
	})
	if limit > 0 && len(completed) > limit {
		completed = completed[:limit]
	}
	return completed, nil
}

func (s *Store) CountCreatedSince(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, contest := range s.contests {
		if !contest.CreatedAt.UTC().Before(since.UTC()) {
			count++
		}
	}
	return count, nil
}

func (s *Store) SaveSubmission(_ context.Context, submission entities.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[strings.TrimSpace(submission.SubmissionID)] = submission
	return nil
}

func (s *Store) ListSubmissionsByContest(_ context.Context, contestID string) ([]entities.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []entities.Submission
	for _, submission := range s.submissions {
		if strings.EqualFold(submission.ContestID, strings.TrimSpace(contestID)) {
			items = append(items, submission)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) SaveWinnerRecord(_ context.Context, record entities.WinnerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.winners[strings.TrimSpace(record.ContestID)] = record
	return nil
}

func (s *Store) GetWinnerRecord(_ context.Context, contestID string) (entities.WinnerRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.winners[strings.TrimSpace(contestID)]
	return record, ok, nil
}

func (s *Store) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID, err := s.NewID(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  outboxID,
			EventType: envelope.EventType,
			Payload:   payload,
			Status:    outbox.StatusPending,
			CreatedAt: envelope.OccurredAtUTC,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []ports.OutboxMessage
	for _, record := range s.outbox {
		if record.message.Status == outbox.StatusPending {
			pending = append(pending, record.message)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	record.message.Status = outbox.StatusPublished
	record.message.PublishedAt = &publishedAt
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

// PendingOutboxCount is a test helper.
func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.outbox {
		if record.message.Status == outbox.StatusPending {
			count++
		}
	}
	return count
}
