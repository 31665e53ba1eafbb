package memory

import (
	"strings"
	"sync"
	"time"

	"agon/contexts/moderation-safety/moderation-service/ports"
)

// Store is the process-local verdict cache. Verdicts are immutable once a
// submission is screened, so no TTL is needed.
type Store struct {
	mu       sync.RWMutex
	verdicts map[string]ports.Verdict
	now      time.Time
}

func NewStore() *Store {
	return &Store{verdicts: make(map[string]ports.Verdict)}
}

func (s *Store) GetVerdict(submissionID string) (ports.Verdict, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	verdict, ok := s.verdicts[strings.TrimSpace(submissionID)]
	return verdict, ok
}

func (s *Store) PutVerdict(verdict ports.Verdict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts[strings.TrimSpace(verdict.SubmissionID)] = verdict
}

// VerdictCount reports how many submissions have been screened. Test helper.
func (s *Store) VerdictCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.verdicts)
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
