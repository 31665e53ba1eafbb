package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"agon/contexts/debate-arena/contest-service/adapters/memory"
	"agon/contexts/debate-arena/contest-service/domain/entities"
	domainerrors "agon/contexts/debate-arena/contest-service/domain/errors"
)

func seededStore() *memory.Store {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return memory.NewStore([]entities.Contest{
		{
			ContestID:   "contest-1",
			Title:       "Should remote work become the default",
			Status:      entities.ContestStatusActive,
			StartAt:     now,
			EndAt:       now.Add(24 * time.Hour),
			CreatedAt:   now,
			UpdatedAt:   now,
			Description: "Remote work as the default arrangement for knowledge workers",
		},
	})
}

func TestGetCurrentContestReturnsActive(t *testing.T) {
	uc := GetCurrentContestUseCase{Contests: seededStore()}

	contest, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if contest.ContestID != "contest-1" {
		t.Fatalf("expected active contest-1, got %q", contest.ContestID)
	}
}

func TestGetCurrentContestWithoutActive(t *testing.T) {
	uc := GetCurrentContestUseCase{Contests: memory.NewStore(nil)}

	_, err := uc.Execute(context.Background())
	if !errors.Is(err, domainerrors.ErrNoActiveContest) {
		t.Fatalf("expected no-active-contest error, got %v", err)
	}
}

func TestGetContestValidatesID(t *testing.T) {
	uc := GetContestUseCase{Contests: seededStore()}

	if _, err := uc.Execute(context.Background(), "  "); !errors.Is(err, domainerrors.ErrInvalidContestInput) {
		t.Fatalf("expected invalid input for blank id, got %v", err)
	}
	if _, err := uc.Execute(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrContestNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	contest, err := uc.Execute(context.Background(), " contest-1 ")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if contest.ContestID != "contest-1" {
		t.Fatalf("expected trimmed lookup to resolve contest-1, got %q", contest.ContestID)
	}
}

func TestGetWinnerRecord(t *testing.T) {
	store := seededStore()
	decidedAt := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	if err := store.SaveWinnerRecord(context.Background(), entities.WinnerRecord{
		ContestID:    "contest-1",
		SubmissionID: "sub-1",
		AuthorID:     "author-1",
		DecidedAt:    decidedAt,
	}); err != nil {
		t.Fatalf("save winner: %v", err)
	}
	uc := GetWinnerRecordUseCase{Winners: store}

	record, err := uc.Execute(context.Background(), "contest-1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if record.SubmissionID != "sub-1" || record.AuthorID != "author-1" {
		t.Fatalf("unexpected winner record %+v", record)
	}

	if _, err := uc.Execute(context.Background(), "contest-2"); !errors.Is(err, domainerrors.ErrWinnerRecordNotFound) {
		t.Fatalf("expected winner-not-found for contest without a record, got %v", err)
	}
}

func TestListSubmissions(t *testing.T) {
	store := seededStore()
	for _, id := range []string{"sub-1", "sub-2"} {
		if err := store.SaveSubmission(context.Background(), entities.Submission{
			SubmissionID: id,
			ContestID:    "contest-1",
			AuthorID:     "author-" + id,
			Side:         entities.SideSupport,
			Content:      "An argument with enough substance to store",
		}); err != nil {
			t.Fatalf("save submission: %v", err)
		}
	}
	uc := ListSubmissionsUseCase{Submissions: store}

	submissions, err := uc.Execute(context.Background(), "contest-1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(submissions) != 2 {
		t.Fatalf("expected two submissions, got %d", len(submissions))
	}
	if _, err := uc.Execute(context.Background(), ""); !errors.Is(err, domainerrors.ErrInvalidContestInput) {
		t.Fatalf("expected invalid input for blank id, got %v", err)
	}
}
