package queries

import (
	"context"
	"log/slog"
	"strings"

	"agon/contexts/debate-arena/contest-service/domain/entities"
	domainerrors "agon/contexts/debate-arena/contest-service/domain/errors"
	"agon/contexts/debate-arena/contest-service/ports"
)

type GetCurrentContestUseCase struct {
	Contests ports.ContestRepository
	Logger   *slog.Logger
}

func (uc GetCurrentContestUseCase) Execute(ctx context.Context) (entities.Contest, error) {
	contest, found, err := uc.Contests.GetActiveContest(ctx)
	if err != nil {
		return entities.Contest{}, err
	}
	if !found {
		return entities.Contest{}, domainerrors.ErrNoActiveContest
	}
	return contest, nil
}

type GetContestUseCase struct {
	Contests ports.ContestRepository
	Logger   *slog.Logger
}

func (uc GetContestUseCase) Execute(ctx context.Context, contestID string) (entities.Contest, error) {
	if strings.TrimSpace(contestID) == "" {
		return entities.Contest{}, domainerrors.ErrInvalidContestInput
	}
	return uc.Contests.GetContest(ctx, strings.TrimSpace(contestID))
}

type GetWinnerRecordUseCase struct {
	Winners ports.WinnerRepository
	Logger  *slog.Logger
}

// Execute returns the winner record of a completed contest. A contest that
// completed with zero submissions has no record; callers render "no winner".
func (uc GetWinnerRecordUseCase) Execute(ctx context.Context, contestID string) (entities.WinnerRecord, error) {
	if strings.TrimSpace(contestID) == "" {
		return entities.WinnerRecord{}, domainerrors.ErrInvalidContestInput
	}
	record, found, err := uc.Winners.GetWinnerRecord(ctx, strings.TrimSpace(contestID))
	if err != nil {
		return entities.WinnerRecord{}, err
	}
	if !found {
		return entities.WinnerRecord{}, domainerrors.ErrWinnerRecordNotFound
	}
	return record, nil
}

type ListSubmissionsUseCase struct {
	Submissions ports.SubmissionRepository
	Logger      *slog.Logger
}

func (uc ListSubmissionsUseCase) Execute(ctx context.Context, contestID string) ([]entities.Submission, error) {
	if strings.TrimSpace(contestID) == "" {
		return nil, domainerrors.ErrInvalidContestInput
	}
	return uc.Submissions.ListSubmissionsByContest(ctx, strings.TrimSpace(contestID))
}
