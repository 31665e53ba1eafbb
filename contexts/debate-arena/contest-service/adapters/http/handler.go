package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agon/contexts/debate-arena/contest-service/application/queries"
	"agon/contexts/debate-arena/contest-service/domain/entities"
	httptransport "agon/contexts/debate-arena/contest-service/transport/http"
)

type Handler struct {
	CurrentContest queries.GetCurrentContestUseCase
	Contest        queries.GetContestUseCase
	Winner         queries.GetWinnerRecordUseCase
	Submissions    queries.ListSubmissionsUseCase
	Logger         *slog.Logger
}

func (h Handler) GetCurrentContestHandler(ctx context.Context) (httptransport.ContestResponse, error) {
	contest, err := h.CurrentContest.Execute(ctx)
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return mapContest(contest), nil
}

func (h Handler) GetContestHandler(ctx context.Context, contestID string) (httptransport.ContestResponse, error) {
	contest, err := h.Contest.Execute(ctx, contestID)
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return mapContest(contest), nil
}

func (h Handler) GetWinnerRecordHandler(ctx context.Context, contestID string) (httptransport.WinnerRecordResponse, error) {
	record, err := h.Winner.Execute(ctx, contestID)
	if err != nil {
		return httptransport.WinnerRecordResponse{}, err
	}
	candidates := make([]httptransport.CandidateResponse, 0, len(record.Candidates))
	for _, candidate := range record.Candidates {
		candidates = append(candidates, httptransport.CandidateResponse{
			SubmissionID: candidate.SubmissionID,
			AuthorID:     candidate.AuthorID,
			Score:        candidate.Score,
		})
	}
	return httptransport.WinnerRecordResponse{
		ContestID:    record.ContestID,
		SubmissionID: record.SubmissionID,
		AuthorID:     record.AuthorID,
		WinningSide:  string(record.WinningSide),
		FinalScore:   record.FinalScore,
		Method:       record.Method,
		Reasoning:    record.Reasoning,
		Candidates:   candidates,
		Insight:      record.Insight,
		DecidedAt:    record.DecidedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) ListSubmissionsHandler(ctx context.Context, contestID string) (httptransport.SubmissionListResponse, error) {
	submissions, err := h.Submissions.Execute(ctx, contestID)
	if err != nil {
		return httptransport.SubmissionListResponse{}, err
	}
	items := make([]httptransport.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, httptransport.SubmissionResponse{
			SubmissionID: submission.SubmissionID,
			ContestID:    submission.ContestID,
			AuthorID:     submission.AuthorID,
			Side:         string(submission.Side),
			Content:      submission.Content,
			Reactions:    submission.Reactions,
			CreatedAt:    submission.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.SubmissionListResponse{Items: items}, nil
}

func mapContest(contest entities.Contest) httptransport.ContestResponse {
	return httptransport.ContestResponse{
		ContestID:       contest.ContestID,
		Title:           contest.Title,
		Description:     contest.Description,
		Category:        string(contest.Category),
		SupportPoints:   contest.SupportPoints,
		OpposePoints:    contest.OpposePoints,
		Status:          string(contest.Status),
		StartAt:         contest.StartAt.UTC().Format(time.RFC3339),
		EndAt:           contest.EndAt.UTC().Format(time.RFC3339),
		DurationHours:   contest.DurationHours,
		MaxParticipants: contest.MaxParticipants,
		LedgerRef:       contest.LedgerRef,
		Insight:         contest.Insight,
	}
}
