package bootstrap

import (
	"context"
	"math"

	centities "agon/contexts/debate-arena/contest-service/domain/entities"
	cports "agon/contexts/debate-arena/contest-service/ports"
	judgingapp "agon/contexts/debate-arena/judging-engine/application"
	jentities "agon/contexts/debate-arena/judging-engine/domain/entities"
	topicapp "agon/contexts/debate-arena/topic-pipeline/application"
	moderationapp "agon/contexts/moderation-safety/moderation-service/application"
)

// contestJudge bridges moderation screening and the judging engine into the
// contest scheduler's Judge port. Screening failures never surface here; the
// moderation service resolves them permissively.
type contestJudge struct {
	engine     judgingapp.Engine
	moderation moderationapp.Service
	screening  bool
}

func (j contestJudge) DetermineWinner(
	ctx context.Context,
	contest centities.Contest,
	submissions []centities.Submission,
) (centities.WinnerRecord, error) {
	info := jentities.ContestInfo{
		ContestID:   contest.ContestID,
		Title:       contest.Title,
		Description: contest.Description,
	}

	judged := make([]jentities.Submission, 0, len(submissions))
	contentByID := make(map[string]string, len(submissions))
	for _, submission := range submissions {
		judged = append(judged, jentities.Submission{
			SubmissionID: submission.SubmissionID,
			AuthorID:     submission.AuthorID,
			Side:         jentities.Side(submission.Side),
			Content:      submission.Content,
			Reactions:    submission.Reactions,
		})
		contentByID[submission.SubmissionID] = submission.Content
	}

	var verdicts []jentities.Verdict
	if j.screening {
		for _, verdict := range j.moderation.ScreenAll(ctx, contest.Title, contentByID) {
			verdicts = append(verdicts, jentities.Verdict{
				SubmissionID: verdict.SubmissionID,
				Appropriate:  verdict.Appropriate,
				Clarity:      int(math.Round(verdict.Clarity)),
				Reasoning:    int(math.Round(verdict.Reasoning)),
				Civility:     int(math.Round(verdict.Civility)),
			})
		}
	}

	record, err := j.engine.DetermineWinner(ctx, info, judged, verdicts)
	if err != nil {
		return centities.WinnerRecord{}, err
	}

	candidates := make([]centities.CandidateScore, 0, len(record.Candidates))
	for _, candidate := range record.Candidates {
		candidates = append(candidates, centities.CandidateScore{
			SubmissionID: candidate.SubmissionID,
			AuthorID:     candidate.AuthorID,
			Score:        candidate.Score,
		})
	}
	return centities.WinnerRecord{
		ContestID:    record.ContestID,
		SubmissionID: record.SubmissionID,
		AuthorID:     record.AuthorID,
		WinningSide:  centities.Side(record.WinningSide),
		FinalScore:   record.FinalScore,
		Method:       record.Method,
		Reasoning:    record.Reasoning,
		Candidates:   candidates,
		Insight:      record.Insight,
	}, nil
}

// topicSource adapts the topic pipeline to contest creation.
type topicSource struct {
	pipeline topicapp.GenerateTopicUseCase
}

func (t topicSource) GenerateTopic(ctx context.Context, sequence int) (cports.TopicDraft, error) {
	topic, err := t.pipeline.Execute(ctx, sequence)
	if err != nil {
		return cports.TopicDraft{}, err
	}
	return cports.TopicDraft{
		Title:         topic.Title,
		Description:   topic.Description,
		Category:      topic.Category,
		SupportPoints: topic.SupportPoints,
		OpposePoints:  topic.OpposePoints,
		Strategy:      topic.Strategy,
	}, nil
}

// recentTopics feeds the dedup check from recently completed contests.
type recentTopics struct {
	contests cports.ContestRepository
}

func (r recentTopics) ListRecentDescriptions(ctx context.Context, limit int) ([]string, error) {
	completed, err := r.contests.ListRecentCompleted(ctx, limit)
	if err != nil {
		return nil, err
	}
	descriptions := make([]string, 0, len(completed))
	for _, contest := range completed {
		descriptions = append(descriptions, contest.Description)
	}
	return descriptions, nil
}
