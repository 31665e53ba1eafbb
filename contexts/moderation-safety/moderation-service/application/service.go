package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agon/contexts/moderation-safety/moderation-service/ports"
)

const (
	scoreFloor = 1.0
	scoreCeil  = 10.0

	// fallbackScore is the neutral advisory score used when screening cannot
	// run. Screening must never block winner determination, so failures
	// resolve permissively.
	fallbackScore = 5.0
)

// Service screens debate submissions for appropriateness before judging.
type Service struct {
	Generator ports.StructuredGenerator
	Cache     ports.VerdictCache
	Clock     ports.Clock
	Logger    *slog.Logger
}

type verdictPayload struct {
	Appropriate bool    `json:"appropriate"`
	Clarity     float64 `json:"clarity"`
	Reasoning   float64 `json:"reasoning"`
	Civility    float64 `json:"civility"`
	Rationale   string  `json:"rationale"`
}

// Screen returns the verdict for one submission, consulting the cache first.
// Any screening failure resolves to a permissive verdict so a flaky gateway
// cannot strand a contest.
func (s Service) Screen(ctx context.Context, submissionID string, topic string, content string) ports.Verdict {
	submissionID = strings.TrimSpace(submissionID)
	if s.Cache != nil {
		if verdict, ok := s.Cache.GetVerdict(submissionID); ok {
			return verdict
		}
	}

	verdict := s.screen(ctx, submissionID, topic, content)
	if s.Cache != nil {
		s.Cache.PutVerdict(verdict)
	}
	return verdict
}

// ScreenAll screens a batch of submissions keyed by submission id.
func (s Service) ScreenAll(ctx context.Context, topic string, contentByID map[string]string) map[string]ports.Verdict {
	verdicts := make(map[string]ports.Verdict, len(contentByID))
	for submissionID, content := range contentByID {
		verdicts[submissionID] = s.Screen(ctx, submissionID, topic, content)
	}
	return verdicts
}

func (s Service) screen(ctx context.Context, submissionID string, topic string, content string) ports.Verdict {
	logger := resolveLogger(s.Logger)
	if s.Generator == nil {
		return s.permissiveVerdict(submissionID, "screening disabled")
	}
	if strings.TrimSpace(content) == "" {
		return s.permissiveVerdict(submissionID, "empty submission")
	}

	var payload verdictPayload
	if err := s.Generator.GenerateStructured(ctx, screeningPrompt(topic, content), &payload); err != nil {
		logger.Warn("submission screening failed; resolving permissively",
			"event", "moderation_screening_failed",
			"module", "moderation-safety/moderation-service",
			"layer", "application",
			"submission_id", submissionID,
			"error", err.Error(),
		)
		return s.permissiveVerdict(submissionID, "screening unavailable")
	}

	verdict := ports.Verdict{
		SubmissionID: submissionID,
		Appropriate:  payload.Appropriate,
		Clarity:      clampScore(payload.Clarity),
		Reasoning:    clampScore(payload.Reasoning),
		Civility:     clampScore(payload.Civility),
		Rationale:    strings.TrimSpace(payload.Rationale),
		CheckedAt:    s.now(),
	}
	if !verdict.Appropriate {
		logger.Info("submission flagged as inappropriate",
			"event", "moderation_submission_flagged",
			"module", "moderation-safety/moderation-service",
			"layer", "application",
			"submission_id", submissionID,
		)
	}
	return verdict
}

func (s Service) permissiveVerdict(submissionID string, rationale string) ports.Verdict {
	return ports.Verdict{
		SubmissionID: submissionID,
		Appropriate:  true,
		Clarity:      fallbackScore,
		Reasoning:    fallbackScore,
		Civility:     fallbackScore,
		Rationale:    rationale,
		CheckedAt:    s.now(),
	}
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func screeningPrompt(topic string, content string) string {
	return fmt.Sprintf(
		"You are screening a submission in an online debate contest on the topic: %s\n"+
			"Judge whether the submission is appropriate for a public audience (no hate, harassment, or spam), "+
			"and rate its clarity, reasoning, and civility from 1 to 10.\n"+
			"Respond with JSON only: {\"appropriate\": <bool>, \"clarity\": <number>, \"reasoning\": <number>, "+
			"\"civility\": <number>, \"rationale\": <short string>}.\n\nSubmission:\n%s\n", topic, content)
}

func clampScore(score float64) float64 {
	if score < scoreFloor {
		return scoreFloor
	}
	if score > scoreCeil {
		return scoreCeil
	}
	return score
}
