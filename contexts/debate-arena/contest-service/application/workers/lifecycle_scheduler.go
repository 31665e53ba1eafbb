package workers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "agon/contexts/debate-arena/contest-service/application"
	"agon/contexts/debate-arena/contest-service/domain/entities"
	domainerrors "agon/contexts/debate-arena/contest-service/domain/errors"
	"agon/contexts/debate-arena/contest-service/ports"
	"agon/internal/shared/events"
)

// LifecycleScheduler drives the contest state machine:
// active -> (end time reached) -> completing -> (judging done) -> completed.
//
// One Tick sweeps expired contests sequentially, persists winners, performs
// best-effort settlement and reward credit, and creates the next contest when
// none remains active. Expired contests are never processed in parallel: two
// completions must not race for the same persisted state or ledger nonce.
type LifecycleScheduler struct {
	Contests    ports.ContestRepository
	Submissions ports.SubmissionRepository
	Winners     ports.WinnerRepository
	Judge       ports.Judge
	Topics      ports.TopicSource
	Ledger      ports.SettlementClient
	Rewards     ports.PointsBank
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator

	ConfiguredDuration time.Duration
	MaxParticipants    int
	RewardPoints       int
	BatchSize          int
	Logger             *slog.Logger
}

// Tick runs one lifecycle cycle. Errors from individual contests or from
// contest creation are logged and absorbed; the next tick retries whatever is
// still pending. Only repository failures that prevent the sweep itself from
// running are returned.
func (s LifecycleScheduler) Tick(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	now := s.now()

	limit := s.BatchSize
	if limit <= 0 {
		limit = 20
	}
	expired, err := s.Contests.ListExpiredUnfinished(ctx, now, limit)
	if err != nil {
		logger.Error("expired contest sweep failed",
			"event", "contest_lifecycle_sweep_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, contest := range expired {
		s.completeContest(ctx, contest)
	}

	return s.ensureActiveContest(ctx)
}

// RunStartupDriftCheck force-completes the current active contest when its
// stored duration no longer matches the configured one. Runs once before the
// first tick so an operator duration change takes effect on the next cycle.
func (s LifecycleScheduler) RunStartupDriftCheck(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	contest, found, err := s.Contests.GetActiveContest(ctx)
	if err != nil {
		logger.Error("drift check active contest lookup failed",
			"event", "contest_drift_check_lookup_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if !found {
		return nil
	}
	if !contest.DurationDrifted(s.ConfiguredDuration.Hours()) {
		return nil
	}

	now := s.now()
	contest.Status = entities.ContestStatusCompleted
	contest.UpdatedAt = now
	contest.CompletedAt = &now
	if err := s.Contests.SaveContest(ctx, contest); err != nil {
		logger.Error("drift force-completion failed",
			"event", "contest_drift_force_completion_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"error", err.Error(),
		)
		return err
	}
	s.appendContestEvent(ctx, "contest.completed", contest, now, map[string]any{
		"reason":           "duration_drift",
		"stored_duration":  contest.DurationHours,
		"config_duration":  s.ConfiguredDuration.Hours(),
		"winner_persisted": false,
	})
	logger.Info("contest force-completed on duration drift",
		"event", "contest_drift_force_completed",
		"module", "debate-arena/contest-service",
		"layer", "worker",
		"contest_id", contest.ContestID,
		"stored_duration_hours", contest.DurationHours,
		"configured_duration_hours", s.ConfiguredDuration.Hours(),
	)
	return nil
}

// completeContest runs the completion workflow for a single expired contest.
// Judging failures leave the contest completed without a winner rather than
// wedging it in completing. A contest already in completing was claimed by an
// earlier attempt that died mid-workflow; the sweep re-surfaces it and the
// workflow resumes without re-claiming.
func (s LifecycleScheduler) completeContest(ctx context.Context, contest entities.Contest) {
	logger := application.ResolveLogger(s.Logger)
	now := s.now()

	if contest.Status == entities.ContestStatusCompleting {
		logger.Warn("resuming contest stranded in completing",
			"event", "contest_completion_resumed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
		)
	} else {
		if err := s.Contests.ClaimForCompletion(ctx, contest.ContestID); err != nil {
			if errors.Is(err, domainerrors.ErrContestNotClaimable) {
				logger.Warn("contest already claimed by another completer",
					"event", "contest_completion_claim_lost",
					"module", "debate-arena/contest-service",
					"layer", "worker",
					"contest_id", contest.ContestID,
				)
				return
			}
			logger.Error("contest completion claim failed",
				"event", "contest_completion_claim_failed",
				"module", "debate-arena/contest-service",
				"layer", "worker",
				"contest_id", contest.ContestID,
				"error", err.Error(),
			)
			return
		}
		contest.Status = entities.ContestStatusCompleting
		s.appendContestEvent(ctx, "contest.completing", contest, now, nil)
	}

	submissions, err := s.Submissions.ListSubmissionsByContest(ctx, contest.ContestID)
	if err != nil {
		logger.Error("contest submissions load failed",
			"event", "contest_submissions_load_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"error", err.Error(),
		)
		return
	}

	if len(submissions) == 0 {
		s.finishContest(ctx, contest, nil, now)
		logger.Info("contest completed without submissions",
			"event", "contest_completed_empty",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
		)
		return
	}

	record, err := s.Judge.DetermineWinner(ctx, contest, submissions)
	if err != nil {
		logger.Error("winner determination failed; completing without winner",
			"event", "contest_judging_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"submission_count", len(submissions),
			"error", err.Error(),
		)
		s.finishContest(ctx, contest, nil, now)
		return
	}
	record.ContestID = contest.ContestID
	record.DecidedAt = now

	if err := s.Winners.SaveWinnerRecord(ctx, record); err != nil {
		logger.Error("winner record persist failed",
			"event", "contest_winner_persist_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"submission_id", record.SubmissionID,
			"error", err.Error(),
		)
		return
	}
	s.finishContest(ctx, contest, &record, now)

	s.settle(ctx, contest, record)
	s.credit(ctx, contest, record)

	logger.Info("contest completed",
		"event", "contest_completed",
		"module", "debate-arena/contest-service",
		"layer", "worker",
		"contest_id", contest.ContestID,
		"submission_id", record.SubmissionID,
		"winning_side", string(record.WinningSide),
		"method", record.Method,
		"final_score", record.FinalScore,
	)
}

func (s LifecycleScheduler) finishContest(
	ctx context.Context,
	contest entities.Contest,
	record *entities.WinnerRecord,
	now time.Time,
) {
	logger := application.ResolveLogger(s.Logger)
	contest.Status = entities.ContestStatusCompleted
	contest.UpdatedAt = now
	contest.CompletedAt = &now
	if record != nil {
		contest.Insight = record.Insight
	}
	if err := s.Contests.SaveContest(ctx, contest); err != nil {
		logger.Error("contest completion persist failed",
			"event", "contest_completion_persist_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"error", err.Error(),
		)
		return
	}
	payload := map[string]any{"winner_persisted": record != nil}
	if record != nil {
		payload["submission_id"] = record.SubmissionID
		payload["winning_side"] = string(record.WinningSide)
		payload["method"] = record.Method
	}
	s.appendContestEvent(ctx, "contest.completed", contest, now, payload)
}

// settle notifies the external ledger. Best effort: failures are logged and
// never block completion, and there is no compensating transaction.
func (s LifecycleScheduler) settle(ctx context.Context, contest entities.Contest, record entities.WinnerRecord) {
	logger := application.ResolveLogger(s.Logger)
	if s.Ledger == nil || strings.TrimSpace(contest.LedgerRef) == "" {
		return
	}
	receipt, err := s.Ledger.DeclareWinner(ctx, contest.LedgerRef, record.AuthorID)
	if err != nil {
		logger.Error("contest settlement failed",
			"event", "contest_settlement_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"ledger_ref", contest.LedgerRef,
			"error", err.Error(),
		)
		return
	}
	logger.Info("contest settled",
		"event", "contest_settled",
		"module", "debate-arena/contest-service",
		"layer", "worker",
		"contest_id", contest.ContestID,
		"ledger_ref", contest.LedgerRef,
		"receipt", receipt,
	)
}

// credit awards the fixed winner reward. Best effort like settlement.
func (s LifecycleScheduler) credit(ctx context.Context, contest entities.Contest, record entities.WinnerRecord) {
	logger := application.ResolveLogger(s.Logger)
	if s.Rewards == nil {
		return
	}
	points := s.RewardPoints
	if points <= 0 {
		points = 100
	}
	if err := s.Rewards.Credit(ctx, record.AuthorID, points, contest.ContestID, "debate_battle_winner"); err != nil {
		logger.Error("winner reward credit failed",
			"event", "contest_reward_credit_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"author_id", record.AuthorID,
			"points", points,
			"error", err.Error(),
		)
		return
	}
	logger.Info("winner reward credited",
		"event", "contest_reward_credited",
		"module", "debate-arena/contest-service",
		"layer", "worker",
		"contest_id", contest.ContestID,
		"author_id", record.AuthorID,
		"points", points,
	)
}

// ensureActiveContest creates the next contest when none is active. Topic
// pipeline failure leaves the system without an active contest; the next tick
// is the retry mechanism, unbounded in wall-clock time by design.
func (s LifecycleScheduler) ensureActiveContest(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	_, found, err := s.Contests.GetActiveContest(ctx)
	if err != nil {
		logger.Error("active contest lookup failed",
			"event", "contest_active_lookup_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if found {
		return nil
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sequence, err := s.Contests.CountCreatedSince(ctx, dayStart)
	if err != nil {
		logger.Error("contest sequence count failed",
			"event", "contest_sequence_count_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	draft, err := s.Topics.GenerateTopic(ctx, sequence)
	if err != nil {
		logger.Error("topic generation failed; retrying next tick",
			"event", "contest_topic_generation_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"sequence", sequence,
			"error", err.Error(),
		)
		return nil
	}

	category := entities.ContestCategory(strings.ToLower(strings.TrimSpace(draft.Category)))
	if !entities.IsSupportedCategory(category) {
		logger.Error("topic draft carries unsupported category; retrying next tick",
			"event", "contest_topic_category_unsupported",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"category", string(category),
			"sequence", sequence,
		)
		return nil
	}

	contestID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	duration := s.ConfiguredDuration
	if duration <= 0 {
		duration = 24 * time.Hour
	}
	maxParticipants := s.MaxParticipants
	if maxParticipants <= 0 {
		maxParticipants = 100
	}
	contest := entities.Contest{
		ContestID:       contestID,
		Title:           strings.TrimSpace(draft.Title),
		Description:     strings.TrimSpace(draft.Description),
		Category:        category,
		SupportPoints:   draft.SupportPoints,
		OpposePoints:    draft.OpposePoints,
		Status:          entities.ContestStatusActive,
		StartAt:         now,
		EndAt:           now.Add(duration),
		DurationHours:   duration.Hours(),
		MaxParticipants: maxParticipants,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Contests.SaveContest(ctx, contest); err != nil {
		logger.Error("contest creation persist failed",
			"event", "contest_creation_persist_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"error", err.Error(),
		)
		return err
	}
	s.appendContestEvent(ctx, "contest.created", contest, now, map[string]any{
		"strategy": draft.Strategy,
		"sequence": sequence,
	})
	logger.Info("contest created",
		"event", "contest_created",
		"module", "debate-arena/contest-service",
		"layer", "worker",
		"contest_id", contest.ContestID,
		"category", string(contest.Category),
		"strategy", draft.Strategy,
		"ends_at", contest.EndAt.Format(time.RFC3339),
	)
	return nil
}

func (s LifecycleScheduler) now() time.Time {
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	return now
}

func (s LifecycleScheduler) appendContestEvent(
	ctx context.Context,
	eventType string,
	contest entities.Contest,
	occurredAt time.Time,
	payload map[string]any,
) {
	logger := application.ResolveLogger(s.Logger)
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if s.Outbox == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		logger.Error("contest event id generation failed",
			"event", "contest_event_id_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"error", err.Error(),
		)
		return
	}
	data := map[string]any{
		"contest_id": contest.ContestID,
		"status":     string(contest.Status),
		"category":   string(contest.Category),
		"ends_at":    contest.EndAt.UTC().Format(time.RFC3339),
	}
	for key, value := range payload {
		data[key] = value
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "debate-arena/contest-service",
		OccurredAtUTC:  occurredAt,
		EntityType:     "contest",
		EntityID:       contest.ContestID,
		PayloadVersion: 1,
		Payload:        data,
	}
	if err := s.Outbox.AppendOutbox(ctx, envelope); err != nil {
		logger.Error("contest event outbox append failed",
			"event", "contest_event_outbox_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"contest_id", contest.ContestID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
