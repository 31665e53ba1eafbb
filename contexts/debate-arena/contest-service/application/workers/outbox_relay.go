package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "agon/contexts/debate-arena/contest-service/application"
	"agon/contexts/debate-arena/contest-service/ports"
	"agon/internal/shared/events"
)

// OutboxRelay publishes persisted contest lifecycle events to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after broker publish succeeds. It stops on the first failure
// so the retry loop can reprocess remaining rows safely.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("contest outbox list failed",
			"event", "contest_outbox_list_failed",
			"module", "debate-arena/contest-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var envelope events.Envelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			logger.Error("contest outbox decode failed",
				"event", "contest_outbox_decode_failed",
				"module", "debate-arena/contest-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		topic := envelope.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("contest outbox publish failed",
				"event", "contest_outbox_publish_failed",
				"module", "debate-arena/contest-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("contest outbox mark published failed",
				"event", "contest_outbox_mark_published_failed",
				"module", "debate-arena/contest-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("contest outbox relay cycle completed",
		"event", "contest_outbox_relay_completed",
		"module", "debate-arena/contest-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
