package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"agon/contexts/debate-arena/contest-service/adapters/memory"
	"agon/internal/shared/events"
)

type capturingPublisher struct {
	err       error
	published []events.Envelope
	topics    []string
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, envelope events.Envelope) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.published = append(p.published, envelope)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, eventType string) {
	t.Helper()
	err := store.AppendOutbox(context.Background(), events.Envelope{
		EventID:       "evt-" + eventType,
		EventType:     eventType,
		SourceService: "debate-arena/contest-service",
		OccurredAtUTC: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		EntityType:    "contest",
		EntityID:      "contest-1",
	})
	if err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestOutboxRelayPublishesAndMarksRows(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetNow(time.Date(2026, 3, 14, 12, 5, 0, 0, time.UTC))
	seedOutbox(t, store, "contest.created")
	seedOutbox(t, store, "contest.completed")

	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected two published events, got %d", len(publisher.published))
	}
	for i, topic := range publisher.topics {
		if topic != publisher.published[i].EventType {
			t.Fatalf("expected topic keyed by event type, got %q for %q", topic, publisher.published[i].EventType)
		}
	}
	if store.PendingOutboxCount() != 0 {
		t.Fatalf("expected all rows marked published, %d pending", store.PendingOutboxCount())
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetNow(time.Date(2026, 3, 14, 12, 5, 0, 0, time.UTC))
	seedOutbox(t, store, "contest.created")

	relay := OutboxRelay{Outbox: store, Publisher: &capturingPublisher{err: errors.New("broker down")}, Clock: store}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure surfaced")
	}
	if store.PendingOutboxCount() != 1 {
		t.Fatalf("expected row left pending for retry, got %d", store.PendingOutboxCount())
	}
}
