package application

import (
	"context"
	"errors"
	"testing"

	"agon/contexts/moderation-safety/moderation-service/adapters/memory"
	"agon/contexts/moderation-safety/moderation-service/ports"
)

type stubGenerator struct {
	payload verdictPayload
	err     error
	calls   int
}

func (g *stubGenerator) GenerateStructured(_ context.Context, _ string, out any) error {
	g.calls++
	if g.err != nil {
		return g.err
	}
	target, ok := out.(*verdictPayload)
	if !ok {
		return errors.New("unexpected output type")
	}
	*target = g.payload
	return nil
}

func TestScreenReturnsGatewayVerdict(t *testing.T) {
	generator := &stubGenerator{payload: verdictPayload{
		Appropriate: false,
		Clarity:     7,
		Reasoning:   6,
		Civility:    2,
		Rationale:   "personal attacks",
	}}
	service := Service{Generator: generator, Cache: memory.NewStore()}

	verdict := service.Screen(context.Background(), "sub-1", "Some topic", "You are an idiot")
	if verdict.Appropriate {
		t.Fatalf("expected inappropriate verdict")
	}
	if verdict.Civility != 2 || verdict.Clarity != 7 {
		t.Fatalf("unexpected scores %+v", verdict)
	}
	if verdict.Rationale != "personal attacks" {
		t.Fatalf("unexpected rationale %q", verdict.Rationale)
	}
}

func TestScreenClampsScores(t *testing.T) {
	generator := &stubGenerator{payload: verdictPayload{Appropriate: true, Clarity: 42, Reasoning: -3, Civility: 5}}
	service := Service{Generator: generator}

	verdict := service.Screen(context.Background(), "sub-1", "Some topic", "A normal argument")
	if verdict.Clarity != 10 || verdict.Reasoning != 1 {
		t.Fatalf("expected clamped scores, got %+v", verdict)
	}
}

func TestScreenFailureResolvesPermissively(t *testing.T) {
	service := Service{Generator: &stubGenerator{err: errors.New("gateway timeout")}}

	verdict := service.Screen(context.Background(), "sub-1", "Some topic", "A normal argument")
	if !verdict.Appropriate {
		t.Fatalf("expected permissive verdict on failure")
	}
	if verdict.Clarity != 5 || verdict.Reasoning != 5 || verdict.Civility != 5 {
		t.Fatalf("expected neutral fallback scores, got %+v", verdict)
	}
}

func TestScreenCachesPerSubmission(t *testing.T) {
	generator := &stubGenerator{payload: verdictPayload{Appropriate: true, Clarity: 6, Reasoning: 6, Civility: 6}}
	store := memory.NewStore()
	service := Service{Generator: generator, Cache: store}

	service.Screen(context.Background(), "sub-1", "Some topic", "A normal argument")
	service.Screen(context.Background(), "sub-1", "Some topic", "A normal argument")
	if generator.calls != 1 {
		t.Fatalf("expected one gateway call for a cached submission, got %d", generator.calls)
	}
	if store.VerdictCount() != 1 {
		t.Fatalf("expected a single cached verdict, got %d", store.VerdictCount())
	}
}

func TestScreenAllKeysBySubmission(t *testing.T) {
	generator := &stubGenerator{payload: verdictPayload{Appropriate: true, Clarity: 6, Reasoning: 6, Civility: 6}}
	service := Service{Generator: generator, Cache: memory.NewStore()}

	verdicts := service.ScreenAll(context.Background(), "Some topic", map[string]string{
		"sub-1": "First argument with substance",
		"sub-2": "Second argument with substance",
	})
	if len(verdicts) != 2 {
		t.Fatalf("expected two verdicts, got %d", len(verdicts))
	}
	for id, verdict := range verdicts {
		if verdict.SubmissionID != id {
			t.Fatalf("expected verdict keyed by its submission, got %q under %q", verdict.SubmissionID, id)
		}
	}
	if generator.calls != 2 {
		t.Fatalf("expected one gateway call per submission, got %d", generator.calls)
	}
}

var _ ports.VerdictCache = (*memory.Store)(nil)
