package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"agon/contexts/debate-arena/topic-pipeline/adapters/memory"
	"agon/contexts/debate-arena/topic-pipeline/domain/entities"
	domainerrors "agon/contexts/debate-arena/topic-pipeline/domain/errors"
)

type generatorCall struct {
	topic entities.Topic
	err   error
}

type stubGenerator struct {
	calls      []generatorCall
	index      int
	strategies []string
}

func (g *stubGenerator) Generate(_ context.Context, strategy string) (entities.Topic, error) {
	g.strategies = append(g.strategies, strategy)
	if g.index >= len(g.calls) {
		return entities.Topic{}, errors.New("unexpected generator call")
	}
	call := g.calls[g.index]
	g.index++
	return call.topic, call.err
}

type stubSimilarity struct {
	scores []float64
	index  int
	calls  int
}

func (s *stubSimilarity) Compare(_ context.Context, _ string, _ string) (float64, error) {
	s.calls++
	if s.index >= len(s.scores) {
		return 0, nil
	}
	score := s.scores[s.index]
	s.index++
	return score, nil
}

type stubRecent struct {
	descriptions []string
}

func (s stubRecent) ListRecentDescriptions(_ context.Context, _ int) ([]string, error) {
	return s.descriptions, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func generatedTopic(title string) entities.Topic {
	return entities.Topic{
		Title:       title,
		Description: "A generated debate on " + title + " for the next contest cycle",
		Category:    "technology",
		SupportPoints: []string{
			"The upside clearly outweighs the transition cost",
			"Early adopters already report strong results",
		},
		OpposePoints: []string{
			"The risks are not yet well understood at scale",
			"Existing approaches still serve most people well",
		},
	}
}

func pipelineForTest(generator *stubGenerator, similarity *stubSimilarity, recents []string) GenerateTopicUseCase {
	return GenerateTopicUseCase{
		Generator: generator,
		Comparator: Comparator{
			Client: similarity,
			Cache:  memory.NewCache(0),
			Clock:  fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
		},
		Recent:      stubRecent{descriptions: recents},
		Topics:      memory.NewCache(0),
		Clock:       fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
		BackoffUnit: -1,
	}
}

func TestGenerateTopicAcceptsFirstValidCandidate(t *testing.T) {
	generator := &stubGenerator{calls: []generatorCall{{topic: generatedTopic("Should drones deliver groceries")}}}
	similarity := &stubSimilarity{scores: []float64{0.2}}
	pipeline := pipelineForTest(generator, similarity, []string{"An older debate about city transit"})

	topic, err := pipeline.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if topic.Strategy != entities.StrategyDefault {
		t.Fatalf("expected default strategy, got %q", topic.Strategy)
	}
	if len(generator.strategies) != 1 {
		t.Fatalf("expected one generation attempt, got %d", len(generator.strategies))
	}
}

func TestGenerateTopicRetriesWithDifferentStrategyWhenTooSimilar(t *testing.T) {
	generator := &stubGenerator{calls: []generatorCall{
		{topic: generatedTopic("Should drones deliver groceries")},
		{topic: generatedTopic("Should cities ban private cars downtown")},
	}}
	similarity := &stubSimilarity{scores: []float64{0.85, 0.2}}
	pipeline := pipelineForTest(generator, similarity, []string{"A recent debate about drone grocery delivery"})

	topic, err := pipeline.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if topic.Strategy != entities.StrategyDifferentCategory {
		t.Fatalf("expected second-attempt strategy, got %q", topic.Strategy)
	}
	if generator.strategies[0] != entities.StrategyDefault || generator.strategies[1] != entities.StrategyDifferentCategory {
		t.Fatalf("unexpected strategy progression %v", generator.strategies)
	}
}

func TestGenerateTopicQuotaAbortsRemainingAttempts(t *testing.T) {
	generator := &stubGenerator{calls: []generatorCall{{err: domainerrors.ErrQuotaExceeded}}}
	pipeline := pipelineForTest(generator, &stubSimilarity{}, nil)

	_, err := pipeline.Execute(context.Background(), 0)
	if !errors.Is(err, domainerrors.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if len(generator.strategies) != 1 {
		t.Fatalf("expected no retries after quota abort, got %d attempts", len(generator.strategies))
	}
}

func TestGenerateTopicExhaustsAfterThreeAttempts(t *testing.T) {
	invalid := entities.Topic{Title: "too short", Description: "too short", Category: "technology"}
	generator := &stubGenerator{calls: []generatorCall{{topic: invalid}, {topic: invalid}, {topic: invalid}}}
	pipeline := pipelineForTest(generator, &stubSimilarity{}, nil)

	_, err := pipeline.Execute(context.Background(), 0)
	if !errors.Is(err, domainerrors.ErrTopicExhausted) {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if !errors.Is(err, domainerrors.ErrInvalidTopic) {
		t.Fatalf("expected exhaustion to carry the last rejection reason, got %v", err)
	}
	if len(generator.strategies) != 3 {
		t.Fatalf("expected exactly three attempts, got %d", len(generator.strategies))
	}
}

func TestGenerateTopicReusesWindowCache(t *testing.T) {
	generator := &stubGenerator{calls: []generatorCall{{topic: generatedTopic("Should drones deliver groceries")}}}
	pipeline := pipelineForTest(generator, &stubSimilarity{scores: []float64{0.1}}, nil)

	first, err := pipeline.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("first execute failed: %v", err)
	}
	second, err := pipeline.Execute(context.Background(), 1)
	if err != nil {
		t.Fatalf("second execute failed: %v", err)
	}
	if len(generator.strategies) != 1 {
		t.Fatalf("expected a single generation for the cached window, got %d", len(generator.strategies))
	}
	if first.Title != second.Title {
		t.Fatalf("expected cached topic returned verbatim")
	}
}

func TestGenerateTopicDistinctSequencesGenerateSeparately(t *testing.T) {
	generator := &stubGenerator{calls: []generatorCall{
		{topic: generatedTopic("Should drones deliver groceries")},
		{topic: generatedTopic("Should cities ban private cars downtown")},
	}}
	pipeline := pipelineForTest(generator, &stubSimilarity{}, nil)

	if _, err := pipeline.Execute(context.Background(), 0); err != nil {
		t.Fatalf("sequence 0 failed: %v", err)
	}
	if _, err := pipeline.Execute(context.Background(), 1); err != nil {
		t.Fatalf("sequence 1 failed: %v", err)
	}
	if len(generator.strategies) != 2 {
		t.Fatalf("expected one generation per sequence, got %d", len(generator.strategies))
	}
}
