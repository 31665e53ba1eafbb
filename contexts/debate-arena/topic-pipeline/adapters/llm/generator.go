// Package llm adapts the shared text-generation client to the topic
// pipeline's generator and similarity ports.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agon/contexts/debate-arena/topic-pipeline/domain/entities"
	domainerrors "agon/contexts/debate-arena/topic-pipeline/domain/errors"
	platformllm "agon/internal/platform/llm"
)

// TextClient is the subset of the platform client the adapter needs.
type TextClient interface {
	GenerateStructured(ctx context.Context, prompt string, out any) error
}

// Generator produces debate topics through the generation gateway.
type Generator struct {
	Client TextClient
}

type topicPayload struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	SupportPoints []string `json:"support_points"`
	OpposePoints  []string `json:"oppose_points"`
}

func (g Generator) Generate(ctx context.Context, strategy string) (entities.Topic, error) {
	if g.Client == nil {
		return entities.Topic{}, fmt.Errorf("%w: generation client not configured", domainerrors.ErrGeneratorFailed)
	}

	var payload topicPayload
	if err := g.Client.GenerateStructured(ctx, topicPrompt(strategy), &payload); err != nil {
		if errors.Is(err, platformllm.ErrQuotaExhausted) {
			return entities.Topic{}, fmt.Errorf("%w: %v", domainerrors.ErrQuotaExceeded, err)
		}
		return entities.Topic{}, fmt.Errorf("%w: %v", domainerrors.ErrGeneratorFailed, err)
	}

	return entities.Topic{
		Title:         strings.TrimSpace(payload.Title),
		Description:   strings.TrimSpace(payload.Description),
		Category:      strings.ToLower(strings.TrimSpace(payload.Category)),
		SupportPoints: trimAll(payload.SupportPoints),
		OpposePoints:  trimAll(payload.OpposePoints),
	}, nil
}

func topicPrompt(strategy string) string {
	var b strings.Builder
	b.WriteString("Generate a debate topic for a two-sided online debate contest.\n")
	b.WriteString("Respond with JSON only, using the keys title, description, category, support_points, oppose_points.\n")
	b.WriteString("The title must be 10 to 200 characters, the description 20 to 1000 characters.\n")
	b.WriteString("Category must be one of: technology, society, ethics, science, culture, lifestyle.\n")
	b.WriteString("Provide at least two substantial talking points for each side.\n")

	switch strategy {
	case entities.StrategyDifferentCategory:
		b.WriteString("Pick a category you would not pick first, to diversify recent contests.\n")
	case entities.StrategyBroaderTopic:
		b.WriteString("Frame the question broadly so it does not overlap narrow recent topics.\n")
	}
	return b.String()
}

// SimilarityClient scores semantic similarity between two topic descriptions
// through the generation gateway.
type SimilarityClient struct {
	Client TextClient
}

type similarityPayload struct {
	Similarity float64 `json:"similarity"`
}

func (s SimilarityClient) Compare(ctx context.Context, a string, b string) (float64, error) {
	if s.Client == nil {
		return 0, errors.New("similarity client not configured")
	}

	prompt := fmt.Sprintf(
		"Rate the semantic similarity of these two debate topic descriptions on a scale from 0.0 (unrelated) to 1.0 (same topic).\n"+
			"Respond with JSON only: {\"similarity\": <number>}.\n\nFirst:\n%s\n\nSecond:\n%s\n", a, b)

	var payload similarityPayload
	if err := s.Client.GenerateStructured(ctx, prompt, &payload); err != nil {
		return 0, err
	}
	return payload.Similarity, nil
}

func trimAll(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if cleaned := strings.TrimSpace(value); cleaned != "" {
			trimmed = append(trimmed, cleaned)
		}
	}
	return trimmed
}
