package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agon/contexts/debate-arena/topic-pipeline/domain/entities"
	domainerrors "agon/contexts/debate-arena/topic-pipeline/domain/errors"
	"agon/contexts/debate-arena/topic-pipeline/ports"
)

const (
	maxAttempts        = 3
	recentContestCount = 2

	// DefaultSimilarityThreshold is the authoritative rejection threshold: a
	// candidate is rejected when its maximum similarity against recent
	// contest descriptions exceeds it.
	DefaultSimilarityThreshold = 0.7

	defaultBackoffUnit = 2 * time.Second
)

// GenerateTopicUseCase runs the bounded generation loop: up to three
// attempts, each with a different strategy so a rejected topic is regenerated
// from a meaningfully different angle rather than retried identically.
type GenerateTopicUseCase struct {
	Generator  ports.TopicGenerator
	Comparator Comparator
	Recent     ports.RecentTopicSource
	Topics     ports.TopicCache
	Clock      ports.Clock

	SimilarityThreshold float64
	BackoffUnit         time.Duration
	Logger              *slog.Logger
}

// Execute returns a validated, deduplicated topic for the given same-day
// contest sequence. Repeated calls inside one half-day window return the
// cached candidate without re-invoking generation. Quota errors abort the
// loop immediately; other generation failures back off linearly
// (attempt x 2s) before the next strategy.
func (uc GenerateTopicUseCase) Execute(ctx context.Context, sequence int) (entities.Topic, error) {
	logger := ResolveLogger(uc.Logger)
	windowKey := uc.windowKey(sequence)
	if uc.Topics != nil {
		if topic, ok := uc.Topics.GetTopic(windowKey); ok {
			logger.Info("topic served from window cache",
				"event", "topic_cache_hit",
				"module", "debate-arena/topic-pipeline",
				"layer", "application",
				"window_key", windowKey,
			)
			return topic, nil
		}
	}

	recents, err := uc.recentDescriptions(ctx)
	if err != nil {
		return entities.Topic{}, err
	}

	threshold := uc.SimilarityThreshold
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	lastReason := domainerrors.ErrInvalidTopic
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		strategy := entities.StrategyForAttempt(attempt)
		topic, err := uc.Generator.Generate(ctx, strategy)
		if err != nil {
			if errors.Is(err, domainerrors.ErrQuotaExceeded) {
				logger.Error("topic generation quota exceeded; abandoning retries",
					"event", "topic_generation_quota_exceeded",
					"module", "debate-arena/topic-pipeline",
					"layer", "application",
					"attempt", attempt,
				)
				return entities.Topic{}, err
			}
			logger.Warn("topic generation attempt failed",
				"event", "topic_generation_attempt_failed",
				"module", "debate-arena/topic-pipeline",
				"layer", "application",
				"attempt", attempt,
				"strategy", strategy,
				"error", err.Error(),
			)
			lastReason = err
			if err := uc.backoff(ctx, attempt); err != nil {
				return entities.Topic{}, err
			}
			continue
		}

		if !topic.Validate() {
			logger.Warn("generated topic failed structural validation",
				"event", "topic_validation_failed",
				"module", "debate-arena/topic-pipeline",
				"layer", "application",
				"attempt", attempt,
				"strategy", strategy,
				"title_length", len(topic.Title),
			)
			lastReason = domainerrors.ErrInvalidTopic
			continue
		}

		if maxSimilarity := uc.maxSimilarity(ctx, topic.Description, recents); maxSimilarity > threshold {
			logger.Warn("generated topic rejected as too similar",
				"event", "topic_rejected_similar",
				"module", "debate-arena/topic-pipeline",
				"layer", "application",
				"attempt", attempt,
				"strategy", strategy,
				"max_similarity", maxSimilarity,
				"threshold", threshold,
			)
			lastReason = domainerrors.ErrTooSimilar
			continue
		}

		topic.Strategy = strategy
		if uc.Topics != nil {
			uc.Topics.PutTopic(windowKey, topic)
		}
		logger.Info("topic generated",
			"event", "topic_generated",
			"module", "debate-arena/topic-pipeline",
			"layer", "application",
			"attempt", attempt,
			"strategy", strategy,
			"category", topic.Category,
			"window_key", windowKey,
		)
		return topic, nil
	}

	return entities.Topic{}, fmt.Errorf("%w after %d attempts: %w", domainerrors.ErrTopicExhausted, maxAttempts, lastReason)
}

func (uc GenerateTopicUseCase) recentDescriptions(ctx context.Context) ([]string, error) {
	if uc.Recent == nil {
		return nil, nil
	}
	recents, err := uc.Recent.ListRecentDescriptions(ctx, recentContestCount)
	if err != nil {
		return nil, err
	}
	return recents, nil
}

func (uc GenerateTopicUseCase) maxSimilarity(ctx context.Context, description string, recents []string) float64 {
	maxSimilarity := 0.0
	for _, recent := range recents {
		if score := uc.Comparator.Similarity(ctx, description, recent); score > maxSimilarity {
			maxSimilarity = score
		}
	}
	return maxSimilarity
}

func (uc GenerateTopicUseCase) backoff(ctx context.Context, attempt int) error {
	unit := uc.BackoffUnit
	if unit < 0 {
		return nil
	}
	if unit == 0 {
		unit = defaultBackoffUnit
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(attempt) * unit):
		return nil
	}
}

// windowKey combines the calendar date, the half-day window, and the same-day
// contest sequence number.
func (uc GenerateTopicUseCase) windowKey(sequence int) string {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	window := "am"
	if now.Hour() >= 12 {
		window = "pm"
	}
	return fmt.Sprintf("%s|%s|%d", now.Format("2006-01-02"), window, sequence)
}
