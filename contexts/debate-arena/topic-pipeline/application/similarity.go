package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"agon/contexts/debate-arena/topic-pipeline/ports"
)

// similarityWarnMark is a log-level marker only. The authoritative rejection
// threshold lives on the pipeline (see GenerateTopicUseCase).
const similarityWarnMark = 0.3

// Comparator scores two texts in [0,1] with a cached external call and a
// local lexical fallback. Cache keys hash the unordered string pair, so
// argument order never splits cache entries.
type Comparator struct {
	Client ports.SimilarityClient
	Cache  ports.SimilarityCache
	Clock  ports.Clock
	Logger *slog.Logger
}

func (c Comparator) Similarity(ctx context.Context, a string, b string) float64 {
	logger := ResolveLogger(c.Logger)
	now := c.now()
	key := pairKey(a, b)
	if c.Cache != nil {
		if score, ok := c.Cache.GetSimilarity(key, now); ok {
			return score
		}
	}

	score, err := c.compare(ctx, a, b)
	if err != nil {
		score = jaccardSimilarity(a, b)
		logger.Warn("similarity service failed; using lexical fallback",
			"event", "topic_similarity_fallback",
			"module", "debate-arena/topic-pipeline",
			"layer", "application",
			"score", score,
			"error", err.Error(),
		)
	}
	if score > similarityWarnMark {
		logger.Warn("topic similarity above advisory mark",
			"event", "topic_similarity_high",
			"module", "debate-arena/topic-pipeline",
			"layer", "application",
			"score", score,
		)
	}
	if c.Cache != nil {
		c.Cache.PutSimilarity(key, score, now)
	}
	return score
}

func (c Comparator) compare(ctx context.Context, a string, b string) (float64, error) {
	score, err := c.Client.Compare(ctx, a, b)
	if err != nil {
		return 0, err
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

func (c Comparator) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// pairKey hashes the unordered (a, b) pair.
func pairKey(a string, b string) string {
	first, second := strings.TrimSpace(a), strings.TrimSpace(b)
	if first > second {
		first, second = second, first
	}
	sum := sha256.Sum256([]byte(first + "\x00" + second))
	return hex.EncodeToString(sum[:])
}

// jaccardSimilarity is the lexical fallback: intersection over union of
// whitespace-tokenized lowercase words.
func jaccardSimilarity(a string, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[token] = struct{}{}
	}
	return set
}
