package ports

import (
	"context"
	"time"

	"agon/contexts/debate-arena/topic-pipeline/domain/entities"
)

// TopicGenerator produces one topic candidate per call. Quota/rate-limit
// conditions must surface as (or wrap) the pipeline's ErrQuotaExceeded so the
// retry loop can abandon remaining attempts without burning further quota.
type TopicGenerator interface {
	Generate(ctx context.Context, strategy string) (entities.Topic, error)
}

// SimilarityClient scores two texts in [0,1]. Failures fall back to the
// comparator's local lexical similarity.
type SimilarityClient interface {
	Compare(ctx context.Context, a string, b string) (float64, error)
}

// RecentTopicSource exposes the descriptions of recently completed contests
// for the dedup check.
type RecentTopicSource interface {
	ListRecentDescriptions(ctx context.Context, limit int) ([]string, error)
}

// SimilarityCache memoizes pair similarity scores with a TTL so repeated
// checks within a cycle avoid redundant external calls.
type SimilarityCache interface {
	GetSimilarity(key string, now time.Time) (float64, bool)
	PutSimilarity(key string, score float64, now time.Time)
}

// TopicCache holds the accepted topic per half-day window so repeated calls
// inside one window return the same candidate without re-running generation.
type TopicCache interface {
	GetTopic(key string) (entities.Topic, bool)
	PutTopic(key string, topic entities.Topic)
}

type Clock interface {
	Now() time.Time
}
