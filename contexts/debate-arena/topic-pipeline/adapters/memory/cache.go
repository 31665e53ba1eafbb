package memory

import (
	"strings"
	"sync"
	"time"

	"agon/contexts/debate-arena/topic-pipeline/domain/entities"
)

type similarityEntry struct {
	score     float64
	expiresAt time.Time
}

// Cache is the process-local topic-pipeline cache: pair-similarity scores
// with a TTL plus the accepted topic per half-day window. It is not safe to
// share across scheduler instances and is lost on restart, by design.
type Cache struct {
	mu sync.RWMutex

	similarity    map[string]similarityEntry
	topics        map[string]entities.Topic
	similarityTTL time.Duration
}

func NewCache(similarityTTL time.Duration) *Cache {
	if similarityTTL <= 0 {
		similarityTTL = 24 * time.Hour
	}
	return &Cache{
		similarity:    make(map[string]similarityEntry),
		topics:        make(map[string]entities.Topic),
		similarityTTL: similarityTTL,
	}
}

func (c *Cache) GetSimilarity(key string, now time.Time) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.similarity[strings.TrimSpace(key)]
	if !ok || now.UTC().After(entry.expiresAt) {
		return 0, false
	}
	return entry.score, true
}

func (c *Cache) PutSimilarity(key string, score float64, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.similarity[strings.TrimSpace(key)] = similarityEntry{
		score:     score,
		expiresAt: now.UTC().Add(c.similarityTTL),
	}
}

func (c *Cache) GetTopic(key string) (entities.Topic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	topic, ok := c.topics[strings.TrimSpace(key)]
	return topic, ok
}

func (c *Cache) PutTopic(key string, topic entities.Topic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[strings.TrimSpace(key)] = topic
}
