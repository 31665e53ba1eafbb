package topicpipeline

import (
	"log/slog"
	"time"

	"agon/contexts/debate-arena/topic-pipeline/adapters/memory"
	"agon/contexts/debate-arena/topic-pipeline/application"
	"agon/contexts/debate-arena/topic-pipeline/ports"
)

type Module struct {
	Pipeline application.GenerateTopicUseCase
	Cache    *memory.Cache
}

type Dependencies struct {
	Generator  ports.TopicGenerator
	Similarity ports.SimilarityClient
	Recent     ports.RecentTopicSource
	Clock      ports.Clock

	SimilarityTTL       time.Duration
	SimilarityThreshold float64
	BackoffUnit         time.Duration
	Logger              *slog.Logger
}

func NewModule(deps Dependencies) Module {
	cache := memory.NewCache(deps.SimilarityTTL)
	return Module{
		Pipeline: application.GenerateTopicUseCase{
			Generator: deps.Generator,
			Comparator: application.Comparator{
				Client: deps.Similarity,
				Cache:  cache,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			Recent:              deps.Recent,
			Topics:              cache,
			Clock:               deps.Clock,
			SimilarityThreshold: deps.SimilarityThreshold,
			BackoffUnit:         deps.BackoffUnit,
			Logger:              deps.Logger,
		},
		Cache: cache,
	}
}
