// Package moderationservice screens debate submissions before winner
// determination. Screening is advisory and fail-open: an unavailable gateway
// yields permissive verdicts rather than blocking a contest.
package moderationservice

import (
	"log/slog"

	"agon/contexts/moderation-safety/moderation-service/adapters/memory"
	"agon/contexts/moderation-safety/moderation-service/application"
	"agon/contexts/moderation-safety/moderation-service/ports"
)

type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Generator ports.StructuredGenerator
	Cache     ports.VerdictCache
	Clock     ports.Clock
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	var store *memory.Store
	if deps.Cache == nil {
		store = memory.NewStore()
		deps.Cache = store
	}
	return Module{
		Service: application.Service{
			Generator: deps.Generator,
			Cache:     deps.Cache,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Store: store,
	}
}
