// Package pointsservice tracks author point balances. Contest settlement
// credits the winner's reward here; read endpoints expose balances and a
// leaderboard.
package pointsservice

import (
	"log/slog"
	"time"

	"agon/contexts/community-experience/points-service/adapters/memory"
	"agon/contexts/community-experience/points-service/application"
	"agon/contexts/community-experience/points-service/ports"
)

type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository     ports.Repository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:           deps.Repository,
			Idempotency:    deps.Idempotency,
			Clock:          deps.Clock,
			IDGen:          deps.IDGen,
			IdempotencyTTL: deps.IdempotencyTTL,
			Logger:         deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Idempotency: store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
