package judgingengine

import (
	"log/slog"
	"math/rand"

	"agon/contexts/debate-arena/judging-engine/application"
	"agon/contexts/debate-arena/judging-engine/ports"
)

type Module struct {
	Engine application.Engine
}

type Dependencies struct {
	Insight ports.TextGenerator
	Random  ports.RandomSource
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	random := deps.Random
	if random == nil {
		random = SystemRandom{}
	}
	return Module{
		Engine: application.Engine{
			Insight: deps.Insight,
			Random:  random,
			Logger:  deps.Logger,
		},
	}
}

// SystemRandom is the runtime random source behind ports.RandomSource.
type SystemRandom struct{}

func (SystemRandom) Intn(n int) int {
	return rand.Intn(n)
}
