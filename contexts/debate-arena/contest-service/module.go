package contestservice

import (
	"log/slog"
	"time"

	httpadapter "agon/contexts/debate-arena/contest-service/adapters/http"
	"agon/contexts/debate-arena/contest-service/adapters/memory"
	"agon/contexts/debate-arena/contest-service/application/queries"
	"agon/contexts/debate-arena/contest-service/application/workers"
	"agon/contexts/debate-arena/contest-service/domain/entities"
	"agon/contexts/debate-arena/contest-service/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Scheduler workers.LifecycleScheduler
	Relay     workers.OutboxRelay
	Store     *memory.Store
}

type Dependencies struct {
	Contests    ports.ContestRepository
	Submissions ports.SubmissionRepository
	Winners     ports.WinnerRepository
	Judge       ports.Judge
	Topics      ports.TopicSource
	Ledger      ports.SettlementClient
	Rewards     ports.PointsBank
	Outbox      ports.OutboxWriter
	OutboxRepo  ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator

	ContestDuration time.Duration
	MaxParticipants int
	RewardPoints    int
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CurrentContest: queries.GetCurrentContestUseCase{Contests: deps.Contests, Logger: deps.Logger},
			Contest:        queries.GetContestUseCase{Contests: deps.Contests, Logger: deps.Logger},
			Winner:         queries.GetWinnerRecordUseCase{Winners: deps.Winners, Logger: deps.Logger},
			Submissions:    queries.ListSubmissionsUseCase{Submissions: deps.Submissions, Logger: deps.Logger},
			Logger:         deps.Logger,
		},
		Scheduler: workers.LifecycleScheduler{
			Contests:           deps.Contests,
			Submissions:        deps.Submissions,
			Winners:            deps.Winners,
			Judge:              deps.Judge,
			Topics:             deps.Topics,
			Ledger:             deps.Ledger,
			Rewards:            deps.Rewards,
			Outbox:             deps.Outbox,
			Clock:              deps.Clock,
			IDGen:              deps.IDGen,
			ConfiguredDuration: deps.ContestDuration,
			MaxParticipants:    deps.MaxParticipants,
			RewardPoints:       deps.RewardPoints,
			Logger:             deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxRepo,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: 100,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Contest, deps Dependencies, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	deps.Contests = store
	deps.Submissions = store
	deps.Winners = store
	deps.Outbox = store
	deps.OutboxRepo = store
	deps.Clock = store
	deps.IDGen = store
	deps.Logger = logger
	module := NewModule(deps)
	module.Store = store
	return module
}
