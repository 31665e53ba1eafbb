package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"agon/contexts/debate-arena/contest-service/adapters/memory"
	"agon/contexts/debate-arena/contest-service/domain/entities"
	domainerrors "agon/contexts/debate-arena/contest-service/domain/errors"
	"agon/contexts/debate-arena/contest-service/ports"
)

type stubJudge struct {
	record entities.WinnerRecord
	err    error
	calls  int
}

func (j *stubJudge) DetermineWinner(_ context.Context, _ entities.Contest, _ []entities.Submission) (entities.WinnerRecord, error) {
	j.calls++
	return j.record, j.err
}

type stubTopics struct {
	draft     ports.TopicDraft
	err       error
	sequences []int
}

func (t *stubTopics) GenerateTopic(_ context.Context, sequence int) (ports.TopicDraft, error) {
	t.sequences = append(t.sequences, sequence)
	return t.draft, t.err
}

type stubLedger struct {
	receipt string
	err     error
	refs    []string
}

func (l *stubLedger) DeclareWinner(_ context.Context, contestRef string, _ string) (string, error) {
	l.refs = append(l.refs, contestRef)
	return l.receipt, l.err
}

type creditCall struct {
	authorID  string
	points    int
	reference string
	reason    string
}

type stubBank struct {
	err   error
	calls []creditCall
}

func (b *stubBank) Credit(_ context.Context, authorID string, points int, reference string, reason string) error {
	b.calls = append(b.calls, creditCall{authorID: authorID, points: points, reference: reference, reason: reason})
	return b.err
}

func activeContest(id string, endAt time.Time) entities.Contest {
	return entities.Contest{
		ContestID:       id,
		Title:           "Should cities pedestrianize their centers",
		Description:     "A debate on car-free city centers",
		Category:        "society",
		SupportPoints:   []string{"Cleaner air for residents", "Safer streets for children"},
		OpposePoints:    []string{"Deliveries become harder", "Accessibility concerns for some"},
		Status:          entities.ContestStatusActive,
		StartAt:         endAt.Add(-24 * time.Hour),
		EndAt:           endAt,
		DurationHours:   24,
		MaxParticipants: 100,
		LedgerRef:       "ledger-" + id,
		CreatedAt:       endAt.Add(-24 * time.Hour),
		UpdatedAt:       endAt.Add(-24 * time.Hour),
	}
}

func validDraft() ports.TopicDraft {
	return ports.TopicDraft{
		Title:         "Should streaming replace cinemas entirely",
		Description:   "A debate on whether cinema releases still matter",
		Category:      "culture",
		SupportPoints: []string{"Streaming reaches everyone instantly", "Ticket prices exclude many viewers"},
		OpposePoints:  []string{"Shared screenings build culture", "Films are made for big screens"},
		Strategy:      "default",
	}
}

func schedulerForTest(store *memory.Store, judge ports.Judge, topics ports.TopicSource, ledger ports.SettlementClient, bank ports.PointsBank) LifecycleScheduler {
	return LifecycleScheduler{
		Contests:           store,
		Submissions:        store,
		Winners:            store,
		Judge:              judge,
		Topics:             topics,
		Ledger:             ledger,
		Rewards:            bank,
		Outbox:             store,
		Clock:              store,
		IDGen:              store,
		ConfiguredDuration: 24 * time.Hour,
		MaxParticipants:    100,
		RewardPoints:       100,
	}
}

func TestTickCompletesExpiredContestAndCreatesNext(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Contest{activeContest("contest-1", now.Add(-time.Minute))})
	store.SetNow(now)
	ctx := context.Background()

	submission := entities.Submission{
		SubmissionID: "sub-1",
		ContestID:    "contest-1",
		AuthorID:     "author-1",
		Side:         entities.SideSupport,
		Content:      "Car-free centers work because studies show cleaner air",
		CreatedAt:    now.Add(-2 * time.Hour),
	}
	if err := store.SaveSubmission(ctx, submission); err != nil {
		t.Fatalf("seed submission failed: %v", err)
	}

	judge := &stubJudge{record: entities.WinnerRecord{
		SubmissionID: "sub-1",
		AuthorID:     "author-1",
		WinningSide:  entities.SideSupport,
		FinalScore:   7.5,
		Method:       "single-participant",
	}}
	ledger := &stubLedger{receipt: "rcpt-1"}
	bank := &stubBank{}
	scheduler := schedulerForTest(store, judge, &stubTopics{draft: validDraft()}, ledger, bank)

	if err := scheduler.Tick(ctx); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	completed, err := store.GetContest(ctx, "contest-1")
	if err != nil {
		t.Fatalf("load completed contest failed: %v", err)
	}
	if completed.Status != entities.ContestStatusCompleted {
		t.Fatalf("expected completed status, got %q", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Fatalf("expected completion timestamp set")
	}

	record, found, err := store.GetWinnerRecord(ctx, "contest-1")
	if err != nil || !found {
		t.Fatalf("expected persisted winner record, found=%v err=%v", found, err)
	}
	if !record.DecidedAt.Equal(now) {
		t.Fatalf("expected decided-at pinned to clock, got %v", record.DecidedAt)
	}

	if len(ledger.refs) != 1 || ledger.refs[0] != "ledger-contest-1" {
		t.Fatalf("expected settlement against contest ledger ref, got %v", ledger.refs)
	}
	if len(bank.calls) != 1 {
		t.Fatalf("expected one reward credit, got %d", len(bank.calls))
	}
	if bank.calls[0].points != 100 || bank.calls[0].authorID != "author-1" || bank.calls[0].reference != "contest-1" {
		t.Fatalf("unexpected credit call %+v", bank.calls[0])
	}

	active, found, err := store.GetActiveContest(ctx)
	if err != nil || !found {
		t.Fatalf("expected a replacement active contest, found=%v err=%v", found, err)
	}
	if active.Title != validDraft().Title {
		t.Fatalf("expected new contest from topic draft, got %q", active.Title)
	}
	if !active.EndAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("expected 24h duration, got end %v", active.EndAt)
	}
	if store.PendingOutboxCount() == 0 {
		t.Fatalf("expected lifecycle events in the outbox")
	}
}

func TestTickCompletesEmptyContestWithoutJudging(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Contest{activeContest("contest-1", now.Add(-time.Minute))})
	store.SetNow(now)
	ctx := context.Background()

	judge := &stubJudge{}
	bank := &stubBank{}
	scheduler := schedulerForTest(store, judge, &stubTopics{draft: validDraft()}, nil, bank)

	if err := scheduler.Tick(ctx); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if judge.calls != 0 {
		t.Fatalf("expected judge skipped for empty contest, got %d calls", judge.calls)
	}
	if len(bank.calls) != 0 {
		t.Fatalf("expected no reward without a winner")
	}
	completed, err := store.GetContest(ctx, "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if completed.Status != entities.ContestStatusCompleted {
		t.Fatalf("expected empty contest completed, got %q", completed.Status)
	}
	if _, found, _ := store.GetWinnerRecord(ctx, "contest-1"); found {
		t.Fatalf("expected no winner record for empty contest")
	}
}

func TestTickJudgeFailureCompletesWithoutWinner(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Contest{activeContest("contest-1", now.Add(-time.Minute))})
	store.SetNow(now)
	ctx := context.Background()

	if err := store.SaveSubmission(ctx, entities.Submission{
		SubmissionID: "sub-1",
		ContestID:    "contest-1",
		AuthorID:     "author-1",
		Side:         entities.SideOppose,
		Content:      "Deliveries become impossible without street access",
	}); err != nil {
		t.Fatalf("seed submission failed: %v", err)
	}

	judge := &stubJudge{err: errors.New("judging engine unavailable")}
	scheduler := schedulerForTest(store, judge, &stubTopics{draft: validDraft()}, nil, &stubBank{})

	if err := scheduler.Tick(ctx); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	completed, err := store.GetContest(ctx, "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if completed.Status != entities.ContestStatusCompleted {
		t.Fatalf("expected contest completed despite judge failure, got %q", completed.Status)
	}
	if _, found, _ := store.GetWinnerRecord(ctx, "contest-1"); found {
		t.Fatalf("expected no winner record after judge failure")
	}
}

func TestTickCreatesContestWhenNoneActive(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)
	store.SetNow(now)
	topics := &stubTopics{draft: validDraft()}
	scheduler := schedulerForTest(store, &stubJudge{}, topics, nil, &stubBank{})

	if err := scheduler.Tick(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	active, found, err := store.GetActiveContest(context.Background())
	if err != nil || !found {
		t.Fatalf("expected contest created, found=%v err=%v", found, err)
	}
	if active.Category != "culture" {
		t.Fatalf("expected draft category, got %q", active.Category)
	}
	if len(topics.sequences) != 1 || topics.sequences[0] != 0 {
		t.Fatalf("expected first same-day sequence 0, got %v", topics.sequences)
	}
}

func TestTickToleratesTopicGenerationFailure(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)
	store.SetNow(now)
	topics := &stubTopics{err: errors.New("generation exhausted")}
	scheduler := schedulerForTest(store, &stubJudge{}, topics, nil, &stubBank{})

	if err := scheduler.Tick(context.Background()); err != nil {
		t.Fatalf("expected topic failure absorbed, got %v", err)
	}
	if _, found, _ := store.GetActiveContest(context.Background()); found {
		t.Fatalf("expected no contest after generation failure")
	}
	if len(topics.sequences) != 1 {
		t.Fatalf("expected one generation attempt per tick, got %d", len(topics.sequences))
	}
}

func TestRewardFailureDoesNotBlockCompletion(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Contest{activeContest("contest-1", now.Add(-time.Minute))})
	store.SetNow(now)
	ctx := context.Background()

	if err := store.SaveSubmission(ctx, entities.Submission{
		SubmissionID: "sub-1",
		ContestID:    "contest-1",
		AuthorID:     "author-1",
		Side:         entities.SideSupport,
		Content:      "Car-free centers work because studies show cleaner air",
	}); err != nil {
		t.Fatalf("seed submission failed: %v", err)
	}
	judge := &stubJudge{record: entities.WinnerRecord{SubmissionID: "sub-1", AuthorID: "author-1", WinningSide: entities.SideSupport, FinalScore: 7}}
	bank := &stubBank{err: errors.New("points service down")}
	scheduler := schedulerForTest(store, judge, &stubTopics{draft: validDraft()}, nil, bank)

	if err := scheduler.Tick(ctx); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	completed, err := store.GetContest(ctx, "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if completed.Status != entities.ContestStatusCompleted {
		t.Fatalf("expected completion despite credit failure, got %q", completed.Status)
	}
}

type flakySubmissions struct {
	*memory.Store
	failures int
}

func (f *flakySubmissions) ListSubmissionsByContest(ctx context.Context, contestID string) ([]entities.Submission, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("submission store briefly unavailable")
	}
	return f.Store.ListSubmissionsByContest(ctx, contestID)
}

func TestTickRecoversContestStrandedInCompleting(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Contest{activeContest("contest-1", now.Add(-time.Minute))})
	store.SetNow(now)
	ctx := context.Background()

	if err := store.SaveSubmission(ctx, entities.Submission{
		SubmissionID: "sub-1",
		ContestID:    "contest-1",
		AuthorID:     "author-1",
		Side:         entities.SideSupport,
		Content:      "Car-free centers work because studies show cleaner air",
	}); err != nil {
		t.Fatalf("seed submission failed: %v", err)
	}
	judge := &stubJudge{record: entities.WinnerRecord{
		SubmissionID: "sub-1",
		AuthorID:     "author-1",
		WinningSide:  entities.SideSupport,
		FinalScore:   7.5,
		Method:       "single-participant",
	}}
	bank := &stubBank{}
	scheduler := schedulerForTest(store, judge, &stubTopics{draft: validDraft()}, nil, bank)
	scheduler.Submissions = &flakySubmissions{Store: store, failures: 1}

	if err := scheduler.Tick(ctx); err != nil {
		t.Fatalf("first tick failed: %v", err)
	}
	stranded, err := store.GetContest(ctx, "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if stranded.Status != entities.ContestStatusCompleting {
		t.Fatalf("expected contest left in completing after transient failure, got %q", stranded.Status)
	}

	if err := scheduler.Tick(ctx); err != nil {
		t.Fatalf("second tick failed: %v", err)
	}
	recovered, err := store.GetContest(ctx, "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if recovered.Status != entities.ContestStatusCompleted {
		t.Fatalf("expected resumed completion, got %q", recovered.Status)
	}
	if _, found, _ := store.GetWinnerRecord(ctx, "contest-1"); !found {
		t.Fatalf("expected winner persisted on resume")
	}
	if len(bank.calls) != 1 || bank.calls[0].reference != "contest-1" {
		t.Fatalf("expected one reward credit on resume, got %v", bank.calls)
	}
}

type claimDeniedContests struct {
	*memory.Store
}

func (c *claimDeniedContests) ClaimForCompletion(context.Context, string) error {
	return domainerrors.ErrContestNotClaimable
}

func TestTickLostClaimSkipsCompletion(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Contest{activeContest("contest-1", now.Add(-time.Minute))})
	store.SetNow(now)
	judge := &stubJudge{}
	scheduler := schedulerForTest(store, judge, &stubTopics{draft: validDraft()}, nil, &stubBank{})
	scheduler.Contests = &claimDeniedContests{Store: store}

	if err := scheduler.Tick(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if judge.calls != 0 {
		t.Fatalf("expected no judging after lost claim, got %d calls", judge.calls)
	}
	contest, err := store.GetContest(context.Background(), "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if contest.Status != entities.ContestStatusActive {
		t.Fatalf("expected contest untouched after lost claim, got %q", contest.Status)
	}
}

func TestTickRejectsUnsupportedDraftCategory(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)
	store.SetNow(now)
	draft := validDraft()
	draft.Category = "astrology"
	scheduler := schedulerForTest(store, &stubJudge{}, &stubTopics{draft: draft}, nil, &stubBank{})

	if err := scheduler.Tick(context.Background()); err != nil {
		t.Fatalf("expected unsupported category absorbed, got %v", err)
	}
	if _, found, _ := store.GetActiveContest(context.Background()); found {
		t.Fatalf("expected no contest from an unsupported category draft")
	}
}

func TestStartupDriftCheckForceCompletesDriftedContest(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	drifted := activeContest("contest-1", now.Add(20*time.Hour))
	drifted.DurationHours = 48
	store := memory.NewStore([]entities.Contest{drifted})
	store.SetNow(now)
	scheduler := schedulerForTest(store, &stubJudge{}, &stubTopics{draft: validDraft()}, nil, &stubBank{})

	if err := scheduler.RunStartupDriftCheck(context.Background()); err != nil {
		t.Fatalf("drift check failed: %v", err)
	}
	contest, err := store.GetContest(context.Background(), "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if contest.Status != entities.ContestStatusCompleted {
		t.Fatalf("expected drifted contest force-completed, got %q", contest.Status)
	}
}

func TestStartupDriftCheckLeavesMatchingContest(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Contest{activeContest("contest-1", now.Add(20*time.Hour))})
	store.SetNow(now)
	scheduler := schedulerForTest(store, &stubJudge{}, &stubTopics{draft: validDraft()}, nil, &stubBank{})

	if err := scheduler.RunStartupDriftCheck(context.Background()); err != nil {
		t.Fatalf("drift check failed: %v", err)
	}
	contest, err := store.GetContest(context.Background(), "contest-1")
	if err != nil {
		t.Fatalf("load contest failed: %v", err)
	}
	if contest.Status != entities.ContestStatusActive {
		t.Fatalf("expected matching contest untouched, got %q", contest.Status)
	}
}
