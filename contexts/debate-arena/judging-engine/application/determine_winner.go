package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"agon/contexts/debate-arena/judging-engine/domain/entities"
	domainerrors "agon/contexts/debate-arena/judging-engine/domain/errors"
	"agon/contexts/debate-arena/judging-engine/domain/scoring"
	"agon/contexts/debate-arena/judging-engine/ports"
)

const (
	MethodSingleParticipant = "single-participant"
	MethodUncontestedSide   = "uncontested-side"
	MethodGroupScore        = "group-score"
	MethodQualityTiebreak   = "quality-tiebreak"
	MethodRandomTiebreak    = "random-tiebreak"

	topCandidates = 3
)

// Engine determines contest winners deterministically up to the injected
// random source: score each submission on five weighted axes, aggregate by
// side, resolve ties through the quality cascade, then draw the final winner
// uniformly among the winning side's top three. The draw is an anti-gaming
// property: keyword/length heuristics can be engineered, so an exact top
// score buys at most a 1-in-3 chance against genuinely strong peers.
type Engine struct {
	Insight ports.TextGenerator
	Random  ports.RandomSource
	Logger  *slog.Logger
}

// DetermineWinner runs filter -> score -> group/select -> insight for one
// expired contest. Verdicts are advisory: when moderation rejects everything,
// the unfiltered set is judged instead of zeroing out the contest.
func (e Engine) DetermineWinner(
	ctx context.Context,
	contest entities.ContestInfo,
	submissions []entities.Submission,
	verdicts []entities.Verdict,
) (entities.WinnerRecord, error) {
	logger := ResolveLogger(e.Logger)
	if len(submissions) == 0 {
		return entities.WinnerRecord{}, domainerrors.ErrNoSubmissions
	}
	for _, submission := range submissions {
		if submission.Side != entities.SideSupport && submission.Side != entities.SideOppose {
			return entities.WinnerRecord{}, domainerrors.ErrInvalidSide
		}
	}

	eligible := filterAppropriate(submissions, verdicts)
	if len(eligible) == 0 {
		logger.Warn("moderation rejected all submissions; judging unfiltered set",
			"event", "judging_filter_fallback",
			"module", "debate-arena/judging-engine",
			"layer", "application",
			"contest_id", contest.ContestID,
			"submission_count", len(submissions),
		)
		eligible = submissions
	}

	scored := e.scoreAll(contest, eligible)

	record := e.selectWinner(contest, scored)
	record.ContestID = contest.ContestID

	contentByID := make(map[string]string, len(eligible))
	for _, submission := range eligible {
		contentByID[submission.SubmissionID] = submission.Content
	}
	record.Insight = e.generateInsight(ctx, contest, record, contentByID)

	logger.Info("winner determined",
		"event", "judging_winner_determined",
		"module", "debate-arena/judging-engine",
		"layer", "application",
		"contest_id", contest.ContestID,
		"submission_id", record.SubmissionID,
		"winning_side", string(record.WinningSide),
		"method", record.Method,
		"final_score", record.FinalScore,
		"candidate_count", len(record.Candidates),
	)
	return record, nil
}

// filterAppropriate keeps submissions whose verdict marks them appropriate.
// Submissions without a verdict pass through: moderation is advisory and an
// absent judgment never disqualifies.
func filterAppropriate(submissions []entities.Submission, verdicts []entities.Verdict) []entities.Submission {
	byID := make(map[string]entities.Verdict, len(verdicts))
	for _, verdict := range verdicts {
		byID[strings.TrimSpace(verdict.SubmissionID)] = verdict
	}
	eligible := make([]entities.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if verdict, ok := byID[submission.SubmissionID]; ok && !verdict.Appropriate {
			continue
		}
		eligible = append(eligible, submission)
	}
	return eligible
}

func (e Engine) scoreAll(contest entities.ContestInfo, submissions []entities.Submission) []entities.ScoredSubmission {
	topicKeywords := scoring.Keywords(contest.Title + " " + contest.Description)
	keywordSets := make([]map[string]struct{}, len(submissions))
	for i, submission := range submissions {
		keywordSets[i] = scoring.Keywords(submission.Content)
	}

	scored := make([]entities.ScoredSubmission, 0, len(submissions))
	for i, submission := range submissions {
		peers := make([]map[string]struct{}, 0, len(submissions)-1)
		for j, set := range keywordSets {
			if j != i {
				peers = append(peers, set)
			}
		}
		components := scoring.ComponentScores{
			Quality:     scoring.QualityScore(submission.Content),
			Relevance:   scoring.RelevanceScore(topicKeywords, submission.Content),
			Engagement:  scoring.EngagementScore(submission.Content),
			Popularity:  scoring.PopularityScore(submission.Reactions),
			Originality: scoring.OriginalityScore(keywordSets[i], peers),
		}
		scored = append(scored, entities.ScoredSubmission{
			Submission: submission,
			Components: components,
			Total:      scoring.WeightedTotal(components),
		})
	}
	return scored
}

func (e Engine) selectWinner(contest entities.ContestInfo, scored []entities.ScoredSubmission) entities.WinnerRecord {
	if len(scored) == 1 {
		only := scored[0]
		return entities.WinnerRecord{
			SubmissionID: only.Submission.SubmissionID,
			AuthorID:     only.Submission.AuthorID,
			WinningSide:  only.Submission.Side,
			FinalScore:   only.Total,
			Method:       MethodSingleParticipant,
			Reasoning:    "only one submission was entered, so it wins automatically",
			Candidates:   toCandidates(scored),
		}
	}

	support := make([]entities.ScoredSubmission, 0, len(scored))
	oppose := make([]entities.ScoredSubmission, 0, len(scored))
	for _, item := range scored {
		if item.Submission.Side == entities.SideSupport {
			support = append(support, item)
		} else {
			oppose = append(oppose, item)
		}
	}

	var winning []entities.ScoredSubmission
	var side entities.Side
	var method, reasoning string
	switch {
	case len(oppose) == 0:
		winning, side = support, entities.SideSupport
		method = MethodUncontestedSide
		reasoning = "the oppose side had no submissions; support wins uncontested"
	case len(support) == 0:
		winning, side = oppose, entities.SideOppose
		method = MethodUncontestedSide
		reasoning = "the support side had no submissions; oppose wins uncontested"
	default:
		winning, side, method, reasoning = e.resolveContestedSides(support, oppose)
	}

	candidates := topByTotal(winning, topCandidates)
	chosen := candidates[e.pick(len(candidates))]
	return entities.WinnerRecord{
		SubmissionID: chosen.Submission.SubmissionID,
		AuthorID:     chosen.Submission.AuthorID,
		WinningSide:  side,
		FinalScore:   chosen.Total,
		Method:       method,
		Reasoning:    reasoning,
		Candidates:   toCandidates(candidates),
	}
}

// resolveContestedSides compares group means, then quality sums, then falls
// back to a uniform random side. Quality breaks score ties because it is the
// one secondary signal not already folded through the other components.
func (e Engine) resolveContestedSides(
	support []entities.ScoredSubmission,
	oppose []entities.ScoredSubmission,
) ([]entities.ScoredSubmission, entities.Side, string, string) {
	supportMean := groupMean(support)
	opposeMean := groupMean(oppose)
	switch {
	case supportMean > opposeMean:
		return support, entities.SideSupport, MethodGroupScore,
			fmt.Sprintf("support's group mean %.2f beat oppose's %.2f", supportMean, opposeMean)
	case opposeMean > supportMean:
		return oppose, entities.SideOppose, MethodGroupScore,
			fmt.Sprintf("oppose's group mean %.2f beat support's %.2f", opposeMean, supportMean)
	}

	supportQuality := qualitySum(support)
	opposeQuality := qualitySum(oppose)
	switch {
	case supportQuality > opposeQuality:
		return support, entities.SideSupport, MethodQualityTiebreak,
			fmt.Sprintf("group means tied at %.2f; support's quality sum %.2f beat oppose's %.2f",
				supportMean, supportQuality, opposeQuality)
	case opposeQuality > supportQuality:
		return oppose, entities.SideOppose, MethodQualityTiebreak,
			fmt.Sprintf("group means tied at %.2f; oppose's quality sum %.2f beat support's %.2f",
				supportMean, opposeQuality, supportQuality)
	}

	if e.pick(2) == 0 {
		return support, entities.SideSupport, MethodRandomTiebreak,
			"group means and quality sums tied exactly; support won the coin flip"
	}
	return oppose, entities.SideOppose, MethodRandomTiebreak,
		"group means and quality sums tied exactly; oppose won the coin flip"
}

// generateInsight asks the text generator why the finalists succeeded.
// Best effort: any failure yields a nil insight, never an error.
func (e Engine) generateInsight(
	ctx context.Context,
	contest entities.ContestInfo,
	record entities.WinnerRecord,
	contentByID map[string]string,
) *string {
	logger := ResolveLogger(e.Logger)
	if e.Insight == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Debate topic: %s\n%s\n\nTop arguments on the winning side (%s):\n",
		contest.Title, contest.Description, record.WinningSide)
	for i, candidate := range record.Candidates {
		fmt.Fprintf(&sb, "%d. (score %.2f) %s\n", i+1, candidate.Score, contentByID[candidate.SubmissionID])
	}
	sb.WriteString("\nExplain what made these arguments successful. Answer in at most 200 words.")

	text, err := e.Insight.GenerateText(ctx, sb.String())
	if err != nil {
		logger.Warn("insight generation failed; continuing without insight",
			"event", "judging_insight_failed",
			"module", "debate-arena/judging-engine",
			"layer", "application",
			"contest_id", contest.ContestID,
			"error", err.Error(),
		)
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return &text
}

func (e Engine) pick(n int) int {
	if n <= 1 {
		return 0
	}
	if e.Random == nil {
		return 0
	}
	return e.Random.Intn(n)
}

func groupMean(items []entities.ScoredSubmission) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, item := range items {
		sum += item.Total
	}
	return sum / float64(len(items))
}

func qualitySum(items []entities.ScoredSubmission) float64 {
	sum := 0.0
	for _, item := range items {
		sum += item.Components.Quality
	}
	return sum
}

func topByTotal(items []entities.ScoredSubmission, limit int) []entities.ScoredSubmission {
	sorted := make([]entities.ScoredSubmission, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Submission.SubmissionID < sorted[j].Submission.SubmissionID
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func toCandidates(items []entities.ScoredSubmission) []entities.Candidate {
	candidates := make([]entities.Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, entities.Candidate{
			SubmissionID: item.Submission.SubmissionID,
			AuthorID:     item.Submission.AuthorID,
			Score:        item.Total,
		})
	}
	return candidates
}
