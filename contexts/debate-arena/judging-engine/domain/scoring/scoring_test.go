package scoring

import (
	"math"
	"strings"
	"testing"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightQuality + WeightRelevance + WeightEngagement + WeightPopularity + WeightOriginality
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("expected weights to sum to 1.0, got %f", sum)
	}
}

func TestWeightedTotalStaysInBounds(t *testing.T) {
	low := WeightedTotal(ComponentScores{Quality: 1, Relevance: 1, Engagement: 1, Popularity: 1, Originality: 1})
	if low != 1 {
		t.Fatalf("expected all-minimum total of 1, got %f", low)
	}
	high := WeightedTotal(ComponentScores{Quality: 10, Relevance: 10, Engagement: 10, Popularity: 10, Originality: 10})
	if high != 10 {
		t.Fatalf("expected all-maximum total of 10, got %f", high)
	}
}

func TestQualityScoreLengthBands(t *testing.T) {
	inBand := strings.Repeat("a", 80)
	outer := strings.Repeat("a", 135)
	outside := strings.Repeat("a", 200)
	if QualityScore(inBand) <= QualityScore(outer) {
		t.Fatalf("expected the 50-120 band to outscore the 30-140 band")
	}
	if QualityScore(outer) <= QualityScore(outside) {
		t.Fatalf("expected the 30-140 band to outscore out-of-band length")
	}
}

func TestQualityScoreRewardsEvidenceAndConnectives(t *testing.T) {
	plain := "Cats are better pets than dogs and everyone knows it for sure ok"
	argued := "Cats are better pets because research shows it; however, dogs have strengths"
	if QualityScore(argued) <= QualityScore(plain) {
		t.Fatalf("expected evidence and connective markers to raise quality")
	}
}

func TestRelevanceScoreRatioBands(t *testing.T) {
	topic := Keywords("remote work productivity offices collaboration")
	onTopic := RelevanceScore(topic, "Remote work boosts productivity while offices help collaboration")
	offTopic := RelevanceScore(topic, "Bananas ripen faster inside paper bags during summer")
	if onTopic <= offTopic {
		t.Fatalf("expected on-topic content to outscore off-topic, got %f vs %f", onTopic, offTopic)
	}
}

func TestRelevanceScorePenalizesFiller(t *testing.T) {
	clean := RelevanceScore(nil, "A considered argument")
	filler := RelevanceScore(nil, "lol whatever no idea")
	if filler >= clean {
		t.Fatalf("expected filler penalty, got %f vs %f", filler, clean)
	}
}

func TestEngagementScoreCapsQuestions(t *testing.T) {
	two := EngagementScore("Why? How?")
	five := EngagementScore("Why? How? When? Where? Who?")
	if two != five {
		t.Fatalf("expected question bonus capped at two, got %f vs %f", two, five)
	}
}

func TestPopularityScoreLogarithmic(t *testing.T) {
	if got := PopularityScore(0); got != 5 {
		t.Fatalf("expected neutral 5 for zero reactions, got %f", got)
	}
	if got := PopularityScore(-3); got != 5 {
		t.Fatalf("expected neutral 5 for negative reactions, got %f", got)
	}
	small := PopularityScore(5)
	large := PopularityScore(5000)
	if small >= large {
		t.Fatalf("expected more reactions to score higher")
	}
	if large > 10 {
		t.Fatalf("expected popularity clamped at 10, got %f", large)
	}
	want := math.Log(6) * 2
	if math.Abs(small-want) > 1e-9 {
		t.Fatalf("expected ln(r+1)*2 for 5 reactions, got %f want %f", small, want)
	}
}

func TestOriginalityScoreAgainstPeers(t *testing.T) {
	keywords := Keywords("nuclear energy policy reactors waste storage")
	clone := Keywords("nuclear energy policy reactors waste storage")
	distinct := Keywords("solar panels wind turbines batteries")

	unique := OriginalityScore(keywords, []map[string]struct{}{distinct})
	copied := OriginalityScore(keywords, []map[string]struct{}{clone, clone, clone})
	if unique <= copied {
		t.Fatalf("expected distinct keywords to score higher than copied ones, got %f vs %f", unique, copied)
	}
	if got := OriginalityScore(keywords, nil); got != 8 {
		t.Fatalf("expected peerless submission to score 8, got %f", got)
	}
}

func TestKeywordsFiltersShortAndStopWords(t *testing.T) {
	keywords := Keywords("This is about the big questions that they ask")
	if _, ok := keywords["this"]; ok {
		t.Fatalf("expected stop word filtered")
	}
	if _, ok := keywords["big"]; ok {
		t.Fatalf("expected short token filtered")
	}
	if _, ok := keywords["questions"]; !ok {
		t.Fatalf("expected content word kept")
	}
}
