// Package scoring holds the pure per-submission scoring functions used by
// winner determination. Every component score is clamped to [1,10] and the
// component weights sum to 1.0, so weighted totals stay inside [1,10] too.
package scoring

import (
	"math"
	"strings"
	"unicode"
)

const (
	WeightQuality     = 0.35
	WeightRelevance   = 0.25
	WeightEngagement  = 0.15
	WeightPopularity  = 0.15
	WeightOriginality = 0.10
)

var evidenceWords = []string{
	"because", "evidence", "study", "studies", "research", "data", "according", "proven",
}

var connectiveWords = []string{
	"however", "therefore", "moreover", "furthermore", "consequently", "thus", "although",
}

var strongOpinionWords = []string{
	"always", "never", "should", "must", "undeniably", "essential",
}

var callToActionWords = []string{
	"consider", "imagine", "think about", "ask yourself", "look at",
}

var fillerPhrases = []string{
	"idk", "lol", "lmao", "whatever", "no idea", "dont care", "don't care",
}

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "will": {},
	"would": {}, "could": {}, "should": {}, "about": {}, "there": {}, "their": {},
	"which": {}, "what": {}, "when": {}, "where": {}, "they": {}, "them": {},
	"then": {}, "than": {}, "been": {}, "being": {}, "because": {}, "into": {},
	"also": {}, "just": {}, "more": {}, "most": {}, "some": {}, "such": {},
	"very": {}, "your": {}, "yours": {}, "ours": {}, "only": {}, "over": {},
}

// ComponentScores carries the five clamped component values for one
// submission.
type ComponentScores struct {
	Quality     float64
	Relevance   float64
	Engagement  float64
	Popularity  float64
	Originality float64
}

// WeightedTotal folds components into the final [1,10] score.
func WeightedTotal(c ComponentScores) float64 {
	total := c.Quality*WeightQuality +
		c.Relevance*WeightRelevance +
		c.Engagement*WeightEngagement +
		c.Popularity*WeightPopularity +
		c.Originality*WeightOriginality
	return Clamp(total)
}

// Clamp bounds a component score to [1,10].
func Clamp(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// QualityScore rewards argument structure: a readable length band, sentence
// rhythm, evidence markers, and argumentative connectives.
func QualityScore(content string) float64 {
	score := 5.0
	length := len(content)
	switch {
	case length >= 50 && length <= 120:
		score += 2
	case length >= 30 && length <= 140:
		score++
	}
	if avg := averageWordsPerSentence(content); avg >= 8 && avg <= 15 {
		score++
	}
	lower := strings.ToLower(content)
	if containsAny(lower, evidenceWords) {
		score++
	}
	if containsAny(lower, connectiveWords) {
		score++
	}
	return Clamp(score)
}

// RelevanceScore measures keyword overlap between the submission and the
// contest topic, with a penalty for off-topic filler.
func RelevanceScore(topicKeywords map[string]struct{}, content string) float64 {
	score := 5.0
	if len(topicKeywords) > 0 {
		submissionKeywords := Keywords(content)
		matched := 0
		for keyword := range submissionKeywords {
			if _, ok := topicKeywords[keyword]; ok {
				matched++
			}
		}
		ratio := float64(matched) / float64(len(topicKeywords))
		switch {
		case ratio >= 0.3:
			score += 3
		case ratio >= 0.1:
			score += 2
		case ratio >= 0.05:
			score++
		}
	}
	lower := strings.ToLower(content)
	if containsAny(lower, fillerPhrases) {
		score -= 2
	}
	return Clamp(score)
}

// EngagementScore rewards rhetorical hooks: questions, emphasis, concrete
// numbers, strong opinions, and calls to action.
func EngagementScore(content string) float64 {
	score := 5.0
	questions := strings.Count(content, "?")
	if questions > 2 {
		questions = 2
	}
	score += float64(questions)
	if strings.Contains(content, "!") {
		score++
	}
	if strings.ContainsFunc(content, unicode.IsDigit) {
		score++
	}
	lower := strings.ToLower(content)
	if containsAny(lower, strongOpinionWords) {
		score++
	}
	if containsAny(lower, callToActionWords) {
		score++
	}
	return Clamp(score)
}

// PopularityScore maps the reaction counter onto [1,10] logarithmically so
// vote brigading cannot dominate the weighted total. Zero reactions is a
// neutral 5, not a penalty.
func PopularityScore(reactions int) float64 {
	if reactions <= 0 {
		return 5
	}
	return Clamp(math.Min(math.Log(float64(reactions)+1)*2, 10))
}

// OriginalityScore compares one submission's keyword set against its peers
// and rewards low average keyword sharing. A submission without peers is
// maximally original.
func OriginalityScore(keywords map[string]struct{}, peers []map[string]struct{}) float64 {
	score := 5.0
	average := 0.0
	if len(peers) > 0 {
		shared := 0
		for _, peer := range peers {
			for keyword := range keywords {
				if _, ok := peer[keyword]; ok {
					shared++
				}
			}
		}
		average = float64(shared) / float64(len(peers))
	}
	switch {
	case average < 2:
		score += 3
	case average < 4:
		score += 2
	case average < 6:
		score++
	}
	return Clamp(score)
}

// Keywords extracts the lowercase token set of words longer than three
// characters, minus stop words.
func Keywords(text string) map[string]struct{} {
	keywords := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(token) <= 3 {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		keywords[token] = struct{}{}
	}
	return keywords
}

func averageWordsPerSentence(content string) float64 {
	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	total := 0
	counted := 0
	for _, sentence := range sentences {
		words := len(strings.Fields(sentence))
		if words == 0 {
			continue
		}
		total += words
		counted++
	}
	if counted == 0 {
		return 0
	}
	return float64(total) / float64(counted)
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
