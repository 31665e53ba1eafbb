package entities

import "strings"

const (
	StrategyDefault           = "default"
	StrategyDifferentCategory = "different_category"
	StrategyBroaderTopic      = "broader_topic"
)

// Topic is a generated debate topic candidate. Validate gates structure only;
// similarity against recent contests is checked by the pipeline.
type Topic struct {
	Title         string
	Description   string
	Category      string
	SupportPoints []string
	OpposePoints  []string
	Strategy      string
}

// Validate enforces the structural bounds a generated topic must meet before
// it is eligible for the similarity check.
func (t Topic) Validate() bool {
	title := strings.TrimSpace(t.Title)
	description := strings.TrimSpace(t.Description)
	return len(title) >= 10 &&
		len(title) <= 200 &&
		len(description) >= 20 &&
		len(description) <= 1000 &&
		IsSupportedCategory(t.Category) &&
		hasUsablePoints(t.SupportPoints) &&
		hasUsablePoints(t.OpposePoints)
}

func hasUsablePoints(points []string) bool {
	if len(points) < 2 {
		return false
	}
	for _, point := range points {
		if len(strings.TrimSpace(point)) < 10 {
			return false
		}
	}
	return true
}

func IsSupportedCategory(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "technology", "society", "ethics", "science", "culture", "lifestyle":
		return true
	default:
		return false
	}
}

func StrategyForAttempt(attempt int) string {
	switch attempt {
	case 1:
		return StrategyDefault
	case 2:
		return StrategyDifferentCategory
	default:
		return StrategyBroaderTopic
	}
}
