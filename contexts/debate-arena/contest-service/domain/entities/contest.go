package entities

import (
	"math"
	"strings"
	"time"
)

type ContestStatus string
type ContestCategory string

const (
	ContestStatusActive     ContestStatus = "active"
	ContestStatusCompleting ContestStatus = "completing"
	ContestStatusCompleted  ContestStatus = "completed"

	CategoryTechnology ContestCategory = "technology"
	CategorySociety    ContestCategory = "society"
	CategoryEthics     ContestCategory = "ethics"
	CategoryScience    ContestCategory = "science"
	CategoryCulture    ContestCategory = "culture"
	CategoryLifestyle  ContestCategory = "lifestyle"
)

// Contest is a time-boxed two-sided argument battle. Contests are never
// deleted; the lifecycle scheduler is the only writer of status transitions.
type Contest struct {
	ContestID       string
	Title           string
	Description     string
	Category        ContestCategory
	SupportPoints   []string
	OpposePoints    []string
	Status          ContestStatus
	StartAt         time.Time
	EndAt           time.Time
	DurationHours   float64
	MaxParticipants int
	LedgerRef       string
	Insight         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

func (c Contest) Expired(now time.Time) bool {
	return !c.EndAt.UTC().After(now.UTC())
}

// DurationDrifted reports whether the stored contest duration differs from the
// currently configured duration by more than the 0.01h operator tolerance.
func (c Contest) DurationDrifted(configuredHours float64) bool {
	return math.Abs(c.DurationHours-configuredHours) > 0.01
}

func IsSupportedCategory(value ContestCategory) bool {
	switch ContestCategory(strings.ToLower(strings.TrimSpace(string(value)))) {
	case CategoryTechnology, CategorySociety, CategoryEthics, CategoryScience, CategoryCulture, CategoryLifestyle:
		return true
	default:
		return false
	}
}
