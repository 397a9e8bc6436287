package analytics

import (
	"math"
	"time"
)

// DefaultWhaleMultiplier marks a member as a legend at this multiple of
// the squad threshold.
const DefaultWhaleMultiplier = 3

// MemberRecord is a time-bounded membership interval. A nil LeftAt means
// the member is still in the squad.
type MemberRecord struct {
	UserID   string
	JoinedAt time.Time
	LeftAt   *time.Time
}

// Contains reports whether the member was part of the squad on date.
// The interval is [JoinedAt, LeftAt).
func (m MemberRecord) Contains(date time.Time) bool {
	if date.Before(m.JoinedAt) {
		return false
	}
	return m.LeftAt == nil || date.Before(*m.LeftAt)
}

// Squad is the engine's view of a group-accountability unit.
type Squad struct {
	Name          string
	MinThreshold  int
	StreakFreezes int
	OwnerTimezone string
	Members       []MemberRecord
}

// Contribution is one member's day total plus the threshold verdict.
type Contribution struct {
	Weight int
	Met    bool
}

// SquadOutcome is the terminal per-day state of a squad.
type SquadOutcome string

const (
	OutcomeSolid           SquadOutcome = "SOLID"
	OutcomeCoveredByWhale  SquadOutcome = "COVERED_BY_WHALE"
	OutcomeCoveredByShield SquadOutcome = "COVERED_BY_SHIELD"
	OutcomeBroken          SquadOutcome = "BROKEN"
)

// MemberCell is one member's slot in the squad mosaic.
type MemberCell struct {
	UserID string
	// Filled means the member met the threshold on their own.
	Filled bool
	// Carried means a whale or shield covered their shortfall.
	Carried bool
	Score   int
}

// SquadDay is the aggregated state of one squad on one day.
type SquadDay struct {
	DayKey               string
	MemberCount          int
	ActiveCount          int
	CompletionPercentage int
	UsedShield           bool
	Intensity            float64
	Outcome              SquadOutcome
	Cells                []MemberCell
}

// SquadParams are the tunable squad constants.
type SquadParams struct {
	WhaleMultiplier int
}

// DefaultSquadParams returns the reference constants.
func DefaultSquadParams() SquadParams {
	return SquadParams{WhaleMultiplier: DefaultWhaleMultiplier}
}

// AggregateSquadDay computes the squad's state for date given each active
// member's contribution. now anchors the "today" check in the squad's
// timezone: shields are never applied to today since there is still time
// to act.
func AggregateSquadDay(squad Squad, date, now time.Time, contributions map[string]Contribution, params SquadParams) SquadDay {
	threshold := squad.MinThreshold
	if threshold < 1 {
		threshold = 1
	}
	multiplier := params.WhaleMultiplier
	if multiplier < 1 {
		multiplier = DefaultWhaleMultiplier
	}

	dayKey := ZoneDayKey(date, squad.OwnerTimezone)
	isToday := dayKey == ZoneDayKey(now, squad.OwnerTimezone)

	var members []string
	for _, record := range squad.Members {
		if record.Contains(date) {
			members = append(members, record.UserID)
		}
	}

	activeSet := make(map[string]bool, len(members))
	legends := 0
	for _, member := range members {
		c := contributions[member]
		if c.Met || c.Weight >= threshold {
			activeSet[member] = true
		}
		if c.Weight >= threshold*multiplier {
			legends++
		}
	}

	activeCount := len(activeSet)
	usedShield := false
	if missing := len(members) - activeCount; missing > 0 {
		carryPower := missing
		if legends < carryPower {
			carryPower = legends
		}
		activeCount += carryPower

		if activeCount < len(members) && !isToday && squad.StreakFreezes > 0 {
			activeCount = len(members)
			usedShield = true
		}
	}

	completion := 0
	if len(members) > 0 {
		completion = int(math.Round(float64(activeCount) / float64(len(members)) * 100))
	}

	outcome := OutcomeBroken
	switch {
	case len(members) > 0 && len(activeSet) == len(members):
		outcome = OutcomeSolid
	case usedShield:
		outcome = OutcomeCoveredByShield
	case len(members) > 0 && activeCount == len(members):
		outcome = OutcomeCoveredByWhale
	}

	totalScore := 0
	cells := make([]MemberCell, 0, len(members))
	for _, member := range members {
		c := contributions[member]
		score := c.Weight
		if score == 0 && activeSet[member] {
			score = threshold
		}
		totalScore += score
		filled := activeSet[member]
		cells = append(cells, MemberCell{
			UserID:  member,
			Filled:  filled,
			Carried: !filled && completion == 100,
			Score:   score,
		})
	}

	intensity := 0.0
	if expected := len(members) * threshold; expected > 0 {
		intensity = float64(totalScore) / float64(expected)
		if intensity > 1 {
			intensity = 1
		}
	}

	return SquadDay{
		DayKey:               dayKey,
		MemberCount:          len(members),
		ActiveCount:          activeCount,
		CompletionPercentage: completion,
		UsedShield:           usedShield,
		Intensity:            intensity,
		Outcome:              outcome,
		Cells:                cells,
	}
}
