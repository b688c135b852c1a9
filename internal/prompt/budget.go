package prompt

import (
	"strings"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/memory"
)

// Token budget bounds. The floor avoids truncated replies; the ceiling
// caps runaway generation cost.
const (
	MinBudget = 200
	MaxBudget = 700
)

// baseBudgets anchors the budget on the character's default verbosity.
var baseBudgets = map[character.ResponseStyle]float64{
	character.StyleBrief:         220,
	character.StyleModerate:      300,
	character.StyleDetailed:      380,
	character.StyleComprehensive: 460,
}

// educationalKeywords signal a teaching moment that deserves more room.
var educationalKeywords = []string{"explain", "grammar", "example", "learn", "practice", "why", "how"}

// Budget derives the response token budget from observable signals only:
// character verbosity, message complexity, educational keywords,
// personality traits, question phrasing, and retrieved-memory volume.
// The result is always an integer in [MinBudget, MaxBudget].
func Budget(p *character.Profile, s *character.DynamicState, userMessage string, memories []*memory.Record) int {
	base, ok := baseBudgets[p.DefaultResponseStyle]
	if !ok {
		base = baseBudgets[character.StyleModerate]
	}

	budget := base *
		complexityFactor(userMessage) *
		educationalFactor(userMessage) *
		personalityFactor(p, s) *
		questionFactor(userMessage)

	bonus := 25 * len(memories)
	if bonus > 80 {
		bonus = 80
	}
	budget += float64(bonus)

	if budget < MinBudget {
		return MinBudget
	}
	if budget > MaxBudget {
		return MaxBudget
	}
	return int(budget)
}

func complexityFactor(message string) float64 {
	words := len(strings.Fields(message))
	switch {
	case words < 8:
		return 0.8
	case words < 20:
		return 1.0
	case words < 40:
		return 1.2
	default:
		return 1.35
	}
}

func educationalFactor(message string) float64 {
	lower := strings.ToLower(message)
	hits := 0
	for _, kw := range educationalKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits > 3 {
		hits = 3
	}
	return 1.0 + 0.1*float64(hits)
}

func personalityFactor(p *character.Profile, s *character.DynamicState) float64 {
	factor := 0.8 + 0.04*float64(p.Patience) + 0.1*p.Formality + 0.1*p.Enthusiasm
	switch s.AdaptationMode {
	case character.ModeSupportive:
		factor *= 0.95
	case character.ModeChallenging:
		factor *= 1.05
	}
	return factor
}

func questionFactor(message string) float64 {
	lower := strings.ToLower(message)
	factor := 1.0
	switch qc := strings.Count(message, "?"); {
	case qc > 1:
		factor *= 1.15
	case qc == 1:
		factor *= 1.05
	}
	if strings.Contains(lower, "how to") {
		factor *= 1.2
	}
	return factor
}
