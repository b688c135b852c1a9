package memory

import "strings"

// Importance scoring is table-driven. The weights are hand-tuned values
// carried over unchanged; revise them here, not in the scoring code.
var (
	baseScores = map[Type]int{
		TypePreference:       6,
		TypeLearningPattern:  8,
		TypeFact:             7,
		TypeGoal:             9,
		TypeEmotionalContext: 5,
		TypeCorrection:       9,
		TypeAchievement:      7,
	}

	// highValueKeywords each add one point.
	highValueKeywords = []string{"goal", "important", "always", "never", "love", "hate", "struggling", "confused"}

	// learningDomainKeywords add one point for the primary teaching focus.
	learningDomainKeywords = []string{"finnish", "suomi", "language"}

	// familyKeywords add one point for shared-learning context.
	familyKeywords = []string{"family", "together", "help"}

	// hedgingPhrases each subtract one point.
	hedgingPhrases = []string{"i think", "maybe", "probably", "sometimes"}
)

// scoreImportance computes a record's importance on the 1-10 scale:
// per-type base, plus keyword boosts, minus hedging penalties, clamped.
func scoreImportance(t Type, content string) int {
	score, ok := baseScores[t]
	if !ok {
		score = 5
	}

	lower := strings.ToLower(content)
	for _, kw := range highValueKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	if containsAny(lower, learningDomainKeywords) {
		score++
	}
	if containsAny(lower, familyKeywords) {
		score++
	}
	for _, phrase := range hedgingPhrases {
		if strings.Contains(lower, phrase) {
			score--
		}
	}

	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
