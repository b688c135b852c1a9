package memory

import "testing"

func TestScoreImportanceBases(t *testing.T) {
	cases := []struct {
		memType Type
		want    int
	}{
		{TypePreference, 6},
		{TypeLearningPattern, 8},
		{TypeFact, 7},
		{TypeGoal, 9},
		{TypeEmotionalContext, 5},
		{TypeCorrection, 9},
		{TypeAchievement, 7},
	}
	for _, tc := range cases {
		if got := scoreImportance(tc.memType, "plain text with no boosts"); got != tc.want {
			t.Errorf("scoreImportance(%s) = %d, want %d", tc.memType, got, tc.want)
		}
	}
}

func TestScoreImportanceBoosts(t *testing.T) {
	// Domain boost: preference base 6 + finnish.
	if got := scoreImportance(TypePreference, "likes finnish podcasts"); got != 7 {
		t.Errorf("domain boost: got %d, want 7", got)
	}
	// High-value keyword: base 6 + "important".
	if got := scoreImportance(TypePreference, "an important routine"); got != 7 {
		t.Errorf("keyword boost: got %d, want 7", got)
	}
	// Family boost: base 6 + "family".
	if got := scoreImportance(TypePreference, "studies with the family"); got != 7 {
		t.Errorf("family boost: got %d, want 7", got)
	}
	// Stacked boosts clamp at 10.
	if got := scoreImportance(TypeGoal, "important goal: never quit finnish, help the family"); got != 10 {
		t.Errorf("stacked boosts: got %d, want clamp at 10", got)
	}
}

func TestScoreImportanceHedging(t *testing.T) {
	if got := scoreImportance(TypeEmotionalContext, "i think it was fine, maybe"); got != 3 {
		t.Errorf("hedging: got %d, want 5 - 2", got)
	}
	// Floor at 1.
	if got := scoreImportance(TypeEmotionalContext, "i think maybe probably sometimes it rains"); got != 1 {
		t.Errorf("floor: got %d, want 1", got)
	}
}
