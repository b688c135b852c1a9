package memory

import (
	"sort"
	"testing"
)

func TestTopics(t *testing.T) {
	e := NewExtractor()

	cases := []struct {
		text string
		want []string
	}{
		{"I practice finnish grammar every day", []string{"finnish_language", "learning_methods"}},
		{"my python code for the work project", []string{"technology", "school_work"}},
		{"running with my sister", []string{"health_fitness", "family_personal"}},
		{"nothing topical here", nil},
	}
	for _, tc := range cases {
		got := e.Topics(tc.text)
		sort.Strings(got)
		want := append([]string(nil), tc.want...)
		sort.Strings(want)
		if len(got) != len(want) {
			t.Errorf("Topics(%q) = %v, want %v", tc.text, got, tc.want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Topics(%q) = %v, want %v", tc.text, got, tc.want)
				break
			}
		}
	}
}

func TestTagEmotionalContext(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"this is great fun", "positive"},
		{"I hate this terrible weather", "negative"},
		{"it's so hard, I struggle", "difficulty"},
		{"time to study and remember", "learning"},
		{"plain statement", "neutral"},
	}
	for _, tc := range cases {
		if got := TagEmotionalContext(tc.text); got != tc.want {
			t.Errorf("TagEmotionalContext(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

// The memory tagger and the emotion detector use different vocabularies,
// so the same message can legitimately get different labels from each.
func TestTaggerIndependentOfDetector(t *testing.T) {
	// "love" is positive here even though the detector needs "love this".
	if got := TagEmotionalContext("I love saunas"); got != "positive" {
		t.Errorf("got %q, want positive", got)
	}
	// "confused" reads as difficulty here, not as frustration.
	if got := TagEmotionalContext("confused by the partitive"); got != "difficulty" {
		t.Errorf("got %q, want difficulty", got)
	}
}
