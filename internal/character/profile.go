// Package character holds the static archetype profiles, the per-user
// runtime state they project, and the rules that adapt that state.
package character

import (
	"github.com/cymond/educhat/internal/emotion"
)

// PatienceLevel is an ordinal patience rank.
type PatienceLevel int

const (
	PatienceVeryLow PatienceLevel = iota + 1
	PatienceLow
	PatienceModerate
	PatienceHigh
	PatienceVeryHigh
)

var patienceNames = map[PatienceLevel]string{
	PatienceVeryLow:  "very low",
	PatienceLow:      "low",
	PatienceModerate: "moderate",
	PatienceHigh:     "high",
	PatienceVeryHigh: "very high",
}

func (p PatienceLevel) String() string {
	if name, ok := patienceNames[p]; ok {
		return name
	}
	return "moderate"
}

// ResponseStyle is a categorical response-length preference.
type ResponseStyle string

const (
	StyleBrief         ResponseStyle = "brief"
	StyleModerate      ResponseStyle = "moderate"
	StyleDetailed      ResponseStyle = "detailed"
	StyleComprehensive ResponseStyle = "comprehensive"
)

// Profile is the immutable definition of a character archetype. Profiles
// are created once at startup and never mutated at runtime; everything
// that changes per user lives in DynamicState and Relationship.
type Profile struct {
	Name      string `json:"name"`
	Archetype string `json:"archetype"`

	Age                int    `json:"age"`
	Gender             string `json:"gender"`
	Occupation         string `json:"occupation"`
	CulturalBackground string `json:"cultural_background"`

	Patience             PatienceLevel `json:"patience"`
	Formality            float64       `json:"formality"`
	Enthusiasm           float64       `json:"enthusiasm"`
	Humor                float64       `json:"humor"`
	ExpertiseConfidence  float64       `json:"expertise_confidence"`
	EncouragementFreq    float64       `json:"encouragement_frequency"`
	ExplanationStyle     string        `json:"explanation_style"`
	DefaultResponseStyle ResponseStyle `json:"default_response_style"`

	UsesExamples  bool `json:"uses_examples"`
	UsesAnalogies bool `json:"uses_analogies"`
	AsksQuestions bool `json:"asks_questions"`

	KnowledgeDomains     []string `json:"knowledge_domains"`
	TeachingSpecialties  []string `json:"teaching_specialties"`
	ConversationStarters []string `json:"conversation_starters"`

	// AdaptationPrompts maps an emotional state to a free-text
	// instruction injected into the prompt when that state is detected.
	AdaptationPrompts map[emotion.State]string `json:"adaptation_prompts"`
}

// KnowsDomain reports whether the profile lists the given knowledge domain.
func (p *Profile) KnowsDomain(domain string) bool {
	for _, d := range p.KnowledgeDomains {
		if d == domain {
			return true
		}
	}
	return false
}
