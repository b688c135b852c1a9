package character

import (
	"strings"

	"github.com/cymond/educhat/internal/emotion"
)

// AdaptationMode is the character's current behavioral stance toward a user.
type AdaptationMode string

const (
	ModeBalanced    AdaptationMode = "balanced"
	ModeSupportive  AdaptationMode = "supportive"
	ModeChallenging AdaptationMode = "challenging"
)

// LearningStyle is the user's inferred preferred way of learning.
type LearningStyle string

const (
	StyleUnknown     LearningStyle = "unknown"
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
)

// DynamicState is the mutable runtime state of one character for one user.
// All bounded scalars stay within [0,1]; mutations go through Clamp.
type DynamicState struct {
	CurrentPatience     float64        `json:"current_patience"`
	EnergyLevel         float64        `json:"energy_level"`
	DetectedEmotion     emotion.State  `json:"detected_emotion"`
	AdaptationMode      AdaptationMode `json:"adaptation_mode"`
	MessagesThisSession int            `json:"messages_this_session"`
	UserSuccessRate     float64        `json:"user_success_rate"`
}

// NewDynamicState returns the state used on a pair's first interaction.
func NewDynamicState() *DynamicState {
	return &DynamicState{
		CurrentPatience: 0.5,
		EnergyLevel:     0.7,
		DetectedEmotion: emotion.Engaged,
		AdaptationMode:  ModeBalanced,
		UserSuccessRate: 0.5,
	}
}

// Clamp bounds every scalar to [0,1]. Called after every mutation.
func (s *DynamicState) Clamp() {
	s.CurrentPatience = clamp01(s.CurrentPatience)
	s.EnergyLevel = clamp01(s.EnergyLevel)
	s.UserSuccessRate = clamp01(s.UserSuccessRate)
	if s.MessagesThisSession < 0 {
		s.MessagesThisSession = 0
	}
}

// Relationship is the accumulated long-term memory a character keeps about
// a user: rapport/trust scalars plus categorized fact lists. The lists are
// append-only from the core's point of view.
type Relationship struct {
	Rapport         float64       `json:"rapport"`
	Trust           float64       `json:"trust"`
	LearningStyle   LearningStyle `json:"learning_style"`
	Strengths       []string      `json:"strengths"`
	Weaknesses      []string      `json:"weaknesses"`
	PreferredTopics []string      `json:"preferred_topics"`
	AvoidedTopics   []string      `json:"avoided_topics"`
}

// NewRelationship returns the relationship state for a fresh pair.
func NewRelationship() *Relationship {
	return &Relationship{
		Rapport:       0.5,
		Trust:         0.5,
		LearningStyle: StyleUnknown,
	}
}

// Drift nudges rapport and trust after a turn based on the detected
// emotion. Positive engagement builds the relationship slowly; frustration
// erodes trust slightly faster than it is rebuilt.
func (r *Relationship) Drift(detected emotion.State) {
	switch detected {
	case emotion.Excited, emotion.Engaged, emotion.Curious:
		r.Rapport = clamp01(r.Rapport + 0.05)
		r.Trust = clamp01(r.Trust + 0.03)
	case emotion.Frustrated:
		r.Trust = clamp01(r.Trust - 0.02)
	}
}

var learningStyleCues = []struct {
	style LearningStyle
	cues  []string
}{
	{StyleVisual, []string{"show me", "example", "picture"}},
	{StyleAuditory, []string{"explain", "tell me", "say"}},
	{StyleKinesthetic, []string{"try", "practice", "do"}},
}

// ObserveLearningStyle updates the detected learning style when the user
// message carries a phrase cue. Earlier cue groups take precedence within
// a single message; absent any cue the current value is kept.
func (r *Relationship) ObserveLearningStyle(userMessage string) {
	lower := strings.ToLower(userMessage)
	for _, group := range learningStyleCues {
		for _, cue := range group.cues {
			if strings.Contains(lower, cue) {
				r.LearningStyle = group.style
				return
			}
		}
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
