package emotion

import "strings"

// Detection is the result of classifying one message.
type Detection struct {
	State      State
	Confidence float64
}

// Turn is one prior conversation message, newest last.
type Turn struct {
	Sender  string
	Content string
}

// rule is one step of the detection cascade. Confidence is fixed per rule,
// not derived from match strength.
type rule struct {
	state      State
	confidence float64
	keywords   []string
}

// detectionRules is the cascade in priority order. The first matching rule
// wins; later rules are never consulted.
var detectionRules = []rule{
	{Frustrated, 0.8, []string{"confused", "don't understand", "frustrated", "stuck", "hard", "difficult"}},
	{Excited, 0.7, []string{"awesome", "cool", "amazing", "love this", "great", "excited"}},
	{Confused, 0.6, []string{"what", "how", "why", "explain", "huh", "?"}},
	{Bored, 0.5, []string{"boring", "tired", "whatever", "ok", "sure"}},
}

const (
	// shortMessageLen is the length below which a keyword-free message
	// reads as disengagement.
	shortMessageLen = 10

	defaultConfidence = 0.3
)

// Detector classifies a user message into one emotional state with a
// confidence score. It is stateless and safe for concurrent use.
type Detector struct{}

// NewDetector returns a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect runs the rule cascade over the message. It always produces an
// answer; an empty or unmatched message falls through to Engaged with low
// confidence. History is accepted for interface stability but the cascade
// currently keys off the message alone.
func (d *Detector) Detect(message string, history []Turn) Detection {
	if strings.TrimSpace(message) == "" {
		return Detection{State: Engaged, Confidence: defaultConfidence}
	}
	lower := strings.ToLower(message)

	for _, r := range detectionRules {
		if matchAny(lower, r.keywords) {
			return Detection{State: r.state, Confidence: r.confidence}
		}
		// A pile-up of question marks reads as confusion even without
		// a confusion keyword.
		if r.state == Confused && strings.Count(lower, "?") > 1 {
			return Detection{State: Confused, Confidence: r.confidence}
		}
		if r.state == Bored && len(message) < shortMessageLen {
			return Detection{State: Bored, Confidence: r.confidence}
		}
	}

	return Detection{State: Engaged, Confidence: defaultConfidence}
}

func matchAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
