package character

import (
	"github.com/cymond/educhat/internal/emotion"
)

// Adjustment is the bundle of state changes one detected emotion triggers.
// The deltas are additive and clamped, so a run of identical emotions
// saturates at the bound instead of compounding.
type Adjustment struct {
	PatienceDelta float64
	EnergyDelta   float64
	Mode          AdaptationMode
	StyleOverride ResponseStyle
}

// adaptationTable maps detected emotions to adjustments. The values are
// hand-tuned configuration, kept as data so they can be revised without
// touching the adaptation logic. Emotions absent from the table leave the
// state untouched.
var adaptationTable = map[emotion.State]Adjustment{
	emotion.Frustrated: {
		PatienceDelta: 0.3,
		Mode:          ModeSupportive,
		StyleOverride: StyleBrief,
	},
	emotion.Excited: {
		EnergyDelta:   0.2,
		Mode:          ModeChallenging,
		StyleOverride: StyleDetailed,
	},
	emotion.Confused: {
		PatienceDelta: 0.4,
		Mode:          ModeSupportive,
		StyleOverride: StyleModerate,
	},
	emotion.Bored: {
		EnergyDelta:   0.4,
		Mode:          ModeChallenging,
		StyleOverride: StyleBrief,
	},
	emotion.Overwhelmed: {
		PatienceDelta: 0.5,
		Mode:          ModeSupportive,
		StyleOverride: StyleBrief,
	},
}

// Adapt mutates state in place according to the adaptation table and
// returns the suggested response-style override, if any. The override is
// advisory; it is consumed by the prompt assembler and never persisted.
// Unhandled emotions (engaged, curious, confident) are a no-op apart from
// recording the detection, and the adaptation mode keeps its prior value.
func Adapt(profile *Profile, state *DynamicState, detected emotion.State) (ResponseStyle, bool) {
	adj, ok := adaptationTable[detected]
	if !ok {
		return "", false
	}

	state.DetectedEmotion = detected
	state.CurrentPatience += adj.PatienceDelta
	state.EnergyLevel += adj.EnergyDelta
	state.AdaptationMode = adj.Mode
	state.Clamp()

	return adj.StyleOverride, true
}
