package character

import (
	"math"
	"testing"

	"github.com/cymond/educhat/internal/emotion"
)

func approx(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %.3f, want %.3f", label, got, want)
	}
}

func TestAdaptAdjustments(t *testing.T) {
	cases := []struct {
		emotion      emotion.State
		wantPatience float64
		wantEnergy   float64
		wantMode     AdaptationMode
		wantStyle    ResponseStyle
	}{
		{emotion.Frustrated, 0.8, 0.7, ModeSupportive, StyleBrief},
		{emotion.Excited, 0.5, 0.9, ModeChallenging, StyleDetailed},
		{emotion.Confused, 0.9, 0.7, ModeSupportive, StyleModerate},
		{emotion.Bored, 0.5, 1.0, ModeChallenging, StyleBrief},
		{emotion.Overwhelmed, 1.0, 0.7, ModeSupportive, StyleBrief},
	}
	p := NewAino()
	for _, tc := range cases {
		t.Run(string(tc.emotion), func(t *testing.T) {
			state := NewDynamicState()
			style, handled := Adapt(p, state, tc.emotion)
			if !handled {
				t.Fatalf("Adapt(%s) not handled", tc.emotion)
			}
			approx(t, state.CurrentPatience, tc.wantPatience, "patience")
			approx(t, state.EnergyLevel, tc.wantEnergy, "energy")
			if state.AdaptationMode != tc.wantMode {
				t.Errorf("mode = %s, want %s", state.AdaptationMode, tc.wantMode)
			}
			if style != tc.wantStyle {
				t.Errorf("style = %s, want %s", style, tc.wantStyle)
			}
			if state.DetectedEmotion != tc.emotion {
				t.Errorf("detected emotion not recorded: %s", state.DetectedEmotion)
			}
		})
	}
}

func TestAdaptUnhandledEmotionIsNoop(t *testing.T) {
	p := NewAino()
	for _, e := range []emotion.State{emotion.Engaged, emotion.Curious, emotion.Confident} {
		state := NewDynamicState()
		before := *state
		style, handled := Adapt(p, state, e)
		if handled {
			t.Errorf("Adapt(%s) claimed to handle", e)
		}
		if style != "" {
			t.Errorf("Adapt(%s) returned style %q", e, style)
		}
		if *state != before {
			t.Errorf("Adapt(%s) mutated state: %+v", e, state)
		}
	}
}

func TestAdaptSaturatesAtBounds(t *testing.T) {
	p := NewAino()
	state := NewDynamicState()

	for i := 0; i < 5; i++ {
		Adapt(p, state, emotion.Overwhelmed)
	}
	approx(t, state.CurrentPatience, 1.0, "patience after repeated overwhelm")

	for i := 0; i < 5; i++ {
		Adapt(p, state, emotion.Bored)
	}
	approx(t, state.EnergyLevel, 1.0, "energy after repeated boredom")
}
