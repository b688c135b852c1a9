package engine

import (
	"fmt"

	"github.com/cymond/educhat/internal/character"
)

// fallbackResponse builds a deterministic in-character reply for when the
// language model is unreachable. Every variant contains the phrase the
// memory extractor treats as the fallback marker, so these replies are
// never mined for memories.
func fallbackResponse(p *character.Profile, state *character.DynamicState, userMessage string) string {
	patience := p.Patience.String()

	switch p.Name {
	case "Aino":
		text := fmt.Sprintf("Anteeksi (sorry)! I'm having connection issues, but I'm still here with %s patience to help you learn Finnish!", patience)
		if state.AdaptationMode == character.ModeSupportive {
			text += " I noticed you might be feeling frustrated - let's take this step by step when I'm back online."
		}
		return text

	case "Mase":
		text := fmt.Sprintf("*connection issues* Tech problems... but hey, your question about '%s' is still worth exploring!", snippet(userMessage, 30))
		if p.Enthusiasm > 0.6 {
			text += " This is actually pretty interesting stuff even without the AI magic."
		}
		return text

	case "Anna":
		text := fmt.Sprintf("I'm experiencing some connection issues, but with %s patience, I want to give your question the thoughtful response it deserves.", patience)
		if p.Formality > 0.4 {
			text += " Please bear with me while I work through this."
		}
		return text

	case "Bee":
		text := "System bottleneck detected! While I debug these connection issues, I'm still thinking analytically about your request."
		if state.AdaptationMode == character.ModeChallenging {
			text += " This is actually a good lesson in system resilience - want to explore that angle?"
		}
		return text

	default:
		return fmt.Sprintf("I'm having connection issues, but my %s patience means I'm still here to help!", patience)
	}
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
