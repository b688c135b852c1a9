// Package emotion classifies user messages into discrete emotional states.
package emotion

// State is a discrete user emotional state.
type State string

const (
	Frustrated  State = "frustrated"
	Excited     State = "excited"
	Confused    State = "confused"
	Confident   State = "confident"
	Bored       State = "bored"
	Engaged     State = "engaged"
	Overwhelmed State = "overwhelmed"
	Curious     State = "curious"
)

// Valid reports whether s is a known emotional state.
func Valid(s State) bool {
	switch s {
	case Frustrated, Excited, Confused, Confident, Bored, Engaged, Overwhelmed, Curious:
		return true
	}
	return false
}
