// Package prompt assembles the layered model prompt and computes the
// response token budget for a turn.
package prompt

import "time"

// Turn is one conversation message as rendered into the session layer.
type Turn struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn stamps a turn with the current time.
func NewTurn(sender, content string) Turn {
	return Turn{Sender: sender, Content: content, Timestamp: time.Now().UTC()}
}
