// Package memory extracts typed memory records from conversation turns and
// ranks stored records for retrieval.
package memory

import (
	"time"

	"github.com/google/uuid"
)

// Type categorizes a memory record.
type Type string

const (
	TypePreference       Type = "preference"
	TypeFact             Type = "fact"
	TypeAchievement      Type = "achievement"
	TypeLearningPattern  Type = "learning_pattern"
	TypeCorrection       Type = "correction"
	TypeGoal             Type = "goal"
	TypeEmotionalContext Type = "emotional_context"
)

// MaxContentLen is the cap on stored memory content. Longer content is
// truncated with an ellipsis.
const MaxContentLen = 200

// Record is one long-term memory a character holds about a user. Records
// are immutable after creation except for the retrieval bookkeeping fields
// (LastAccessed, AccessCount).
type Record struct {
	ID               string    `json:"id"`
	CharacterName    string    `json:"character_name"`
	UserID           string    `json:"user_id"`
	Type             Type      `json:"type"`
	Content          string    `json:"content"`
	Importance       int       `json:"importance"`
	EmotionalContext string    `json:"emotional_context"`
	Topics           []string  `json:"topics"`
	CreatedAt        time.Time `json:"created_at"`
	LastAccessed     time.Time `json:"last_accessed"`
	AccessCount      int       `json:"access_count"`
}

// NewRecord creates a record with a fresh ID and timestamps.
func NewRecord(characterName, userID string, t Type, content string) *Record {
	now := time.Now()
	return &Record{
		ID:            uuid.New().String(),
		CharacterName: characterName,
		UserID:        userID,
		Type:          t,
		Content:       content,
		Importance:    5,
		CreatedAt:     now,
		LastAccessed:  now,
	}
}
