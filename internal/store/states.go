package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/emotion"
)

// dynamicStateRow is the persisted form of character.DynamicState. Enums
// travel as strings and are validated again on the way back in, so a row
// written by an older build never produces an invalid in-memory state.
type dynamicStateRow struct {
	CurrentPatience     float64 `json:"current_patience"`
	EnergyLevel         float64 `json:"energy_level"`
	DetectedEmotion     string  `json:"detected_emotion"`
	AdaptationMode      string  `json:"adaptation_mode"`
	MessagesThisSession int     `json:"messages_this_session"`
	UserSuccessRate     float64 `json:"user_success_rate"`
}

type relationshipRow struct {
	Rapport         float64  `json:"rapport"`
	Trust           float64  `json:"trust"`
	LearningStyle   string   `json:"learning_style"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	PreferredTopics []string `json:"preferred_topics"`
	AvoidedTopics   []string `json:"avoided_topics"`
}

func encodeDynamicState(st *character.DynamicState) dynamicStateRow {
	return dynamicStateRow{
		CurrentPatience:     st.CurrentPatience,
		EnergyLevel:         st.EnergyLevel,
		DetectedEmotion:     string(st.DetectedEmotion),
		AdaptationMode:      string(st.AdaptationMode),
		MessagesThisSession: st.MessagesThisSession,
		UserSuccessRate:     st.UserSuccessRate,
	}
}

func decodeDynamicState(row dynamicStateRow) *character.DynamicState {
	st := character.NewDynamicState()
	st.CurrentPatience = row.CurrentPatience
	st.EnergyLevel = row.EnergyLevel
	st.MessagesThisSession = row.MessagesThisSession
	st.UserSuccessRate = row.UserSuccessRate
	if e := emotion.State(row.DetectedEmotion); emotion.Valid(e) {
		st.DetectedEmotion = e
	}
	switch m := character.AdaptationMode(row.AdaptationMode); m {
	case character.ModeBalanced, character.ModeSupportive, character.ModeChallenging:
		st.AdaptationMode = m
	}
	st.Clamp()
	return st
}

func encodeRelationship(rel *character.Relationship) relationshipRow {
	return relationshipRow{
		Rapport:         rel.Rapport,
		Trust:           rel.Trust,
		LearningStyle:   string(rel.LearningStyle),
		Strengths:       rel.Strengths,
		Weaknesses:      rel.Weaknesses,
		PreferredTopics: rel.PreferredTopics,
		AvoidedTopics:   rel.AvoidedTopics,
	}
}

func decodeRelationship(row relationshipRow) *character.Relationship {
	rel := character.NewRelationship()
	rel.Rapport = row.Rapport
	rel.Trust = row.Trust
	rel.Strengths = row.Strengths
	rel.Weaknesses = row.Weaknesses
	rel.PreferredTopics = row.PreferredTopics
	rel.AvoidedTopics = row.AvoidedTopics
	switch s := character.LearningStyle(row.LearningStyle); s {
	case character.StyleVisual, character.StyleAuditory, character.StyleKinesthetic:
		rel.LearningStyle = s
	}
	return rel
}

// LoadState returns the persisted dynamic state and relationship for a
// character/user pair, or fresh defaults when the pair has never spoken.
func (s *Store) LoadState(ctx context.Context, characterName, userID string) (*character.DynamicState, *character.Relationship, error) {
	var stateJSON, relJSON []byte
	err := s.db.QueryRow(ctx, `
		SELECT dynamic_state, relationship
		FROM character_states
		WHERE character_name = $1 AND user_id = $2`,
		characterName, userID,
	).Scan(&stateJSON, &relJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return character.NewDynamicState(), character.NewRelationship(), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load state: %w", err)
	}

	var stRow dynamicStateRow
	if err := json.Unmarshal(stateJSON, &stRow); err != nil {
		return nil, nil, fmt.Errorf("decode dynamic state: %w", err)
	}
	var relRow relationshipRow
	if err := json.Unmarshal(relJSON, &relRow); err != nil {
		return nil, nil, fmt.Errorf("decode relationship: %w", err)
	}
	return decodeDynamicState(stRow), decodeRelationship(relRow), nil
}

// SaveState upserts the dynamic state and relationship for a pair.
func (s *Store) SaveState(ctx context.Context, characterName, userID string, st *character.DynamicState, rel *character.Relationship) error {
	stateJSON, err := json.Marshal(encodeDynamicState(st))
	if err != nil {
		return fmt.Errorf("encode dynamic state: %w", err)
	}
	relJSON, err := json.Marshal(encodeRelationship(rel))
	if err != nil {
		return fmt.Errorf("encode relationship: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO character_states (character_name, user_id, dynamic_state, relationship, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (character_name, user_id)
		DO UPDATE SET dynamic_state = $3, relationship = $4, updated_at = now()`,
		characterName, userID, stateJSON, relJSON,
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
