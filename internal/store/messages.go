package store

import (
	"context"
	"fmt"

	"github.com/cymond/educhat/internal/prompt"
)

// AppendTurn stores one conversation turn for a character/user pair.
func (s *Store) AppendTurn(ctx context.Context, characterName, userID string, turn prompt.Turn) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO messages (id, character_name, user_id, sender, content, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)`,
		characterName, userID, turn.Sender, turn.Content, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// RecentTurns returns the last limit turns for a pair in chronological order.
func (s *Store) RecentTurns(ctx context.Context, characterName, userID string, limit int) ([]prompt.Turn, error) {
	if limit <= 0 {
		limit = prompt.DefaultHistoryLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT sender, content, created_at
		FROM (
			SELECT sender, content, created_at
			FROM messages
			WHERE character_name = $1 AND user_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		) latest
		ORDER BY created_at ASC`,
		characterName, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var turns []prompt.Turn
	for rows.Next() {
		var t prompt.Turn
		if err := rows.Scan(&t.Sender, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
