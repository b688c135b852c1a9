package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cymond/educhat/internal/memory"
)

// InsertMemory stores one extracted memory record.
func (s *Store) InsertMemory(ctx context.Context, rec *memory.Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO memories
			(id, character_name, user_id, memory_type, content, importance,
			 emotional_context, topics, created_at, last_accessed, access_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.CharacterName, rec.UserID, string(rec.Type), rec.Content,
		rec.Importance, rec.EmotionalContext, rec.Topics,
		rec.CreatedAt, rec.LastAccessed, rec.AccessCount,
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// QueryMemories returns the top memories for a pair, ranked by importance
// then recency of access. Every returned row has its access_count bumped
// and last_accessed refreshed in the same transaction, so the ranking the
// caller saw is the ranking that was charged.
func (s *Store) QueryMemories(ctx context.Context, characterName, userID string, limit, minImportance int) ([]*memory.Record, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin memory query: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, character_name, user_id, memory_type, content, importance,
		       emotional_context, topics, created_at, last_accessed, access_count
		FROM memories
		WHERE character_name = $1 AND user_id = $2 AND importance >= $3
		ORDER BY importance DESC, last_accessed DESC
		LIMIT $4`,
		characterName, userID, minImportance, limit)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}

	var recs []*memory.Record
	for rows.Next() {
		var rec memory.Record
		var memType string
		if err := rows.Scan(&rec.ID, &rec.CharacterName, &rec.UserID, &memType,
			&rec.Content, &rec.Importance, &rec.EmotionalContext, &rec.Topics,
			&rec.CreatedAt, &rec.LastAccessed, &rec.AccessCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		rec.Type = memory.Type(memType)
		recs = append(recs, &rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}

	accessed := time.Now().UTC()
	for _, rec := range recs {
		if _, err := tx.Exec(ctx, `
			UPDATE memories
			SET access_count = access_count + 1, last_accessed = $2
			WHERE id = $1`, rec.ID, accessed); err != nil {
			return nil, fmt.Errorf("touch memory %s: %w", rec.ID, err)
		}
		rec.AccessCount++
		rec.LastAccessed = accessed
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit memory query: %w", err)
	}
	return recs, nil
}

// AllMemories returns every memory for a pair without touching access
// counters. Used by the memory summary endpoint.
func (s *Store) AllMemories(ctx context.Context, characterName, userID string) ([]*memory.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, character_name, user_id, memory_type, content, importance,
		       emotional_context, topics, created_at, last_accessed, access_count
		FROM memories
		WHERE character_name = $1 AND user_id = $2
		ORDER BY created_at ASC`,
		characterName, userID)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	var recs []*memory.Record
	for rows.Next() {
		var rec memory.Record
		var memType string
		if err := rows.Scan(&rec.ID, &rec.CharacterName, &rec.UserID, &memType,
			&rec.Content, &rec.Importance, &rec.EmotionalContext, &rec.Topics,
			&rec.CreatedAt, &rec.LastAccessed, &rec.AccessCount); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		rec.Type = memory.Type(memType)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}
