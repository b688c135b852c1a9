package memory

import (
	"context"

	"go.uber.org/zap"
)

// Store is the persistence contract the retriever needs. QueryMemories
// returns records for a pair ranked by importance descending then
// last-accessed descending, excludes anything below minImportance, and
// in the same transaction increments each returned record's access count
// and refreshes its last-accessed time.
type Store interface {
	InsertMemory(ctx context.Context, rec *Record) error
	QueryMemories(ctx context.Context, characterName, userID string, limit, minImportance int) ([]*Record, error)
}

// DefaultMinImportance filters out low-signal records on retrieval.
const DefaultMinImportance = 3

// Retriever ranks and returns stored memories for a character×user pair.
type Retriever struct {
	store  Store
	logger *zap.Logger
}

// NewRetriever creates a retriever over a record store.
func NewRetriever(store Store, logger *zap.Logger) *Retriever {
	return &Retriever{store: store, logger: logger}
}

// Retrieve returns up to limit records at or above minImportance, most
// important and most recently touched first. A store failure degrades to
// an empty result rather than failing the turn.
func (r *Retriever) Retrieve(ctx context.Context, characterName, userID string, limit, minImportance int) []*Record {
	if limit <= 0 {
		limit = 5
	}

	records, err := r.store.QueryMemories(ctx, characterName, userID, limit, minImportance)
	if err != nil {
		r.logger.Warn("memory retrieval failed, continuing without memories",
			zap.String("character", characterName),
			zap.String("user", userID),
			zap.Error(err))
		return nil
	}
	return records
}
