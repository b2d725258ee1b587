package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	"github.com/riskibarqy/nba-props/internal/platform/cache"
)

// SnapshotRepository is a process-local snapshot store. Entries never expire.
type SnapshotRepository struct {
	namespace  string
	collection string
	entries    *cache.Store[snapshot.Entry]
}

var _ snapshot.Store = (*SnapshotRepository)(nil)

func NewSnapshotRepository(namespace, collection string) *SnapshotRepository {
	return &SnapshotRepository{
		namespace:  namespace,
		collection: collection,
		entries:    cache.NewStore[snapshot.Entry](0, 0),
	}
}

func (r *SnapshotRepository) Read(ctx context.Context, key string) (snapshot.Entry, bool, error) {
	entry, ok := r.entries.Get(ctx, snapshot.DocumentPath(r.namespace, r.collection, key))
	return entry, ok, nil
}

func (r *SnapshotRepository) Write(ctx context.Context, entry snapshot.Entry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return fmt.Errorf("snapshot key is required")
	}
	entry.Timestamp = snapshot.TruncateTimestamp(entry.Timestamp)
	r.entries.Set(ctx, snapshot.DocumentPath(r.namespace, r.collection, entry.Key), entry)
	return nil
}
