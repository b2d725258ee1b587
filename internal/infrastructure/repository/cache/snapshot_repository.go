package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	basecache "github.com/riskibarqy/nba-props/internal/platform/cache"
)

const snapshotCacheMaxEntries = 32

type cachedSnapshot struct {
	entry  snapshot.Entry
	exists bool
}

// SnapshotRepository is a read-through cache in front of a shared snapshot
// store. Concurrent reads of one key share a single backend call; writes go
// straight through and drop the cached copy.
type SnapshotRepository struct {
	next  snapshot.Store
	cache *basecache.Store[cachedSnapshot]
}

var _ snapshot.Store = (*SnapshotRepository)(nil)

func NewSnapshotRepository(next snapshot.Store, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		next:  next,
		cache: basecache.NewStore[cachedSnapshot](ttl, snapshotCacheMaxEntries),
	}
}

func (r *SnapshotRepository) Read(ctx context.Context, key string) (snapshot.Entry, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, "snapshot:"+key, func(ctx context.Context) (cachedSnapshot, error) {
		entry, exists, err := r.next.Read(ctx, key)
		if err != nil {
			return cachedSnapshot{}, err
		}
		return cachedSnapshot{entry: entry, exists: exists}, nil
	})
	if err != nil {
		return snapshot.Entry{}, false, err
	}
	return cached.entry, cached.exists, nil
}

func (r *SnapshotRepository) Write(ctx context.Context, entry snapshot.Entry) error {
	r.cache.Delete(ctx, "snapshot:"+entry.Key)
	return r.next.Write(ctx, entry)
}
