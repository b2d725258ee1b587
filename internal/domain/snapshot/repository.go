package snapshot

import "context"

// Store is the shared, multi-writer snapshot cache. Write is an unconditional
// upsert; concurrent writers for one key race and the last write wins.
type Store interface {
	Read(ctx context.Context, key string) (Entry, bool, error)
	Write(ctx context.Context, entry Entry) error
}
