package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
)

const (
	fieldPlayerData = "playerData"
	fieldTimestamp  = "timestamp"
)

// SnapshotRepository stores each daily snapshot as a hash at
// {namespace}/public/data/{collection}/{day}.
type SnapshotRepository struct {
	client     goredis.UniversalClient
	namespace  string
	collection string
}

var _ snapshot.Store = (*SnapshotRepository)(nil)

func NewSnapshotRepository(client goredis.UniversalClient, namespace, collection string) *SnapshotRepository {
	return &SnapshotRepository{client: client, namespace: namespace, collection: collection}
}

func (r *SnapshotRepository) key(day string) string {
	return snapshot.DocumentPath(r.namespace, r.collection, day)
}

func (r *SnapshotRepository) Read(ctx context.Context, day string) (snapshot.Entry, bool, error) {
	key := r.key(day)
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return snapshot.Entry{}, false, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return snapshot.Entry{}, false, nil
	}

	payload, ok := fields[fieldPlayerData]
	if !ok {
		return snapshot.Entry{}, false, fmt.Errorf("snapshot %s has no %s field", key, fieldPlayerData)
	}
	seconds, err := strconv.ParseInt(strings.TrimSpace(fields[fieldTimestamp]), 10, 64)
	if err != nil {
		return snapshot.Entry{}, false, fmt.Errorf("parse %s timestamp: %w", key, err)
	}

	return snapshot.Entry{
		Key:       day,
		Payload:   payload,
		Timestamp: time.Unix(seconds, 0).UTC(),
	}, true, nil
}

// Write replaces both fields in one HSET; there is no version check.
func (r *SnapshotRepository) Write(ctx context.Context, entry snapshot.Entry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return fmt.Errorf("snapshot key is required")
	}

	key := r.key(entry.Key)
	err := r.client.HSet(ctx, key,
		fieldPlayerData, entry.Payload,
		fieldTimestamp, strconv.FormatInt(entry.Timestamp.Unix(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}
