package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	qb "github.com/riskibarqy/nba-props/internal/platform/querybuilder"
)

const snapshotTable = "prop_snapshots"

// SnapshotRepository keeps daily snapshots in Postgres, one row per
// namespace, collection and day.
type SnapshotRepository struct {
	db         *sqlx.DB
	namespace  string
	collection string
}

var _ snapshot.Store = (*SnapshotRepository)(nil)

func NewSnapshotRepository(db *sqlx.DB, namespace, collection string) *SnapshotRepository {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = snapshot.DefaultNamespace
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = snapshot.DefaultCollection
	}
	return &SnapshotRepository{db: db, namespace: namespace, collection: collection}
}

func (r *SnapshotRepository) Read(ctx context.Context, key string) (snapshot.Entry, bool, error) {
	query, args, err := qb.Select("namespace", "collection", "day_key", "player_data", "captured_at").
		From(snapshotTable).
		Where(
			qb.Eq("namespace", r.namespace),
			qb.Eq("collection", r.collection),
			qb.Eq("day_key", key),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return snapshot.Entry{}, false, fmt.Errorf("build select snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snapshot.Entry{}, false, nil
		}
		return snapshot.Entry{}, false, fmt.Errorf("select snapshot key=%s: %w", key, err)
	}

	return snapshot.Entry{
		Key:       row.DayKey,
		Payload:   row.PlayerData,
		Timestamp: time.Unix(row.CapturedAt, 0).UTC(),
	}, true, nil
}

func (r *SnapshotRepository) Write(ctx context.Context, entry snapshot.Entry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return fmt.Errorf("snapshot key is required")
	}

	model := snapshotTableModel{
		Namespace:  r.namespace,
		Collection: r.collection,
		DayKey:     entry.Key,
		PlayerData: entry.Payload,
		CapturedAt: entry.Timestamp.Unix(),
	}
	query, args, err := qb.InsertModel(snapshotTable, model, `ON CONFLICT (namespace, collection, day_key)
DO UPDATE SET
    player_data = EXCLUDED.player_data,
    captured_at = EXCLUDED.captured_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert snapshot query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert snapshot key=%s: %w", entry.Key, err)
	}
	return nil
}
