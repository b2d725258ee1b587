package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	"github.com/stretchr/testify/require"
)

const selectSnapshotQuery = "SELECT namespace, collection, day_key, player_data, captured_at FROM prop_snapshots WHERE namespace = $1 AND collection = $2 AND day_key = $3 LIMIT 1"

func newMockRepository(t *testing.T) (*SnapshotRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSnapshotRepository(sqlx.NewDb(db, "postgres"), "app-1", ""), mock
}

func TestSnapshotRepository_Read(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotQuery)).
		WithArgs("app-1", snapshot.DefaultCollection, "2025-01-15").
		WillReturnRows(sqlmock.NewRows([]string{"namespace", "collection", "day_key", "player_data", "captured_at"}).
			AddRow("app-1", snapshot.DefaultCollection, "2025-01-15", `[]`, int64(1736949600)))

	entry, ok, err := repo.Read(context.Background(), "2025-01-15")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2025-01-15", entry.Key)
	require.Equal(t, `[]`, entry.Payload)
	require.Equal(t, time.Unix(1736949600, 0).UTC(), entry.Timestamp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_ReadMiss(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotQuery)).
		WithArgs("app-1", snapshot.DefaultCollection, "2025-01-16").
		WillReturnRows(sqlmock.NewRows([]string{"namespace", "collection", "day_key", "player_data", "captured_at"}))

	_, ok, err := repo.Read(context.Background(), "2025-01-16")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotRepository_ReadError(t *testing.T) {
	repo, mock := newMockRepository(t)
	errConn := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(selectSnapshotQuery)).WillReturnError(errConn)

	_, _, err := repo.Read(context.Background(), "2025-01-15")
	require.ErrorIs(t, err, errConn)
}

func TestSnapshotRepository_WriteUpserts(t *testing.T) {
	repo, mock := newMockRepository(t)
	capturedAt := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO prop_snapshots (namespace, collection, day_key, player_data, captured_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (namespace, collection, day_key)")).
		WithArgs("app-1", snapshot.DefaultCollection, "2025-01-15", `[{"id":"p1"}]`, capturedAt.Unix()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Write(context.Background(), snapshot.Entry{Key: "2025-01-15", Payload: `[{"id":"p1"}]`, Timestamp: capturedAt})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepository_WriteRequiresKey(t *testing.T) {
	repo, _ := newMockRepository(t)
	require.Error(t, repo.Write(context.Background(), snapshot.Entry{}))
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("wrapped: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to match")
	}
	if isNotFound(errors.New("pq: relation prop_snapshots does not exist")) {
		t.Fatalf("expected unrelated error not to match")
	}
}
