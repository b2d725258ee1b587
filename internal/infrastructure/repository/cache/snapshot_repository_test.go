package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	snapshotmock "github.com/riskibarqy/nba-props/internal/mocks/domain/snapshot"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository_ReadIsCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := snapshotmock.NewStore(t)
	repo := NewSnapshotRepository(next, time.Minute)

	entry := snapshot.Entry{Key: "2025-01-15", Payload: "[]", Timestamp: time.Unix(1736960400, 0)}
	next.On("Read", mock.Anything, "2025-01-15").Return(entry, true, nil).Once()

	for i := 0; i < 3; i++ {
		got, ok, err := repo.Read(ctx, "2025-01-15")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, entry, got)
	}
}

func TestSnapshotRepository_MissIsCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := snapshotmock.NewStore(t)
	repo := NewSnapshotRepository(next, time.Minute)

	next.On("Read", mock.Anything, "2025-01-16").Return(snapshot.Entry{}, false, nil).Once()

	_, ok, err := repo.Read(ctx, "2025-01-16")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = repo.Read(ctx, "2025-01-16")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSnapshotRepository_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := snapshotmock.NewStore(t)
	repo := NewSnapshotRepository(next, time.Minute)

	entry := snapshot.Entry{Key: "2025-01-15", Payload: "[]"}
	next.On("Read", mock.Anything, "2025-01-15").Return(snapshot.Entry{}, false, errors.New("store down")).Once()
	next.On("Read", mock.Anything, "2025-01-15").Return(entry, true, nil).Once()

	_, _, err := repo.Read(ctx, "2025-01-15")
	require.Error(t, err)

	got, ok, err := repo.Read(ctx, "2025-01-15")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry, got)
}

func TestSnapshotRepository_WriteInvalidatesKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := snapshotmock.NewStore(t)
	repo := NewSnapshotRepository(next, time.Minute)

	stale := snapshot.Entry{Key: "2025-01-15", Payload: "[]", Timestamp: time.Unix(100, 0)}
	fresh := snapshot.Entry{Key: "2025-01-15", Payload: "[]", Timestamp: time.Unix(200, 0)}

	next.On("Read", mock.Anything, "2025-01-15").Return(stale, true, nil).Once()
	next.On("Write", mock.Anything, fresh).Return(nil).Once()
	next.On("Read", mock.Anything, "2025-01-15").Return(fresh, true, nil).Once()

	_, _, err := repo.Read(ctx, "2025-01-15")
	require.NoError(t, err)
	require.NoError(t, repo.Write(ctx, fresh))

	got, ok, err := repo.Read(ctx, "2025-01-15")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fresh, got)
}
