package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nba-props/internal/domain/board"
	"github.com/riskibarqy/nba-props/internal/domain/prop"
	"github.com/riskibarqy/nba-props/internal/domain/session"
	"github.com/riskibarqy/nba-props/internal/domain/snapshot"
	propmock "github.com/riskibarqy/nba-props/internal/mocks/domain/prop"
	snapshotmock "github.com/riskibarqy/nba-props/internal/mocks/domain/snapshot"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var syncNow = time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC)

func samplePlayers() []prop.Player {
	return []prop.Player{
		{
			ID: "p1", PlayerName: "Jalen Brunson", Team: "NYK", Opponent: "BOS", Stat: "PTS",
			Projection: 27.5, BookLine: prop.Float(25.5), IsStarter: true,
			HitRate: map[prop.HitRateWindow]prop.HitRateValue{prop.WindowLast5: prop.HitRatePercent(80)},
			GameID:  "g1", GameDate: "2025-01-15T19:30:00Z", GameDescription: "BOS @ NYK",
		},
		{
			ID: "p2", PlayerName: "Miles McBride", Team: "NYK", Opponent: "BOS", Stat: "PTS",
			Projection: 9.1, GameID: "g1", GameDate: "2025-01-15T19:30:00Z", GameDescription: "BOS @ NYK",
		},
	}
}

func newTestSyncService(store snapshot.Store, source prop.Source) *SyncService {
	return NewSyncService(store, source, logging.NewNop(), SyncServiceConfig{
		Location: time.UTC,
		Now:      func() time.Time { return syncNow },
	})
}

func encodedEntry(t *testing.T, players []prop.Player, age time.Duration) snapshot.Entry {
	t.Helper()
	payload, err := snapshot.EncodePlayers(players)
	require.NoError(t, err)
	return snapshot.Entry{Key: "2025-01-15", Payload: payload, Timestamp: syncNow.Add(-age)}
}

func TestSyncService_Load_FreshCacheSkipsFetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").
		Return(encodedEntry(t, samplePlayers(), time.Hour), true, nil).
		Once()

	require.True(t, service.Status().Loading)
	require.NoError(t, service.Load(ctx, session.Session{UserID: "u1"}))

	status := service.Status()
	require.False(t, status.Loading)
	require.Equal(t, DataOriginCache, status.Origin)
	require.Empty(t, status.Error)
	require.Equal(t, 2, status.Players)
	source.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestSyncService_Load_StaleCacheFetchesAndWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	fetched := samplePlayers()[:1]
	store.On("Read", mock.Anything, "2025-01-15").
		Return(encodedEntry(t, samplePlayers(), 5*time.Hour), true, nil).
		Once()
	source.On("Fetch", mock.Anything).Return(fetched, nil).Once()
	store.On("Write", mock.Anything, mock.MatchedBy(func(e snapshot.Entry) bool {
		decoded, err := snapshot.DecodePlayers(e.Payload)
		return err == nil && e.Key == "2025-01-15" && e.Timestamp.Equal(syncNow) && len(decoded) == 1
	})).Return(nil).Once()

	require.NoError(t, service.Load(ctx, session.Session{UserID: "u1"}))

	status := service.Status()
	require.Equal(t, DataOriginUpstream, status.Origin)
	require.Equal(t, 1, status.Players)
	require.Equal(t, syncNow, status.CapturedAt)
}

func TestSyncService_Load_FreshnessBoundaryIsStale(t *testing.T) {
	t.Parallel()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").
		Return(encodedEntry(t, samplePlayers(), snapshot.FreshnessWindow), true, nil).
		Once()
	source.On("Fetch", mock.Anything).Return(samplePlayers(), nil).Once()
	store.On("Write", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, service.Load(context.Background(), session.Session{}))
	require.Equal(t, DataOriginUpstream, service.Status().Origin)
}

func TestSyncService_Load_ReadErrorIsMiss(t *testing.T) {
	t.Parallel()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").
		Return(snapshot.Entry{}, false, errors.New("permission denied")).
		Once()
	source.On("Fetch", mock.Anything).Return(samplePlayers(), nil).Once()
	store.On("Write", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, service.Load(context.Background(), session.Session{}))
	require.Equal(t, 2, service.Status().Players)
}

func TestSyncService_Load_UndecodablePayloadIsMiss(t *testing.T) {
	t.Parallel()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").
		Return(snapshot.Entry{Key: "2025-01-15", Payload: `{"oops":true}`, Timestamp: syncNow}, true, nil).
		Once()
	source.On("Fetch", mock.Anything).Return(samplePlayers(), nil).Once()
	store.On("Write", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, service.Load(context.Background(), session.Session{}))
	require.Equal(t, DataOriginUpstream, service.Status().Origin)
}

func TestSyncService_Load_WriteFailureKeepsData(t *testing.T) {
	t.Parallel()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").Return(snapshot.Entry{}, false, nil).Once()
	source.On("Fetch", mock.Anything).Return(samplePlayers(), nil).Once()
	store.On("Write", mock.Anything, mock.Anything).Return(errors.New("quota exceeded")).Once()

	require.NoError(t, service.Load(context.Background(), session.Session{}))

	status := service.Status()
	require.Equal(t, 2, status.Players)
	require.Empty(t, status.Error)
	require.False(t, status.Loading)
}

func TestSyncService_Load_FetchErrorSetsMessage(t *testing.T) {
	t.Parallel()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").Return(snapshot.Entry{}, false, nil).Once()
	source.On("Fetch", mock.Anything).
		Return(nil, errors.New("API Error: Internal Server Error - model offline")).
		Once()

	err := service.Load(context.Background(), session.Session{})
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}

	status := service.Status()
	require.False(t, status.Loading)
	require.Equal(t, "Failed to load data: API Error: Internal Server Error - model offline", status.Error)
	require.Zero(t, status.Players)
	store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestSyncService_Load_ClosedDuringFetchDiscardsResult(t *testing.T) {
	t.Parallel()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").Return(snapshot.Entry{}, false, nil).Once()
	source.On("Fetch", mock.Anything).
		Run(func(mock.Arguments) { service.Close() }).
		Return(samplePlayers(), nil).
		Once()

	err := service.Load(context.Background(), session.Session{})
	if !errors.Is(err, ErrSyncDiscarded) {
		t.Fatalf("expected ErrSyncDiscarded, got %v", err)
	}
	require.Zero(t, service.Status().Players)
	store.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)

	err = service.Load(context.Background(), session.Session{})
	if !errors.Is(err, ErrSyncDiscarded) {
		t.Fatalf("expected closed service to refuse loads, got %v", err)
	}
}

func TestSyncService_Board_UsesCurrentCollection(t *testing.T) {
	t.Parallel()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").
		Return(encodedEntry(t, samplePlayers(), time.Minute), true, nil).
		Once()
	require.NoError(t, service.Load(context.Background(), session.Session{}))

	view := service.Board(context.Background(), board.Filter{})
	require.Len(t, view.Rows, 2)
	require.Equal(t, "p1", view.Rows[0].Player.ID)
	require.Equal(t, board.ClassOver, view.Rows[0].Classification)
	require.Equal(t, board.ClassUnavailable, view.Rows[1].Classification)
	require.Len(t, view.Groups, 1)
	require.Equal(t, board.LabelToday, view.Groups[0].Label)

	games := service.Games(context.Background())
	require.Len(t, games, 1)
	require.Equal(t, "g1", games[0].Games[0].ID)
}
