package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nba-props/internal/domain/session"
	propmock "github.com/riskibarqy/nba-props/internal/mocks/domain/prop"
	snapshotmock "github.com/riskibarqy/nba-props/internal/mocks/domain/snapshot"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func loadedSyncService(t *testing.T) *SyncService {
	t.Helper()

	store := snapshotmock.NewStore(t)
	source := propmock.NewSource(t)
	service := newTestSyncService(store, source)

	store.On("Read", mock.Anything, "2025-01-15").
		Return(encodedEntry(t, samplePlayers(), time.Minute), true, nil).
		Once()
	require.NoError(t, service.Load(context.Background(), session.Session{}))
	return service
}

func TestLineEditor_AdjustLineSteps(t *testing.T) {
	t.Parallel()

	service := loadedSyncService(t)
	ctx := context.Background()
	before := service.Players()

	got, err := service.AdjustLine(ctx, "p1", LineStep)
	require.NoError(t, err)
	require.Equal(t, 26.0, *got.BookLine)

	got, err = service.AdjustLine(ctx, "p1", -LineStep)
	require.NoError(t, err)
	require.Equal(t, 25.5, *got.BookLine)

	got, err = service.AdjustLine(ctx, "p1", -LineStep)
	require.NoError(t, err)
	require.Equal(t, 25.0, *got.BookLine)

	// Snapshots taken earlier must not see the edit.
	require.Equal(t, 25.5, *before[0].BookLine)
}

func TestLineEditor_AdjustLineWithoutLineIsNoop(t *testing.T) {
	t.Parallel()

	service := loadedSyncService(t)

	got, err := service.AdjustLine(context.Background(), "p2", LineStep)
	require.NoError(t, err)
	require.Nil(t, got.BookLine)
}

func TestLineEditor_SetManualLine(t *testing.T) {
	t.Parallel()

	service := loadedSyncService(t)
	ctx := context.Background()

	got, err := service.SetManualLine(ctx, "p2", " 8.5 ")
	require.NoError(t, err)
	require.NotNil(t, got.BookLine)
	require.Equal(t, 8.5, *got.BookLine)

	for _, raw := range []string{"", "abc", "pts 9", "NaN", "Inf", "-", "."} {
		got, err = service.SetManualLine(ctx, "p2", raw)
		require.NoError(t, err)
		require.Equal(t, 8.5, *got.BookLine, "input %q must be ignored", raw)
	}
}

func TestLineEditor_SetManualLine_ReadsNumericPrefix(t *testing.T) {
	t.Parallel()

	service := loadedSyncService(t)
	ctx := context.Background()

	tests := []struct {
		raw  string
		want float64
	}{
		{raw: "21.5 pts", want: 21.5},
		{raw: "9.", want: 9},
		{raw: ".5", want: 0.5},
		{raw: "-1.5o", want: -1.5},
		{raw: "2e1x", want: 20},
		{raw: "3e", want: 3},
	}
	for _, tt := range tests {
		got, err := service.SetManualLine(ctx, "p2", tt.raw)
		require.NoError(t, err)
		require.NotNil(t, got.BookLine)
		require.Equal(t, tt.want, *got.BookLine, "input %q", tt.raw)
	}
}

func TestLineEditor_UnknownPlayer(t *testing.T) {
	t.Parallel()

	service := loadedSyncService(t)

	_, err := service.AdjustLine(context.Background(), "missing", LineStep)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = service.SetManualLine(context.Background(), "", "1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
