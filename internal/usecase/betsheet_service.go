package usecase

import (
	"context"

	"github.com/riskibarqy/nba-props/internal/domain/board"
	"github.com/riskibarqy/nba-props/internal/domain/prop"
)

// AddToBetSheet pins a player from the current collection to the top of the sheet.
func (s *SyncService) AddToBetSheet(ctx context.Context, playerID string) (bool, error) {
	_, span := startUsecaseSpan(ctx, "usecase.SyncService.AddToBetSheet", attrPlayerID.String(playerID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookupLocked(playerID)
	if err != nil {
		return false, err
	}
	return s.sheet.Add(s.players[i].ID), nil
}

// RemoveFromBetSheet drops the player; absent ids are ignored.
func (s *SyncService) RemoveFromBetSheet(ctx context.Context, playerID string) bool {
	_, span := startUsecaseSpan(ctx, "usecase.SyncService.RemoveFromBetSheet", attrPlayerID.String(playerID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet.Remove(playerID)
}

// BetSheet resolves the sheet against the live collection, newest first, so
// line edits show up here too. Ids missing from the collection are skipped.
func (s *SyncService) BetSheet(ctx context.Context, window prop.HitRateWindow) []board.Row {
	_, span := startUsecaseSpan(ctx, "usecase.SyncService.BetSheet")
	defer span.End()

	if window == "" {
		window = prop.WindowLast5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sheet.IDs()
	rows := make([]board.Row, 0, len(ids))
	for _, id := range ids {
		i, ok := s.index[id]
		if !ok {
			continue
		}
		rows = append(rows, board.NewRow(s.players[i], window))
	}
	return rows
}

func (s *SyncService) BetSheetCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheet.Len()
}
