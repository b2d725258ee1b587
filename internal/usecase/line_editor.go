package usecase

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/nba-props/internal/domain/prop"
)

// LineStep is the stepper increment for book lines.
const LineStep = 0.5

// lineNumber matches the numeric prefix of manual input, so "21.5 pts" reads as 21.5.
var lineNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// AdjustLine shifts the player's book line by delta. Players without a line
// are returned unchanged.
func (s *SyncService) AdjustLine(ctx context.Context, playerID string, delta float64) (prop.Player, error) {
	_, span := startUsecaseSpan(ctx, "usecase.SyncService.AdjustLine", attrPlayerID.String(playerID))
	defer span.End()

	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return prop.Player{}, fmt.Errorf("%w: delta must be finite", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookupLocked(playerID)
	if err != nil {
		return prop.Player{}, err
	}
	p := s.players[i]
	if !p.HasLine() {
		return p, nil
	}

	// New pointer so copies handed out earlier keep their value.
	p.BookLine = prop.Float(*p.BookLine + delta)
	s.players[i] = p
	return p, nil
}

// SetManualLine replaces the book line with the parsed value of raw. Input
// that is not a finite number leaves the player untouched.
func (s *SyncService) SetManualLine(ctx context.Context, playerID, raw string) (prop.Player, error) {
	_, span := startUsecaseSpan(ctx, "usecase.SyncService.SetManualLine", attrPlayerID.String(playerID))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookupLocked(playerID)
	if err != nil {
		return prop.Player{}, err
	}
	p := s.players[i]

	value, ok := parseLine(raw)
	if !ok {
		return p, nil
	}

	p.BookLine = prop.Float(value)
	s.players[i] = p
	return p, nil
}

func (s *SyncService) lookupLocked(playerID string) (int, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return 0, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	i, ok := s.index[playerID]
	if !ok {
		return 0, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return i, nil
}

func parseLine(raw string) (float64, bool) {
	prefix := lineNumber.FindString(strings.TrimSpace(raw))
	if prefix == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
