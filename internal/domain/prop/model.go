package prop

import (
	"fmt"
	"strings"
)

// HitRateWindow names a trailing window of games used for hit rates.
type HitRateWindow string

const (
	WindowLast5  HitRateWindow = "L5"
	WindowLast10 HitRateWindow = "L10"
	WindowSeason HitRateWindow = "Season"
)

var AllWindows = []HitRateWindow{WindowLast5, WindowLast10, WindowSeason}

func ParseWindow(raw string) (HitRateWindow, bool) {
	for _, w := range AllWindows {
		if strings.EqualFold(strings.TrimSpace(raw), string(w)) {
			return w, true
		}
	}
	return "", false
}

// Player is one projected stat line for one athlete in one game.
type Player struct {
	ID              string                         `json:"id"`
	PlayerName      string                         `json:"playerName"`
	Team            string                         `json:"team"`
	Opponent        string                         `json:"opponent"`
	Stat            string                         `json:"stat"`
	Projection      float64                        `json:"projection"`
	BookLine        *float64                       `json:"bookLine"`
	OverUnder       *string                        `json:"overUnder,omitempty"`
	IsStarter       bool                           `json:"isStarter"`
	HitRate         map[HitRateWindow]HitRateValue `json:"hitRate"`
	GameID          string                         `json:"gameId"`
	GameDate        string                         `json:"gameDate"`
	GameDescription string                         `json:"gameDescription"`
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.PlayerName) == "" {
		return fmt.Errorf("player name is required for id=%s", p.ID)
	}
	return nil
}

// HasLine reports whether a book line is present.
func (p Player) HasLine() bool {
	return p.BookLine != nil
}

// GameDay returns gameDate with any time component removed.
func (p Player) GameDay() string {
	day, _, _ := strings.Cut(strings.TrimSpace(p.GameDate), "T")
	return day
}

// Game is derived from the first player seen with a given game id.
type Game struct {
	ID          string
	Date        string
	Description string
}

// ValidateCollection checks id uniqueness across one day's players.
func ValidateCollection(players []Player) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("duplicate player id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func Float(v float64) *float64 {
	return &v
}
