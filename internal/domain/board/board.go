package board

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/nba-props/internal/domain/prop"
)

const (
	AllGames = "all"

	LabelToday    = "Today"
	LabelTomorrow = "Tomorrow"
	LabelFallback = "Future"

	EmptyAllGames = "No players found."
	EmptyOneGame  = "No players found for this game."

	dayLayout   = "2006-01-02"
	shortLayout = "Jan 2"
)

type Classification string

const (
	ClassOver        Classification = "over"
	ClassUnder       Classification = "under"
	ClassUnavailable Classification = "unavailable"
)

// Filter is the user-controlled part of the view.
type Filter struct {
	GameID string
	Search string
	Window prop.HitRateWindow
}

func (f Filter) normalized() Filter {
	if strings.TrimSpace(f.GameID) == "" {
		f.GameID = AllGames
	}
	if f.Window == "" {
		f.Window = prop.WindowLast5
	}
	return f
}

type Row struct {
	Player         prop.Player
	Classification Classification
	Diff           string
	HitRate        string
}

type DateGroup struct {
	Date  string
	Label string
	Games []prop.Game
}

type View struct {
	Filter       Filter
	Groups       []DateGroup
	Rows         []Row
	EmptyMessage string
}

// Build derives the full view from the raw collection. It never mutates players.
func Build(players []prop.Player, filter Filter, now time.Time, loc *time.Location) View {
	filter = filter.normalized()

	filtered := SortPlayers(FilterPlayers(players, filter))
	rows := make([]Row, 0, len(filtered))
	for _, p := range filtered {
		rows = append(rows, NewRow(p, filter.Window))
	}

	view := View{
		Filter: filter,
		Groups: GroupByDate(DeriveGames(players), now, loc),
		Rows:   rows,
	}
	if len(rows) == 0 {
		view.EmptyMessage = EmptyAllGames
		if filter.GameID != AllGames {
			view.EmptyMessage = EmptyOneGame
		}
	}
	return view
}

func NewRow(p prop.Player, window prop.HitRateWindow) Row {
	class, diff := Classify(p)
	return Row{
		Player:         p,
		Classification: class,
		Diff:           diff,
		HitRate:        p.HitRate[window].String(),
	}
}

// DeriveGames keeps the first player per game id that carries full game data,
// ordered by date ascending with first-seen order breaking ties.
func DeriveGames(players []prop.Player) []prop.Game {
	seen := make(map[string]struct{})
	games := make([]prop.Game, 0)
	for _, p := range players {
		if p.GameID == "" || p.GameDate == "" || p.GameDescription == "" {
			continue
		}
		if _, ok := seen[p.GameID]; ok {
			continue
		}
		seen[p.GameID] = struct{}{}
		games = append(games, prop.Game{
			ID:          p.GameID,
			Date:        p.GameDay(),
			Description: p.GameDescription,
		})
	}

	sort.SliceStable(games, func(i, j int) bool {
		di, okI := parseDay(games[i].Date, time.UTC)
		dj, okJ := parseDay(games[j].Date, time.UTC)
		switch {
		case okI && okJ:
			return di.Before(dj)
		default:
			return okI && !okJ
		}
	})
	return games
}

// GroupByDate buckets sorted games by date, keeping bucket order by first appearance.
func GroupByDate(games []prop.Game, now time.Time, loc *time.Location) []DateGroup {
	index := make(map[string]int)
	groups := make([]DateGroup, 0)
	for _, g := range games {
		i, ok := index[g.Date]
		if !ok {
			i = len(groups)
			index[g.Date] = i
			groups = append(groups, DateGroup{Date: g.Date, Label: DateLabel(g.Date, now, loc)})
		}
		groups[i].Games = append(groups[i].Games, g)
	}
	return groups
}

// DateLabel names a YYYY-MM-DD date relative to now in loc.
func DateLabel(date string, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	day, ok := parseDay(date, loc)
	if !ok {
		return LabelFallback
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	switch {
	case day.Equal(today):
		return LabelToday
	case day.Equal(today.AddDate(0, 0, 1)):
		return LabelTomorrow
	default:
		return day.Format(shortLayout)
	}
}

func FilterPlayers(players []prop.Player, filter Filter) []prop.Player {
	filter = filter.normalized()
	term := strings.ToLower(filter.Search)

	out := make([]prop.Player, 0, len(players))
	for _, p := range players {
		if filter.GameID != AllGames && p.GameID != filter.GameID {
			continue
		}
		if !strings.Contains(strings.ToLower(p.PlayerName), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortPlayers returns a copy ordered starters first, then projection descending.
func SortPlayers(players []prop.Player) []prop.Player {
	out := append([]prop.Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsStarter != out[j].IsStarter {
			return out[i].IsStarter
		}
		return out[i].Projection > out[j].Projection
	})
	return out
}

// Classify compares projection with the book line. Without a line the
// result is unavailable and diff is empty.
func Classify(p prop.Player) (Classification, string) {
	if p.BookLine == nil {
		return ClassUnavailable, ""
	}
	// Ties round away from zero: 2.25 shows as 2.3.
	diff := fmt.Sprintf("%.1f", math.Round((p.Projection-*p.BookLine)*10)/10)
	if p.Projection > *p.BookLine {
		return ClassOver, diff
	}
	return ClassUnder, diff
}

func parseDay(date string, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(dayLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
