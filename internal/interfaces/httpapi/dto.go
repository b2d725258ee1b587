package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/nba-props/internal/domain/board"
	"github.com/riskibarqy/nba-props/internal/domain/prop"
	"github.com/riskibarqy/nba-props/internal/usecase"
)

type lineUpdateRequest struct {
	Step  string  `json:"step" validate:"required_without=Value,excluded_with=Value,omitempty,oneof=up down"`
	Value *string `json:"value" validate:"required_without=Step,omitempty,max=32"`
}

type betSheetAddRequest struct {
	PlayerID string `json:"playerId" validate:"required,max=128"`
}

type statusDTO struct {
	Loading       bool   `json:"loading"`
	Error         string `json:"error,omitempty"`
	ConfigError   string `json:"configError,omitempty"`
	AuthState     string `json:"authState,omitempty"`
	UserID        string `json:"userId,omitempty"`
	Anonymous     bool   `json:"anonymous"`
	Source        string `json:"source,omitempty"`
	CapturedAtUTC string `json:"capturedAtUtc,omitempty"`
	Players       int    `json:"players"`
	BetSheetCount int    `json:"betSheetCount"`
}

type playerDTO struct {
	ID              string                       `json:"id"`
	PlayerName      string                       `json:"playerName"`
	Team            string                       `json:"team"`
	Opponent        string                       `json:"opponent"`
	Stat            string                       `json:"stat"`
	Projection      float64                      `json:"projection"`
	BookLine        *float64                     `json:"bookLine"`
	OverUnder       *string                      `json:"overUnder,omitempty"`
	IsStarter       bool                         `json:"isStarter"`
	HitRate         map[string]prop.HitRateValue `json:"hitRate,omitempty"`
	GameID          string                       `json:"gameId"`
	GameDate        string                       `json:"gameDate"`
	GameDescription string                       `json:"gameDescription"`
}

type rowDTO struct {
	Player         playerDTO `json:"player"`
	Classification string    `json:"classification"`
	Diff           string    `json:"diff,omitempty"`
	HitRate        string    `json:"hitRate,omitempty"`
}

type gameDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type dateGroupDTO struct {
	Date  string    `json:"date"`
	Label string    `json:"label"`
	Games []gameDTO `json:"games"`
}

type boardDTO struct {
	Status       statusDTO      `json:"status"`
	Game         string         `json:"game"`
	Search       string         `json:"search,omitempty"`
	Window       string         `json:"window"`
	Groups       []dateGroupDTO `json:"groups"`
	Rows         []rowDTO       `json:"rows"`
	EmptyMessage string         `json:"emptyMessage,omitempty"`
}

type betSheetDTO struct {
	Count int      `json:"count"`
	Rows  []rowDTO `json:"rows"`
}

type betSheetChangeDTO struct {
	PlayerID string `json:"playerId"`
	Changed  bool   `json:"changed"`
	Count    int    `json:"count"`
}

func syncStatusToDTO(ctx context.Context, s usecase.SyncStatus) statusDTO {
	ctx, span := startSpan(ctx, "httpapi.syncStatusToDTO")
	defer span.End()

	dto := statusDTO{
		Loading:       s.Loading,
		Error:         s.Error,
		Source:        string(s.Origin),
		Players:       s.Players,
		BetSheetCount: s.BetSheet,
	}
	if !s.CapturedAt.IsZero() {
		dto.CapturedAtUTC = s.CapturedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func playerToDTO(ctx context.Context, p prop.Player) playerDTO {
	ctx, span := startSpan(ctx, "httpapi.playerToDTO")
	defer span.End()

	dto := playerDTO{
		ID:              p.ID,
		PlayerName:      p.PlayerName,
		Team:            p.Team,
		Opponent:        p.Opponent,
		Stat:            p.Stat,
		Projection:      p.Projection,
		OverUnder:       p.OverUnder,
		IsStarter:       p.IsStarter,
		GameID:          p.GameID,
		GameDate:        p.GameDate,
		GameDescription: p.GameDescription,
	}
	if p.BookLine != nil {
		line := *p.BookLine
		dto.BookLine = &line
	}
	if len(p.HitRate) > 0 {
		dto.HitRate = make(map[string]prop.HitRateValue, len(p.HitRate))
		for window, value := range p.HitRate {
			dto.HitRate[string(window)] = value
		}
	}
	return dto
}

func rowToDTO(ctx context.Context, row board.Row) rowDTO {
	ctx, span := startSpan(ctx, "httpapi.rowToDTO")
	defer span.End()

	return rowDTO{
		Player:         playerToDTO(ctx, row.Player),
		Classification: string(row.Classification),
		Diff:           row.Diff,
		HitRate:        row.HitRate,
	}
}

func dateGroupToDTO(ctx context.Context, g board.DateGroup) dateGroupDTO {
	ctx, span := startSpan(ctx, "httpapi.dateGroupToDTO")
	defer span.End()

	games := make([]gameDTO, 0, len(g.Games))
	for _, game := range g.Games {
		games = append(games, gameDTO{
			ID:          game.ID,
			Date:        game.Date,
			Description: game.Description,
		})
	}
	return dateGroupDTO{Date: g.Date, Label: g.Label, Games: games}
}

func boardToDTO(ctx context.Context, view board.View, status statusDTO) boardDTO {
	ctx, span := startSpan(ctx, "httpapi.boardToDTO")
	defer span.End()

	groups := make([]dateGroupDTO, 0, len(view.Groups))
	for _, g := range view.Groups {
		groups = append(groups, dateGroupToDTO(ctx, g))
	}
	rows := make([]rowDTO, 0, len(view.Rows))
	for _, row := range view.Rows {
		rows = append(rows, rowToDTO(ctx, row))
	}

	return boardDTO{
		Status:       status,
		Game:         view.Filter.GameID,
		Search:       view.Filter.Search,
		Window:       string(view.Filter.Window),
		Groups:       groups,
		Rows:         rows,
		EmptyMessage: view.EmptyMessage,
	}
}

func betSheetToDTO(ctx context.Context, rows []board.Row, count int) betSheetDTO {
	ctx, span := startSpan(ctx, "httpapi.betSheetToDTO")
	defer span.End()

	items := make([]rowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToDTO(ctx, row))
	}
	return betSheetDTO{Count: count, Rows: items}
}
