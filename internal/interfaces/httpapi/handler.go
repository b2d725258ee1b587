package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/nba-props/internal/domain/board"
	"github.com/riskibarqy/nba-props/internal/domain/prop"
	"github.com/riskibarqy/nba-props/internal/platform/logging"
	"github.com/riskibarqy/nba-props/internal/usecase"
)

const stepUp = "up"

type Handler struct {
	syncService *usecase.SyncService
	authGate    *usecase.AuthGate
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(syncService *usecase.SyncService, authGate *usecase.AuthGate, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService: syncService,
		authGate:    authGate,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.statusDTO(ctx))
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBoard")
	defer span.End()

	query := r.URL.Query()
	window, err := parseWindowQuery(query.Get("window"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view := h.syncService.Board(ctx, board.Filter{
		GameID: strings.TrimSpace(query.Get("game")),
		Search: query.Get("search"),
		Window: window,
	})

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(ctx, view, h.statusDTO(ctx)))
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	groups := h.syncService.Games(ctx)
	items := make([]dateGroupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, dateGroupToDTO(ctx, g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateLine")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	window, err := parseWindowQuery(r.URL.Query().Get("window"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req lineUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var player prop.Player
	switch {
	case req.Value != nil:
		player, err = h.syncService.SetManualLine(ctx, playerID, *req.Value)
	case req.Step == stepUp:
		player, err = h.syncService.AdjustLine(ctx, playerID, usecase.LineStep)
	default:
		player, err = h.syncService.AdjustLine(ctx, playerID, -usecase.LineStep)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "update line failed", "player_id", playerID, "user_id", sessionUserID(ctx), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rowToDTO(ctx, board.NewRow(player, window)))
}

func (h *Handler) GetBetSheet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBetSheet")
	defer span.End()

	window, err := parseWindowQuery(r.URL.Query().Get("window"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows := h.syncService.BetSheet(ctx, window)
	writeSuccess(ctx, w, http.StatusOK, betSheetToDTO(ctx, rows, h.syncService.BetSheetCount()))
}

func (h *Handler) AddToBetSheet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddToBetSheet")
	defer span.End()

	var req betSheetAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	added, err := h.syncService.AddToBetSheet(ctx, strings.TrimSpace(req.PlayerID))
	if err != nil {
		h.logger.WarnContext(ctx, "add to bet sheet failed", "player_id", req.PlayerID, "user_id", sessionUserID(ctx), "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, betSheetChangeDTO{
		PlayerID: strings.TrimSpace(req.PlayerID),
		Changed:  added,
		Count:    h.syncService.BetSheetCount(),
	})
}

func (h *Handler) RemoveFromBetSheet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveFromBetSheet")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	removed := h.syncService.RemoveFromBetSheet(ctx, playerID)

	writeSuccess(ctx, w, http.StatusOK, betSheetChangeDTO{
		PlayerID: playerID,
		Changed:  removed,
		Count:    h.syncService.BetSheetCount(),
	})
}

func (h *Handler) statusDTO(ctx context.Context) statusDTO {
	ctx, span := startSpan(ctx, "httpapi.Handler.statusDTO")
	defer span.End()

	dto := syncStatusToDTO(ctx, h.syncService.Status())
	if h.authGate != nil {
		dto.AuthState = string(h.authGate.State())
		dto.ConfigError = h.authGate.ConfigError()
		if sess, ok := h.authGate.Session(); ok {
			dto.UserID = sess.UserID
			dto.Anonymous = sess.Anonymous
		}
	}
	return dto
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSON(r *http.Request, out any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseWindowQuery(raw string) (prop.HitRateWindow, error) {
	if strings.TrimSpace(raw) == "" {
		return prop.WindowLast5, nil
	}
	window, ok := prop.ParseWindow(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown hit rate window %q", usecase.ErrInvalidInput, raw)
	}
	return window, nil
}

func sessionUserID(ctx context.Context) string {
	if sess, ok := sessionFromContext(ctx); ok {
		return sess.UserID
	}
	return ""
}
