package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/status", handler.GetStatus)
}

func registerBoardRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/board", handler.GetBoard)
	mux.HandleFunc("GET /v1/games", handler.ListGames)
}

// Mutations only make sense once the session exists and the sync has been triggered.
func registerSessionRoutes(mux *http.ServeMux, handler *Handler, gate ReadinessChecker) {
	mux.Handle("PATCH /v1/players/{playerID}/line", RequireReady(gate, http.HandlerFunc(handler.UpdateLine)))
	mux.Handle("GET /v1/betsheet", RequireReady(gate, http.HandlerFunc(handler.GetBetSheet)))
	mux.Handle("POST /v1/betsheet", RequireReady(gate, http.HandlerFunc(handler.AddToBetSheet)))
	mux.Handle("DELETE /v1/betsheet/{playerID}", RequireReady(gate, http.HandlerFunc(handler.RemoveFromBetSheet)))
}
