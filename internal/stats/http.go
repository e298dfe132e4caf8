package stats

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/auth"
	httperrors "github.com/gokatarajesh/student-toolkit/pkg/http/errors"
	ws "github.com/gokatarajesh/student-toolkit/pkg/http/ws"
)

// HTTPHandler serves the caller's stats over REST and websocket.
type HTTPHandler struct {
	ledger *Ledger
	hub    *ws.Hub
	tokens auth.TokenValidator
	logger zerolog.Logger
}

func NewHTTPHandler(ledger *Ledger, hub *ws.Hub, tokens auth.TokenValidator, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		ledger: ledger,
		hub:    hub,
		tokens: tokens,
		logger: logger.With().Str("component", "stats_http").Logger(),
	}
}

// GetMine handles GET /v1/stats/me
func (h *HTTPHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Unauthorized access")
		return
	}

	rec, err := h.ledger.Get(r.Context(), email)
	if err != nil {
		h.logger.Error().Err(err).Str("email", email).Msg("stats lookup failed")
		httperrors.Respond(w, httperrors.ErrCodeStatsFetchFailed, "Failed to fetch stats")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// GetLeaderboard handles GET /v1/stats/leaderboard/{window}?limit=10
func (h *HTTPHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	board := h.ledger.Board()
	if board == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Leaderboard is not enabled")
		return
	}

	window := r.PathValue("window")
	if !IsValidWindow(window) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Unknown leaderboard window")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	top, err := board.Top(r.Context(), window, limit)
	if err != nil {
		h.logger.Warn().Err(err).Str("window", window).Msg("leaderboard fetch failed")
		httperrors.Respond(w, httperrors.ErrCodeStatsFetchFailed, "Failed to fetch leaderboard")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"window":      window,
		"top":         top,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// HandleWebSocket handles GET /ws/stats?token=...
// Browsers cannot set headers on websocket upgrades, so the token travels in
// the query string.
func (h *HTTPHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
		return
	}

	claims, err := h.tokens.Validate(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		return
	}

	rec, err := h.ledger.Get(r.Context(), claims.Email)
	if err != nil {
		h.logger.Error().Err(err).Str("email", claims.Email).Msg("stats lookup failed")
		httperrors.Respond(w, httperrors.ErrCodeStatsFetchFailed, "Failed to fetch stats")
		return
	}

	raw, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	logger := h.logger.With().Str("email", claims.Email).Logger()
	conn := ws.NewConnection(raw, logger)
	h.hub.RegisterConnection(claims.Email, conn)

	if snapshot, err := ws.NewMessage(ws.TypeStatsUpdate, toPayload(rec)); err == nil {
		_ = conn.Send(snapshot)
	}

	go conn.WritePump()
	conn.ReadPump(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypePing:
			return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		default:
			reply, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{
				Code:    ws.ErrCodeUnsupportedMessage,
				Message: fmt.Sprintf("unsupported message type %q", msg.Type),
			})
			if err != nil {
				return err
			}
			reply.RequestID = msg.RequestID
			return conn.Send(reply)
		}
	})
	h.hub.UnregisterConnection(claims.Email, conn)
}
