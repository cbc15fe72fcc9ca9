package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"truthlens/database"
	"truthlens/logger"
	"truthlens/models"
	"truthlens/services"
)

// HeadlineStore accepts editor-curated trending headlines.
type HeadlineStore interface {
	AddCuratedHeadline(ctx context.Context, a models.TrendingArticle) error
}

type AdminHandler struct {
	token     string
	quotas    *services.QuotaTracker
	logs      *logger.Broadcaster
	headlines HeadlineStore
}

func NewAdminHandler(token string, quotas *services.QuotaTracker, logs *logger.Broadcaster, headlines HeadlineStore) *AdminHandler {
	return &AdminHandler{token: token, quotas: quotas, logs: logs, headlines: headlines}
}

// authorized compares in constant time. Without a configured token the
// admin API is closed.
func (h *AdminHandler) authorized(got string) bool {
	return h.token != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}

// AuthMiddleware checks the X-Admin-Token header.
func (h *AdminHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r.Header.Get("X-Admin-Token")) {
			writeFailure(w, http.StatusUnauthorized, "", "Unauthorized")
			return
		}
		next(w, r)
	}
}

// Limits - GET /api/admin/limits, the last upstream rate-limit headers per
// model.
func (h *AdminHandler) Limits(w http.ResponseWriter, r *http.Request) {
	writeData(w, "", h.quotas.Snapshot())
}

// AddHeadline - POST /api/admin/headlines
func (h *AdminHandler) AddHeadline(w http.ResponseWriter, r *http.Request) {
	var a models.TrendingArticle
	if err := decodeJSON(r, &a); err != nil {
		writeFailure(w, http.StatusBadRequest, "", "Invalid JSON body")
		return
	}
	a.Title = strings.TrimSpace(a.Title)
	a.Link = strings.TrimSpace(a.Link)
	if a.Title == "" || a.Link == "" {
		writeFailure(w, http.StatusBadRequest, "", "title and link are required")
		return
	}
	if h.headlines == nil {
		writeFailure(w, http.StatusServiceUnavailable, "", "Database not available")
		return
	}
	if err := h.headlines.AddCuratedHeadline(r.Context(), a); err != nil {
		if errors.Is(err, database.ErrDisabled) {
			writeFailure(w, http.StatusServiceUnavailable, "", "Database not available")
			return
		}
		writeError(w, r, "", err)
		return
	}
	log.Printf("[ADMIN] ✓ Curated headline added: %s", a.Title)
	writeData(w, "", a)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamLogs - GET /api/admin/logs?token=, the live process log over a
// websocket.
func (h *AdminHandler) StreamLogs(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r.URL.Query().Get("token")) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ADMIN] WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	logsChan := h.logs.Subscribe()
	defer h.logs.Unsubscribe(logsChan)

	done := make(chan struct{})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	for {
		select {
		case msg := <-logsChan:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
