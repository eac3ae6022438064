package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/apperr"
	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/feed"
)

// Changes GET /api/bookmarks/changes: websocket с изменениями закладок текущего пользователя.
func (h *Handler) Changes(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperr.Unauthorized())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.Logger.Debug("Websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.Hub.Subscribe(userID)
	h.Logger.Debug("Change feed subscribed", zap.String("user_id", userID))
	feed.NewClient(conn, sub, h.Logger).Serve()
}
