package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	stateCookie = "bm_oauth_state"
	stateTTL    = 600
)

// SignIn GET /auth/login: ставит куку с state и уводит на страницу провайдера.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   stateTTL,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.Auth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// AuthCallback GET /auth/callback: завершает вход. Любая ошибка только логируется,
// ответ всегда редирект на /.
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/", http.StatusTemporaryRedirect)

	if msg := r.URL.Query().Get("error"); msg != "" {
		h.Logger.Info("OAuth provider returned error", zap.String("error", msg))
		return
	}

	cookie, err := r.Cookie(stateCookie)
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth", MaxAge: -1, HttpOnly: true})
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		h.Logger.Warn("OAuth state mismatch")
		return
	}

	ident, err := h.Auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.Logger.Warn("OAuth code exchange failed", zap.Error(err))
		return
	}

	userID := ident.UserID()
	if _, err := h.Sessions.Issue(w, userID, ident.Name, ident.Email); err != nil {
		h.Logger.Error("Failed to issue session", zap.Error(err))
		return
	}
	h.Logger.Info("User signed in", zap.String("user_id", userID), zap.String("provider", ident.Provider))
}
