// Package handlers HTTP API закладок. Все ответы API отдаются в конверте
// {status, message, data?}.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/apperr"
	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/model"
	"github.com/Totarae/bookmarks/internal/oauth"
)

const maxBodySize = 1 << 20

// BookmarkService операции над закладками, которые нужны обработчикам.
type BookmarkService interface {
	List(ctx context.Context, userID string) ([]*model.Bookmark, error)
	ListDeleted(ctx context.Context, userID string) ([]*model.Bookmark, error)
	Create(ctx context.Context, userID, title, rawURL string) (*model.Bookmark, error)
	Update(ctx context.Context, userID, id string, title, rawURL *string) (*model.Bookmark, error)
	Delete(ctx context.Context, userID, id string) (*model.Bookmark, error)
	Restore(ctx context.Context, userID, id string) (*model.Bookmark, error)
	Ping(ctx context.Context) error
}

// Authenticator OAuth-провайдер.
//
//go:generate mockgen -destination=mocks/mock_authenticator.go -package=mocks github.com/Totarae/bookmarks/internal/handlers Authenticator
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (oauth.Identity, error)
}

type Handler struct {
	Service  BookmarkService
	Sessions *auth.Sessions
	Auth     Authenticator
	Hub      *feed.Hub
	Logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler создаёт обработчики. allowedOrigins дополняет same-origin
// проверку websocket-рукопожатия.
func NewHandler(service BookmarkService, sessions *auth.Sessions, authenticator Authenticator, hub *feed.Hub, logger *zap.Logger, allowedOrigins []string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		Service:  service,
		Sessions: sessions,
		Auth:     authenticator,
		Hub:      hub,
		Logger:   logger,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = checkOrigin(allowedOrigins)
	}
	return h
}

func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	list, err := h.Service.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "Bookmarks fetched", nonNil(list))
}

func (h *Handler) ListDeletedBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	list, err := h.Service.ListDeleted(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "Deleted bookmarks fetched", nonNil(list))
}

// CreateBookmark POST /api/bookmarks. Нечитаемое тело считается пустым,
// числа и булевы значения в title и url приводятся к строке.
func (h *Handler) CreateBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperr.Unauthorized())
		return
	}

	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		h.Logger.Debug("Malformed create body", zap.Error(err))
		body = nil
	}

	req := model.CreateBookmarkRequest{Title: scalarField(body, "title"), URL: scalarField(body, "url")}
	title, rawURL := req.Trimmed()
	b, err := h.Service.Create(r.Context(), userID, title, rawURL)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, "Bookmark created", b)
}

// UpdateBookmark PATCH /api/bookmarks/{id}. Учитываются только строковые title и url.
func (h *Handler) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperr.Unauthorized())
		return
	}

	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body); err != nil {
		h.Logger.Debug("Malformed update body", zap.Error(err))
		body = nil
	}

	b, err := h.Service.Update(r.Context(), userID, chi.URLParam(r, "id"), stringField(body, "title"), stringField(body, "url"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "Bookmark updated", b)
}

func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	b, err := h.Service.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "Bookmark deleted", b)
}

func (h *Handler) RestoreBookmark(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	b, err := h.Service.Restore(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, "Bookmark restored", b)
}

// SignOut отзывает сессию. Без сессии тоже отвечает 200.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Logger.Error("Sign out failed", zap.Error(err))
		h.writeError(w, apperr.Store("Failed to sign out", err))
		return
	}
	h.writeJSON(w, http.StatusOK, "Signed out", nil)
}

// Ping проверяет доступность хранилища.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Ping(r.Context()); err != nil {
		h.Logger.Error("Store ping failed", zap.Error(err))
		h.writeError(w, apperr.Store("Store unavailable", err))
		return
	}
	h.writeJSON(w, http.StatusOK, "pong", nil)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := model.Envelope[any]{Status: model.StatusSuccess, Message: message, Data: data}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if apperr.KindOf(err) == apperr.KindInternal {
		h.Logger.Error("Unexpected error", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := model.Envelope[any]{Status: model.StatusError, Message: apperr.Message(err)}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("Failed to encode response", zap.Error(err))
	}
}

func nonNil(list []*model.Bookmark) []*model.Bookmark {
	if list == nil {
		return []*model.Bookmark{}
	}
	return list
}

func stringField(body map[string]any, key string) *string {
	v, ok := body[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// scalarField строковое представление скалярного поля. Объекты, массивы
// и null дают пустую строку.
func scalarField(body map[string]any, key string) string {
	switch v := body[key].(type) {
	case string:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
