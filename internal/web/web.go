// Package web серверные страницы и действия форм.
package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/apperr"
	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// BookmarkService операции, которые нужны страницам и формам.
type BookmarkService interface {
	List(ctx context.Context, userID string) ([]*model.Bookmark, error)
	Create(ctx context.Context, userID, title, rawURL string) (*model.Bookmark, error)
	Delete(ctx context.Context, userID, id string) (*model.Bookmark, error)
}

// Web страницы и действия форм.
type Web struct {
	Service  BookmarkService
	Sessions *auth.Sessions
	Logger   *zap.Logger
	tmpl     *template.Template
}

func New(service BookmarkService, sessions *auth.Sessions, logger *zap.Logger) (*Web, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Web{Service: service, Sessions: sessions, Logger: logger, tmpl: tmpl}, nil
}

type landingData struct {
	Title string
}

type homepageData struct {
	Title     string
	UserID    string
	Name      string
	Bookmarks []*model.Bookmark
}

// Landing GET /. Вошедшего пользователя отправляет на /homepage.
func (s *Web) Landing(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/homepage", http.StatusSeeOther)
		return
	}
	s.render(w, "landing", landingData{Title: "Smart Bookmark App"})
}

// Homepage GET /homepage: активные закладки и формы.
func (s *Web) Homepage(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	list, err := s.Service.List(r.Context(), ident.UserID)
	if err != nil {
		http.Error(w, apperr.Message(err), apperr.HTTPStatus(err))
		return
	}
	s.render(w, "homepage", homepageData{
		Title:     "Bookmarks",
		UserID:    ident.UserID,
		Name:      ident.Name,
		Bookmarks: list,
	})
}

func (s *Web) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.Logger.Error("Template render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
