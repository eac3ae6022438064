package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/apperr"
	"github.com/Totarae/bookmarks/internal/auth"
)

// AddBookmark POST /actions/bookmarks/add. Ошибки отдаются простым текстом.
func (s *Web) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		s.fail(w, apperr.Unauthorized())
		return
	}
	if err := r.ParseForm(); err != nil {
		s.fail(w, apperr.Validation("Invalid form"))
		return
	}
	if _, err := s.Service.Create(r.Context(), userID, r.PostForm.Get("title"), r.PostForm.Get("url")); err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, "/homepage", http.StatusSeeOther)
}

// DeleteBookmark POST /actions/bookmarks/delete. Закладка уходит в корзину.
func (s *Web) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		s.fail(w, apperr.Unauthorized())
		return
	}
	if err := r.ParseForm(); err != nil {
		s.fail(w, apperr.Validation("Invalid form"))
		return
	}
	if _, err := s.Service.Delete(r.Context(), userID, r.PostForm.Get("id")); err != nil {
		s.fail(w, err)
		return
	}
	http.Redirect(w, r, "/homepage", http.StatusSeeOther)
}

// SignOut POST /actions/signout.
func (s *Web) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.SignOut(w, r); err != nil {
		s.Logger.Error("Sign out failed", zap.Error(err))
		s.fail(w, apperr.Store("Failed to sign out", err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Web) fail(w http.ResponseWriter, err error) {
	http.Error(w, apperr.Message(err), apperr.HTTPStatus(err))
}
