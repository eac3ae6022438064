package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/handlers"
	"github.com/Totarae/bookmarks/internal/oauth"
	"github.com/Totarae/bookmarks/internal/router"
	"github.com/Totarae/bookmarks/internal/service"
	"github.com/Totarae/bookmarks/internal/storage"
	"github.com/Totarae/bookmarks/internal/web"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.Sessions) {
	t.Helper()
	store, err := storage.NewMemoryStore("", nil)
	require.NoError(t, err)
	hub := feed.NewHub()
	sessions := auth.New("router-secret")
	svc := service.NewBookmarkService(store, hub, nil)
	provider := oauth.NewProvider(oauth.Config{ClientID: "id", RedirectURL: "http://localhost/auth/callback"})

	h := handlers.NewHandler(svc, sessions, provider, hub, zap.NewNop(), nil)
	pages, err := web.New(svc, sessions, zap.NewNop())
	require.NoError(t, err)
	return router.NewRouter(h, pages, sessions, zap.NewNop()), sessions
}

func TestRouter_Routes(t *testing.T) {
	r, sessions := newTestRouter(t)
	token, _, err := sessions.SignToken("11111111-1111-4111-8111-111111111111", "", "")
	require.NoError(t, err)
	cookie := &http.Cookie{Name: auth.CookieName, Value: token}

	tests := []struct {
		method, path, body string
		signed             bool
		want               int
	}{
		{http.MethodGet, "/ping", "", false, http.StatusOK},
		{http.MethodGet, "/api/bookmarks", "", false, http.StatusUnauthorized},
		{http.MethodGet, "/api/bookmarks", "", true, http.StatusOK},
		{http.MethodPost, "/api/bookmarks", `{"title":"a","url":"a.com"}`, true, http.StatusCreated},
		{http.MethodGet, "/api/bookmarks/deleted", "", true, http.StatusOK},
		{http.MethodPatch, "/api/bookmarks/nope", `{"title":"x"}`, true, http.StatusBadRequest},
		{http.MethodPost, "/api/auth/signout", "", false, http.StatusOK},
		{http.MethodGet, "/auth/login", "", false, http.StatusTemporaryRedirect},
		{http.MethodGet, "/auth/callback", "", false, http.StatusTemporaryRedirect},
		{http.MethodGet, "/", "", false, http.StatusOK},
		{http.MethodGet, "/", "", true, http.StatusSeeOther},
		{http.MethodGet, "/homepage", "", false, http.StatusSeeOther},
		{http.MethodGet, "/homepage", "", true, http.StatusOK},
		{http.MethodPost, "/actions/signout", "", false, http.StatusSeeOther},
		{http.MethodGet, "/missing", "", false, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			if tt.signed {
				req.AddCookie(cookie)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
