package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Totarae/bookmarks/internal/oauth"
)

func fakeProvider(t *testing.T, userinfo map[string]any, userinfoStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userinfoStatus)
		_ = json.NewEncoder(w).Encode(userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(srv *httptest.Server) *oauth.Provider {
	return oauth.NewProvider(oauth.Config{
		Provider:     "test",
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		AuthURL:      srv.URL + "/auth",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
	})
}

func TestAuthCodeURL(t *testing.T) {
	p := oauth.NewProvider(oauth.Config{ClientID: "client", RedirectURL: "http://localhost/cb"})
	u, err := url.Parse(p.AuthCodeURL("state-1"))
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func TestExchange(t *testing.T) {
	srv := fakeProvider(t, map[string]any{"sub": "42", "email": "a@example.com", "name": "Alice"}, http.StatusOK)

	ident, err := newProvider(srv).Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "42", ident.Subject)
	assert.Equal(t, "a@example.com", ident.Email)
	assert.Equal(t, "Alice", ident.Name)
	assert.Equal(t, "test", ident.Provider)
}

func TestExchange_NumericID(t *testing.T) {
	srv := fakeProvider(t, map[string]any{"id": 1001, "name": "Bob"}, http.StatusOK)

	ident, err := newProvider(srv).Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "1001", ident.Subject)
}

func TestExchange_Errors(t *testing.T) {
	t.Run("empty code", func(t *testing.T) {
		srv := fakeProvider(t, nil, http.StatusOK)
		_, err := newProvider(srv).Exchange(context.Background(), " ")
		assert.ErrorIs(t, err, oauth.ErrMissingCode)
	})
	t.Run("rejected code", func(t *testing.T) {
		srv := fakeProvider(t, nil, http.StatusOK)
		_, err := newProvider(srv).Exchange(context.Background(), "bad-code")
		assert.Error(t, err)
	})
	t.Run("userinfo failure", func(t *testing.T) {
		srv := fakeProvider(t, map[string]any{}, http.StatusInternalServerError)
		_, err := newProvider(srv).Exchange(context.Background(), "good-code")
		assert.Error(t, err)
	})
	t.Run("no subject", func(t *testing.T) {
		srv := fakeProvider(t, map[string]any{"email": "x@example.com"}, http.StatusOK)
		_, err := newProvider(srv).Exchange(context.Background(), "good-code")
		assert.Error(t, err)
	})
}

func TestIdentity_UserID(t *testing.T) {
	a := oauth.Identity{Provider: "google", Subject: "42"}
	b := oauth.Identity{Provider: "google", Subject: "42", Name: "other"}
	c := oauth.Identity{Provider: "github", Subject: "42"}

	assert.Equal(t, a.UserID(), b.UserID())
	assert.NotEqual(t, a.UserID(), c.UserID())
	assert.Len(t, a.UserID(), 36)
}
