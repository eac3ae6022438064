package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/handlers"
	"github.com/Totarae/bookmarks/internal/oauth"
	"github.com/Totarae/bookmarks/internal/router"
	"github.com/Totarae/bookmarks/internal/service"
	"github.com/Totarae/bookmarks/internal/storage"
	"github.com/Totarae/bookmarks/internal/web"
)

const userID = "22222222-2222-4222-8222-222222222222"

func startServer(t *testing.T) (url, token string) {
	t.Helper()
	store, err := storage.NewMemoryStore("", nil)
	require.NoError(t, err)
	hub := feed.NewHub()
	t.Cleanup(hub.Close)
	sessions := auth.New("cli-secret")
	svc := service.NewBookmarkService(store, hub, nil)
	h := handlers.NewHandler(svc, sessions, oauth.NewProvider(oauth.Config{}), hub, nil, nil)
	pages, err := web.New(svc, sessions, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(router.NewRouter(h, pages, sessions, nil))
	t.Cleanup(srv.Close)

	token, _, err = sessions.SignToken(userID, "Cli", "cli@example.com")
	require.NoError(t, err)
	return srv.URL, token
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands_Flow(t *testing.T) {
	url, token := startServer(t)
	base := []string{"--server", url, "--session", token}

	out, err := run(t, "", append(base, "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "No bookmarks.")

	out, err = run(t, "", append(base, "add", "Go", "go.dev")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmark created: Go https://go.dev")

	out, err = run(t, "", append(base, "--json", "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"url": "https://go.dev"`)

	out, err = run(t, "", append(base, "list")...)
	require.NoError(t, err)
	id := strings.Fields(out)[0]
	require.Len(t, id, 36)

	out, err = run(t, "", append(base, "edit", id, "--title", "Golang")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmark updated: Golang")

	out, err = run(t, "n\n", append(base, "delete", id)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = run(t, "y\n", append(base, "delete", id)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmark deleted")

	out, err = run(t, "", append(base, "deleted")...)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, "", append(base, "restore", id)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Bookmark restored: Golang")

	out, err = run(t, "", append(base, "--yes", "signout")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = run(t, "", append(base, "list")...)
	require.Error(t, err)
}

func TestCommands_Errors(t *testing.T) {
	url, token := startServer(t)

	_, err := run(t, "", "--server", url, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401: Not authenticated")

	_, err = run(t, "", "--server", url, "--session", token, "add", "", "x.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Title is required")

	_, err = run(t, "", "--server", url, "--session", token, "add", "only-title")
	require.Error(t, err)
}
