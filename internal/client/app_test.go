package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/client"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/handlers"
	"github.com/Totarae/bookmarks/internal/model"
	"github.com/Totarae/bookmarks/internal/oauth"
	"github.com/Totarae/bookmarks/internal/router"
	"github.com/Totarae/bookmarks/internal/service"
	"github.com/Totarae/bookmarks/internal/storage"
	"github.com/Totarae/bookmarks/internal/web"
)

const alice = "11111111-1111-4111-8111-111111111111"

type server struct {
	url      string
	sessions *auth.Sessions
	hub      *feed.Hub
}

func newServer(t *testing.T) *server {
	t.Helper()
	store, err := storage.NewMemoryStore("", nil)
	require.NoError(t, err)
	hub := feed.NewHub()
	sessions := auth.New("client-secret")
	svc := service.NewBookmarkService(store, hub, nil)
	h := handlers.NewHandler(svc, sessions, oauth.NewProvider(oauth.Config{}), hub, nil, nil)
	pages, err := web.New(svc, sessions, nil)
	require.NoError(t, err)

	srv := httptest.NewServer(router.NewRouter(h, pages, sessions, nil))
	t.Cleanup(srv.Close)
	return &server{url: srv.URL, sessions: sessions, hub: hub}
}

func (s *server) api(t *testing.T, userID string) *client.API {
	t.Helper()
	token := ""
	if userID != "" {
		var err error
		token, _, err = s.sessions.SignToken(userID, "", "")
		require.NoError(t, err)
	}
	api, err := client.NewAPI(s.url, token, nil)
	require.NoError(t, err)
	return api
}

func TestAPI_Lifecycle(t *testing.T) {
	srv := newServer(t)
	api := srv.api(t, alice)
	ctx := context.Background()

	b, err := api.Create(ctx, "Example", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", b.URL)
	assert.Equal(t, alice, b.UserID)

	title := "Renamed"
	b, err = api.Update(ctx, b.ID, &title, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", b.Title)

	b, err = api.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, b.IsDeleted())

	deleted, err := api.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	_, err = api.Restore(ctx, b.ID)
	require.NoError(t, err)
	list, err := api.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAPI_Errors(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	_, err := srv.api(t, "").List(ctx)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "Not authenticated", apiErr.Message)

	_, err = srv.api(t, alice).Create(ctx, "", "x.com")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "Title is required", apiErr.Message)

	_, err = srv.api(t, "").DialChanges(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestNewAPI_RejectsScheme(t *testing.T) {
	_, err := client.NewAPI("ftp://example.com", "", nil)
	assert.Error(t, err)
}

func TestApp_CreateRefreshes(t *testing.T) {
	srv := newServer(t)
	api := srv.api(t, alice)
	ctx := context.Background()

	// запись, созданная другим клиентом, появляется после перечитывания
	_, err := srv.api(t, alice).Create(ctx, "First", "first.com")
	require.NoError(t, err)

	app := client.NewApp(api, nil, nil, nil)
	_, err = app.Create(ctx, "Second", "second.com")
	require.NoError(t, err)

	titles := []string{}
	for _, b := range app.Bookmarks() {
		titles = append(titles, b.Title)
	}
	assert.ElementsMatch(t, []string{"First", "Second"}, titles)
}

func TestApp_DeleteAsksConfirmation(t *testing.T) {
	srv := newServer(t)
	api := srv.api(t, alice)
	ctx := context.Background()
	b, err := api.Create(ctx, "Example", "example.com")
	require.NoError(t, err)

	var prompts []string
	answer := false
	confirm := client.ConfirmFunc(func(p string) bool {
		prompts = append(prompts, p)
		return answer
	})
	app := client.NewApp(api, confirm, []*model.Bookmark{b}, nil)

	done, err := app.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Len(t, app.Bookmarks(), 1)

	answer = true
	done, err = app.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Empty(t, app.Bookmarks())
	assert.Equal(t, []string{client.DeletePrompt, client.DeletePrompt}, prompts)
}

func TestApp_SignOut(t *testing.T) {
	srv := newServer(t)
	api := srv.api(t, alice)
	ctx := context.Background()

	var prompt string
	app := client.NewApp(api, client.ConfirmFunc(func(p string) bool { prompt = p; return true }), nil, nil)
	done, err := app.SignOut(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, client.SignOutPrompt, prompt)

	_, err = api.List(ctx)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestApp_WatchAppliesPushedChanges(t *testing.T) {
	srv := newServer(t)
	api := srv.api(t, alice)
	other := srv.api(t, alice)

	app := client.NewApp(api, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan model.Change, 8)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- app.Watch(ctx, func(c model.Change, _ client.State) { changes <- c })
	}()
	require.Eventually(t, func() bool { return srv.hub.Count(alice) == 1 }, 2*time.Second, 10*time.Millisecond)

	b, err := other.Create(context.Background(), "Pushed", "pushed.com")
	require.NoError(t, err)
	waitChange(t, changes, model.ChangeInsert)
	require.Len(t, app.Bookmarks(), 1)
	assert.Equal(t, "Pushed", app.Bookmarks()[0].Title)

	_, err = other.Delete(context.Background(), b.ID)
	require.NoError(t, err)
	waitChange(t, changes, model.ChangeDelete)
	assert.Empty(t, app.Bookmarks())

	_, err = other.Restore(context.Background(), b.ID)
	require.NoError(t, err)
	waitChange(t, changes, model.ChangeRestore)
	assert.Len(t, app.Bookmarks(), 1)

	cancel()
	select {
	case err := <-watchErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func waitChange(t *testing.T, ch <-chan model.Change, want model.ChangeType) {
	t.Helper()
	select {
	case c := <-ch:
		assert.Equal(t, want, c.Type)
	case <-time.After(2 * time.Second):
		t.Fatalf("no %s change", want)
	}
}
