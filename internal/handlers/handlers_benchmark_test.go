package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/handlers"
	"github.com/Totarae/bookmarks/internal/service"
	"github.com/Totarae/bookmarks/internal/storage"
)

func setupBenchHandler(b *testing.B) (*handlers.Handler, context.Context) {
	b.Helper()
	store, err := storage.NewMemoryStore("", nil)
	if err != nil {
		b.Fatal(err)
	}
	hub := feed.NewHub()
	h := handlers.NewHandler(service.NewBookmarkService(store, hub, nil), auth.New("bench-secret"), nil, hub, nil, nil)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: alice})
	return h, ctx
}

func BenchmarkCreateBookmark(b *testing.B) {
	h, ctx := setupBenchHandler(b)
	body := `{"title":"Bench","url":"example.com/bench"}`

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookmarks", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		h.CreateBookmark(rec, req)
	}
}

func BenchmarkListBookmarks(b *testing.B) {
	h, ctx := setupBenchHandler(b)
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookmarks", strings.NewReader(`{"title":"t","url":"example.com"}`)).WithContext(ctx)
		h.CreateBookmark(httptest.NewRecorder(), req)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil).WithContext(ctx)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		h.ListBookmarks(rec, req)
	}
}
