package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/handlers"
	"github.com/Totarae/bookmarks/internal/model"
	"github.com/Totarae/bookmarks/internal/service"
	"github.com/Totarae/bookmarks/internal/storage"
)

// ExampleHandler_CreateBookmark демонстрирует создание закладки: схема добавляется к url.
func ExampleHandler_CreateBookmark() {
	store, _ := storage.NewMemoryStore("", nil)
	hub := feed.NewHub()
	sessions := auth.New("example-secret")
	h := handlers.NewHandler(service.NewBookmarkService(store, hub, nil), sessions, nil, hub, nil, nil)

	body := `{"title":"Example","url":"example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookmarks", strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(context.Background(), auth.Identity{UserID: "11111111-1111-4111-8111-111111111111"}))
	rec := httptest.NewRecorder()

	h.CreateBookmark(rec, req)
	resp := rec.Result()
	defer resp.Body.Close()

	var env model.Envelope[model.Bookmark]
	_ = json.NewDecoder(resp.Body).Decode(&env)

	fmt.Println(resp.StatusCode)
	fmt.Println(env.Message)
	fmt.Println(env.Data.URL)

	// Output:
	// 201
	// Bookmark created
	// https://example.com/
}
