// Package storage описывает клиент хранилища закладок и его реализацию в памяти.
package storage

import (
	"context"
	"errors"

	"github.com/Totarae/bookmarks/internal/model"
)

// ErrNotFound запись не существует или принадлежит другому пользователю.
var ErrNotFound = errors.New("bookmark not found")

// Store CRUD над таблицей закладок. Каждый вызов ограничен строками userID.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks github.com/Totarae/bookmarks/internal/storage Store
type Store interface {
	// Create вставляет новую активную закладку.
	Create(ctx context.Context, userID, title, url string) (*model.Bookmark, error)
	// ListActive возвращает закладки без deleted_at, новые первыми.
	ListActive(ctx context.Context, userID string) ([]*model.Bookmark, error)
	// ListDeleted возвращает закладки из корзины, новые первыми.
	ListDeleted(ctx context.Context, userID string) ([]*model.Bookmark, error)
	// Update меняет title и/или url.
	Update(ctx context.Context, userID, id string, patch model.BookmarkPatch) (*model.Bookmark, error)
	// SoftDelete выставляет deleted_at, если он ещё не выставлен.
	SoftDelete(ctx context.Context, userID, id string) (*model.Bookmark, error)
	// Restore очищает deleted_at.
	Restore(ctx context.Context, userID, id string) (*model.Bookmark, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
