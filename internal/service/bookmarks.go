// Package service проверяет входные данные, обращается к хранилищу
// и публикует изменения закладок в ленту.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/apperr"
	"github.com/Totarae/bookmarks/internal/feed"
	"github.com/Totarae/bookmarks/internal/model"
	"github.com/Totarae/bookmarks/internal/storage"
	"github.com/Totarae/bookmarks/internal/urlnorm"
)

const (
	msgFetchFailed   = "Failed to fetch bookmarks"
	msgCreateFailed  = "Failed to create bookmark"
	msgUpdateFailed  = "Failed to update bookmark"
	msgDeleteFailed  = "Failed to delete bookmark"
	msgRestoreFailed = "Failed to restore bookmark"
)

type BookmarkService struct {
	Store  storage.Store
	Feed   feed.Publisher
	Logger *zap.Logger
	now    func() time.Time
}

func NewBookmarkService(store storage.Store, publisher feed.Publisher, logger *zap.Logger) *BookmarkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookmarkService{
		Store:  store,
		Feed:   publisher,
		Logger: logger,
		now:    time.Now,
	}
}

// List активные закладки пользователя.
func (s *BookmarkService) List(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	if userID == "" {
		return nil, apperr.Unauthorized()
	}
	list, err := s.Store.ListActive(ctx, userID)
	if err != nil {
		return nil, s.storeError(msgFetchFailed, err, userID, "")
	}
	return list, nil
}

// ListDeleted закладки пользователя в корзине.
func (s *BookmarkService) ListDeleted(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	if userID == "" {
		return nil, apperr.Unauthorized()
	}
	list, err := s.Store.ListDeleted(ctx, userID)
	if err != nil {
		return nil, s.storeError(msgFetchFailed, err, userID, "")
	}
	return list, nil
}

// Create проверяет поля, нормализует url и сохраняет закладку.
func (s *BookmarkService) Create(ctx context.Context, userID, title, rawURL string) (*model.Bookmark, error) {
	if userID == "" {
		return nil, apperr.Unauthorized()
	}
	title = strings.TrimSpace(title)
	rawURL = strings.TrimSpace(rawURL)
	if title == "" {
		return nil, apperr.Validation("Title is required")
	}
	if rawURL == "" {
		return nil, apperr.Validation("URL is required")
	}
	normalized, err := urlnorm.Normalize(rawURL)
	if err != nil {
		return nil, apperr.Validation("Invalid URL")
	}

	b, err := s.Store.Create(ctx, userID, title, normalized)
	if err != nil {
		return nil, s.storeError(msgCreateFailed, err, userID, "")
	}
	s.publish(ctx, model.ChangeInsert, b)
	return b, nil
}

// Update меняет переданные непустые поля. Пустые и отсутствующие поля не трогаются.
func (s *BookmarkService) Update(ctx context.Context, userID, id string, title, rawURL *string) (*model.Bookmark, error) {
	if userID == "" {
		return nil, apperr.Unauthorized()
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	var patch model.BookmarkPatch
	if title != nil {
		if t := strings.TrimSpace(*title); t != "" {
			patch.Title = &t
		}
	}
	if rawURL != nil {
		if u := strings.TrimSpace(*rawURL); u != "" {
			normalized, err := urlnorm.Normalize(u)
			if err != nil {
				return nil, apperr.Validation("Invalid URL")
			}
			patch.URL = &normalized
		}
	}
	if patch.IsEmpty() {
		return nil, apperr.Validation("No fields to update")
	}

	b, err := s.Store.Update(ctx, userID, id, patch)
	if err != nil {
		return nil, s.storeError(msgUpdateFailed, err, userID, id)
	}
	s.publish(ctx, model.ChangeUpdate, b)
	return b, nil
}

// Delete переносит закладку в корзину.
func (s *BookmarkService) Delete(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	if userID == "" {
		return nil, apperr.Unauthorized()
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	b, err := s.Store.SoftDelete(ctx, userID, id)
	if err != nil {
		return nil, s.storeError(msgDeleteFailed, err, userID, id)
	}
	s.publish(ctx, model.ChangeDelete, b)
	return b, nil
}

// Restore возвращает закладку из корзины.
func (s *BookmarkService) Restore(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	if userID == "" {
		return nil, apperr.Unauthorized()
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	b, err := s.Store.Restore(ctx, userID, id)
	if err != nil {
		return nil, s.storeError(msgRestoreFailed, err, userID, id)
	}
	s.publish(ctx, model.ChangeRestore, b)
	return b, nil
}

func (s *BookmarkService) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("id is required")
	}
	// только каноническая форма xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
	if len(id) != 36 || uuid.Validate(id) != nil {
		return apperr.Validation("Invalid id")
	}
	return nil
}

func (s *BookmarkService) storeError(msg string, err error, userID, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound()
	}
	s.Logger.Error(msg,
		zap.String("user_id", userID),
		zap.String("bookmark_id", id),
		zap.Error(err),
	)
	return apperr.Store(msg, err)
}

func (s *BookmarkService) publish(ctx context.Context, typ model.ChangeType, b *model.Bookmark) {
	if s.Feed == nil {
		return
	}
	change := model.Change{Type: typ, UserID: b.UserID, Record: b.Clone(), At: s.now().UTC()}
	if err := s.Feed.Publish(ctx, change); err != nil {
		s.Logger.Warn("Failed to publish change",
			zap.String("type", string(typ)),
			zap.String("bookmark_id", b.ID),
			zap.Error(err),
		)
	}
}
