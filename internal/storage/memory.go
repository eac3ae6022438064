package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/model"
)

// MemoryStore потокобезопасное хранилище закладок в памяти.
// Если задан файл, каждое изменение дописывается в него строкой JSON,
// а при старте записи загружаются обратно (последняя версия побеждает).
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]*model.Bookmark
	file   string
	now    func() time.Time
	logger *zap.Logger
}

// Option настраивает MemoryStore.
type Option func(*MemoryStore)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore создаёт хранилище. Пустой file отключает запись на диск.
func NewMemoryStore(file string, logger *zap.Logger, opts ...Option) (*MemoryStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{
		data:   make(map[string]*model.Bookmark),
		file:   file,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.loadFromFile(); err != nil {
		return nil, fmt.Errorf("load bookmarks from %s: %w", file, err)
	}
	return s, nil
}

// Create вставляет новую закладку.
func (s *MemoryStore) Create(_ context.Context, userID, title, url string) (*model.Bookmark, error) {
	b := &model.Bookmark{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		URL:       url,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commit(b); err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

// ListActive возвращает активные закладки пользователя.
func (s *MemoryStore) ListActive(_ context.Context, userID string) ([]*model.Bookmark, error) {
	return s.list(userID, false), nil
}

// ListDeleted возвращает удалённые закладки пользователя.
func (s *MemoryStore) ListDeleted(_ context.Context, userID string) ([]*model.Bookmark, error) {
	return s.list(userID, true), nil
}

// Update применяет patch к закладке пользователя.
func (s *MemoryStore) Update(_ context.Context, userID, id string, patch model.BookmarkPatch) (*model.Bookmark, error) {
	return s.mutate(userID, id, func(b *model.Bookmark) {
		patch.Apply(b)
	})
}

// SoftDelete помечает закладку удалённой; повторный вызов сохраняет первую метку.
func (s *MemoryStore) SoftDelete(_ context.Context, userID, id string) (*model.Bookmark, error) {
	return s.mutate(userID, id, func(b *model.Bookmark) {
		if b.DeletedAt == nil {
			now := s.now().UTC()
			b.DeletedAt = &now
		}
	})
}

// Restore возвращает закладку из корзины.
func (s *MemoryStore) Restore(_ context.Context, userID, id string) (*model.Bookmark, error) {
	return s.mutate(userID, id, func(b *model.Bookmark) {
		b.DeletedAt = nil
	})
}

// Ping всегда успешен.
func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) list(userID string, deleted bool) []*model.Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Bookmark, 0)
	for _, b := range s.data {
		if b.UserID == userID && b.IsDeleted() == deleted {
			result = append(result, b.Clone())
		}
	}
	model.SortNewestFirst(result)
	return result
}

// mutate меняет копию записи и сохраняет её только после успешной записи в файл.
func (s *MemoryStore) mutate(userID, id string, fn func(b *model.Bookmark)) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[id]
	if !ok || current.UserID != userID {
		return nil, ErrNotFound
	}

	next := current.Clone()
	fn(next)
	if err := s.commit(next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

// commit вызывается под s.mu.
func (s *MemoryStore) commit(b *model.Bookmark) error {
	if err := s.appendToFile(b); err != nil {
		return fmt.Errorf("persist bookmark %s: %w", b.ID, err)
	}
	s.data[b.ID] = b
	return nil
}

func (s *MemoryStore) loadFromFile() error {
	if s.file == "" {
		return nil
	}
	file, err := os.Open(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var b model.Bookmark
		if err := json.Unmarshal(scanner.Bytes(), &b); err != nil || b.ID == "" {
			s.logger.Warn("skipping malformed bookmark record",
				zap.String("file", s.file), zap.Int("line", line), zap.Error(err))
			continue
		}
		s.data[b.ID] = &b
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.logger.Info("bookmarks loaded from file",
		zap.String("file", s.file), zap.Int("count", len(s.data)))
	return nil
}

func (s *MemoryStore) appendToFile(b *model.Bookmark) error {
	if s.file == "" {
		return nil
	}
	file, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}
