package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Totarae/bookmarks/internal/database"
	"github.com/Totarae/bookmarks/internal/model"
	"github.com/Totarae/bookmarks/internal/storage"
)

const bookmarkColumns = `id::text, user_id::text, title, url, created_at, deleted_at`

// BookmarkRepository реализует storage.Store поверх PostgreSQL.
// Каждый запрос ограничен user_id вызывающего.
type BookmarkRepository struct {
	DB database.Querier
}

var _ storage.Store = (*BookmarkRepository)(nil)

// NewBookmarkRepository создаёт новый экземпляр BookmarkRepository.
func NewBookmarkRepository(db database.Querier) *BookmarkRepository {
	return &BookmarkRepository{DB: db}
}

// Create сохраняет новую закладку и возвращает строку в том виде, в каком её записала БД.
func (r *BookmarkRepository) Create(ctx context.Context, userID, title, url string) (*model.Bookmark, error) {
	query := `INSERT INTO bookmarks (id, user_id, title, url)
              VALUES ($1, $2, $3, $4)
              RETURNING ` + bookmarkColumns

	b, err := scanBookmark(r.DB.QueryRow(ctx, query, uuid.NewString(), userID, title, url))
	if err != nil {
		return nil, fmt.Errorf("database insert error: %w", err)
	}
	return b, nil
}

// ListActive возвращает закладки пользователя без deleted_at.
func (r *BookmarkRepository) ListActive(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks
              WHERE user_id = $1 AND deleted_at IS NULL
              ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

// ListDeleted возвращает закладки пользователя из корзины.
func (r *BookmarkRepository) ListDeleted(ctx context.Context, userID string) ([]*model.Bookmark, error) {
	query := `SELECT ` + bookmarkColumns + ` FROM bookmarks
              WHERE user_id = $1 AND deleted_at IS NOT NULL
              ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, userID)
}

// Update меняет только переданные поля.
func (r *BookmarkRepository) Update(ctx context.Context, userID, id string, patch model.BookmarkPatch) (*model.Bookmark, error) {
	query := `UPDATE bookmarks
              SET title = COALESCE($3, title), url = COALESCE($4, url)
              WHERE id = $1 AND user_id = $2
              RETURNING ` + bookmarkColumns
	return r.mutate(ctx, "update", query, id, userID, patch.Title, patch.URL)
}

// SoftDelete выставляет deleted_at; уже удалённая запись сохраняет прежнюю метку.
func (r *BookmarkRepository) SoftDelete(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	query := `UPDATE bookmarks
              SET deleted_at = COALESCE(deleted_at, now())
              WHERE id = $1 AND user_id = $2
              RETURNING ` + bookmarkColumns
	return r.mutate(ctx, "soft delete", query, id, userID)
}

// Restore очищает deleted_at.
func (r *BookmarkRepository) Restore(ctx context.Context, userID, id string) (*model.Bookmark, error) {
	query := `UPDATE bookmarks
              SET deleted_at = NULL
              WHERE id = $1 AND user_id = $2
              RETURNING ` + bookmarkColumns
	return r.mutate(ctx, "restore", query, id, userID)
}

// Ping проверяет доступность базы данных.
func (r *BookmarkRepository) Ping(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, "SELECT 1")
	return err
}

// mutate выполняет UPDATE ... RETURNING; ноль строк означает чужую или несуществующую запись.
func (r *BookmarkRepository) mutate(ctx context.Context, op, query string, args ...any) (*model.Bookmark, error) {
	b, err := scanBookmark(r.DB.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("database %s error: %w", op, err)
	}
	return b, nil
}

func (r *BookmarkRepository) list(ctx context.Context, query, userID string) ([]*model.Bookmark, error) {
	rows, err := r.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks by user: %w", err)
	}
	defer rows.Close()

	results := make([]*model.Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return results, nil
}

func scanBookmark(row pgx.Row) (*model.Bookmark, error) {
	b := &model.Bookmark{}
	if err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.URL, &b.CreatedAt, &b.DeletedAt); err != nil {
		return nil, err
	}
	return b, nil
}
