package model

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Bookmark запись таблицы bookmarks.
type Bookmark struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// IsDeleted сообщает, находится ли закладка в корзине.
func (b *Bookmark) IsDeleted() bool {
	return b.DeletedAt != nil
}

// Clone возвращает независимую копию записи.
func (b *Bookmark) Clone() *Bookmark {
	c := *b
	if b.DeletedAt != nil {
		t := *b.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// BookmarkPatch частичное изменение закладки; nil означает «не менять».
type BookmarkPatch struct {
	Title *string `json:"title,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// IsEmpty true, если ни одно поле не задано.
func (p BookmarkPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil
}

// Apply применяет изменение к записи.
func (p BookmarkPatch) Apply(b *Bookmark) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.URL != nil {
		b.URL = *p.URL
	}
}

// CompareNewestFirst порядок выдачи списков: created_at по убыванию, затем id.
func CompareNewestFirst(a, b *Bookmark) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// SortNewestFirst сортирует список на месте.
func SortNewestFirst(list []*Bookmark) {
	slices.SortFunc(list, CompareNewestFirst)
}

// CreateBookmarkRequest тело POST /api/bookmarks.
type CreateBookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Trimmed возвращает поля без окружающих пробелов.
func (r CreateBookmarkRequest) Trimmed() (title, url string) {
	return strings.TrimSpace(r.Title), strings.TrimSpace(r.URL)
}
