package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	list := []*Bookmark{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Minute)},
		{ID: "b", CreatedAt: base},
	}

	SortNewestFirst(list)

	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestBookmarkClone(t *testing.T) {
	deleted := time.Now()
	b := &Bookmark{ID: "1", Title: "Go", DeletedAt: &deleted}

	c := b.Clone()
	c.Title = "Rust"
	*c.DeletedAt = deleted.Add(time.Hour)

	assert.Equal(t, "Go", b.Title)
	assert.Equal(t, deleted, *b.DeletedAt)
}

func TestBookmarkPatch(t *testing.T) {
	title := "New"
	p := BookmarkPatch{Title: &title}
	b := &Bookmark{Title: "Old", URL: "https://example.com/"}

	assert.False(t, p.IsEmpty())
	p.Apply(b)

	assert.Equal(t, "New", b.Title)
	assert.Equal(t, "https://example.com/", b.URL)
	assert.True(t, BookmarkPatch{}.IsEmpty())
}
