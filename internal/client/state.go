package client

import (
	"slices"

	"github.com/Totarae/bookmarks/internal/model"
)

// EventKind вид события редьюсера.
type EventKind int

const (
	// SnapshotLoaded полный список активных закладок (начальная загрузка или перечитывание).
	SnapshotLoaded EventKind = iota
	// RowUpserted строка добавлена или изменена.
	RowUpserted
	// RowRemoved строка ушла из активного списка.
	RowRemoved
)

// Event вход редьюсера.
type Event struct {
	Kind EventKind
	Rows []*model.Bookmark // SnapshotLoaded
	Row  *model.Bookmark   // RowUpserted
	ID   string            // RowRemoved
}

// State активные закладки, новые первыми, без повторов id.
type State struct {
	Bookmarks []*model.Bookmark
}

// Apply единственная функция слияния: и для снимков, и для событий ленты.
// Исходное состояние не меняется.
func Apply(s State, e Event) State {
	switch e.Kind {
	case SnapshotLoaded:
		rows := make([]*model.Bookmark, 0, len(e.Rows))
		seen := make(map[string]struct{}, len(e.Rows))
		for _, b := range e.Rows {
			if b == nil || b.IsDeleted() {
				continue
			}
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
			rows = append(rows, b.Clone())
		}
		model.SortNewestFirst(rows)
		return State{Bookmarks: rows}

	case RowUpserted:
		if e.Row == nil {
			return s
		}
		if e.Row.IsDeleted() {
			return Apply(s, Event{Kind: RowRemoved, ID: e.Row.ID})
		}
		rows := slices.DeleteFunc(slices.Clone(s.Bookmarks), func(b *model.Bookmark) bool {
			return b.ID == e.Row.ID
		})
		rows = append(rows, e.Row.Clone())
		model.SortNewestFirst(rows)
		return State{Bookmarks: rows}

	case RowRemoved:
		return State{Bookmarks: slices.DeleteFunc(slices.Clone(s.Bookmarks), func(b *model.Bookmark) bool {
			return b.ID == e.ID
		})}
	}
	return s
}

// EventFromChange переводит изменение ленты в событие редьюсера.
func EventFromChange(c model.Change) Event {
	if c.Record == nil {
		return Event{Kind: RowRemoved}
	}
	switch c.Type {
	case model.ChangeDelete:
		return Event{Kind: RowRemoved, ID: c.Record.ID}
	default:
		return Event{Kind: RowUpserted, Row: c.Record}
	}
}
