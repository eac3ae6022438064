package model

import "time"

// ChangeType тип события ленты изменений.
type ChangeType string

const (
	ChangeInsert  ChangeType = "INSERT"
	ChangeUpdate  ChangeType = "UPDATE"
	ChangeDelete  ChangeType = "DELETE"
	ChangeRestore ChangeType = "RESTORE"
)

// Change событие об изменении одной закладки пользователя.
type Change struct {
	Type   ChangeType `json:"type"`
	UserID string     `json:"user_id"`
	Record *Bookmark  `json:"record"`
	At     time.Time  `json:"commit_timestamp"`
}
