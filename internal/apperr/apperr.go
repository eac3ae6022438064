// Package apperr описывает категории ошибок приложения и их отображение в HTTP.
package apperr

import (
	"errors"
	"net/http"
)

// Kind категория ошибки.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindStore
)

// Error ошибка с категорией и сообщением, безопасным для клиента.
// Err хранит исходную причину и в ответ не попадает.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation ошибка входных данных (400).
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Unauthorized отсутствие сессии (401).
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Not authenticated"}
}

// NotFound закладка не найдена или принадлежит другому пользователю (404).
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Bookmark not found"}
}

// Store сбой хранилища (500). msg уходит клиенту, err только в лог.
func Store(msg string, err error) *Error {
	return &Error{Kind: KindStore, Message: msg, Err: err}
}

// KindOf возвращает категорию ошибки; для посторонних ошибок KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message возвращает текст для клиента без деталей причины.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus сопоставляет ошибку с кодом ответа.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
