package model

// Статусы конверта ответа.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope единый формат ответа API: {status, message, data?}.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// OK проверяет, что сервер вернул успех.
func (e Envelope[T]) OK() bool {
	return e.Status == StatusSuccess
}
