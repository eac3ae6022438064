// Package feed доставляет изменения закладок открытым клиентам их владельца.
package feed

import (
	"context"
	"sync"

	"github.com/Totarae/bookmarks/internal/model"
)

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks github.com/Totarae/bookmarks/internal/feed Publisher

// Publisher публикует изменение в ленту.
type Publisher interface {
	Publish(ctx context.Context, change model.Change) error
}

const subscriberBuffer = 64

// Subscriber подписка одного клиента на изменения пользователя.
type Subscriber struct {
	hub    *Hub
	userID string
	ch     chan model.Change
	once   sync.Once
}

// Changes канал изменений. Закрывается при отписке или если клиент не успевает читать.
func (s *Subscriber) Changes() <-chan model.Change {
	return s.ch
}

// Close отписывает клиента. Повторный вызов безопасен.
func (s *Subscriber) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}

// Hub рассылает изменения подписчикам в пределах процесса.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscriber]struct{}
	closed bool
}

// NewHub создаёт пустой Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe подписывает на изменения пользователя userID.
func (h *Hub) Subscribe(userID string) *Subscriber {
	s := &Subscriber{hub: h, userID: userID, ch: make(chan model.Change, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscriber]struct{})
	}
	h.subs[userID][s] = struct{}{}
	return s
}

// Publish отдаёт изменение всем подпискам его владельца.
// Подписчик с заполненным буфером отключается.
func (h *Hub) Publish(_ context.Context, change model.Change) error {
	h.mu.RLock()
	var slow []*Subscriber
	for s := range h.subs[change.UserID] {
		select {
		case s.ch <- change:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		s.Close()
	}
	return nil
}

// Count число активных подписок пользователя.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close закрывает все подписки; новые сразу получают закрытый канал.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for userID, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, userID)
	}
}

func (h *Hub) remove(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.userID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.ch)
	if len(set) == 0 {
		delete(h.subs, s.userID)
	}
}
