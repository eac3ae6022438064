package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/model"
)

const (
	DeletePrompt  = "Delete this bookmark? It will move to Deleted Bookmarks."
	SignOutPrompt = "Sign out?"
)

// Confirmer спрашивает пользователя подтверждение.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc адаптер функции к Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// App клиентское приложение: список закладок и действия над ним.
type App struct {
	api     *API
	confirm Confirmer
	logger  *zap.Logger

	mu    sync.RWMutex
	state State
}

// NewApp создаёт приложение с начальным списком initial.
func NewApp(api *API, confirm Confirmer, initial []*model.Bookmark, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if confirm == nil {
		confirm = ConfirmFunc(func(string) bool { return true })
	}
	return &App{
		api:     api,
		confirm: confirm,
		logger:  logger,
		state:   Apply(State{}, Event{Kind: SnapshotLoaded, Rows: initial}),
	}
}

// Bookmarks копия текущего списка.
func (a *App) Bookmarks() []*model.Bookmark {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.state.Bookmarks)
}

// Dispatch применяет событие к состоянию.
func (a *App) Dispatch(e Event) State {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Apply(a.state, e)
	return a.state
}

// Refresh перечитывает активный список с сервера.
func (a *App) Refresh(ctx context.Context) error {
	list, err := a.api.List(ctx)
	if err != nil {
		return err
	}
	a.Dispatch(Event{Kind: SnapshotLoaded, Rows: list})
	return nil
}

// Create ждёт подтверждения сервера и перечитывает список.
func (a *App) Create(ctx context.Context, title, rawURL string) (*model.Bookmark, error) {
	b, err := a.api.Create(ctx, title, rawURL)
	if err != nil {
		return nil, err
	}
	return b, a.Refresh(ctx)
}

// Delete спрашивает подтверждение, удаляет и перечитывает список.
// false означает, что пользователь отказался.
func (a *App) Delete(ctx context.Context, id string) (bool, error) {
	if !a.confirm.Confirm(DeletePrompt) {
		return false, nil
	}
	if _, err := a.api.Delete(ctx, id); err != nil {
		return true, err
	}
	return true, a.Refresh(ctx)
}

// SignOut спрашивает подтверждение и завершает сессию.
func (a *App) SignOut(ctx context.Context) (bool, error) {
	if !a.confirm.Confirm(SignOutPrompt) {
		return false, nil
	}
	if err := a.api.SignOut(ctx); err != nil {
		return true, err
	}
	a.Dispatch(Event{Kind: SnapshotLoaded})
	return true, nil
}

// Watch применяет изменения из ленты, пока ctx не отменён или соединение не закрыто.
// onChange, если задан, вызывается после каждого изменения.
func (a *App) Watch(ctx context.Context, onChange func(model.Change, State)) error {
	conn, err := a.api.DialChanges(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var change model.Change
		if err := conn.ReadJSON(&change); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return nil
			}
			return fmt.Errorf("read change: %w", err)
		}
		st := a.Dispatch(EventFromChange(change))
		a.logger.Debug("Change applied", zap.String("type", string(change.Type)), zap.Int("bookmarks", len(st.Bookmarks)))
		if onChange != nil {
			onChange(change, st)
		}
	}
}
