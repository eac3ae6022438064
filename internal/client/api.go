// Package client клиент HTTP API закладок и состояние списка на стороне клиента.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Totarae/bookmarks/internal/auth"
	"github.com/Totarae/bookmarks/internal/model"
)

const maxResponseSize = 4 << 20

// APIError ответ сервера со статусом "error".
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// API типизированный клиент эндпоинтов /api.
type API struct {
	base    *url.URL
	http    *http.Client
	session string
}

// NewAPI создаёт клиент. session значение куки сессии, может быть пустым.
func NewAPI(baseURL, session string, httpClient *http.Client) (*API, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{base: u, http: httpClient, session: session}, nil
}

func (a *API) List(ctx context.Context) ([]*model.Bookmark, error) {
	var list []*model.Bookmark
	err := a.do(ctx, http.MethodGet, "/api/bookmarks", nil, &list)
	return list, err
}

func (a *API) ListDeleted(ctx context.Context) ([]*model.Bookmark, error) {
	var list []*model.Bookmark
	err := a.do(ctx, http.MethodGet, "/api/bookmarks/deleted", nil, &list)
	return list, err
}

func (a *API) Create(ctx context.Context, title, rawURL string) (*model.Bookmark, error) {
	var b model.Bookmark
	if err := a.do(ctx, http.MethodPost, "/api/bookmarks", model.CreateBookmarkRequest{Title: title, URL: rawURL}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update отправляет только заданные поля.
func (a *API) Update(ctx context.Context, id string, title, rawURL *string) (*model.Bookmark, error) {
	var b model.Bookmark
	patch := model.BookmarkPatch{Title: title, URL: rawURL}
	if err := a.do(ctx, http.MethodPatch, "/api/bookmarks/"+url.PathEscape(id), patch, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *API) Delete(ctx context.Context, id string) (*model.Bookmark, error) {
	var b model.Bookmark
	if err := a.do(ctx, http.MethodDelete, "/api/bookmarks/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *API) Restore(ctx context.Context, id string) (*model.Bookmark, error) {
	var b model.Bookmark
	if err := a.do(ctx, http.MethodPost, "/api/bookmarks/"+url.PathEscape(id)+"/restore", nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (a *API) SignOut(ctx context.Context) error {
	if err := a.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil); err != nil {
		return err
	}
	a.session = ""
	return nil
}

// DialChanges открывает websocket ленты изменений.
func (a *API) DialChanges(ctx context.Context) (*websocket.Conn, error) {
	u := *a.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/api/bookmarks/changes"

	header := http.Header{}
	if a.session != "" {
		header.Set("Cookie", (&http.Cookie{Name: auth.CookieName, Value: a.session}).String())
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, decodeError(resp)
		}
		return nil, fmt.Errorf("dial changes: %w", err)
	}
	return conn, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base.String()+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if a.session != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: a.session})
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	var env model.Envelope[json.RawMessage]
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.OK() {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var env model.Envelope[json.RawMessage]
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&env); err != nil || env.Message == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
}
