// Package oauth обмен кода авторизации на профиль пользователя у OAuth2-провайдера.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	maxUserInfoSize = 1 << 20
)

// ErrMissingCode в колбэке нет кода авторизации.
var ErrMissingCode = errors.New("authorization code is empty")

// userNamespace пространство имён для детерминированных id пользователей.
var userNamespace = uuid.MustParse("6f1c9a52-3b4e-4d0a-9a57-0c2f6a1e8b31")

// Config параметры провайдера. Пустые URL заменяются адресами Google.
type Config struct {
	Provider     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
}

// Identity профиль пользователя у провайдера.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// UserID стабильный uuid пользователя, выведенный из провайдера и subject.
func (i Identity) UserID() string {
	return uuid.NewSHA1(userNamespace, []byte(i.Provider+":"+i.Subject)).String()
}

// Provider OAuth2-клиент одного провайдера.
type Provider struct {
	name        string
	conf        *oauth2.Config
	userInfoURL string
}

// NewProvider создаёт провайдера; по умолчанию это Google.
func NewProvider(cfg Config) *Provider {
	if cfg.Provider == "" {
		cfg.Provider = "google"
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = googleAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = googleTokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = googleUserInfoURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"openid", "email", "profile"}
	}

	return &Provider{
		name: cfg.Provider,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

// AuthCodeURL адрес страницы согласия провайдера.
func (p *Provider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

// Exchange меняет код на токен и читает профиль пользователя.
func (p *Provider) Exchange(ctx context.Context, code string) (Identity, error) {
	if strings.TrimSpace(code) == "" {
		return Identity{}, ErrMissingCode
	}

	token, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := p.conf.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var info struct {
		Sub   string `json:"sub"`
		ID    any    `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoSize)).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("decode userinfo: %w", err)
	}

	subject := info.Sub
	if subject == "" && info.ID != nil {
		subject = fmt.Sprint(info.ID)
	}
	if subject == "" {
		return Identity{}, errors.New("userinfo has no subject")
	}

	return Identity{
		Provider: p.name,
		Subject:  subject,
		Email:    info.Email,
		Name:     info.Name,
	}, nil
}
