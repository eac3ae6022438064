// Package auth хранит сессию пользователя в подписанной JWT-куке
// и отдаёт текущую личность обработчикам.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Totarae/bookmarks/internal/model"
)

const (
	// CookieName имя куки сессии.
	CookieName = "bm_session"
	defaultTTL = 7 * 24 * time.Hour
	issuer     = "bookmarks"
)

// ErrNoSession нет действующей сессии: кука отсутствует, подпись неверна,
// срок истёк или сессия отозвана.
var ErrNoSession = errors.New("not authenticated")

// MsgCheckFailed ответ клиенту, когда сессию не удалось проверить.
const MsgCheckFailed = "Failed to check session"

// Identity аутентифицированный пользователь.
type Identity struct {
	UserID    string
	SessionID string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Claims полезная нагрузка токена сессии.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Sessions выдаёт, проверяет и отзывает сессии.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoker Revoker
	now     func() time.Time
	logger  *zap.Logger
}

// Option настраивает Sessions.
type Option func(*Sessions)

// WithTTL срок жизни сессии.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sessions) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSecureCookie выставляет флаг Secure у куки.
func WithSecureCookie(secure bool) Option {
	return func(s *Sessions) { s.secure = secure }
}

// WithRevoker задаёт хранилище отозванных сессий.
func WithRevoker(r Revoker) Option {
	return func(s *Sessions) { s.revoker = r }
}

// WithLogger логгер для сбоев проверки сессии.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sessions) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Sessions) { s.now = now }
}

// New создаёт менеджер сессий с HMAC-ключом secret.
func New(secret string, opts ...Option) *Sessions {
	s := &Sessions{
		secret: []byte(secret),
		ttl:    defaultTTL,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.revoker == nil {
		s.revoker = NewMemoryRevoker(s.now)
	}
	return s
}

// SignToken создаёт токен сессии для пользователя.
func (s *Sessions) SignToken(userID, name, email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:  name,
		Email: email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expiresAt, nil
}

// Issue создаёт сессию и ставит куку в ответ.
func (s *Sessions) Issue(w http.ResponseWriter, userID, name, email string) (string, error) {
	token, expiresAt, err := s.SignToken(userID, name, email)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Parse проверяет токен и возвращает личность.
func (s *Sessions) Parse(ctx context.Context, token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return Identity{}, fmt.Errorf("%w: incomplete claims", ErrNoSession)
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Identity{}, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return Identity{}, fmt.Errorf("%w: session revoked", ErrNoSession)
	}

	return Identity{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		Name:      claims.Name,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Current возвращает личность из куки запроса.
func (s *Sessions) Current(r *http.Request) (Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return Identity{}, ErrNoSession
	}
	return s.Parse(r.Context(), cookie.Value)
}

// SignOut отзывает текущую сессию (если она есть) и стирает куку.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	ident, err := s.Current(r)
	switch {
	case err == nil:
		if err := s.revoker.Revoke(r.Context(), ident.SessionID, ident.ExpiresAt); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	case !errors.Is(err, ErrNoSession):
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Authenticate кладёт личность в контекст запроса, если сессия действительна.
// Запрос без сессии пропускается дальше: решение принимает обработчик.
// Если сессию не удалось проверить (недоступно хранилище отзывов), ответ 500.
func (s *Sessions) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := s.Current(r)
		switch {
		case err == nil:
			r = r.WithContext(WithIdentity(r.Context(), ident))
		case !errors.Is(err, ErrNoSession):
			s.logger.Error("Session check failed", zap.String("uri", r.RequestURI), zap.Error(err))
			writeCheckFailed(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeCheckFailed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(model.Envelope[any]{
		Status:  model.StatusError,
		Message: MsgCheckFailed,
	})
}
