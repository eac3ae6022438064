package auth

import "context"

type ctxKey struct{}

// WithIdentity возвращает контекст с личностью пользователя.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

// IdentityFromContext достаёт личность, положенную Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKey{}).(Identity)
	return ident, ok && ident.UserID != ""
}

// UserIDFromContext id пользователя текущего запроса.
func UserIDFromContext(ctx context.Context) (string, bool) {
	ident, ok := IdentityFromContext(ctx)
	return ident.UserID, ok
}
