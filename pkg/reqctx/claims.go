package reqctx

import (
	"context"

	"github.com/google/uuid"
)

// AuthClaims is what the auth middleware stores for a verified bearer token.
type AuthClaims interface {
	GetUserID() uuid.UUID

	// GetSessionID returns the redis session the token is bound to.
	GetSessionID() string

	// IsAdmin reports the role snapshot taken when the token was issued.
	IsAdmin() bool

	IsExpired() bool
}

// WithClaims stores authentication claims in the context.
func WithClaims(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext retrieves authentication claims from the context.
// Returns nil if not set or if the request is not authenticated.
func ClaimsFromContext(ctx context.Context) AuthClaims {
	v := ctx.Value(keyClaims)
	if v == nil {
		return nil
	}
	claims, ok := v.(AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// IsAuthenticated returns true if valid claims exist in the context.
func IsAuthenticated(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims != nil && !claims.IsExpired()
}

// UserIDFromContext extracts the user ID from claims.
// Returns uuid.Nil and false if not authenticated.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return uuid.Nil, false
	}
	return claims.GetUserID(), true
}

// IsAdminFromContext is false for anonymous requests.
func IsAdminFromContext(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims != nil && claims.IsAdmin()
}
