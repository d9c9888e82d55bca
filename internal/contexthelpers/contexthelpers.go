// Package contexthelpers carries request-scoped values through context.
package contexthelpers

import (
	"context"
	"net/http"
)

type contextKey string

const (
	CurrentUserIDContextKey = contextKey("currentUserID")
	CurrentPathContextKey   = contextKey("currentPath")
	CspNonceContextKey      = contextKey("cspNonce")
)

// CurrentUserID returns the user the request is acting as, or 0 when unknown.
func CurrentUserID(ctx context.Context) int {
	userID, ok := ctx.Value(CurrentUserIDContextKey).(int)
	if !ok {
		return 0
	}
	return userID
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(CurrentPathContextKey).(string)
	if !ok {
		return ""
	}
	return currentPath
}

func CSPNonce(ctx context.Context) string {
	cspNonce, ok := ctx.Value(CspNonceContextKey).(string)
	if !ok {
		return ""
	}
	return cspNonce
}

// SetCurrentUserID stores the acting user ID on the request context.
func SetCurrentUserID(r *http.Request, userID int) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), CurrentUserIDContextKey, userID))
}

func SetCurrentPath(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), CurrentPathContextKey, r.URL.Path))
}

func SetCSPNonce(r *http.Request, nonce string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), CspNonceContextKey, nonce))
}
