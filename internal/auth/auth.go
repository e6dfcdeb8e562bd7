// Package auth carries the calling user through request contexts. Identity
// is asserted by a fronting proxy in the X-User-ID header.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// Header is the request header holding the caller's user ID.
const Header = "X-User-ID"

type ctxkey string

const (
	userkey ctxkey = "autheduser"
)

type AuthedUser struct {
	ID string
}

func StoreUserInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userkey, &AuthedUser{ID: userID})
}

func UserFromContext(ctx context.Context) *AuthedUser {
	au, ok := ctx.Value(userkey).(*AuthedUser)
	if ok {
		return au
	}
	return nil
}

// Require rejects requests without a user ID. unauthorized writes the
// rejection.
func Require(next http.Handler, unauthorized http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(Header))
		if userID == "" {
			unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(StoreUserInContext(r.Context(), userID)))
	})
}
