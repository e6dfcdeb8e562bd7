package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestUserContext(t *testing.T) {
	is := is.New(t)
	is.True(UserFromContext(context.Background()) == nil)

	ctx := StoreUserInContext(context.Background(), "alice")
	u := UserFromContext(ctx)
	is.True(u != nil)
	is.Equal(u.ID, "alice")
}

func TestRequire(t *testing.T) {
	is := is.New(t)

	var seen string
	h := Require(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = UserFromContext(r.Context()).ID
		}),
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cards", nil))
	is.Equal(rec.Code, http.StatusUnauthorized)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cards", nil)
	req.Header.Set(Header, "   ")
	h.ServeHTTP(rec, req)
	is.Equal(rec.Code, http.StatusUnauthorized)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/cards", nil)
	req.Header.Set(Header, "alice")
	h.ServeHTTP(rec, req)
	is.Equal(rec.Code, http.StatusOK)
	is.Equal(seen, "alice")
}
