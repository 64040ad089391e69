package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAcceptsAccessToken(t *testing.T) {
	codec := NewCodec("test-secret")
	identity := Identity{SubjectID: "u1", Email: "a@x.com"}

	access, err := codec.Issue(identity, PurposeAccess, time.Hour)
	require.NoError(t, err)

	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = got
	})

	req := httptest.NewRequest(http.MethodGet, "/scraps", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	Middleware(codec, next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, identity, seen)
}

func TestMiddlewareRejectsRefreshToken(t *testing.T) {
	codec := NewCodec("test-secret")

	refresh, err := codec.Issue(Identity{SubjectID: "u1", Email: "a@x.com"}, PurposeRefresh, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/scraps", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	Middleware(codec, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsBadHeaders(t *testing.T) {
	codec := NewCodec("test-secret")

	for _, header := range []string{"", "Bearer", "Basic dXNlcjpwYXNz", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/scraps", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		Middleware(codec, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatalf("next handler must not run for header %q", header)
		})).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}
