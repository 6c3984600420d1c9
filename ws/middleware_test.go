package ws

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conversa/auth"
)

func TestAuthMiddleware(t *testing.T) {
	req := require.New(t)
	tokens := auth.NewTokenIssuer("middleware_test_secret", time.Hour)
	token, err := tokens.Generate("user-1", "alice")
	req.NoError(err)

	var sawUsername string
	handler := NewAuthMiddleware(slog.Default(), tokens)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			req.True(ok)
			sawUsername = claims.Username
		}))

	// Bearer header
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ws/chat/alice__bob", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(recorder, request)
	req.Equal(http.StatusOK, recorder.Code)
	req.Equal("alice", sawUsername)

	// Session cookie
	sawUsername = ""
	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/ws/chat/alice__bob", nil)
	request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	handler.ServeHTTP(recorder, request)
	req.Equal(http.StatusOK, recorder.Code)
	req.Equal("alice", sawUsername)
}

func TestAuthMiddleware_Rejects_Before_Upgrade(t *testing.T) {
	req := require.New(t)
	tokens := auth.NewTokenIssuer("middleware_test_secret", time.Hour)

	reached := false
	handler := NewAuthMiddleware(slog.Default(), tokens)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
		}))

	// No token at all
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ws/chat/alice__bob", nil))
	req.Equal(http.StatusUnauthorized, recorder.Code)

	// A token signed with another secret
	foreign, err := auth.NewTokenIssuer("some_other_secret", time.Hour).Generate("user-1", "alice")
	req.NoError(err)
	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ws/chat/alice__bob", nil)
	request.Header.Set("Authorization", "Bearer "+foreign)
	handler.ServeHTTP(recorder, request)
	req.Equal(http.StatusUnauthorized, recorder.Code)

	req.False(reached)
}
