package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/session"
	"github.com/stretchr/testify/require"
)

func loginServer(t *testing.T, handler func(w http.ResponseWriter, req session.LoginRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req session.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPAuthenticator_Success(t *testing.T) {
	srv := loginServer(t, func(w http.ResponseWriter, req session.LoginRequest) {
		require.Equal(t, testEmail, req.Email)
		require.Equal(t, testPassword, req.Password)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "signed-token",
			"user":  map[string]any{"id": "user-1", "name": testName, "email": testEmail},
		})
	})

	result, err := session.NewHTTPAuthenticator(srv.URL, nil).Authenticate(context.Background(), session.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "signed-token", result.Token)
	require.Equal(t, "user-1", result.User.UserID)
	require.Equal(t, testName, result.User.Name)
}

func TestHTTPAuthenticator_Failures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    error
		wantMessage string
	}{
		{"rejected with message", http.StatusUnauthorized, `{"message":"Mot de passe incorrect"}`, apperrors.ErrAuthRejected, "Mot de passe incorrect"},
		{"rejected with error field", http.StatusForbidden, `{"error":"account disabled"}`, apperrors.ErrAuthRejected, "account disabled"},
		{"rejected without body", http.StatusUnauthorized, ``, apperrors.ErrAuthRejected, session.MessageInvalidCredentials},
		{"ok without token", http.StatusOK, `{"user":{"id":"user-1"}}`, apperrors.ErrNetworkFailure, session.MessageUnexpectedResponse},
		{"ok with garbage", http.StatusOK, `<html>`, apperrors.ErrNetworkFailure, session.MessageUnexpectedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := loginServer(t, func(w http.ResponseWriter, req session.LoginRequest) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := session.NewHTTPAuthenticator(srv.URL, nil).Authenticate(context.Background(), session.LoginRequest{Email: testEmail, Password: "x"})
			require.ErrorIs(t, err, tt.wantKind)
			require.Equal(t, tt.wantMessage, err.Error())
		})
	}
}

func TestHTTPAuthenticator_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := session.NewHTTPAuthenticator(url, nil).Authenticate(context.Background(), session.LoginRequest{Email: testEmail, Password: "x"})
	require.ErrorIs(t, err, apperrors.ErrNetworkFailure)
	require.Equal(t, session.MessageNetworkFailure, err.Error())
}

func TestGuard_WithHTTPAuthenticator(t *testing.T) {
	f := setupGuard(t)
	srv := loginServer(t, func(w http.ResponseWriter, req session.LoginRequest) {
		result, err := f.authn.Authenticate(context.Background(), req)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Identifiants invalides"})
			return
		}
		_ = json.NewEncoder(w).Encode(result)
	})

	g, err := session.NewGuard(session.NewInMemoryTokenStore(""), session.NewHTTPAuthenticator(srv.URL, nil))
	require.NoError(t, err)
	g.Initialize(context.Background())

	require.Error(t, g.Login(context.Background(), session.LoginRequest{Email: testEmail, Password: "wrong"}))
	require.Equal(t, "Identifiants invalides", g.State().ErrorMessage())
	require.False(t, g.State().Authenticated)

	require.NoError(t, g.Login(context.Background(), session.LoginRequest{Email: testEmail, Password: testPassword}))
	require.True(t, g.State().Authenticated)
	require.Equal(t, f.user.ID, g.State().Identity.UserID)
}
