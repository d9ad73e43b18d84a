package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"drive-copilot-be/internal/constant"
	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

const testJwtSecret = "jwt-secret"

// fakeGoogleAuth serves the token exchange and the userinfo endpoint.
func fakeGoogleAuth(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/token":
			assert.NoError(t, r.ParseForm())
			if r.Form.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "access-1",
				"refresh_token": "1//refresh",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		case strings.HasSuffix(r.URL.Path, "/userinfo"):
			assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      "10987",
				"email":   "ana@example.com",
				"name":    "Ana",
				"picture": "https://example.com/ana.png",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOAuthService(t *testing.T, srv *httptest.Server) (IOAuthService, *fakeCredentials, *recordingScheduler) {
	t.Helper()
	conf := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:3000/api/auth/google/callback",
		Scopes:       constant.GoogleScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	creds := &fakeCredentials{}
	scheduler := &recordingScheduler{}
	svc := NewOAuthService(conf, testJwtSecret, creds, scheduler, logger.NewNopLogger(),
		option.WithEndpoint(srv.URL+"/"))
	return svc, creds, scheduler
}

func TestOAuthService_GetLoginURL(t *testing.T) {
	svc, _, _ := newTestOAuthService(t, fakeGoogleAuth(t))

	raw, state, err := svc.GetLoginURL("google")
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "https://www.googleapis.com/auth/drive")
	assert.Contains(t, q.Get("scope"), "https://www.googleapis.com/auth/documents")

	_, other, err := svc.GetLoginURL("google")
	require.NoError(t, err)
	assert.NotEqual(t, state, other)

	_, _, err = svc.GetLoginURL("github")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestOAuthService_HandleCallback(t *testing.T) {
	svc, creds, scheduler := newTestOAuthService(t, fakeGoogleAuth(t))

	res, err := svc.HandleCallback(context.Background(), "google", "good-code")
	require.NoError(t, err)

	require.Len(t, creds.saved, 1)
	assert.Equal(t, GoogleProfile{
		Subject:   "10987",
		Email:     "ana@example.com",
		Name:      "Ana",
		AvatarURL: "https://example.com/ana.png",
	}, creds.saved[0])
	assert.Equal(t, "1//refresh", creds.tokens[0].RefreshToken)

	userID := creds.cred.Id.String()
	assert.Equal(t, userID, res.User.Id)
	assert.Equal(t, []string{userID}, scheduler.userIDs)
	assert.Equal(t, []string{constant.RebuildReasonLogin}, scheduler.reasons)

	token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJwtSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, userID, claims["user_id"])
}

func TestOAuthService_HandleCallbackFailures(t *testing.T) {
	svc, creds, scheduler := newTestOAuthService(t, fakeGoogleAuth(t))
	ctx := context.Background()

	_, err := svc.HandleCallback(ctx, "google", "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	_, err = svc.HandleCallback(ctx, "google", "bad-code")
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))

	_, err = svc.HandleCallback(ctx, "github", "good-code")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	assert.Empty(t, creds.saved)
	assert.Empty(t, scheduler.userIDs)
}

func TestOAuthService_GetUserInfo(t *testing.T) {
	svc, creds, _ := newTestOAuthService(t, fakeGoogleAuth(t))

	creds.getErr = apperror.ErrAuthenticationRequired
	_, err := svc.GetUserInfo(context.Background(), "user")
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))

	creds.getErr = nil
	_, err = svc.HandleCallback(context.Background(), "google", "good-code")
	require.NoError(t, err)

	info, err := svc.GetUserInfo(context.Background(), creds.cred.Id.String())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", info.Email)
	assert.Equal(t, "Ana", info.FullName)
}
