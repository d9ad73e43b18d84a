package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"drive-copilot-be/internal/pkg/logger"
	"drive-copilot-be/internal/pkg/secretbox"
	"drive-copilot-be/pkg/apperror"
	"drive-copilot-be/pkg/drive"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenEndpoint answers refresh requests with a new access token, or with
// invalid_grant when fail is set.
func tokenEndpoint(t *testing.T, fail bool) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
			return
		}
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "1//refresh", r.Form.Get("refresh_token"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestCredentialService(t *testing.T, tokenURL string) (*credentialService, *fakeCredentialRepo) {
	t.Helper()
	box, err := secretbox.New("test-key")
	require.NoError(t, err)

	repo := newFakeCredentialRepo()
	conf := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
	}
	svc := NewCredentialService(repo, box, conf, drive.ClientConfig{}, logger.NewNopLogger())
	return svc.(*credentialService), repo
}

func loginToken(refresh string, expiry time.Time) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  "access-1",
		TokenType:    "Bearer",
		RefreshToken: refresh,
		Expiry:       expiry,
	}
	return token.WithExtra(map[string]interface{}{
		"scope": "openid https://www.googleapis.com/auth/drive",
	})
}

func TestCredentialService_SaveFromLoginSealsRefreshToken(t *testing.T) {
	svc, repo := newTestCredentialService(t, "http://unused")
	ctx := context.Background()
	profile := GoogleProfile{Subject: "sub-1", Email: "ana@example.com", Name: "Ana"}

	cred, err := svc.SaveFromLogin(ctx, profile, loginToken("1//refresh", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, 1, repo.commits)
	assert.Zero(t, repo.rollbacks)

	stored := repo.get(cred.Id)
	assert.NotEmpty(t, stored.RefreshTokenCipher)
	assert.NotContains(t, stored.RefreshTokenCipher, "1//refresh")
	assert.Equal(t, []string{"openid", "https://www.googleapis.com/auth/drive"}, stored.Scopes)

	// A later login without a refresh token keeps the sealed one.
	again, err := svc.SaveFromLogin(ctx, profile, loginToken("", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, cred.Id, again.Id)
	assert.Equal(t, 1, repo.updates)
	assert.Equal(t, stored.RefreshTokenCipher, repo.get(cred.Id).RefreshTokenCipher)
}

func TestCredentialService_SaveFromLoginRejectsEmptyIdentity(t *testing.T) {
	svc, _ := newTestCredentialService(t, "http://unused")

	_, err := svc.SaveFromLogin(context.Background(), GoogleProfile{}, loginToken("r", time.Now()))
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))

	_, err = svc.SaveFromLogin(context.Background(), GoogleProfile{Subject: "s"}, nil)
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))
}

func TestCredentialService_TokenSourceRefreshesAndPersists(t *testing.T) {
	srv, calls := tokenEndpoint(t, false)
	svc, repo := newTestCredentialService(t, srv.URL)
	ctx := context.Background()

	cred, err := svc.SaveFromLogin(ctx, GoogleProfile{Subject: "sub-1"}, loginToken("1//refresh", time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	ts, err := svc.TokenSource(ctx, cred.Id.String())
	require.NoError(t, err)

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", token.AccessToken)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, []string{"fresh-access"}, repo.tokens)
	assert.Equal(t, "fresh-access", repo.get(cred.Id).AccessToken)

	// Still valid: no second refresh, no second write.
	_, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Len(t, repo.tokens, 1)
}

func TestCredentialService_RefreshFailureIsAuthenticationError(t *testing.T) {
	srv, _ := tokenEndpoint(t, true)
	svc, _ := newTestCredentialService(t, srv.URL)
	ctx := context.Background()

	cred, err := svc.SaveFromLogin(ctx, GoogleProfile{Subject: "sub-1"}, loginToken("1//refresh", time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	ts, err := svc.TokenSource(ctx, cred.Id.String())
	require.NoError(t, err)

	_, err = ts.Token()
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))
	assert.Equal(t, apperror.ErrAuthenticationRequired.Message, apperror.UserMessage(err, ""))
}

func TestCredentialService_UnknownUserMustLogIn(t *testing.T) {
	svc, _ := newTestCredentialService(t, "http://unused")

	_, err := svc.GetCredential(context.Background(), "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))

	_, err = svc.Connect(context.Background(), uuid.NewString())
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))
}

func TestCredentialService_CorruptCipherMustLogIn(t *testing.T) {
	svc, repo := newTestCredentialService(t, "http://unused")
	ctx := context.Background()

	cred, err := svc.SaveFromLogin(ctx, GoogleProfile{Subject: "sub-1"}, loginToken("1//refresh", time.Now()))
	require.NoError(t, err)

	row := repo.get(cred.Id)
	row.RefreshTokenCipher = "garbage"
	require.NoError(t, repo.Update(ctx, &row))

	_, err = svc.TokenSource(ctx, cred.Id.String())
	assert.True(t, apperror.Is(err, apperror.KindAuthentication))
}
