package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"drive-copilot-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{name: "not found", err: &googleapi.Error{Code: http.StatusNotFound}, want: apperror.KindNotFound},
		{name: "forbidden", err: &googleapi.Error{Code: http.StatusForbidden}, want: apperror.KindCollaborator},
		{name: "unauthorized", err: &googleapi.Error{Code: http.StatusUnauthorized}, want: apperror.KindAuthentication},
		{name: "refresh failed", err: fmt.Errorf("get: %w", &oauth2.RetrieveError{ErrorCode: "invalid_grant"}), want: apperror.KindAuthentication},
		{name: "timeout", err: context.DeadlineExceeded, want: apperror.KindCollaborator},
		{name: "anything else", err: errors.New("boom"), want: apperror.KindCollaborator},
		{name: "already classified", err: apperror.New(apperror.KindParse, "x"), want: apperror.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperror.KindOf(Classify(tt.err, "'Plan'")))
		})
	}

	assert.NoError(t, Classify(nil, "x"))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&googleapi.Error{Code: http.StatusTooManyRequests}))
	assert.True(t, IsTransient(&googleapi.Error{Code: http.StatusBadGateway}))
	assert.False(t, IsTransient(&googleapi.Error{Code: http.StatusNotFound}))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(ErrUnsupportedContent))
}

func TestRetryRead_StopsOnPermanentError(t *testing.T) {
	policy := RetryPolicy{MaxTries: 5, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

	calls := 0
	_, err := RetryRead(context.Background(), policy, func() (string, error) {
		calls++
		return "", &googleapi.Error{Code: http.StatusNotFound}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	v, err := RetryRead(context.Background(), policy, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}
