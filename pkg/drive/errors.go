package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"drive-copilot-be/pkg/apperror"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

var ErrUnsupportedContent = errors.New("unsupported content type")

// Classify converts a Google API failure into an apperror with a message that
// names the subject ("'Weekly Report'", "the target folder", ...).
func Classify(err error, subject string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return apperror.Wrap(apperror.KindAuthentication, apperror.ErrAuthenticationRequired.Message, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(apperror.KindCollaborator,
			fmt.Sprintf("Google Drive took too long to respond for %s. Please try again.", subject), err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return apperror.Wrap(apperror.KindAuthentication, apperror.ErrAuthenticationRequired.Message, err)
		case http.StatusNotFound:
			return apperror.Wrap(apperror.KindNotFound,
				fmt.Sprintf("I couldn't find %s in Google Drive. Please check the name.", subject), err)
		case http.StatusForbidden:
			return apperror.Wrap(apperror.KindCollaborator,
				fmt.Sprintf("Permission denied for %s. Check that you have edit access.", subject), err)
		}
	}

	return apperror.Wrap(apperror.KindCollaborator,
		fmt.Sprintf("Google Drive request failed for %s.", subject), err)
}

// IsTransient reports whether a read may succeed when repeated.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrUnsupportedContent) {
		return false
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Kind == apperror.KindCollaborator
	}
	return true
}
