package driveindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store persists one index blob per user with read-full / replace-full
// semantics. Load returns (nil, nil) when the user has never been crawled.
type Store interface {
	Load(ctx context.Context, userID string) (*Index, error)
	Save(ctx context.Context, index *Index) error
	Exists(ctx context.Context, userID string) (bool, error)
	Delete(ctx context.Context, userID string) error
}

var ErrInvalidUserID = errors.New("invalid user id")

// validateUserID rejects ids that cannot be used as a storage key.
func validateUserID(userID string) error {
	if userID == "" || userID == "." || userID == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	if strings.ContainsAny(userID, `/\`) || strings.ContainsRune(userID, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return nil
}
