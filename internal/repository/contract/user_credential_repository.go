package contract

import (
	"context"
	"time"

	"drive-copilot-be/internal/entity"
	"drive-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserCredentialRepository interface {
	Create(ctx context.Context, cred *entity.UserCredential) error
	Update(ctx context.Context, cred *entity.UserCredential) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserCredential, error)

	// UpdateToken stores a refreshed access token without touching the profile.
	UpdateToken(ctx context.Context, id uuid.UUID, accessToken, tokenType string, expiry time.Time) error
}
