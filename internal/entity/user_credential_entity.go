package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserCredential is a signed-in Google account together with its OAuth token.
// RefreshTokenCipher is always sealed; the plaintext never leaves the
// credential service.
type UserCredential struct {
	Id                 uuid.UUID
	GoogleSubject      string
	Email              string
	FullName           string
	AvatarURL          string
	AccessToken        string
	RefreshTokenCipher string
	TokenType          string
	Expiry             time.Time
	Scopes             []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
