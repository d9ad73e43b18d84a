package mapper

import (
	"encoding/json"

	"drive-copilot-be/internal/entity"
	"drive-copilot-be/internal/model"

	"gorm.io/datatypes"
)

type UserCredentialMapper struct{}

func NewUserCredentialMapper() *UserCredentialMapper {
	return &UserCredentialMapper{}
}

func (m *UserCredentialMapper) ToEntity(c *model.UserCredential) *entity.UserCredential {
	if c == nil {
		return nil
	}

	var scopes []string
	if len(c.Scopes) > 0 {
		_ = json.Unmarshal(c.Scopes, &scopes)
	}

	return &entity.UserCredential{
		Id:                 c.Id,
		GoogleSubject:      c.GoogleSubject,
		Email:              c.Email,
		FullName:           c.FullName,
		AvatarURL:          c.AvatarURL,
		AccessToken:        c.AccessToken,
		RefreshTokenCipher: c.RefreshTokenCipher,
		TokenType:          c.TokenType,
		Expiry:             c.Expiry,
		Scopes:             scopes,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func (m *UserCredentialMapper) ToModel(c *entity.UserCredential) *model.UserCredential {
	if c == nil {
		return nil
	}

	scopes, _ := json.Marshal(c.Scopes)
	if c.Scopes == nil {
		scopes = []byte("[]")
	}

	return &model.UserCredential{
		Id:                 c.Id,
		GoogleSubject:      c.GoogleSubject,
		Email:              c.Email,
		FullName:           c.FullName,
		AvatarURL:          c.AvatarURL,
		AccessToken:        c.AccessToken,
		RefreshTokenCipher: c.RefreshTokenCipher,
		TokenType:          c.TokenType,
		Expiry:             c.Expiry,
		Scopes:             datatypes.JSON(scopes),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
