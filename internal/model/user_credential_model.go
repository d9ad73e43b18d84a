package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserCredential struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GoogleSubject      string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email              string         `gorm:"type:varchar(255);index"`
	FullName           string         `gorm:"type:varchar(255)"`
	AvatarURL          string         `gorm:"type:text"`
	AccessToken        string         `gorm:"type:text"`
	RefreshTokenCipher string         `gorm:"type:text"`
	TokenType          string         `gorm:"type:varchar(50)"`
	Expiry             time.Time
	Scopes             datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (UserCredential) TableName() string {
	return "user_credentials"
}
