package specification

import (
	"gorm.io/gorm"
)

// ByGoogleSubject matches the stable Google account id ("sub" claim).
type ByGoogleSubject struct {
	Subject string
}

func (s ByGoogleSubject) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("google_subject = ?", s.Subject)
}
