// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"time"

	"friendnet/internal/slug"

	"gorm.io/gorm"
)

// User represents a registered account, keyed by its unique email.
// Emails are stored lowercase; callers must normalize before lookups.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"not null" json:"username"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	MobileNo    string     `json:"mobile_no"`
	Gender      string     `gorm:"default:'Prefer not to answer'" json:"gender"`
	Nationality string     `json:"nationality"`
	DOB         *time.Time `json:"dob"`
	CurrentCity string     `json:"current_city"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	CreatedAt   time.Time  `json:"created_on"`
	UpdatedAt   time.Time  `json:"updated_on"`
}

// slugAttempts caps the uniqueness retry loop. Collisions on a 4-char
// suffix are ~1/36^4 per attempt, so the cap is never hit in practice.
const slugAttempts = 10

// ErrSlugExhausted is returned when no free slug is found within the retry cap.
var ErrSlugExhausted = errors.New("could not generate a unique slug")

// BeforeCreate assigns a unique slug when none is set. The base is derived
// from the first name, falling back to the username; on collision a random
// 4-char suffix is appended and the check repeats up to slugAttempts times.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Slug != "" {
		return nil
	}

	base := slug.Make(u.FirstName)
	if base == "" {
		base = slug.Make(u.Username)
	}

	candidate := base
	for i := 0; i < slugAttempts; i++ {
		var count int64
		if err := tx.Model(&User{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			u.Slug = candidate
			return nil
		}
		candidate = base + "-" + slug.Random(4)
	}
	return ErrSlugExhausted
}
