package models

import (
	"time"
)

const (
	StatusInactive = "inactive"
	StatusActive   = "active"
)

// User is keyed by the identity service's uid. Records are created by the
// external registration flow; this service only reads and mutates them.
type User struct {
	UID             string  `gorm:"primaryKey;size:128"`
	Name            string  `gorm:"size:255"`
	Bio             string  `gorm:"size:1024"`
	Coins           float64 `gorm:"default:0"`
	Status          string  `gorm:"default:'inactive'"`
	AccountLevel    int     `gorm:"default:0"`
	ReferrerID      *string `gorm:"index;size:128"`
	TelegramID      int64   `gorm:"index"`
	FacebookLink    string  `gorm:"size:512"`
	LinkedInLink    string  `gorm:"size:512"`
	ProfileImageURL string  `gorm:"size:512"`
	CoverImageURL   string  `gorm:"size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
