package models

import (
	"time"
)

// CreditRecord is the audit row written for every coin credit issued by a
// payout, in the same transaction as the credit itself.
type CreditRecord struct {
	ID          uint    `gorm:"primaryKey"`
	ReceiverUID string  `gorm:"not null;index;size:128"`
	SourceUID   string  `gorm:"not null;index;size:128"`
	Amount      float64 `gorm:"not null"`
	Level       int     `gorm:"not null"`
	Kind        string  `gorm:"size:16"`
	CreatedAt   time.Time
}
