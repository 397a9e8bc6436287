package model

import "time"

// Day status values. A day only ever transitions active -> recovered.
const (
	DayActive    = "active"
	DayRecovered = "recovered"
	DayMissed    = "missed"
)

// DayStatus tracks per-day streak state for a user. Days without a row are
// implicitly active.
type DayStatus struct {
	ID                  uint   `gorm:"primaryKey"`
	UserID              uint   `gorm:"index:idx_user_day,unique"`
	DayKey              string `gorm:"index:idx_user_day,unique"`
	Status              string `gorm:"default:active"`
	RecoveryAttemptedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
