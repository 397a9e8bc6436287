package model

import "time"

const (
	// MinWeight and MaxWeight bound the caller-assigned impact weight.
	MinWeight = 1
	MaxWeight = 10
	// DefaultWeight is used when no impact weight is supplied.
	DefaultWeight = 3
)

// Task is a single weighted item logged for one calendar day.
type Task struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      uint  `gorm:"index"`
	CategoryID  *uint `gorm:"index"`
	Title       string
	Weight      int       `gorm:"default:3"`
	Date        time.Time `gorm:"index"` // normalized to day granularity
	IsCompleted bool      `gorm:"default:false"`
	// CompletedAt is set if and only if IsCompleted is true.
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClampWeight resolves a raw weight into the supported range, defaulting
// when unset.
func ClampWeight(weight int) int {
	if weight == 0 {
		return DefaultWeight
	}
	if weight < MinWeight {
		return MinWeight
	}
	if weight > MaxWeight {
		return MaxWeight
	}
	return weight
}
