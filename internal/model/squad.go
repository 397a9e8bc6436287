package model

import "time"

// Squad is a group-accountability unit owned by one user.
type Squad struct {
	ID            uint   `gorm:"primaryKey"`
	OwnerID       uint   `gorm:"index"`
	Name          string `gorm:"uniqueIndex"`
	MinThreshold  int    `gorm:"default:3"`
	StreakFreezes int    `gorm:"default:0"`
	OwnerTimezone string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Members       []SquadMember `gorm:"foreignKey:SquadID"`
}

// SquadMember is a time-bounded membership record. Leaving sets LeftAt;
// records are never deleted so historical days stay accurate.
type SquadMember struct {
	ID        uint `gorm:"primaryKey"`
	SquadID   uint `gorm:"index"`
	UserID    uint `gorm:"index"`
	JoinedAt  time.Time
	LeftAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SquadDayLog records a settled past day, so a spent shield is consumed
// exactly once.
type SquadDayLog struct {
	ID         uint   `gorm:"primaryKey"`
	SquadID    uint   `gorm:"index:idx_squad_day,unique"`
	DayKey     string `gorm:"index:idx_squad_day,unique"`
	Outcome    string
	UsedShield bool
	CreatedAt  time.Time
}
