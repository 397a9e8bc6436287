package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"kinetics/internal/model"
)

// SquadRepository manages squads, membership history, and settled days.
type SquadRepository struct {
	db *gorm.DB
}

func NewSquadRepository(db *gorm.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

func (r *SquadRepository) Create(ctx context.Context, squad *model.Squad) error {
	if err := r.db.WithContext(ctx).Create(squad).Error; err != nil {
		return fmt.Errorf("create squad: %w", err)
	}
	return nil
}

func (r *SquadRepository) FindByName(ctx context.Context, name string) (*model.Squad, error) {
	var squad model.Squad
	if err := r.db.WithContext(ctx).Preload("Members").Where("name = ?", name).First(&squad).Error; err != nil {
		return nil, err
	}
	return &squad, nil
}

// ListForUser returns all squads where the user has an open membership.
func (r *SquadRepository) ListForUser(ctx context.Context, userID uint) ([]model.Squad, error) {
	var squads []model.Squad
	if err := r.db.WithContext(ctx).Preload("Members").
		Joins("JOIN squad_members ON squad_members.squad_id = squads.id").
		Where("squad_members.user_id = ? AND squad_members.left_at IS NULL", userID).
		Group("squads.id").
		Find(&squads).Error; err != nil {
		return nil, err
	}
	return squads, nil
}

func (r *SquadRepository) ListAll(ctx context.Context) ([]model.Squad, error) {
	var squads []model.Squad
	if err := r.db.WithContext(ctx).Preload("Members").Find(&squads).Error; err != nil {
		return nil, err
	}
	return squads, nil
}

// AddMember opens a membership interval. Rejoining after leaving creates a
// fresh record; history is never rewritten.
func (r *SquadRepository) AddMember(ctx context.Context, squadID, userID uint, joinedAt time.Time) error {
	db := r.db.WithContext(ctx)

	var open model.SquadMember
	err := db.Where("squad_id = ? AND user_id = ? AND left_at IS NULL", squadID, userID).First(&open).Error
	if err == nil {
		return fmt.Errorf("user %d is already a member of squad %d", userID, squadID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find membership: %w", err)
	}

	member := model.SquadMember{SquadID: squadID, UserID: userID, JoinedAt: joinedAt}
	if err := db.Create(&member).Error; err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// CloseMember ends the open membership interval, keeping the record.
func (r *SquadRepository) CloseMember(ctx context.Context, squadID, userID uint, leftAt time.Time) error {
	db := r.db.WithContext(ctx)

	var open model.SquadMember
	err := db.Where("squad_id = ? AND user_id = ? AND left_at IS NULL", squadID, userID).First(&open).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("user %d is not a member of squad %d", userID, squadID)
	}
	if err != nil {
		return fmt.Errorf("find membership: %w", err)
	}

	open.LeftAt = &leftAt
	if err := db.Save(&open).Error; err != nil {
		return fmt.Errorf("close membership: %w", err)
	}
	return nil
}

// SettleDay records a past day's outcome once, consuming a shield when the
// day was covered by one. Re-settling an already logged day is a no-op.
func (r *SquadRepository) SettleDay(ctx context.Context, squadID uint, dayKey, outcome string, usedShield bool) (bool, error) {
	settled := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.SquadDayLog
		err := tx.Where("squad_id = ? AND day_key = ?", squadID, dayKey).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find day log: %w", err)
		}

		logRow := model.SquadDayLog{SquadID: squadID, DayKey: dayKey, Outcome: outcome, UsedShield: usedShield}
		if err := tx.Create(&logRow).Error; err != nil {
			return fmt.Errorf("log day: %w", err)
		}

		if usedShield {
			result := tx.Model(&model.Squad{}).
				Where("id = ? AND streak_freezes > 0", squadID).
				UpdateColumn("streak_freezes", gorm.Expr("streak_freezes - 1"))
			if result.Error != nil {
				return fmt.Errorf("consume shield: %w", result.Error)
			}
		}
		settled = true
		return nil
	})
	return settled, err
}
