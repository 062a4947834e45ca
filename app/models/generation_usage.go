package models

import (
	"time"

	"gorm.io/gorm"
)

// GenerationUsage is the persisted monthly generation counter of a user.
// Period is the UTC month formatted as "2006-01".
type GenerationUsage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:ux_generation_usages_user_period,unique,priority:1" json:"user_id"`
	Period      string    `gorm:"type:char(7);not null;index:ux_generation_usages_user_period,unique,priority:2" json:"period"`
	Generations int64     `gorm:"not null;default:0" json:"generations"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindGenerationUsage returns the persisted counter or a zero value when none exists.
func FindGenerationUsage(db *gorm.DB, userID uint, period string) (*GenerationUsage, error) {
	var u GenerationUsage
	err := db.Where("user_id = ? AND period = ?", userID, period).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &GenerationUsage{UserID: userID, Period: period}, nil
		}
		return nil, err
	}
	return &u, nil
}
