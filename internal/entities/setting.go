package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// JSON array of experience IDs the user has liked on this device
	SettingKeyLikedExperienceIDs = "liked_experience_ids"

	// Outcome of the last background catalog refresh
	SettingKeyRefreshLastAt     = "refresh_last_at"
	SettingKeyRefreshLastStatus = "refresh_last_status"
)
