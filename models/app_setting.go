package models

import "time"

// AppSetting is a persisted key/value setting, e.g. the manual fetch proxy URL.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName for persisted settings.
func (AppSetting) TableName() string {
	return "app_settings"
}
