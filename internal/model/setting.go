package model

import (
	"encoding/json"
	"time"
)

// Setting keys with special handling.
const (
	SettingGradingScale = "grading_scale"
	SettingInstitution  = "institution_name"
)

// AppSetting represents a key-value pair for global application configuration.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required,min=1,dive,keys,min=1,max=64,endkeys,max=4096"`
}

// UpdateGradingScaleRequest replaces the boundary table used for classification.
type UpdateGradingScaleRequest struct {
	Boundaries json.RawMessage `json:"boundaries" binding:"required"`
}
