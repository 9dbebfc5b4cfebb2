package models

import "time"

// DelivererPreferences 配送员接单偏好（每个配送员一条，首次读取时落默认值）
type DelivererPreferences struct {
	ID          uint `gorm:"primarykey" json:"id"`
	DelivererID uint `gorm:"uniqueIndex" json:"deliverer_id"`

	PreferredRadiusKm float64 `json:"preferred_radius_km"`
	MaxRadiusKm       float64 `json:"max_radius_km"`
	HomeLat           float64 `json:"home_lat"`
	HomeLng           float64 `json:"home_lng"`

	// WorkDays 取值 mon..sun，空列表表示不限工作日
	WorkDays      StringSlice `gorm:"type:json" json:"work_days"`
	WorkStartHour int         `json:"work_start_hour"`
	WorkEndHour   int         `json:"work_end_hour"`

	PackageCategories StringSlice `gorm:"type:json" json:"package_categories"`
	MaxWeightKg       float64     `json:"max_weight_kg"`

	MinPrice   Money `gorm:"type:decimal(12,2)" json:"min_price"`
	Negotiable bool  `gorm:"default:true" json:"negotiable"`

	MaxOpenSuggestions int `gorm:"default:5" json:"max_open_suggestions"`

	// AutoDeclineAfterMinutes 为空表示使用全局过期时间
	AutoDeclineAfterMinutes *int `json:"auto_decline_after_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
