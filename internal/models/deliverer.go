package models

import "time"

// Deliverer 配送员（撮合引擎持有的履约方快照）
type Deliverer struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Name      string `gorm:"size:100" json:"name"`
	Available bool   `gorm:"index;default:true" json:"available"`

	VehicleType       string  `gorm:"size:20" json:"vehicle_type"`
	VehicleCapacityKg float64 `json:"vehicle_capacity_kg"`

	CurrentLat float64 `json:"current_lat"`
	CurrentLng float64 `json:"current_lng"`

	// AvailableFrom 为空表示立即可用
	AvailableFrom *time.Time `json:"available_from"`

	// AverageRating 为空表示没有任何历史评价
	AverageRating *float64 `json:"average_rating"`
	RatingCount   int      `json:"rating_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
