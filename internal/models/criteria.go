package models

import "time"

// MatchingCriteria 撮合条件（每个公告一条，按公告维度覆盖写入）
type MatchingCriteria struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	AnnouncementID uint   `gorm:"uniqueIndex" json:"announcement_id"`
	Variant        string `gorm:"size:30;default:hybrid" json:"variant"`
	Priority       string `gorm:"size:10;default:medium" json:"priority"`

	MaxDistanceKm     float64 `json:"max_distance_km"`
	PreferredRadiusKm float64 `json:"preferred_radius_km"`
	AllowPartialRoute bool    `json:"allow_partial_route"`

	PickupAfter     *time.Time `json:"pickup_after"`
	PickupBefore    *time.Time `json:"pickup_before"`
	MaxDelayMinutes int        `json:"max_delay_minutes"`

	VehicleTypes         StringSlice `gorm:"type:json" json:"vehicle_types"`
	MinVehicleCapacityKg float64     `json:"min_vehicle_capacity_kg"`
	MinRating            float64     `json:"min_rating"`

	PriceMin Money `gorm:"type:decimal(12,2)" json:"price_min"`
	PriceMax Money `gorm:"type:decimal(12,2)" json:"price_max"`

	// AutoAssignAfterMinutes 为空表示不自动指派
	AutoAssignAfterMinutes *int    `json:"auto_assign_after_minutes"`
	MaxSuggestions         int     `gorm:"default:5" json:"max_suggestions"`
	ScoreThreshold         float64 `gorm:"default:0.6" json:"score_threshold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
