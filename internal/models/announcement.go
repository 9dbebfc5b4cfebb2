package models

import "time"

// Announcement 配送公告（撮合引擎持有的请求快照）
type Announcement struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Reference string `gorm:"size:64;uniqueIndex" json:"reference"`
	ClientID  uint   `gorm:"index" json:"client_id"`
	Title     string `gorm:"size:255" json:"title"`
	Status    string `gorm:"size:20;index;default:published" json:"status"`

	PickupAddress   string  `gorm:"size:500" json:"pickup_address"`
	PickupLat       float64 `json:"pickup_lat"`
	PickupLng       float64 `json:"pickup_lng"`
	DeliveryAddress string  `gorm:"size:500" json:"delivery_address"`
	DeliveryLat     float64 `json:"delivery_lat"`
	DeliveryLng     float64 `json:"delivery_lng"`

	PackageCategory string  `gorm:"size:20" json:"package_category"`
	WeightKg        float64 `json:"weight_kg"`

	SuggestedPrice Money `gorm:"type:decimal(12,2)" json:"suggested_price"`
	MaxPrice       Money `gorm:"type:decimal(12,2)" json:"max_price"`
	Negotiable     bool  `gorm:"default:true" json:"negotiable"`

	PickupAfter  *time.Time `json:"pickup_after"`
	PickupBefore *time.Time `json:"pickup_before"`

	// AssignedDelivererID 为空表示尚未指派，接受撮合时按条件更新抢占
	AssignedDelivererID *uint      `gorm:"index" json:"assigned_deliverer_id"`
	AssignedAt          *time.Time `json:"assigned_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
