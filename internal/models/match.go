package models

import "time"

// MatchCandidate 撮合候选（每次撮合运行、每个配送员一条，只过期不删除）
type MatchCandidate struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	RunID          string `gorm:"size:36;index" json:"run_id"`
	AnnouncementID uint   `gorm:"index:idx_match_announcement_state" json:"announcement_id"`
	DelivererID    uint   `gorm:"index" json:"deliverer_id"`
	CriteriaID     uint   `json:"criteria_id"`
	Variant        string `gorm:"size:30;index" json:"variant"`

	DistanceScore float64 `json:"distance_score"`
	TimeScore     float64 `json:"time_score"`
	PriceScore    float64 `json:"price_score"`
	RatingScore   float64 `json:"rating_score"`
	OverallScore  float64 `gorm:"index" json:"overall_score"`
	Confidence    float64 `json:"confidence"`

	EstimatedDistanceKm      float64 `json:"estimated_distance_km"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
	SuggestedPrice           Money   `gorm:"type:decimal(12,2)" json:"suggested_price"`
	ComputeMillis            int64   `json:"compute_millis"`

	State           string     `gorm:"size:20;index:idx_match_announcement_state;default:suggested" json:"state"`
	SuggestedAt     time.Time  `json:"suggested_at"`
	RespondedAt     *time.Time `json:"responded_at"`
	ExpiresAt       time.Time  `gorm:"index" json:"expires_at"`
	RejectionReason string     `gorm:"size:500" json:"rejection_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
