package models

import "time"

// Delivery 配送记录（候选被接受后创建）
type Delivery struct {
	ID             uint   `gorm:"primarykey" json:"id"`
	AnnouncementID uint   `gorm:"index" json:"announcement_id"`
	DelivererID    uint   `gorm:"index" json:"deliverer_id"`
	CandidateID    uint   `gorm:"uniqueIndex" json:"candidate_id"`
	AgreedPrice    Money  `gorm:"type:decimal(12,2)" json:"agreed_price"`
	Status         string `gorm:"size:20;default:created" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
