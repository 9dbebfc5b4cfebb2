package models

import "time"

// Notification 通知记录（由 worker 写入，投递由外部系统负责）
type Notification struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	RecipientType string `gorm:"size:20;index:idx_notification_recipient" json:"recipient_type"`
	RecipientID   uint   `gorm:"index:idx_notification_recipient" json:"recipient_id"`
	Type          string `gorm:"size:30" json:"type"`
	Title         string `gorm:"size:255" json:"title"`
	Message       string `gorm:"size:1000" json:"message"`
	Payload       JSON   `gorm:"type:json" json:"payload"`

	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}
