package repository

import (
	"github.com/ecomatch/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 通知记录数据访问接口
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByRecipient(recipientType string, recipientID uint, page, pageSize int) ([]models.Notification, int64, error)
	WithTx(tx *gorm.DB) *GormNotificationRepository
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNotificationRepository) WithTx(tx *gorm.DB) *GormNotificationRepository {
	if tx == nil {
		return r
	}
	return &GormNotificationRepository{db: tx}
}

// Create 创建通知记录
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// ListByRecipient 分页查询接收方的通知
func (r *GormNotificationRepository) ListByRecipient(recipientType string, recipientID uint, page, pageSize int) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).
		Where("recipient_type = ? AND recipient_id = ?", recipientType, recipientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	if err := applyPagination(query.Order("id DESC"), page, pageSize).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}
