package repository

import (
	"errors"
	"time"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/models"

	"gorm.io/gorm"
)

// AnnouncementRepository 配送公告数据访问接口
type AnnouncementRepository interface {
	Create(announcement *models.Announcement) error
	GetByID(id uint) (*models.Announcement, error)
	GetByReference(reference string) (*models.Announcement, error)
	AssignIfUnassigned(id uint, delivererID uint, now time.Time) (bool, error)
	Cancel(id uint, now time.Time) (bool, error)
	WithTx(tx *gorm.DB) *GormAnnouncementRepository
}

// GormAnnouncementRepository GORM 实现
type GormAnnouncementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository 创建公告仓库
func NewAnnouncementRepository(db *gorm.DB) *GormAnnouncementRepository {
	return &GormAnnouncementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAnnouncementRepository) WithTx(tx *gorm.DB) *GormAnnouncementRepository {
	if tx == nil {
		return r
	}
	return &GormAnnouncementRepository{db: tx}
}

// Create 创建公告
func (r *GormAnnouncementRepository) Create(announcement *models.Announcement) error {
	return r.db.Create(announcement).Error
}

// GetByID 根据 ID 获取公告
func (r *GormAnnouncementRepository) GetByID(id uint) (*models.Announcement, error) {
	var announcement models.Announcement
	if err := r.db.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &announcement, nil
}

// GetByReference 根据业务引用号获取公告
func (r *GormAnnouncementRepository) GetByReference(reference string) (*models.Announcement, error) {
	var announcement models.Announcement
	if err := r.db.Where("reference = ?", reference).First(&announcement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &announcement, nil
}

// AssignIfUnassigned 仅当公告仍未指派时抢占式指派配送员。
// 返回 false 表示另一方已先行指派或公告已不在可指派状态。
func (r *GormAnnouncementRepository) AssignIfUnassigned(id uint, delivererID uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.Announcement{}).
		Where("id = ? AND assigned_deliverer_id IS NULL AND status = ?", id, constants.AnnouncementStatusPublished).
		Updates(map[string]interface{}{
			"assigned_deliverer_id": delivererID,
			"assigned_at":           now,
			"status":                constants.AnnouncementStatusAssigned,
			"updated_at":            now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Cancel 仅当公告仍在发布状态时取消，重复取消不产生变更
func (r *GormAnnouncementRepository) Cancel(id uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.Announcement{}).
		Where("id = ? AND status = ?", id, constants.AnnouncementStatusPublished).
		Updates(map[string]interface{}{
			"status":     constants.AnnouncementStatusCancelled,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
