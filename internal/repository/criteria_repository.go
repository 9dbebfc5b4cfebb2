package repository

import (
	"errors"

	"github.com/ecomatch/internal/models"

	"gorm.io/gorm"
)

// CriteriaRepository 撮合条件数据访问接口
type CriteriaRepository interface {
	GetByAnnouncement(announcementID uint) (*models.MatchingCriteria, error)
	Upsert(criteria *models.MatchingCriteria) error
	WithTx(tx *gorm.DB) *GormCriteriaRepository
}

// GormCriteriaRepository GORM 实现
type GormCriteriaRepository struct {
	db *gorm.DB
}

// NewCriteriaRepository 创建撮合条件仓库
func NewCriteriaRepository(db *gorm.DB) *GormCriteriaRepository {
	return &GormCriteriaRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCriteriaRepository) WithTx(tx *gorm.DB) *GormCriteriaRepository {
	if tx == nil {
		return r
	}
	return &GormCriteriaRepository{db: tx}
}

// GetByAnnouncement 根据公告获取撮合条件
func (r *GormCriteriaRepository) GetByAnnouncement(announcementID uint) (*models.MatchingCriteria, error) {
	var criteria models.MatchingCriteria
	if err := r.db.Where("announcement_id = ?", announcementID).First(&criteria).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &criteria, nil
}

// Upsert 按公告维度覆盖写入撮合条件
func (r *GormCriteriaRepository) Upsert(criteria *models.MatchingCriteria) error {
	existing, err := r.GetByAnnouncement(criteria.AnnouncementID)
	if err != nil {
		return err
	}
	if existing != nil {
		criteria.ID = existing.ID
		criteria.CreatedAt = existing.CreatedAt
		return r.db.Save(criteria).Error
	}
	return r.db.Create(criteria).Error
}
