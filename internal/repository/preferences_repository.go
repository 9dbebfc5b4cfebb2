package repository

import (
	"errors"

	"github.com/ecomatch/internal/models"

	"gorm.io/gorm"
)

// PreferencesRepository 配送员偏好数据访问接口
type PreferencesRepository interface {
	GetByDeliverer(delivererID uint) (*models.DelivererPreferences, error)
	Create(preferences *models.DelivererPreferences) error
	Save(preferences *models.DelivererPreferences) error
	WithTx(tx *gorm.DB) *GormPreferencesRepository
}

// GormPreferencesRepository GORM 实现
type GormPreferencesRepository struct {
	db *gorm.DB
}

// NewPreferencesRepository 创建偏好仓库
func NewPreferencesRepository(db *gorm.DB) *GormPreferencesRepository {
	return &GormPreferencesRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPreferencesRepository) WithTx(tx *gorm.DB) *GormPreferencesRepository {
	if tx == nil {
		return r
	}
	return &GormPreferencesRepository{db: tx}
}

// GetByDeliverer 根据配送员获取偏好
func (r *GormPreferencesRepository) GetByDeliverer(delivererID uint) (*models.DelivererPreferences, error) {
	var preferences models.DelivererPreferences
	if err := r.db.Where("deliverer_id = ?", delivererID).First(&preferences).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &preferences, nil
}

// Create 创建偏好
func (r *GormPreferencesRepository) Create(preferences *models.DelivererPreferences) error {
	return r.db.Create(preferences).Error
}

// Save 保存偏好
func (r *GormPreferencesRepository) Save(preferences *models.DelivererPreferences) error {
	return r.db.Save(preferences).Error
}
