package repository

import (
	"errors"

	"github.com/ecomatch/internal/matching"
	"github.com/ecomatch/internal/models"

	"gorm.io/gorm"
)

// DelivererRepository 配送员数据访问接口
type DelivererRepository interface {
	Create(deliverer *models.Deliverer) error
	GetByID(id uint) (*models.Deliverer, error)
	ListCandidatePool(pickupLat, pickupLng, maxDistanceKm, minRating float64) ([]models.Deliverer, error)
	WithTx(tx *gorm.DB) *GormDelivererRepository
}

// GormDelivererRepository GORM 实现
type GormDelivererRepository struct {
	db *gorm.DB
}

// NewDelivererRepository 创建配送员仓库
func NewDelivererRepository(db *gorm.DB) *GormDelivererRepository {
	return &GormDelivererRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDelivererRepository) WithTx(tx *gorm.DB) *GormDelivererRepository {
	if tx == nil {
		return r
	}
	return &GormDelivererRepository{db: tx}
}

// Create 创建配送员
func (r *GormDelivererRepository) Create(deliverer *models.Deliverer) error {
	return r.db.Create(deliverer).Error
}

// GetByID 根据 ID 获取配送员
func (r *GormDelivererRepository) GetByID(id uint) (*models.Deliverer, error) {
	var deliverer models.Deliverer
	if err := r.db.First(&deliverer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &deliverer, nil
}

// ListCandidatePool 查询候选池：可用、评分达标、位于取件点包围盒内。
// 包围盒按每度约 111 公里粗筛，精确的球面距离在撮合过滤阶段计算。
func (r *GormDelivererRepository) ListCandidatePool(pickupLat, pickupLng, maxDistanceKm, minRating float64) ([]models.Deliverer, error) {
	query := r.db.Model(&models.Deliverer{}).Where("available = ?", true)

	if minRating > 0 {
		query = query.Where("average_rating IS NULL OR average_rating >= ?", minRating)
	}
	if maxDistanceKm > 0 {
		delta := maxDistanceKm / matching.DegreeKm
		query = query.
			Where("current_lat BETWEEN ? AND ?", pickupLat-delta, pickupLat+delta).
			Where("current_lng BETWEEN ? AND ?", pickupLng-delta, pickupLng+delta)
	}

	var deliverers []models.Deliverer
	if err := query.Order("id ASC").Find(&deliverers).Error; err != nil {
		return nil, err
	}
	return deliverers, nil
}
