package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/models"

	"gorm.io/gorm"
)

// MatchRepository 撮合候选数据访问接口
type MatchRepository interface {
	CreateBatch(candidates []models.MatchCandidate) error
	GetByID(id uint) (*models.MatchCandidate, error)
	List(filter MatchListFilter) ([]models.MatchCandidate, int64, error)
	ListByAnnouncement(announcementID uint, states ...string) ([]models.MatchCandidate, error)
	CountOpenByDeliverer(delivererID uint) (int64, error)
	UpdateStateFrom(id uint, fromState, toState string, updates map[string]interface{}) (bool, error)
	ExpireSiblings(announcementID uint, excludeID uint, now time.Time) (int64, error)
	ExpireOverdue(now time.Time) (int64, error)
	GetStats(filter StatsFilter) (MatchStatsRow, error)
	WithTx(tx *gorm.DB) *GormMatchRepository
}

// openStates 尚未进入终态的候选状态
var openStates = []string{constants.MatchStatePending, constants.MatchStateSuggested}

// GormMatchRepository GORM 实现
type GormMatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository 创建撮合候选仓库
func NewMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMatchRepository) WithTx(tx *gorm.DB) *GormMatchRepository {
	if tx == nil {
		return r
	}
	return &GormMatchRepository{db: tx}
}

// CreateBatch 批量写入一次撮合运行产出的候选
func (r *GormMatchRepository) CreateBatch(candidates []models.MatchCandidate) error {
	if len(candidates) == 0 {
		return nil
	}
	return r.db.Create(&candidates).Error
}

// GetByID 根据 ID 获取候选
func (r *GormMatchRepository) GetByID(id uint) (*models.MatchCandidate, error) {
	var candidate models.MatchCandidate
	if err := r.db.First(&candidate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &candidate, nil
}

// List 按条件分页查询候选，固定按总分降序、距离升序、配送员升序
func (r *GormMatchRepository) List(filter MatchListFilter) ([]models.MatchCandidate, int64, error) {
	query := r.db.Model(&models.MatchCandidate{})
	if filter.AnnouncementID > 0 {
		query = query.Where("announcement_id = ?", filter.AnnouncementID)
	}
	if filter.DelivererID > 0 {
		query = query.Where("deliverer_id = ?", filter.DelivererID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.Variant != "" {
		query = query.Where("variant = ?", filter.Variant)
	}
	if filter.MinScore > 0 {
		query = query.Where("overall_score >= ?", filter.MinScore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var candidates []models.MatchCandidate
	query = query.Order("overall_score DESC").
		Order("estimated_distance_km ASC").
		Order("deliverer_id ASC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&candidates).Error; err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

// ListByAnnouncement 查询公告的候选，可按状态过滤，排序与 List 一致
func (r *GormMatchRepository) ListByAnnouncement(announcementID uint, states ...string) ([]models.MatchCandidate, error) {
	query := r.db.Where("announcement_id = ?", announcementID)
	if len(states) > 0 {
		query = query.Where("state IN ?", states)
	}
	var candidates []models.MatchCandidate
	err := query.Order("overall_score DESC").
		Order("estimated_distance_km ASC").
		Order("deliverer_id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// CountOpenByDeliverer 统计配送员当前未响应的建议数
func (r *GormMatchRepository) CountOpenByDeliverer(delivererID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.MatchCandidate{}).
		Where("deliverer_id = ? AND state IN ?", delivererID, openStates).
		Count(&count).Error
	return count, err
}

// UpdateStateFrom 条件状态迁移，仅当当前状态等于期望值时生效。
// 返回 false 表示状态已被并发修改。
func (r *GormMatchRepository) UpdateStateFrom(id uint, fromState, toState string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"state": toState}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.MatchCandidate{}).
		Where("id = ? AND state = ?", id, fromState).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExpireSiblings 将公告下除指定候选外的所有未终态候选置为过期。
// excludeID 为 0 时过期全部未终态候选。
func (r *GormMatchRepository) ExpireSiblings(announcementID uint, excludeID uint, now time.Time) (int64, error) {
	query := r.db.Model(&models.MatchCandidate{}).
		Where("announcement_id = ? AND state IN ?", announcementID, openStates)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	result := query.Updates(map[string]interface{}{
		"state":      constants.MatchStateExpired,
		"updated_at": now,
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ExpireOverdue 将所有超过有效期的未终态候选置为过期
func (r *GormMatchRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&models.MatchCandidate{}).
		Where("state IN ? AND expires_at <= ?", openStates, now).
		Updates(map[string]interface{}{
			"state":      constants.MatchStateExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// GetStats 按时间窗口聚合撮合统计
func (r *GormMatchRepository) GetStats(filter StatsFilter) (MatchStatsRow, error) {
	selectExpr := fmt.Sprintf(`
		COUNT(*) AS total,
		SUM(CASE WHEN state = 'suggested' THEN 1 ELSE 0 END) AS suggested,
		SUM(CASE WHEN state = 'accepted' THEN 1 ELSE 0 END) AS accepted,
		SUM(CASE WHEN state = 'rejected' THEN 1 ELSE 0 END) AS rejected,
		SUM(CASE WHEN state = 'expired' THEN 1 ELSE 0 END) AS expired,
		COALESCE(AVG(distance_score), 0) AS avg_distance_score,
		COALESCE(AVG(time_score), 0) AS avg_time_score,
		COALESCE(AVG(price_score), 0) AS avg_price_score,
		COALESCE(AVG(rating_score), 0) AS avg_rating_score,
		COALESCE(AVG(overall_score), 0) AS avg_overall_score,
		COALESCE(AVG(CASE WHEN responded_at IS NOT NULL THEN %s END), 0) AS avg_response_seconds`,
		responseSecondsExpr(r.db))

	query := r.db.Model(&models.MatchCandidate{}).Select(selectExpr)
	if !filter.StartAt.IsZero() {
		query = query.Where("suggested_at >= ?", filter.StartAt)
	}
	if !filter.EndAt.IsZero() {
		query = query.Where("suggested_at < ?", filter.EndAt)
	}
	if filter.Variant != "" {
		query = query.Where("variant = ?", filter.Variant)
	}

	var row MatchStatsRow
	if err := query.Scan(&row).Error; err != nil {
		return MatchStatsRow{}, err
	}
	return row, nil
}
