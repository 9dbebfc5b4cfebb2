package repository

import "time"

// MatchListFilter 撮合候选列表筛选条件
type MatchListFilter struct {
	AnnouncementID uint
	DelivererID    uint
	State          string
	Variant        string
	MinScore       float64
	Page           int
	PageSize       int
}

// StatsFilter 撮合统计查询条件
type StatsFilter struct {
	StartAt time.Time
	EndAt   time.Time
	Variant string
}

// MatchStatsRow 撮合统计聚合行
type MatchStatsRow struct {
	Total     int64 `gorm:"column:total"`
	Suggested int64 `gorm:"column:suggested"`
	Accepted  int64 `gorm:"column:accepted"`
	Rejected  int64 `gorm:"column:rejected"`
	Expired   int64 `gorm:"column:expired"`

	AvgDistanceScore float64 `gorm:"column:avg_distance_score"`
	AvgTimeScore     float64 `gorm:"column:avg_time_score"`
	AvgPriceScore    float64 `gorm:"column:avg_price_score"`
	AvgRatingScore   float64 `gorm:"column:avg_rating_score"`
	AvgOverallScore  float64 `gorm:"column:avg_overall_score"`

	AvgResponseSeconds float64 `gorm:"column:avg_response_seconds"`
}
