package service

import (
	"time"

	"github.com/ecomatch/internal/matching"
	"github.com/ecomatch/internal/repository"
)

// StatsService 撮合统计服务
type StatsService struct {
	matchRepo repository.MatchRepository
}

// NewStatsService 创建统计服务
func NewStatsService(matchRepo repository.MatchRepository) *StatsService {
	return &StatsService{matchRepo: matchRepo}
}

// StatsSummary 时间窗口内的撮合聚合结果
type StatsSummary struct {
	Total     int64 `json:"total"`
	Suggested int64 `json:"suggested"`
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
	Expired   int64 `json:"expired"`

	AcceptanceRate float64 `json:"acceptance_rate"`

	AvgDistanceScore   float64 `json:"avg_distance_score"`
	AvgTimeScore       float64 `json:"avg_time_score"`
	AvgPriceScore      float64 `json:"avg_price_score"`
	AvgRatingScore     float64 `json:"avg_rating_score"`
	AvgOverallScore    float64 `json:"avg_overall_score"`
	AvgResponseSeconds float64 `json:"avg_response_seconds"`

	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Variant string    `json:"variant,omitempty"`
}

// GetStats 按时间窗口与可选变体聚合撮合指标
func (s *StatsService) GetStats(startAt, endAt time.Time, variant string) (*StatsSummary, error) {
	if !startAt.IsZero() && !endAt.IsZero() && !endAt.After(startAt) {
		return nil, ErrStatsWindowInvalid
	}
	if variant != "" && !matching.KnownVariant(variant) {
		return nil, ErrVariantUnknown
	}

	row, err := s.matchRepo.GetStats(repository.StatsFilter{
		StartAt: startAt,
		EndAt:   endAt,
		Variant: variant,
	})
	if err != nil {
		return nil, err
	}

	summary := &StatsSummary{
		Total:              row.Total,
		Suggested:          row.Suggested,
		Accepted:           row.Accepted,
		Rejected:           row.Rejected,
		Expired:            row.Expired,
		AvgDistanceScore:   row.AvgDistanceScore,
		AvgTimeScore:       row.AvgTimeScore,
		AvgPriceScore:      row.AvgPriceScore,
		AvgRatingScore:     row.AvgRatingScore,
		AvgOverallScore:    row.AvgOverallScore,
		AvgResponseSeconds: row.AvgResponseSeconds,
		StartAt:            startAt,
		EndAt:              endAt,
		Variant:            variant,
	}
	if summary.Total > 0 {
		summary.AcceptanceRate = float64(summary.Accepted) / float64(summary.Total)
	}
	return summary, nil
}
