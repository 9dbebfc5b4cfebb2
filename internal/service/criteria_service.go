package service

import (
	"fmt"
	"time"

	"github.com/ecomatch/internal/config"
	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/matching"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/repository"
)

// CriteriaService 撮合条件服务
type CriteriaService struct {
	criteriaRepo     repository.CriteriaRepository
	announcementRepo repository.AnnouncementRepository
	defaults         config.MatchingConfig
}

// NewCriteriaService 创建撮合条件服务
func NewCriteriaService(criteriaRepo repository.CriteriaRepository, announcementRepo repository.AnnouncementRepository, defaults config.MatchingConfig) *CriteriaService {
	return &CriteriaService{
		criteriaRepo:     criteriaRepo,
		announcementRepo: announcementRepo,
		defaults:         defaults,
	}
}

// UpsertCriteriaInput 撮合条件写入参数
type UpsertCriteriaInput struct {
	AnnouncementID         uint
	Variant                string
	Priority               string
	MaxDistanceKm          float64
	PreferredRadiusKm      float64
	AllowPartialRoute      bool
	PickupAfter            *time.Time
	PickupBefore           *time.Time
	MaxDelayMinutes        int
	VehicleTypes           []string
	MinVehicleCapacityKg   float64
	MinRating              float64
	PriceMin               *models.Money
	PriceMax               *models.Money
	AutoAssignAfterMinutes *int
	MaxSuggestions         *int
	ScoreThreshold         *float64
}

// Upsert 校验并按公告维度覆盖写入撮合条件
func (s *CriteriaService) Upsert(input UpsertCriteriaInput) (*models.MatchingCriteria, error) {
	announcement, err := s.announcementRepo.GetByID(input.AnnouncementID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnnouncementFetch, err)
	}
	if announcement == nil {
		return nil, ErrAnnouncementNotFound
	}

	variant := input.Variant
	if variant == "" {
		variant = s.defaultVariant()
	}
	if !matching.KnownVariant(variant) {
		return nil, fmt.Errorf("%w: %s", ErrVariantUnknown, variant)
	}

	threshold := s.defaults.DefaultScoreThreshold
	if input.ScoreThreshold != nil {
		threshold = *input.ScoreThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: %v", ErrThresholdOutOfRange, threshold)
	}

	maxSuggestions := s.defaults.DefaultMaxSuggestions
	if input.MaxSuggestions != nil {
		maxSuggestions = *input.MaxSuggestions
	}
	if maxSuggestions < 1 {
		return nil, fmt.Errorf("%w: %d", ErrMaxSuggestionsInvalid, maxSuggestions)
	}

	if input.PickupAfter != nil && input.PickupBefore != nil && !input.PickupBefore.After(*input.PickupAfter) {
		return nil, ErrTimeWindowInvalid
	}
	if input.PriceMin != nil && input.PriceMax != nil && input.PriceMin.GreaterThan(input.PriceMax.Decimal) {
		return nil, ErrPriceBoundsInvalid
	}
	if input.MinRating < 0 || input.MinRating > 5 {
		return nil, fmt.Errorf("%w: min rating %v", ErrCriteriaInvalid, input.MinRating)
	}
	if input.MaxDelayMinutes < 0 {
		return nil, fmt.Errorf("%w: max delay %d", ErrCriteriaInvalid, input.MaxDelayMinutes)
	}
	if input.AutoAssignAfterMinutes != nil && *input.AutoAssignAfterMinutes < 1 {
		return nil, fmt.Errorf("%w: auto assign delay %d", ErrCriteriaInvalid, *input.AutoAssignAfterMinutes)
	}

	maxDistance := input.MaxDistanceKm
	if maxDistance <= 0 {
		maxDistance = s.defaults.DefaultMaxDistanceKm
	}
	maxDelay := input.MaxDelayMinutes
	if maxDelay == 0 {
		maxDelay = s.defaults.DefaultMaxDelayMins
	}
	priority := input.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	}

	criteria := &models.MatchingCriteria{
		AnnouncementID:         input.AnnouncementID,
		Variant:                variant,
		Priority:               priority,
		MaxDistanceKm:          maxDistance,
		PreferredRadiusKm:      input.PreferredRadiusKm,
		AllowPartialRoute:      input.AllowPartialRoute,
		PickupAfter:            input.PickupAfter,
		PickupBefore:           input.PickupBefore,
		MaxDelayMinutes:        maxDelay,
		VehicleTypes:           models.StringSlice(input.VehicleTypes),
		MinVehicleCapacityKg:   input.MinVehicleCapacityKg,
		MinRating:              input.MinRating,
		AutoAssignAfterMinutes: input.AutoAssignAfterMinutes,
		MaxSuggestions:         maxSuggestions,
		ScoreThreshold:         threshold,
	}
	if input.PriceMin != nil {
		criteria.PriceMin = *input.PriceMin
	} else {
		criteria.PriceMin = announcement.SuggestedPrice
	}
	if input.PriceMax != nil {
		criteria.PriceMax = *input.PriceMax
	} else {
		criteria.PriceMax = announcement.MaxPrice
	}
	if criteria.PickupAfter == nil {
		criteria.PickupAfter = announcement.PickupAfter
	}
	if criteria.PickupBefore == nil {
		criteria.PickupBefore = announcement.PickupBefore
	}

	if err := s.criteriaRepo.Upsert(criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}

// Get 获取公告的撮合条件
func (s *CriteriaService) Get(announcementID uint) (*models.MatchingCriteria, error) {
	announcement, err := s.announcementRepo.GetByID(announcementID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnnouncementFetch, err)
	}
	if announcement == nil {
		return nil, ErrAnnouncementNotFound
	}
	criteria, err := s.criteriaRepo.GetByAnnouncement(announcementID)
	if err != nil {
		return nil, err
	}
	if criteria == nil {
		return nil, ErrCriteriaNotFound
	}
	return criteria, nil
}

// EnsureForAnnouncement 返回公告的撮合条件，缺失时落一条系统默认条件
func (s *CriteriaService) EnsureForAnnouncement(announcement *models.Announcement) (*models.MatchingCriteria, error) {
	criteria, err := s.criteriaRepo.GetByAnnouncement(announcement.ID)
	if err != nil {
		return nil, err
	}
	if criteria != nil {
		return criteria, nil
	}

	criteria = &models.MatchingCriteria{
		AnnouncementID:  announcement.ID,
		Variant:         s.defaultVariant(),
		Priority:        constants.PriorityMedium,
		MaxDistanceKm:   s.defaults.DefaultMaxDistanceKm,
		PickupAfter:     announcement.PickupAfter,
		PickupBefore:    announcement.PickupBefore,
		MaxDelayMinutes: s.defaults.DefaultMaxDelayMins,
		PriceMin:        announcement.SuggestedPrice,
		PriceMax:        announcement.MaxPrice,
		MaxSuggestions:  s.defaults.DefaultMaxSuggestions,
		ScoreThreshold:  s.defaults.DefaultScoreThreshold,
	}
	if err := s.criteriaRepo.Upsert(criteria); err != nil {
		return nil, err
	}
	logger.Infow("criteria_default_created",
		"announcement_id", announcement.ID,
		"variant", criteria.Variant,
	)
	return criteria, nil
}

func (s *CriteriaService) defaultVariant() string {
	if matching.KnownVariant(s.defaults.DefaultVariant) {
		return s.defaults.DefaultVariant
	}
	return constants.VariantHybrid
}
