package service

import (
	"fmt"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/repository"

	"github.com/shopspring/decimal"
)

// 系统默认偏好
const (
	defaultPreferredRadiusKm  = 10.0
	defaultMaxRadiusKm        = 25.0
	defaultWorkStartHour      = 9
	defaultWorkEndHour        = 17
	defaultMaxWeightKg        = 20.0
	defaultMaxOpenSuggestions = 5
)

var defaultMinPrice = decimal.NewFromInt(5)

var validWorkDays = map[string]struct{}{
	"mon": {}, "tue": {}, "wed": {}, "thu": {}, "fri": {}, "sat": {}, "sun": {},
}

// PreferenceService 配送员偏好服务
type PreferenceService struct {
	preferencesRepo repository.PreferencesRepository
	delivererRepo   repository.DelivererRepository
}

// NewPreferenceService 创建偏好服务
func NewPreferenceService(preferencesRepo repository.PreferencesRepository, delivererRepo repository.DelivererRepository) *PreferenceService {
	return &PreferenceService{
		preferencesRepo: preferencesRepo,
		delivererRepo:   delivererRepo,
	}
}

// GetOrCreate 获取配送员偏好，首次读取时持久化系统默认值
func (s *PreferenceService) GetOrCreate(delivererID uint) (*models.DelivererPreferences, error) {
	deliverer, err := s.delivererRepo.GetByID(delivererID)
	if err != nil {
		return nil, err
	}
	if deliverer == nil {
		return nil, ErrDelivererNotFound
	}

	preferences, err := s.preferencesRepo.GetByDeliverer(delivererID)
	if err != nil {
		return nil, err
	}
	if preferences != nil {
		return preferences, nil
	}

	preferences = defaultPreferences(deliverer)
	if err := s.preferencesRepo.Create(preferences); err != nil {
		// 并发首读时另一方可能已落库，回读为准
		existing, getErr := s.preferencesRepo.GetByDeliverer(delivererID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	logger.Infow("preferences_default_created", "deliverer_id", delivererID)
	return preferences, nil
}

// UpsertPreferencesInput 偏好写入参数
type UpsertPreferencesInput struct {
	DelivererID             uint
	PreferredRadiusKm       float64
	MaxRadiusKm             float64
	HomeLat                 float64
	HomeLng                 float64
	WorkDays                []string
	WorkStartHour           int
	WorkEndHour             int
	PackageCategories       []string
	MaxWeightKg             float64
	MinPrice                *models.Money
	Negotiable              bool
	MaxOpenSuggestions      *int
	AutoDeclineAfterMinutes *int
}

// Upsert 校验并写入配送员偏好
func (s *PreferenceService) Upsert(input UpsertPreferencesInput) (*models.DelivererPreferences, error) {
	deliverer, err := s.delivererRepo.GetByID(input.DelivererID)
	if err != nil {
		return nil, err
	}
	if deliverer == nil {
		return nil, ErrDelivererNotFound
	}

	if input.PreferredRadiusKm <= 0 || input.MaxRadiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrPreferencesInvalid)
	}
	if input.PreferredRadiusKm > input.MaxRadiusKm {
		return nil, ErrRadiusOrderInvalid
	}
	if input.WorkStartHour < 0 || input.WorkStartHour > 23 || input.WorkEndHour < 0 || input.WorkEndHour > 24 {
		return nil, ErrWorkWindowInvalid
	}
	for _, day := range input.WorkDays {
		if _, ok := validWorkDays[day]; !ok {
			return nil, fmt.Errorf("%w: work day %q", ErrPreferencesInvalid, day)
		}
	}
	if input.MaxWeightKg < 0 {
		return nil, fmt.Errorf("%w: max weight", ErrPreferencesInvalid)
	}
	if input.MinPrice != nil && input.MinPrice.IsNegative() {
		return nil, fmt.Errorf("%w: min price", ErrPreferencesInvalid)
	}
	if input.AutoDeclineAfterMinutes != nil && *input.AutoDeclineAfterMinutes < 1 {
		return nil, fmt.Errorf("%w: auto decline delay", ErrPreferencesInvalid)
	}

	maxOpen := defaultMaxOpenSuggestions
	if input.MaxOpenSuggestions != nil {
		if *input.MaxOpenSuggestions < 1 {
			return nil, fmt.Errorf("%w: max open suggestions", ErrPreferencesInvalid)
		}
		maxOpen = *input.MaxOpenSuggestions
	}

	preferences, err := s.preferencesRepo.GetByDeliverer(input.DelivererID)
	if err != nil {
		return nil, err
	}
	if preferences == nil {
		preferences = &models.DelivererPreferences{DelivererID: input.DelivererID}
	}

	preferences.PreferredRadiusKm = input.PreferredRadiusKm
	preferences.MaxRadiusKm = input.MaxRadiusKm
	preferences.HomeLat = input.HomeLat
	preferences.HomeLng = input.HomeLng
	preferences.WorkDays = models.StringSlice(input.WorkDays)
	preferences.WorkStartHour = input.WorkStartHour
	preferences.WorkEndHour = input.WorkEndHour
	preferences.PackageCategories = models.StringSlice(input.PackageCategories)
	preferences.MaxWeightKg = input.MaxWeightKg
	preferences.Negotiable = input.Negotiable
	preferences.MaxOpenSuggestions = maxOpen
	preferences.AutoDeclineAfterMinutes = input.AutoDeclineAfterMinutes
	if input.MinPrice != nil {
		preferences.MinPrice = *input.MinPrice
	}

	if preferences.ID == 0 {
		err = s.preferencesRepo.Create(preferences)
	} else {
		err = s.preferencesRepo.Save(preferences)
	}
	if err != nil {
		return nil, err
	}
	return preferences, nil
}

// defaultPreferences 构造系统默认偏好，家庭位置取配送员当前位置
func defaultPreferences(deliverer *models.Deliverer) *models.DelivererPreferences {
	return &models.DelivererPreferences{
		DelivererID:       deliverer.ID,
		PreferredRadiusKm: defaultPreferredRadiusKm,
		MaxRadiusKm:       defaultMaxRadiusKm,
		HomeLat:           deliverer.CurrentLat,
		HomeLng:           deliverer.CurrentLng,
		WorkDays:          models.StringSlice{"mon", "tue", "wed", "thu", "fri", "sat", "sun"},
		WorkStartHour:     defaultWorkStartHour,
		WorkEndHour:       defaultWorkEndHour,
		PackageCategories: models.StringSlice{
			constants.PackageCategoryStandard,
			constants.PackageCategoryFragile,
		},
		MaxWeightKg:        defaultMaxWeightKg,
		MinPrice:           models.NewMoneyFromDecimal(defaultMinPrice),
		Negotiable:         true,
		MaxOpenSuggestions: defaultMaxOpenSuggestions,
	}
}
