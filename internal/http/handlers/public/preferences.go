package public

import (
	"github.com/ecomatch/internal/http/response"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/service"

	"github.com/gin-gonic/gin"
)

// UpsertPreferencesRequest 配送员偏好写入请求
type UpsertPreferencesRequest struct {
	PreferredRadiusKm       float64       `json:"preferred_radius_km"`
	MaxRadiusKm             float64       `json:"max_radius_km"`
	HomeLat                 float64       `json:"home_lat"`
	HomeLng                 float64       `json:"home_lng"`
	WorkDays                []string      `json:"work_days"`
	WorkStartHour           int           `json:"work_start_hour"`
	WorkEndHour             int           `json:"work_end_hour"`
	PackageCategories       []string      `json:"package_categories"`
	MaxWeightKg             float64       `json:"max_weight_kg"`
	MinPrice                *models.Money `json:"min_price"`
	Negotiable              bool          `json:"negotiable"`
	MaxOpenSuggestions      *int          `json:"max_open_suggestions"`
	AutoDeclineAfterMinutes *int          `json:"auto_decline_after_minutes"`
}

// GetPreferences 查询配送员偏好，首次查询返回系统默认值
func (h *Handler) GetPreferences(c *gin.Context) {
	delivererID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	preferences, err := h.PreferenceService.GetOrCreate(delivererID)
	if err != nil {
		respondPreferencesError(c, err)
		return
	}

	response.Success(c, preferences)
}

// UpsertPreferences 写入配送员偏好
func (h *Handler) UpsertPreferences(c *gin.Context) {
	delivererID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpsertPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	preferences, err := h.PreferenceService.Upsert(service.UpsertPreferencesInput{
		DelivererID:             delivererID,
		PreferredRadiusKm:       req.PreferredRadiusKm,
		MaxRadiusKm:             req.MaxRadiusKm,
		HomeLat:                 req.HomeLat,
		HomeLng:                 req.HomeLng,
		WorkDays:                req.WorkDays,
		WorkStartHour:           req.WorkStartHour,
		WorkEndHour:             req.WorkEndHour,
		PackageCategories:       req.PackageCategories,
		MaxWeightKg:             req.MaxWeightKg,
		MinPrice:                req.MinPrice,
		Negotiable:              req.Negotiable,
		MaxOpenSuggestions:      req.MaxOpenSuggestions,
		AutoDeclineAfterMinutes: req.AutoDeclineAfterMinutes,
	})
	if err != nil {
		respondPreferencesError(c, err)
		return
	}

	response.Success(c, preferences)
}
