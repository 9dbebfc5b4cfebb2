package public

import (
	"time"

	"github.com/ecomatch/internal/http/response"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/service"

	"github.com/gin-gonic/gin"
)

// UpsertCriteriaRequest 撮合条件写入请求
type UpsertCriteriaRequest struct {
	Variant                string        `json:"variant"`
	Priority               string        `json:"priority"`
	MaxDistanceKm          float64       `json:"max_distance_km"`
	PreferredRadiusKm      float64       `json:"preferred_radius_km"`
	AllowPartialRoute      bool          `json:"allow_partial_route"`
	PickupAfter            *time.Time    `json:"pickup_after"`
	PickupBefore           *time.Time    `json:"pickup_before"`
	MaxDelayMinutes        int           `json:"max_delay_minutes"`
	VehicleTypes           []string      `json:"vehicle_types"`
	MinVehicleCapacityKg   float64       `json:"min_vehicle_capacity_kg"`
	MinRating              float64       `json:"min_rating"`
	PriceMin               *models.Money `json:"price_min"`
	PriceMax               *models.Money `json:"price_max"`
	AutoAssignAfterMinutes *int          `json:"auto_assign_after_minutes"`
	MaxSuggestions         *int          `json:"max_suggestions"`
	ScoreThreshold         *float64      `json:"score_threshold"`
}

// UpsertCriteria 写入公告的撮合条件
func (h *Handler) UpsertCriteria(c *gin.Context) {
	announcementID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpsertCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	criteria, err := h.CriteriaService.Upsert(service.UpsertCriteriaInput{
		AnnouncementID:         announcementID,
		Variant:                req.Variant,
		Priority:               req.Priority,
		MaxDistanceKm:          req.MaxDistanceKm,
		PreferredRadiusKm:      req.PreferredRadiusKm,
		AllowPartialRoute:      req.AllowPartialRoute,
		PickupAfter:            req.PickupAfter,
		PickupBefore:           req.PickupBefore,
		MaxDelayMinutes:        req.MaxDelayMinutes,
		VehicleTypes:           req.VehicleTypes,
		MinVehicleCapacityKg:   req.MinVehicleCapacityKg,
		MinRating:              req.MinRating,
		PriceMin:               req.PriceMin,
		PriceMax:               req.PriceMax,
		AutoAssignAfterMinutes: req.AutoAssignAfterMinutes,
		MaxSuggestions:         req.MaxSuggestions,
		ScoreThreshold:         req.ScoreThreshold,
	})
	if err != nil {
		respondCriteriaUpsertError(c, err)
		return
	}

	response.Success(c, criteria)
}

// GetCriteria 查询公告的撮合条件
func (h *Handler) GetCriteria(c *gin.Context) {
	announcementID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	criteria, err := h.CriteriaService.Get(announcementID)
	if err != nil {
		respondCriteriaGetError(c, err)
		return
	}

	response.Success(c, criteria)
}
