package admin

import (
	"errors"
	"time"

	"github.com/ecomatch/internal/http/response"
	"github.com/ecomatch/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMatchingStats 按时间窗口聚合撮合指标
func (h *Handler) GetMatchingStats(c *gin.Context) {
	var startAt, endAt time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid from timestamp", err)
			return
		}
		startAt = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid to timestamp", err)
			return
		}
		endAt = parsed
	}

	summary, err := h.StatsService.GetStats(startAt, endAt, c.Query("variant"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStatsWindowInvalid):
			respondError(c, response.CodeBadRequest, "stats window invalid", nil)
		case errors.Is(err, service.ErrVariantUnknown):
			respondError(c, response.CodeBadRequest, "unknown matching variant", nil)
		default:
			respondError(c, response.CodeInternal, "stats fetch failed", err)
		}
		return
	}

	response.Success(c, summary)
}

// CancelMatching 管理端取消公告撮合
func (h *Handler) CancelMatching(c *gin.Context) {
	announcementID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.LifecycleService.CancelMatching(announcementID); err != nil {
		switch {
		case errors.Is(err, service.ErrAnnouncementNotFound):
			respondError(c, response.CodeNotFound, "announcement not found", nil)
		case errors.Is(err, service.ErrAnnouncementClosed):
			respondError(c, response.CodeConflict, "announcement already assigned", nil)
		default:
			respondError(c, response.CodeInternal, "matching cancel failed", err)
		}
		return
	}

	response.SuccessWithMsg(c, "matching cancelled", gin.H{
		"announcement_id": announcementID,
	})
}
