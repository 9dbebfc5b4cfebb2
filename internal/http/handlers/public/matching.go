package public

import (
	"strconv"

	"github.com/ecomatch/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RunMatching 为公告执行撮合，force=true 时过期现有建议后重算
func (h *Handler) RunMatching(c *gin.Context) {
	announcementID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	candidates, err := h.MatchingService.Run(announcementID, force)
	if err != nil {
		respondMatchingRunError(c, err)
		return
	}

	response.Success(c, gin.H{
		"announcement_id": announcementID,
		"candidates":      candidates,
	})
}

// CancelMatching 取消公告撮合，重复取消幂等
func (h *Handler) CancelMatching(c *gin.Context) {
	announcementID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.LifecycleService.CancelMatching(announcementID); err != nil {
		respondMatchingCancelError(c, err)
		return
	}

	response.SuccessWithMsg(c, "matching cancelled", gin.H{
		"announcement_id": announcementID,
	})
}
