package public

import (
	"strconv"

	handlershared "github.com/ecomatch/internal/http/handlers/shared"
	"github.com/ecomatch/internal/http/response"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/repository"
	"github.com/ecomatch/internal/service"

	"github.com/gin-gonic/gin"
)

// RespondMatchRequest 候选响应请求
type RespondMatchRequest struct {
	Accept        bool          `json:"accept"`
	ProposedPrice *models.Money `json:"proposed_price"`
	Reason        string        `json:"reason"`
}

// ListMatches 分页查询撮合候选
func (h *Handler) ListMatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	announcementID, _ := strconv.ParseUint(c.Query("announcement_id"), 10, 64)
	delivererID, _ := strconv.ParseUint(c.Query("deliverer_id"), 10, 64)
	minScore, _ := strconv.ParseFloat(c.Query("min_score"), 64)

	candidates, total, err := h.MatchingService.List(repository.MatchListFilter{
		AnnouncementID: uint(announcementID),
		DelivererID:    uint(delivererID),
		State:          c.Query("state"),
		Variant:        c.Query("variant"),
		MinScore:       minScore,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "match candidates fetch failed", err)
		return
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, candidates, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetMatch 查询单个撮合候选
func (h *Handler) GetMatch(c *gin.Context) {
	candidateID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	candidate, err := h.MatchingService.Get(candidateID)
	if err != nil {
		respondMatchRespondError(c, err)
		return
	}

	response.Success(c, candidate)
}

// RespondMatch 配送员接受或拒绝建议
func (h *Handler) RespondMatch(c *gin.Context) {
	candidateID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req RespondMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	candidate, err := h.LifecycleService.Respond(service.RespondInput{
		CandidateID:   candidateID,
		Accept:        req.Accept,
		ProposedPrice: req.ProposedPrice,
		Reason:        req.Reason,
	})
	if err != nil {
		respondMatchRespondError(c, err)
		return
	}

	response.Success(c, candidate)
}
