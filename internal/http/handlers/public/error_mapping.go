package public

import (
	"errors"

	"github.com/ecomatch/internal/http/response"
	"github.com/ecomatch/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var criteriaCommonErrorRules = []mappedHandlerError{
	{target: service.ErrAnnouncementNotFound, code: response.CodeNotFound, msg: "announcement not found"},
	{target: service.ErrVariantUnknown, code: response.CodeBadRequest, msg: "unknown matching variant"},
	{target: service.ErrThresholdOutOfRange, code: response.CodeBadRequest, msg: "score threshold out of range"},
	{target: service.ErrMaxSuggestionsInvalid, code: response.CodeBadRequest, msg: "max suggestions invalid"},
	{target: service.ErrTimeWindowInvalid, code: response.CodeBadRequest, msg: "pickup window invalid"},
	{target: service.ErrPriceBoundsInvalid, code: response.CodeBadRequest, msg: "price bounds invalid"},
	{target: service.ErrCriteriaInvalid, code: response.CodeBadRequest, msg: "matching criteria invalid"},
}

var criteriaGetExtraErrorRules = []mappedHandlerError{
	{target: service.ErrCriteriaNotFound, code: response.CodeNotFound, msg: "matching criteria not found"},
}

var preferencesErrorRules = []mappedHandlerError{
	{target: service.ErrDelivererNotFound, code: response.CodeNotFound, msg: "deliverer not found"},
	{target: service.ErrRadiusOrderInvalid, code: response.CodeBadRequest, msg: "preferred radius exceeds max radius"},
	{target: service.ErrWorkWindowInvalid, code: response.CodeBadRequest, msg: "working hours window invalid"},
	{target: service.ErrPreferencesInvalid, code: response.CodeBadRequest, msg: "preferences invalid"},
}

var matchingRunErrorRules = []mappedHandlerError{
	{target: service.ErrAnnouncementNotFound, code: response.CodeNotFound, msg: "announcement not found"},
	{target: service.ErrAnnouncementClosed, code: response.CodeConflict, msg: "announcement is no longer open for matching"},
	{target: service.ErrVariantUnknown, code: response.CodeBadRequest, msg: "unknown matching variant"},
}

var matchingCancelErrorRules = []mappedHandlerError{
	{target: service.ErrAnnouncementNotFound, code: response.CodeNotFound, msg: "announcement not found"},
	{target: service.ErrAnnouncementClosed, code: response.CodeConflict, msg: "announcement already assigned"},
}

var matchRespondErrorRules = []mappedHandlerError{
	{target: service.ErrCandidateNotFound, code: response.CodeNotFound, msg: "match candidate not found"},
	{target: service.ErrCandidateNotOpen, code: response.CodeInvalidState, msg: "match candidate is not awaiting response"},
	{target: service.ErrAssignConflict, code: response.CodeConflict, msg: "announcement already assigned to another deliverer"},
}

func respondCriteriaUpsertError(c *gin.Context, err error) {
	respondWithMappedError(c, err, criteriaCommonErrorRules, response.CodeInternal, "criteria save failed")
}

func respondCriteriaGetError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(criteriaCommonErrorRules, criteriaGetExtraErrorRules), response.CodeInternal, "criteria fetch failed")
}

func respondPreferencesError(c *gin.Context, err error) {
	respondWithMappedError(c, err, preferencesErrorRules, response.CodeInternal, "preferences request failed")
}

func respondMatchingRunError(c *gin.Context, err error) {
	respondWithMappedError(c, err, matchingRunErrorRules, response.CodeInternal, "matching run failed")
}

func respondMatchingCancelError(c *gin.Context, err error) {
	respondWithMappedError(c, err, matchingCancelErrorRules, response.CodeInternal, "matching cancel failed")
}

func respondMatchRespondError(c *gin.Context, err error) {
	respondWithMappedError(c, err, matchRespondErrorRules, response.CodeInternal, "match response failed")
}
