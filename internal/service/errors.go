package service

import "errors"

// 业务错误定义，由各接口的错误映射表转换为响应码
var (
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrAnnouncementClosed   = errors.New("announcement is no longer open for matching")
	ErrAssignConflict       = errors.New("announcement already assigned to another deliverer")

	ErrCriteriaNotFound      = errors.New("matching criteria not found")
	ErrVariantUnknown        = errors.New("unknown matching variant")
	ErrThresholdOutOfRange   = errors.New("score threshold out of range")
	ErrMaxSuggestionsInvalid = errors.New("max suggestions must be at least 1")
	ErrTimeWindowInvalid     = errors.New("pickup window is invalid")
	ErrPriceBoundsInvalid    = errors.New("price bounds are invalid")
	ErrCriteriaInvalid       = errors.New("matching criteria invalid")

	ErrDelivererNotFound   = errors.New("deliverer not found")
	ErrPreferencesInvalid  = errors.New("deliverer preferences invalid")
	ErrRadiusOrderInvalid  = errors.New("preferred radius exceeds max radius")
	ErrWorkWindowInvalid   = errors.New("working hours window is invalid")
	ErrCandidateNotFound   = errors.New("match candidate not found")
	ErrCandidateNotOpen    = errors.New("match candidate is not awaiting response")
	ErrStatsWindowInvalid  = errors.New("stats window is invalid")
	ErrMatchPersistFailed  = errors.New("match candidates persist failed")
	ErrMatchFetchFailed    = errors.New("match candidates fetch failed")
	ErrAnnouncementFetch   = errors.New("announcement fetch failed")
	ErrNotificationInvalid = errors.New("notification event invalid")
)
