package constants

// 撮合候选状态
const (
	MatchStatePending   = "pending"
	MatchStateSuggested = "suggested"
	MatchStateAccepted  = "accepted"
	MatchStateRejected  = "rejected"
	MatchStateExpired   = "expired"
)

// 撮合算法变体
const (
	VariantHybrid           = "hybrid"
	VariantDistancePriority = "distance_priority"
	VariantRatingPriority   = "rating_priority"
)

// 配送公告状态
const (
	AnnouncementStatusPublished = "published"
	AnnouncementStatusAssigned  = "assigned"
	AnnouncementStatusCancelled = "cancelled"
	AnnouncementStatusCompleted = "completed"
)

// 撮合优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 包裹类别
const (
	PackageCategoryStandard     = "standard"
	PackageCategoryFragile      = "fragile"
	PackageCategoryRefrigerated = "refrigerated"
	PackageCategoryOversized    = "oversized"
)

// 车辆类型
const (
	VehicleTypeBike  = "bike"
	VehicleTypeCar   = "car"
	VehicleTypeVan   = "van"
	VehicleTypeTruck = "truck"
)

// 配送记录状态
const (
	DeliveryStatusCreated    = "created"
	DeliveryStatusInProgress = "in_progress"
	DeliveryStatusCompleted  = "completed"
)

// 通知类型
const (
	NotificationMatchSuggested = "match_suggested"
	NotificationMatchAccepted  = "match_accepted"
	NotificationMatchRejected  = "match_rejected"
	NotificationMatchExpired   = "match_expired"
)

// 通知接收方类型
const (
	RecipientTypeClient    = "client"
	RecipientTypeDeliverer = "deliverer"
)

// 异步任务名称
const (
	TaskMatchNotify     = "match:notify"
	TaskMatchAutoAssign = "match:auto_assign"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)
