package matching

import "time"

// 硬性过滤的拒绝原因，仅用于日志排查
const (
	ReasonUnavailable     = "unavailable"
	ReasonVehicleType     = "vehicle_type"
	ReasonVehicleCapacity = "vehicle_capacity"
	ReasonRatingFloor     = "rating_floor"
	ReasonServiceRadius   = "service_radius"
	ReasonMaxDistance     = "max_distance"
	ReasonPackageCategory = "package_category"
	ReasonPackageWeight   = "package_weight"
	ReasonWorkingHours    = "working_hours"
	ReasonMinPrice        = "min_price"
)

// Request 撮合请求快照
type Request struct {
	PickupLat       float64
	PickupLng       float64
	DeliveryLat     float64
	DeliveryLng     float64
	PackageCategory string
	WeightKg        float64
	SuggestedPrice  float64
	MaxPrice        float64
	Negotiable      bool
	PickupAfter     *time.Time
	PickupBefore    *time.Time
}

// Agent 配送员快照
type Agent struct {
	ID                uint
	Available         bool
	VehicleType       string
	VehicleCapacityKg float64
	Lat               float64
	Lng               float64
	AvailableFrom     *time.Time
	Rating            *float64
	RatingCount       int
}

// AgentPreferences 配送员接单偏好
type AgentPreferences struct {
	MaxRadiusKm       float64
	WorkDays          []string
	WorkStartHour     int
	WorkEndHour       int
	PackageCategories []string
	MaxWeightKg       float64
	MinPrice          float64
	Negotiable        bool
}

// Constraints 请求方的硬性约束
type Constraints struct {
	MaxDistanceKm        float64
	VehicleTypes         []string
	MinVehicleCapacityKg float64
	MinRating            float64
	MaxDelayMinutes      float64
}

// Eligible 按硬性条件判定配送员是否可参与撮合。
// 所有条件一票否决，不参与加权评分；返回首个不满足的原因。
func Eligible(req Request, agent Agent, prefs AgentPreferences, c Constraints, now time.Time) (bool, string) {
	if !agent.Available {
		return false, ReasonUnavailable
	}
	if len(c.VehicleTypes) > 0 && !containsString(c.VehicleTypes, agent.VehicleType) {
		return false, ReasonVehicleType
	}
	if c.MinVehicleCapacityKg > 0 && agent.VehicleCapacityKg < c.MinVehicleCapacityKg {
		return false, ReasonVehicleCapacity
	}
	if agent.VehicleCapacityKg > 0 && req.WeightKg > agent.VehicleCapacityKg {
		return false, ReasonVehicleCapacity
	}
	// 无历史评价不触发评分下限，由中性评分分量兜底
	if c.MinRating > 0 && agent.Rating != nil && *agent.Rating < c.MinRating {
		return false, ReasonRatingFloor
	}

	approachKm := HaversineKm(agent.Lat, agent.Lng, req.PickupLat, req.PickupLng)
	if prefs.MaxRadiusKm > 0 && approachKm > prefs.MaxRadiusKm {
		return false, ReasonServiceRadius
	}
	if c.MaxDistanceKm > 0 && approachKm > c.MaxDistanceKm {
		return false, ReasonMaxDistance
	}

	if len(prefs.PackageCategories) > 0 && !containsString(prefs.PackageCategories, req.PackageCategory) {
		return false, ReasonPackageCategory
	}
	if prefs.MaxWeightKg > 0 && req.WeightKg > prefs.MaxWeightKg {
		return false, ReasonPackageWeight
	}
	if !req.Negotiable && prefs.MinPrice > 0 && req.MaxPrice > 0 && prefs.MinPrice > req.MaxPrice {
		return false, ReasonMinPrice
	}
	if !workWindowCovers(prefs, req, now) {
		return false, ReasonWorkingHours
	}
	return true, ""
}

// StartDelayMinutes 计算配送员相对取件窗口的起步延迟（分钟）。
// 能在窗口截止前起步视为零延迟。
func StartDelayMinutes(agent Agent, req Request, now time.Time) float64 {
	start := now
	if agent.AvailableFrom != nil && agent.AvailableFrom.After(start) {
		start = *agent.AvailableFrom
	}
	if req.PickupBefore == nil || !start.After(*req.PickupBefore) {
		return 0
	}
	return start.Sub(*req.PickupBefore).Minutes()
}

// workWindowCovers 判断配送员工作时段是否覆盖取件时间
func workWindowCovers(prefs AgentPreferences, req Request, now time.Time) bool {
	pickupAt := now
	if req.PickupAfter != nil {
		pickupAt = *req.PickupAfter
	}

	if len(prefs.WorkDays) > 0 && !containsString(prefs.WorkDays, weekdayKey(pickupAt.Weekday())) {
		return false
	}

	// 起止小时相等视为未配置工作时段
	if prefs.WorkStartHour == prefs.WorkEndHour {
		return true
	}
	hour := pickupAt.Hour()
	if prefs.WorkStartHour < prefs.WorkEndHour {
		return hour >= prefs.WorkStartHour && hour < prefs.WorkEndHour
	}
	// 跨午夜时段
	return hour >= prefs.WorkStartHour || hour < prefs.WorkEndHour
}

var weekdayKeys = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayKey 返回 time.Weekday 对应的偏好配置键
func WeekdayKey(day time.Weekday) string {
	return weekdayKey(day)
}

func weekdayKey(day time.Weekday) string {
	return weekdayKeys[int(day)%len(weekdayKeys)]
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
