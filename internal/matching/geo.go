package matching

import "math"

const earthRadiusKm = 6371.0

// DegreeKm 纬度每度对应的近似公里数，用于候选池的包围盒预筛
const DegreeKm = 111.0

// HaversineKm 计算两个经纬度点间的大圆距离（公里）
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// EstimateDurationMinutes 按分段平均时速估算行程耗时
// 短途按城区 25km/h，中途 45km/h，长途 70km/h。
func EstimateDurationMinutes(distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	speed := 25.0
	switch {
	case distanceKm >= 50:
		speed = 70.0
	case distanceKm >= 10:
		speed = 45.0
	}
	return int(math.Ceil(distanceKm / speed * 60))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
