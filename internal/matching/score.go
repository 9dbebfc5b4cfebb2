package matching

import "fmt"

const (
	maxRating          = 5.0
	neutralRatingScore = 0.5
)

// CandidateInput 单个候选的评分输入
type CandidateInput struct {
	DelivererID uint

	// ApproachKm 配送员到取件点的空驶距离
	ApproachKm    float64
	MaxDistanceKm float64

	// DelayMinutes 相对取件窗口的起步延迟，0 表示窗口内可起步
	DelayMinutes    float64
	MaxDelayMinutes float64

	// MinPrice 配送员的最低接单价
	MinPrice       float64
	SuggestedPrice float64
	MaxPrice       float64

	// Rating 为空表示没有任何历史评价
	Rating *float64
}

// Breakdown 四维得分与加权总分，均落在 [0,1]
type Breakdown struct {
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
	Overall  float64 `json:"overall"`
}

// Score 按指定权重计算候选的归一化得分
func Score(input CandidateInput, w Weights) (Breakdown, error) {
	if input.MaxDistanceKm <= 0 {
		return Breakdown{}, fmt.Errorf("max distance must be positive, got %v", input.MaxDistanceKm)
	}
	if input.ApproachKm < 0 {
		return Breakdown{}, fmt.Errorf("approach distance must be non-negative, got %v", input.ApproachKm)
	}
	if input.DelayMinutes < 0 {
		return Breakdown{}, fmt.Errorf("delay must be non-negative, got %v", input.DelayMinutes)
	}

	b := Breakdown{
		Distance: clamp01(1 - input.ApproachKm/input.MaxDistanceKm),
		Time:     timeScore(input.DelayMinutes, input.MaxDelayMinutes),
		Price:    priceScore(input.MinPrice, input.SuggestedPrice, input.MaxPrice),
		Rating:   ratingScore(input.Rating),
	}
	b.Overall = clamp01(w.Distance*b.Distance + w.Time*b.Time + w.Price*b.Price + w.Rating*b.Rating)
	return b, nil
}

// timeScore 窗口内起步得满分，超出后按延迟线性衰减
func timeScore(delayMinutes, maxDelayMinutes float64) float64 {
	if delayMinutes <= 0 {
		return 1
	}
	if maxDelayMinutes <= 0 {
		return 0
	}
	return clamp01(1 - delayMinutes/maxDelayMinutes)
}

// priceScore 最低接单价不超过建议价得满分，
// 超出后在建议价与请求方上限之间线性衰减，超过上限为 0。
func priceScore(minPrice, suggestedPrice, maxPrice float64) float64 {
	if minPrice <= suggestedPrice {
		return 1
	}
	if maxPrice <= suggestedPrice {
		return 0
	}
	return clamp01(1 - (minPrice-suggestedPrice)/(maxPrice-suggestedPrice))
}

// ratingScore 无历史评价给中性分
func ratingScore(rating *float64) float64 {
	if rating == nil {
		return neutralRatingScore
	}
	return clamp01(*rating / maxRating)
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
