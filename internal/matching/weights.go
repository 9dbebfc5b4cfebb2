package matching

import (
	"fmt"
	"math"

	"github.com/ecomatch/internal/constants"
)

const weightSumTolerance = 1e-9

// Weights 单个算法变体的四维评分权重，四项之和恒为 1
type Weights struct {
	Distance float64
	Time     float64
	Price    float64
	Rating   float64
}

// NewWeights 构造权重并校验
func NewWeights(distance, duration, price, rating float64) (Weights, error) {
	w := Weights{Distance: distance, Time: duration, Price: price, Rating: rating}
	if w.Distance < 0 || w.Time < 0 || w.Price < 0 || w.Rating < 0 {
		return Weights{}, fmt.Errorf("weights must be non-negative: %+v", w)
	}
	sum := w.Distance + w.Time + w.Price + w.Rating
	if math.Abs(sum-1.0) > weightSumTolerance {
		return Weights{}, fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return w, nil
}

var variantWeights = map[string]Weights{
	constants.VariantHybrid:           mustWeights(0.30, 0.30, 0.20, 0.20),
	constants.VariantDistancePriority: mustWeights(0.40, 0.35, 0.15, 0.10),
	constants.VariantRatingPriority:   mustWeights(0.25, 0.20, 0.15, 0.40),
}

// ForVariant 返回指定算法变体的权重
func ForVariant(variant string) (Weights, bool) {
	w, ok := variantWeights[variant]
	return w, ok
}

// KnownVariant 判断算法变体是否已注册
func KnownVariant(variant string) bool {
	_, ok := variantWeights[variant]
	return ok
}

// Variants 返回全部已注册的算法变体
func Variants() []string {
	names := make([]string, 0, len(variantWeights))
	for name := range variantWeights {
		names = append(names, name)
	}
	return names
}

func mustWeights(distance, duration, price, rating float64) Weights {
	w, err := NewWeights(distance, duration, price, rating)
	if err != nil {
		panic(err)
	}
	return w
}
