package matching

import "sort"

// Ranked 参与排序的已评分候选
type Ranked struct {
	AgentID             uint
	Breakdown           Breakdown
	EstimatedDistanceKm float64
}

// Rank 按总分排序、按阈值过滤并截断至建议上限。
// 并列时按预计距离升序，再按配送员 ID 升序，保证结果可复现。
func Rank(candidates []Ranked, threshold float64, maxSuggestions int) []Ranked {
	result := make([]Ranked, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Breakdown.Overall >= threshold {
			result = append(result, candidate)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Breakdown.Overall != result[j].Breakdown.Overall {
			return result[i].Breakdown.Overall > result[j].Breakdown.Overall
		}
		if result[i].EstimatedDistanceKm != result[j].EstimatedDistanceKm {
			return result[i].EstimatedDistanceKm < result[j].EstimatedDistanceKm
		}
		return result[i].AgentID < result[j].AgentID
	})

	if maxSuggestions > 0 && len(result) > maxSuggestions {
		result = result[:maxSuggestions]
	}
	return result
}
