package matching

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ecomatch/internal/constants"
)

func TestVariantWeightsSumToOne(t *testing.T) {
	for _, variant := range Variants() {
		w, ok := ForVariant(variant)
		if !ok {
			t.Fatalf("variant %s should be registered", variant)
		}
		sum := w.Distance + w.Time + w.Price + w.Rating
		if math.Abs(sum-1.0) > weightSumTolerance {
			t.Fatalf("variant %s weights sum to %v, want 1.0", variant, sum)
		}
	}
}

func TestNewWeightsRejectsInvalid(t *testing.T) {
	if _, err := NewWeights(0.5, 0.5, 0.5, 0.5); err == nil {
		t.Fatalf("weights summing to 2.0 should be rejected")
	}
	if _, err := NewWeights(-0.1, 0.5, 0.3, 0.3); err == nil {
		t.Fatalf("negative weight should be rejected")
	}
	if _, err := NewWeights(0.30, 0.30, 0.20, 0.20); err != nil {
		t.Fatalf("valid weights rejected: %v", err)
	}
}

func TestScoreDistanceLinear(t *testing.T) {
	w, _ := ForVariant(constants.VariantHybrid)

	near, err := Score(CandidateInput{ApproachKm: 0, MaxDistanceKm: 10, SuggestedPrice: 20, MaxPrice: 30}, w)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if near.Distance != 1 {
		t.Fatalf("zero approach distance should score 1, got %v", near.Distance)
	}

	mid, _ := Score(CandidateInput{ApproachKm: 5, MaxDistanceKm: 10, SuggestedPrice: 20, MaxPrice: 30}, w)
	if math.Abs(mid.Distance-0.5) > 1e-9 {
		t.Fatalf("half max distance should score 0.5, got %v", mid.Distance)
	}

	far, _ := Score(CandidateInput{ApproachKm: 15, MaxDistanceKm: 10, SuggestedPrice: 20, MaxPrice: 30}, w)
	if far.Distance != 0 {
		t.Fatalf("beyond max distance should clamp to 0, got %v", far.Distance)
	}
}

func TestScoreTimeWindow(t *testing.T) {
	w, _ := ForVariant(constants.VariantHybrid)

	onTime, _ := Score(CandidateInput{MaxDistanceKm: 10, DelayMinutes: 0, MaxDelayMinutes: 60}, w)
	if onTime.Time != 1 {
		t.Fatalf("in-window start should score 1, got %v", onTime.Time)
	}

	late, _ := Score(CandidateInput{MaxDistanceKm: 10, DelayMinutes: 30, MaxDelayMinutes: 60}, w)
	if math.Abs(late.Time-0.5) > 1e-9 {
		t.Fatalf("half max delay should score 0.5, got %v", late.Time)
	}

	tooLate, _ := Score(CandidateInput{MaxDistanceKm: 10, DelayMinutes: 90, MaxDelayMinutes: 60}, w)
	if tooLate.Time != 0 {
		t.Fatalf("beyond max delay should clamp to 0, got %v", tooLate.Time)
	}

	noTolerance, _ := Score(CandidateInput{MaxDistanceKm: 10, DelayMinutes: 1, MaxDelayMinutes: 0}, w)
	if noTolerance.Time != 0 {
		t.Fatalf("any delay with zero tolerance should score 0, got %v", noTolerance.Time)
	}
}

func TestScorePriceGap(t *testing.T) {
	w, _ := ForVariant(constants.VariantHybrid)

	cheap, _ := Score(CandidateInput{MaxDistanceKm: 10, MinPrice: 10, SuggestedPrice: 20, MaxPrice: 40}, w)
	if cheap.Price != 1 {
		t.Fatalf("min price below suggested should score 1, got %v", cheap.Price)
	}

	mid, _ := Score(CandidateInput{MaxDistanceKm: 10, MinPrice: 30, SuggestedPrice: 20, MaxPrice: 40}, w)
	if math.Abs(mid.Price-0.5) > 1e-9 {
		t.Fatalf("min price halfway to cap should score 0.5, got %v", mid.Price)
	}

	expensive, _ := Score(CandidateInput{MaxDistanceKm: 10, MinPrice: 50, SuggestedPrice: 20, MaxPrice: 40}, w)
	if expensive.Price != 0 {
		t.Fatalf("min price above cap should score 0, got %v", expensive.Price)
	}
}

func TestScoreRatingNeutralWithoutHistory(t *testing.T) {
	w, _ := ForVariant(constants.VariantHybrid)

	unrated, _ := Score(CandidateInput{MaxDistanceKm: 10}, w)
	if unrated.Rating != neutralRatingScore {
		t.Fatalf("missing rating should score %v, got %v", neutralRatingScore, unrated.Rating)
	}

	rating := 4.0
	rated, _ := Score(CandidateInput{MaxDistanceKm: 10, Rating: &rating}, w)
	if math.Abs(rated.Rating-0.8) > 1e-9 {
		t.Fatalf("4/5 rating should score 0.8, got %v", rated.Rating)
	}

	over := 6.0
	clamped, _ := Score(CandidateInput{MaxDistanceKm: 10, Rating: &over}, w)
	if clamped.Rating != 1 {
		t.Fatalf("rating above scale should clamp to 1, got %v", clamped.Rating)
	}
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	w, _ := ForVariant(constants.VariantHybrid)

	if _, err := Score(CandidateInput{MaxDistanceKm: 0}, w); err == nil {
		t.Fatalf("zero max distance should be rejected")
	}
	if _, err := Score(CandidateInput{MaxDistanceKm: 10, ApproachKm: -1}, w); err == nil {
		t.Fatalf("negative approach distance should be rejected")
	}
	if _, err := Score(CandidateInput{MaxDistanceKm: 10, DelayMinutes: -1}, w); err == nil {
		t.Fatalf("negative delay should be rejected")
	}
}

// 随机输入下总分必须严格等于加权和，且所有分量落在 [0,1]
func TestScoreWeightedSumProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		raw := [4]float64{rng.Float64() + 0.01, rng.Float64() + 0.01, rng.Float64() + 0.01, rng.Float64() + 0.01}
		sum := raw[0] + raw[1] + raw[2] + raw[3]
		w, err := NewWeights(raw[0]/sum, raw[1]/sum, raw[2]/sum, raw[3]/sum)
		if err != nil {
			t.Fatalf("normalized weights rejected: %v", err)
		}

		input := CandidateInput{
			ApproachKm:      rng.Float64() * 100,
			MaxDistanceKm:   rng.Float64()*99 + 1,
			DelayMinutes:    rng.Float64() * 200,
			MaxDelayMinutes: rng.Float64() * 180,
			MinPrice:        rng.Float64() * 80,
			SuggestedPrice:  rng.Float64() * 50,
			MaxPrice:        rng.Float64() * 100,
		}
		if rng.Intn(2) == 0 {
			rating := rng.Float64() * 5
			input.Rating = &rating
		}

		b, err := Score(input, w)
		if err != nil {
			t.Fatalf("score failed on valid input: %v", err)
		}
		for name, value := range map[string]float64{
			"distance": b.Distance,
			"time":     b.Time,
			"price":    b.Price,
			"rating":   b.Rating,
			"overall":  b.Overall,
		} {
			if value < 0 || value > 1 {
				t.Fatalf("%s score out of range: %v", name, value)
			}
		}
		expected := w.Distance*b.Distance + w.Time*b.Time + w.Price*b.Price + w.Rating*b.Rating
		if math.Abs(b.Overall-expected) > 1e-9 {
			t.Fatalf("overall %v differs from weighted sum %v", b.Overall, expected)
		}
	}
}
