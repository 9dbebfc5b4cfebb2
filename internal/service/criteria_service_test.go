package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/models"
)

func TestUpsertCriteriaAppliesDefaults(t *testing.T) {
	env := setupMatchingServiceTest(t, "criteria_defaults")
	announcement := createTestAnnouncement(t, env, "ANN-CRIT-1")

	criteria, err := env.criteriaService.Upsert(UpsertCriteriaInput{
		AnnouncementID: announcement.ID,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if criteria.Variant != constants.VariantHybrid {
		t.Fatalf("expected default variant hybrid, got %s", criteria.Variant)
	}
	if criteria.MaxDistanceKm != 50 {
		t.Fatalf("expected default max distance 50, got %v", criteria.MaxDistanceKm)
	}
	if criteria.MaxDelayMinutes != 120 {
		t.Fatalf("expected default max delay 120, got %d", criteria.MaxDelayMinutes)
	}
	if criteria.ScoreThreshold != 0.6 {
		t.Fatalf("expected default threshold 0.6, got %v", criteria.ScoreThreshold)
	}
	if criteria.MaxSuggestions != 5 {
		t.Fatalf("expected default max suggestions 5, got %d", criteria.MaxSuggestions)
	}
	if criteria.Priority != constants.PriorityMedium {
		t.Fatalf("expected default priority medium, got %s", criteria.Priority)
	}
	if !criteria.PriceMin.Equal(announcement.SuggestedPrice.Decimal) {
		t.Fatalf("expected price min from announcement, got %s", criteria.PriceMin.String())
	}
	if !criteria.PriceMax.Equal(announcement.MaxPrice.Decimal) {
		t.Fatalf("expected price max from announcement, got %s", criteria.PriceMax.String())
	}
}

func TestUpsertCriteriaOverwritesExisting(t *testing.T) {
	env := setupMatchingServiceTest(t, "criteria_overwrite")
	announcement := createTestAnnouncement(t, env, "ANN-CRIT-2")

	first, err := env.criteriaService.Upsert(UpsertCriteriaInput{
		AnnouncementID: announcement.ID,
		Variant:        constants.VariantDistancePriority,
		MaxDistanceKm:  20,
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := env.criteriaService.Upsert(UpsertCriteriaInput{
		AnnouncementID: announcement.ID,
		Variant:        constants.VariantRatingPriority,
		MaxDistanceKm:  30,
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same criteria row, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := env.db.Model(&models.MatchingCriteria{}).
		Where("announcement_id = ?", announcement.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count criteria failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single criteria row, got %d", count)
	}

	stored, err := env.criteriaService.Get(announcement.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Variant != constants.VariantRatingPriority || stored.MaxDistanceKm != 30 {
		t.Fatalf("expected overwritten values, got %s / %v", stored.Variant, stored.MaxDistanceKm)
	}
}

func TestUpsertCriteriaValidation(t *testing.T) {
	env := setupMatchingServiceTest(t, "criteria_validation")
	announcement := createTestAnnouncement(t, env, "ANN-CRIT-3")

	badThreshold := 1.5
	badSuggestions := 0
	badAutoAssign := 0
	after := time.Now().Add(2 * time.Hour)
	before := time.Now().Add(time.Hour)
	priceMin := models.NewMoneyFromFloat(30)
	priceMax := models.NewMoneyFromFloat(20)

	cases := []struct {
		name  string
		input UpsertCriteriaInput
		want  error
	}{
		{"unknown variant", UpsertCriteriaInput{AnnouncementID: announcement.ID, Variant: "random"}, ErrVariantUnknown},
		{"threshold out of range", UpsertCriteriaInput{AnnouncementID: announcement.ID, ScoreThreshold: &badThreshold}, ErrThresholdOutOfRange},
		{"max suggestions below one", UpsertCriteriaInput{AnnouncementID: announcement.ID, MaxSuggestions: &badSuggestions}, ErrMaxSuggestionsInvalid},
		{"inverted time window", UpsertCriteriaInput{AnnouncementID: announcement.ID, PickupAfter: &after, PickupBefore: &before}, ErrTimeWindowInvalid},
		{"inverted price bounds", UpsertCriteriaInput{AnnouncementID: announcement.ID, PriceMin: &priceMin, PriceMax: &priceMax}, ErrPriceBoundsInvalid},
		{"rating above scale", UpsertCriteriaInput{AnnouncementID: announcement.ID, MinRating: 6}, ErrCriteriaInvalid},
		{"negative delay", UpsertCriteriaInput{AnnouncementID: announcement.ID, MaxDelayMinutes: -5}, ErrCriteriaInvalid},
		{"auto assign below one", UpsertCriteriaInput{AnnouncementID: announcement.ID, AutoAssignAfterMinutes: &badAutoAssign}, ErrCriteriaInvalid},
	}
	for _, tc := range cases {
		if _, err := env.criteriaService.Upsert(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := env.criteriaService.Upsert(UpsertCriteriaInput{AnnouncementID: 9999}); !errors.Is(err, ErrAnnouncementNotFound) {
		t.Fatalf("expected ErrAnnouncementNotFound, got %v", err)
	}
}

func TestGetCriteriaMissing(t *testing.T) {
	env := setupMatchingServiceTest(t, "criteria_missing")
	announcement := createTestAnnouncement(t, env, "ANN-CRIT-4")

	if _, err := env.criteriaService.Get(announcement.ID); !errors.Is(err, ErrCriteriaNotFound) {
		t.Fatalf("expected ErrCriteriaNotFound, got %v", err)
	}
	if _, err := env.criteriaService.Get(9999); !errors.Is(err, ErrAnnouncementNotFound) {
		t.Fatalf("expected ErrAnnouncementNotFound, got %v", err)
	}
}

func TestEnsureForAnnouncementCreatesDefaultOnce(t *testing.T) {
	env := setupMatchingServiceTest(t, "criteria_ensure")
	announcement := createTestAnnouncement(t, env, "ANN-CRIT-5")

	first, err := env.criteriaService.EnsureForAnnouncement(announcement)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if first.Variant != constants.VariantHybrid || first.ScoreThreshold != 0.6 {
		t.Fatalf("expected system defaults, got %s / %v", first.Variant, first.ScoreThreshold)
	}
	second, err := env.criteriaService.EnsureForAnnouncement(announcement)
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected reuse of default criteria, got %d and %d", first.ID, second.ID)
	}
}
