package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupMatchRepositoryTest(t *testing.T, name string) (*GormMatchRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.MatchCandidate{}, &models.Announcement{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewMatchRepository(db), db
}

func createMatchTestCandidate(t *testing.T, repo *GormMatchRepository, announcementID, delivererID uint, overall, distanceKm float64, state string, expiresAt time.Time) uint {
	t.Helper()

	candidates := []models.MatchCandidate{{
		RunID:               "run-repo",
		AnnouncementID:      announcementID,
		DelivererID:         delivererID,
		Variant:             constants.VariantHybrid,
		OverallScore:        overall,
		EstimatedDistanceKm: distanceKm,
		State:               state,
		SuggestedAt:         time.Now(),
		ExpiresAt:           expiresAt,
	}}
	if err := repo.CreateBatch(candidates); err != nil {
		t.Fatalf("create candidate failed: %v", err)
	}
	return candidates[0].ID
}

func TestUpdateStateFromIsConditional(t *testing.T) {
	repo, _ := setupMatchRepositoryTest(t, "match_repo_cas")
	open := time.Now().Add(time.Hour)
	id := createMatchTestCandidate(t, repo, 1, 1, 0.8, 5, constants.MatchStateSuggested, open)

	changed, err := repo.UpdateStateFrom(id, constants.MatchStateSuggested, constants.MatchStateAccepted, nil)
	if err != nil {
		t.Fatalf("first transition failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected first transition to apply")
	}

	// 已离开期望状态的再次迁移不生效
	changed, err = repo.UpdateStateFrom(id, constants.MatchStateSuggested, constants.MatchStateRejected, nil)
	if err != nil {
		t.Fatalf("second transition failed: %v", err)
	}
	if changed {
		t.Fatalf("expected second transition to be a no-op")
	}

	candidate, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if candidate.State != constants.MatchStateAccepted {
		t.Fatalf("expected accepted state preserved, got %s", candidate.State)
	}
}

func TestExpireSiblingsExcludesWinner(t *testing.T) {
	repo, _ := setupMatchRepositoryTest(t, "match_repo_siblings")
	open := time.Now().Add(time.Hour)
	winner := createMatchTestCandidate(t, repo, 1, 1, 0.9, 3, constants.MatchStateSuggested, open)
	loser := createMatchTestCandidate(t, repo, 1, 2, 0.8, 4, constants.MatchStateSuggested, open)
	terminal := createMatchTestCandidate(t, repo, 1, 3, 0.7, 5, constants.MatchStateRejected, open)
	otherAnnouncement := createMatchTestCandidate(t, repo, 2, 4, 0.7, 5, constants.MatchStateSuggested, open)

	expired, err := repo.ExpireSiblings(1, winner, time.Now())
	if err != nil {
		t.Fatalf("expire siblings failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired sibling, got %d", expired)
	}

	for _, tc := range []struct {
		id   uint
		want string
	}{
		{winner, constants.MatchStateSuggested},
		{loser, constants.MatchStateExpired},
		{terminal, constants.MatchStateRejected},
		{otherAnnouncement, constants.MatchStateSuggested},
	} {
		candidate, err := repo.GetByID(tc.id)
		if err != nil {
			t.Fatalf("reload %d failed: %v", tc.id, err)
		}
		if candidate.State != tc.want {
			t.Fatalf("candidate %d: expected %s, got %s", tc.id, tc.want, candidate.State)
		}
	}

	// excludeID 为 0 时过期剩余全部未终态候选
	expired, err = repo.ExpireSiblings(1, 0, time.Now())
	if err != nil {
		t.Fatalf("expire all failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected winner expired too, got %d", expired)
	}
}

func TestExpireOverdueOnlyTouchesOpenStates(t *testing.T) {
	repo, _ := setupMatchRepositoryTest(t, "match_repo_overdue")
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	stale := createMatchTestCandidate(t, repo, 1, 1, 0.8, 3, constants.MatchStateSuggested, past)
	fresh := createMatchTestCandidate(t, repo, 1, 2, 0.8, 4, constants.MatchStateSuggested, future)
	terminal := createMatchTestCandidate(t, repo, 1, 3, 0.8, 5, constants.MatchStateAccepted, past)

	expired, err := repo.ExpireOverdue(time.Now())
	if err != nil {
		t.Fatalf("expire overdue failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired candidate, got %d", expired)
	}

	for _, tc := range []struct {
		id   uint
		want string
	}{
		{stale, constants.MatchStateExpired},
		{fresh, constants.MatchStateSuggested},
		{terminal, constants.MatchStateAccepted},
	} {
		candidate, err := repo.GetByID(tc.id)
		if err != nil {
			t.Fatalf("reload %d failed: %v", tc.id, err)
		}
		if candidate.State != tc.want {
			t.Fatalf("candidate %d: expected %s, got %s", tc.id, tc.want, candidate.State)
		}
	}
}

func TestListOrdersByScoreDistanceThenDeliverer(t *testing.T) {
	repo, _ := setupMatchRepositoryTest(t, "match_repo_order")
	open := time.Now().Add(time.Hour)

	createMatchTestCandidate(t, repo, 1, 3, 0.8, 5, constants.MatchStateSuggested, open)
	createMatchTestCandidate(t, repo, 1, 1, 0.9, 2, constants.MatchStateSuggested, open)
	// 与配送员 3 同分同距，按配送员 ID 升序在前
	createMatchTestCandidate(t, repo, 1, 2, 0.8, 5, constants.MatchStateSuggested, open)
	// 同分但更近，排在同分更远之前
	createMatchTestCandidate(t, repo, 1, 4, 0.8, 3, constants.MatchStateSuggested, open)

	candidates, total, err := repo.List(MatchListFilter{AnnouncementID: 1, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 4 {
		t.Fatalf("expected 4 candidates, got %d", total)
	}
	expectedOrder := []uint{1, 4, 2, 3}
	for i, want := range expectedOrder {
		if candidates[i].DelivererID != want {
			t.Fatalf("position %d: expected deliverer %d, got %d", i, want, candidates[i].DelivererID)
		}
	}
}

func TestListFiltersByStateAndMinScore(t *testing.T) {
	repo, _ := setupMatchRepositoryTest(t, "match_repo_filter")
	open := time.Now().Add(time.Hour)

	createMatchTestCandidate(t, repo, 1, 1, 0.9, 2, constants.MatchStateSuggested, open)
	createMatchTestCandidate(t, repo, 1, 2, 0.5, 3, constants.MatchStateSuggested, open)
	createMatchTestCandidate(t, repo, 1, 3, 0.9, 4, constants.MatchStateExpired, open)

	candidates, total, err := repo.List(MatchListFilter{
		AnnouncementID: 1,
		State:          constants.MatchStateSuggested,
		MinScore:       0.7,
		Page:           1,
		PageSize:       10,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(candidates) != 1 {
		t.Fatalf("expected 1 filtered candidate, got %d", total)
	}
	if candidates[0].DelivererID != 1 {
		t.Fatalf("expected deliverer 1, got %d", candidates[0].DelivererID)
	}
}

func TestCountOpenByDeliverer(t *testing.T) {
	repo, _ := setupMatchRepositoryTest(t, "match_repo_count")
	open := time.Now().Add(time.Hour)

	createMatchTestCandidate(t, repo, 1, 1, 0.8, 2, constants.MatchStateSuggested, open)
	createMatchTestCandidate(t, repo, 2, 1, 0.8, 2, constants.MatchStatePending, open)
	createMatchTestCandidate(t, repo, 3, 1, 0.8, 2, constants.MatchStateRejected, open)
	createMatchTestCandidate(t, repo, 1, 2, 0.8, 2, constants.MatchStateSuggested, open)

	count, err := repo.CountOpenByDeliverer(1)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 open candidates, got %d", count)
	}
}

func TestGetStatsAggregatesRow(t *testing.T) {
	repo, db := setupMatchRepositoryTest(t, "match_repo_stats")
	base := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	responded := base.Add(5 * time.Minute)

	candidates := []models.MatchCandidate{
		{
			RunID: "run-stats", AnnouncementID: 1, DelivererID: 1,
			Variant: constants.VariantHybrid, OverallScore: 0.9,
			State: constants.MatchStateAccepted, SuggestedAt: base,
			RespondedAt: &responded, ExpiresAt: base.Add(24 * time.Hour),
		},
		{
			RunID: "run-stats", AnnouncementID: 1, DelivererID: 2,
			Variant: constants.VariantHybrid, OverallScore: 0.7,
			State: constants.MatchStateExpired, SuggestedAt: base,
			ExpiresAt: base.Add(24 * time.Hour),
		},
	}
	if err := db.Create(&candidates).Error; err != nil {
		t.Fatalf("seed candidates failed: %v", err)
	}

	row, err := repo.GetStats(StatsFilter{
		StartAt: base.Add(-time.Hour),
		EndAt:   base.Add(time.Hour),
		Variant: constants.VariantHybrid,
	})
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if row.Total != 2 || row.Accepted != 1 || row.Expired != 1 {
		t.Fatalf("unexpected counts: %+v", row)
	}
	if row.AvgOverallScore < 0.79 || row.AvgOverallScore > 0.81 {
		t.Fatalf("expected avg overall ~0.8, got %v", row.AvgOverallScore)
	}
	if row.AvgResponseSeconds < 299 || row.AvgResponseSeconds > 301 {
		t.Fatalf("expected avg response ~300s, got %v", row.AvgResponseSeconds)
	}
}
