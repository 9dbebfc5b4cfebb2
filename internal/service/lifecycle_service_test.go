package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/models"
)

func seedTestCandidate(t *testing.T, env *matchingTestEnv, announcementID, delivererID uint, score float64, expiresAt time.Time) *models.MatchCandidate {
	t.Helper()

	candidates := []models.MatchCandidate{{
		RunID:          "run-seeded",
		AnnouncementID: announcementID,
		DelivererID:    delivererID,
		Variant:        constants.VariantHybrid,
		OverallScore:   score,
		SuggestedPrice: models.NewMoneyFromFloat(15),
		State:          constants.MatchStateSuggested,
		SuggestedAt:    time.Now(),
		ExpiresAt:      expiresAt,
	}}
	if err := env.matchRepo.CreateBatch(candidates); err != nil {
		t.Fatalf("seed candidate failed: %v", err)
	}
	return &candidates[0]
}

func TestRespondAcceptAssignsAndExpiresSiblings(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_accept")
	announcement := createTestAnnouncement(t, env, "ANN-ACC-1")
	open := time.Now().Add(time.Hour)
	winner := seedTestCandidate(t, env, announcement.ID, 11, 0.9, open)
	sibling := seedTestCandidate(t, env, announcement.ID, 12, 0.7, open)

	proposed := models.NewMoneyFromFloat(18)
	accepted, err := env.lifecycleService.Respond(RespondInput{
		CandidateID:   winner.ID,
		Accept:        true,
		ProposedPrice: &proposed,
	})
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.State != constants.MatchStateAccepted {
		t.Fatalf("expected accepted state, got %s", accepted.State)
	}
	if accepted.RespondedAt == nil {
		t.Fatalf("expected responded_at to be set")
	}

	reloaded, err := env.announcementRepo.GetByID(announcement.ID)
	if err != nil {
		t.Fatalf("reload announcement failed: %v", err)
	}
	if reloaded.Status != constants.AnnouncementStatusAssigned {
		t.Fatalf("expected assigned announcement, got %s", reloaded.Status)
	}
	if reloaded.AssignedDelivererID == nil || *reloaded.AssignedDelivererID != 11 {
		t.Fatalf("expected deliverer 11 assigned, got %v", reloaded.AssignedDelivererID)
	}

	var delivery models.Delivery
	if err := env.db.Where("candidate_id = ?", winner.ID).First(&delivery).Error; err != nil {
		t.Fatalf("expected delivery record: %v", err)
	}
	if !delivery.AgreedPrice.Equal(proposed.Decimal) {
		t.Fatalf("expected agreed price %s, got %s", proposed.String(), delivery.AgreedPrice.String())
	}

	other, err := env.matchRepo.GetByID(sibling.ID)
	if err != nil {
		t.Fatalf("reload sibling failed: %v", err)
	}
	if other.State != constants.MatchStateExpired {
		t.Fatalf("expected sibling expired, got %s", other.State)
	}
}

func TestRespondRejectKeepsSiblingsOpen(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_reject")
	announcement := createTestAnnouncement(t, env, "ANN-REJ-1")
	open := time.Now().Add(time.Hour)
	rejected := seedTestCandidate(t, env, announcement.ID, 21, 0.9, open)
	sibling := seedTestCandidate(t, env, announcement.ID, 22, 0.7, open)

	result, err := env.lifecycleService.Respond(RespondInput{
		CandidateID: rejected.ID,
		Accept:      false,
		Reason:      "too far from my route",
	})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if result.State != constants.MatchStateRejected {
		t.Fatalf("expected rejected state, got %s", result.State)
	}

	reloaded, err := env.matchRepo.GetByID(rejected.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.RejectionReason != "too far from my route" {
		t.Fatalf("expected persisted reason, got %q", reloaded.RejectionReason)
	}

	other, err := env.matchRepo.GetByID(sibling.ID)
	if err != nil {
		t.Fatalf("reload sibling failed: %v", err)
	}
	if other.State != constants.MatchStateSuggested {
		t.Fatalf("expected sibling still suggested, got %s", other.State)
	}

	announcementAfter, err := env.announcementRepo.GetByID(announcement.ID)
	if err != nil {
		t.Fatalf("reload announcement failed: %v", err)
	}
	if announcementAfter.Status != constants.AnnouncementStatusPublished {
		t.Fatalf("expected announcement still published, got %s", announcementAfter.Status)
	}
}

func TestRespondConcurrentAcceptSingleWinner(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_race")
	announcement := createTestAnnouncement(t, env, "ANN-RACE-1")
	open := time.Now().Add(time.Hour)

	const racers = 5
	candidateIDs := make([]uint, 0, racers)
	for i := 0; i < racers; i++ {
		candidate := seedTestCandidate(t, env, announcement.ID, uint(100+i), 0.8, open)
		candidateIDs = append(candidateIDs, candidate.ID)
	}

	var wg sync.WaitGroup
	results := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, results[idx] = env.lifecycleService.Respond(RespondInput{
				CandidateID: candidateIDs[idx],
				Accept:      true,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for idx, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrAssignConflict) || errors.Is(err, ErrCandidateNotOpen):
		default:
			t.Fatalf("unexpected error for candidate %d: %v", candidateIDs[idx], err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}

	var deliveries int64
	if err := env.db.Model(&models.Delivery{}).Count(&deliveries).Error; err != nil {
		t.Fatalf("count deliveries failed: %v", err)
	}
	if deliveries != 1 {
		t.Fatalf("expected exactly 1 delivery, got %d", deliveries)
	}

	var acceptedCount int64
	if err := env.db.Model(&models.MatchCandidate{}).
		Where("state = ?", constants.MatchStateAccepted).
		Count(&acceptedCount).Error; err != nil {
		t.Fatalf("count accepted failed: %v", err)
	}
	if acceptedCount != 1 {
		t.Fatalf("expected exactly 1 accepted candidate, got %d", acceptedCount)
	}
}

func TestRespondAcceptRollsBackAssignmentOnPersistFailure(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_accept_rollback")
	announcement := createTestAnnouncement(t, env, "ANN-RB-1")
	candidate := seedTestCandidate(t, env, announcement.ID, 81, 0.9, time.Now().Add(time.Hour))

	// 人为破坏配送表，迫使事务内的配送记录写入失败
	if err := env.db.Migrator().DropTable(&models.Delivery{}); err != nil {
		t.Fatalf("drop deliveries table failed: %v", err)
	}

	_, err := env.lifecycleService.Respond(RespondInput{CandidateID: candidate.ID, Accept: true})
	if !errors.Is(err, ErrMatchPersistFailed) {
		t.Fatalf("expected ErrMatchPersistFailed, got %v", err)
	}

	reloaded, err := env.announcementRepo.GetByID(announcement.ID)
	if err != nil {
		t.Fatalf("reload announcement failed: %v", err)
	}
	if reloaded.Status != constants.AnnouncementStatusPublished {
		t.Fatalf("expected announcement rolled back to published, got %s", reloaded.Status)
	}
	if reloaded.AssignedDelivererID != nil {
		t.Fatalf("expected no deliverer assigned, got %v", *reloaded.AssignedDelivererID)
	}

	after, err := env.matchRepo.GetByID(candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate failed: %v", err)
	}
	if after.State != constants.MatchStateSuggested {
		t.Fatalf("expected candidate still suggested, got %s", after.State)
	}
}

func TestRespondExpiredCandidate(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_expired")
	announcement := createTestAnnouncement(t, env, "ANN-EXP-1")
	stale := seedTestCandidate(t, env, announcement.ID, 31, 0.8, time.Now().Add(-time.Minute))

	_, err := env.lifecycleService.Respond(RespondInput{CandidateID: stale.ID, Accept: true})
	if !errors.Is(err, ErrCandidateNotOpen) {
		t.Fatalf("expected ErrCandidateNotOpen, got %v", err)
	}

	reloaded, err := env.matchRepo.GetByID(stale.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.State != constants.MatchStateExpired {
		t.Fatalf("expected persisted expiry, got %s", reloaded.State)
	}
}

func TestRespondMissingCandidate(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_missing")
	_, err := env.lifecycleService.Respond(RespondInput{CandidateID: 9999, Accept: true})
	if !errors.Is(err, ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestAutoAssignAcceptsTopCandidate(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_auto")
	announcement := createTestAnnouncement(t, env, "ANN-AUTO-1")
	open := time.Now().Add(time.Hour)
	seedTestCandidate(t, env, announcement.ID, 41, 0.7, open)
	top := seedTestCandidate(t, env, announcement.ID, 42, 0.95, open)

	if err := env.lifecycleService.AutoAssign(announcement.ID); err != nil {
		t.Fatalf("auto assign failed: %v", err)
	}

	reloaded, err := env.announcementRepo.GetByID(announcement.ID)
	if err != nil {
		t.Fatalf("reload announcement failed: %v", err)
	}
	if reloaded.Status != constants.AnnouncementStatusAssigned {
		t.Fatalf("expected assigned announcement, got %s", reloaded.Status)
	}
	if reloaded.AssignedDelivererID == nil || *reloaded.AssignedDelivererID != 42 {
		t.Fatalf("expected top deliverer 42 assigned, got %v", reloaded.AssignedDelivererID)
	}

	accepted, err := env.matchRepo.GetByID(top.ID)
	if err != nil {
		t.Fatalf("reload top candidate failed: %v", err)
	}
	if accepted.State != constants.MatchStateAccepted {
		t.Fatalf("expected top candidate accepted, got %s", accepted.State)
	}

	// 公告已指派后重复执行应静默结束
	if err := env.lifecycleService.AutoAssign(announcement.ID); err != nil {
		t.Fatalf("repeated auto assign failed: %v", err)
	}
}

func TestAutoAssignSkipsCandidateBelowCurrentThreshold(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_auto_threshold")
	announcement := createTestAnnouncement(t, env, "ANN-AUTO-3")
	candidate := seedTestCandidate(t, env, announcement.ID, 45, 0.75, time.Now().Add(time.Hour))

	// 撮合运行之后阈值被调高，旧建议不再达标
	if err := env.criteriaRepo.Upsert(&models.MatchingCriteria{
		AnnouncementID:  announcement.ID,
		Variant:         constants.VariantHybrid,
		Priority:        constants.PriorityMedium,
		MaxDistanceKm:   50,
		MaxDelayMinutes: 120,
		PriceMin:        models.NewMoneyFromFloat(15),
		PriceMax:        models.NewMoneyFromFloat(25),
		MaxSuggestions:  5,
		ScoreThreshold:  0.9,
	}); err != nil {
		t.Fatalf("upsert criteria failed: %v", err)
	}

	if err := env.lifecycleService.AutoAssign(announcement.ID); err != nil {
		t.Fatalf("auto assign failed: %v", err)
	}

	reloaded, err := env.announcementRepo.GetByID(announcement.ID)
	if err != nil {
		t.Fatalf("reload announcement failed: %v", err)
	}
	if reloaded.Status != constants.AnnouncementStatusPublished {
		t.Fatalf("expected announcement untouched, got %s", reloaded.Status)
	}

	after, err := env.matchRepo.GetByID(candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate failed: %v", err)
	}
	if after.State != constants.MatchStateSuggested {
		t.Fatalf("expected candidate left suggested, got %s", after.State)
	}
}

func TestAutoAssignWithoutCandidates(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_auto_none")
	announcement := createTestAnnouncement(t, env, "ANN-AUTO-2")

	if err := env.lifecycleService.AutoAssign(announcement.ID); err != nil {
		t.Fatalf("auto assign without candidates failed: %v", err)
	}
	reloaded, err := env.announcementRepo.GetByID(announcement.ID)
	if err != nil {
		t.Fatalf("reload announcement failed: %v", err)
	}
	if reloaded.Status != constants.AnnouncementStatusPublished {
		t.Fatalf("expected announcement untouched, got %s", reloaded.Status)
	}
}

func TestCancelMatchingIsIdempotent(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_cancel")
	announcement := createTestAnnouncement(t, env, "ANN-CXL-1")
	open := time.Now().Add(time.Hour)
	candidate := seedTestCandidate(t, env, announcement.ID, 51, 0.8, open)

	if err := env.lifecycleService.CancelMatching(announcement.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	reloaded, err := env.announcementRepo.GetByID(announcement.ID)
	if err != nil {
		t.Fatalf("reload announcement failed: %v", err)
	}
	if reloaded.Status != constants.AnnouncementStatusCancelled {
		t.Fatalf("expected cancelled announcement, got %s", reloaded.Status)
	}

	expired, err := env.matchRepo.GetByID(candidate.ID)
	if err != nil {
		t.Fatalf("reload candidate failed: %v", err)
	}
	if expired.State != constants.MatchStateExpired {
		t.Fatalf("expected expired candidate, got %s", expired.State)
	}

	if err := env.lifecycleService.CancelMatching(announcement.ID); err != nil {
		t.Fatalf("repeated cancel should be idempotent: %v", err)
	}
}

func TestCancelMatchingAssignedAnnouncement(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_cancel_assigned")
	announcement := createTestAnnouncement(t, env, "ANN-CXL-2")
	if _, err := env.announcementRepo.AssignIfUnassigned(announcement.ID, 61, time.Now()); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	err := env.lifecycleService.CancelMatching(announcement.ID)
	if !errors.Is(err, ErrAnnouncementClosed) {
		t.Fatalf("expected ErrAnnouncementClosed, got %v", err)
	}
}

func TestExpireSweep(t *testing.T) {
	env := setupMatchingServiceTest(t, "lifecycle_sweep")
	announcement := createTestAnnouncement(t, env, "ANN-SWEEP-1")
	stale := seedTestCandidate(t, env, announcement.ID, 71, 0.8, time.Now().Add(-time.Minute))
	fresh := seedTestCandidate(t, env, announcement.ID, 72, 0.8, time.Now().Add(time.Hour))

	expired, err := env.lifecycleService.ExpireSweep()
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired candidate, got %d", expired)
	}

	staleAfter, err := env.matchRepo.GetByID(stale.ID)
	if err != nil {
		t.Fatalf("reload stale failed: %v", err)
	}
	if staleAfter.State != constants.MatchStateExpired {
		t.Fatalf("expected stale candidate expired, got %s", staleAfter.State)
	}
	freshAfter, err := env.matchRepo.GetByID(fresh.ID)
	if err != nil {
		t.Fatalf("reload fresh failed: %v", err)
	}
	if freshAfter.State != constants.MatchStateSuggested {
		t.Fatalf("expected fresh candidate untouched, got %s", freshAfter.State)
	}
}
