package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/ecomatch/internal/config"
	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/matching"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/queue"
	"github.com/ecomatch/internal/repository"

	"github.com/google/uuid"
)

// MatchingService 撮合运行服务：取池、过滤、并发评分、排序、落库、发信号
type MatchingService struct {
	announcementRepo repository.AnnouncementRepository
	delivererRepo    repository.DelivererRepository
	matchRepo        repository.MatchRepository
	criteriaService  *CriteriaService
	prefService      *PreferenceService
	queueClient      *queue.Client
	cfg              config.MatchingConfig
}

// NewMatchingService 创建撮合运行服务
func NewMatchingService(
	announcementRepo repository.AnnouncementRepository,
	delivererRepo repository.DelivererRepository,
	matchRepo repository.MatchRepository,
	criteriaService *CriteriaService,
	prefService *PreferenceService,
	queueClient *queue.Client,
	cfg config.MatchingConfig,
) *MatchingService {
	return &MatchingService{
		announcementRepo: announcementRepo,
		delivererRepo:    delivererRepo,
		matchRepo:        matchRepo,
		criteriaService:  criteriaService,
		prefService:      prefService,
		queueClient:      queueClient,
		cfg:              cfg,
	}
}

// scoredCandidate 评分阶段的中间结果
type scoredCandidate struct {
	deliverer models.Deliverer
	prefs     *models.DelivererPreferences
	breakdown matching.Breakdown
	totalKm   float64
}

// Run 为公告执行一次撮合。
// 已有未终态候选且未指定强制刷新时幂等返回现有建议；
// 强制刷新先过期旧建议再重新计算。空建议集视为成功。
func (s *MatchingService) Run(announcementID uint, forceRefresh bool) ([]models.MatchCandidate, error) {
	startedAt := time.Now()

	announcement, err := s.announcementRepo.GetByID(announcementID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnnouncementFetch, err)
	}
	if announcement == nil {
		return nil, ErrAnnouncementNotFound
	}
	if announcement.Status != constants.AnnouncementStatusPublished {
		return nil, ErrAnnouncementClosed
	}

	now := time.Now()
	if _, err := s.matchRepo.ExpireOverdue(now); err != nil {
		logger.Warnw("matching_lazy_expire_failed", "announcement_id", announcementID, "error", err)
	}

	open, err := s.matchRepo.ListByAnnouncement(announcementID,
		constants.MatchStatePending, constants.MatchStateSuggested)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchFetchFailed, err)
	}
	if len(open) > 0 {
		if !forceRefresh {
			return open, nil
		}
		if _, err := s.matchRepo.ExpireSiblings(announcementID, 0, now); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
		}
	}

	criteria, err := s.criteriaService.EnsureForAnnouncement(announcement)
	if err != nil {
		return nil, err
	}
	weights, ok := matching.ForVariant(criteria.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVariantUnknown, criteria.Variant)
	}

	pool, err := s.delivererRepo.ListCandidatePool(
		announcement.PickupLat, announcement.PickupLng,
		criteria.MaxDistanceKm, criteria.MinRating,
	)
	if err != nil {
		return nil, err
	}

	request := buildMatchRequest(announcement, criteria)
	constraints := buildConstraints(criteria)
	scored := s.scorePool(pool, request, constraints, criteria, weights, now)

	ranked := matching.Rank(toRanked(scored), criteria.ScoreThreshold, criteria.MaxSuggestions)
	if len(ranked) == 0 {
		logger.Infow("matching_run_empty",
			"announcement_id", announcementID,
			"pool_size", len(pool),
			"scored", len(scored),
		)
		return []models.MatchCandidate{}, nil
	}

	byDeliverer := make(map[uint]scoredCandidate, len(scored))
	for _, item := range scored {
		byDeliverer[item.deliverer.ID] = item
	}

	runID := uuid.NewString()
	computeMillis := time.Since(startedAt).Milliseconds()
	candidates := make([]models.MatchCandidate, 0, len(ranked))
	for _, item := range ranked {
		sc := byDeliverer[item.AgentID]
		candidates = append(candidates, models.MatchCandidate{
			RunID:                    runID,
			AnnouncementID:           announcement.ID,
			DelivererID:              sc.deliverer.ID,
			CriteriaID:               criteria.ID,
			Variant:                  criteria.Variant,
			DistanceScore:            sc.breakdown.Distance,
			TimeScore:                sc.breakdown.Time,
			PriceScore:               sc.breakdown.Price,
			RatingScore:              sc.breakdown.Rating,
			OverallScore:             sc.breakdown.Overall,
			Confidence:               sc.breakdown.Overall,
			EstimatedDistanceKm:      sc.totalKm,
			EstimatedDurationMinutes: matching.EstimateDurationMinutes(sc.totalKm),
			SuggestedPrice:           announcement.SuggestedPrice,
			ComputeMillis:            computeMillis,
			State:                    constants.MatchStateSuggested,
			SuggestedAt:              now,
			ExpiresAt:                s.candidateExpiry(now, sc.prefs),
		})
	}

	if err := s.matchRepo.CreateBatch(candidates); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
	}

	for _, candidate := range candidates {
		err := s.queueClient.EnqueueMatchNotify(queue.MatchNotifyPayload{
			CandidateID: candidate.ID,
			Event:       constants.MatchStateSuggested,
		})
		if err != nil {
			logger.Warnw("matching_notify_enqueue_failed", "candidate_id", candidate.ID, "error", err)
		}
	}
	if criteria.AutoAssignAfterMinutes != nil && *criteria.AutoAssignAfterMinutes > 0 {
		delay := time.Duration(*criteria.AutoAssignAfterMinutes) * time.Minute
		err := s.queueClient.EnqueueMatchAutoAssign(queue.MatchAutoAssignPayload{
			AnnouncementID: announcement.ID,
		}, delay)
		if err != nil {
			logger.Warnw("matching_auto_assign_enqueue_failed", "announcement_id", announcement.ID, "error", err)
		}
	}

	logger.Infow("matching_run_completed",
		"announcement_id", announcement.ID,
		"run_id", runID,
		"variant", criteria.Variant,
		"pool_size", len(pool),
		"suggested", len(candidates),
		"compute_ms", computeMillis,
	)
	return candidates, nil
}

// scorePool 并发评分候选池，单个候选失败只跳过不终止整轮
func (s *MatchingService) scorePool(
	pool []models.Deliverer,
	request matching.Request,
	constraints matching.Constraints,
	criteria *models.MatchingCriteria,
	weights matching.Weights,
	now time.Time,
) []scoredCandidate {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		scored = make([]scoredCandidate, 0, len(pool))
	)
	for i := range pool {
		wg.Add(1)
		go func(deliverer models.Deliverer) {
			defer wg.Done()

			prefs, err := s.prefService.GetOrCreate(deliverer.ID)
			if err != nil {
				logger.Warnw("matching_candidate_skipped", "deliverer_id", deliverer.ID, "error", err)
				return
			}
			if prefs.MaxOpenSuggestions > 0 {
				openCount, err := s.matchRepo.CountOpenByDeliverer(deliverer.ID)
				if err != nil {
					logger.Warnw("matching_candidate_skipped", "deliverer_id", deliverer.ID, "error", err)
					return
				}
				if openCount >= int64(prefs.MaxOpenSuggestions) {
					logger.Debugw("matching_candidate_filtered",
						"deliverer_id", deliverer.ID,
						"reason", "open_suggestion_cap",
					)
					return
				}
			}

			agent := toAgent(deliverer)
			eligible, reason := matching.Eligible(request, agent, toAgentPreferences(prefs), constraints, now)
			if !eligible {
				logger.Debugw("matching_candidate_filtered",
					"deliverer_id", deliverer.ID,
					"reason", reason,
				)
				return
			}

			approachKm := matching.HaversineKm(agent.Lat, agent.Lng, request.PickupLat, request.PickupLng)
			tripKm := matching.HaversineKm(request.PickupLat, request.PickupLng, request.DeliveryLat, request.DeliveryLng)
			breakdown, err := matching.Score(matching.CandidateInput{
				DelivererID:     deliverer.ID,
				ApproachKm:      approachKm,
				MaxDistanceKm:   criteria.MaxDistanceKm,
				DelayMinutes:    matching.StartDelayMinutes(agent, request, now),
				MaxDelayMinutes: float64(criteria.MaxDelayMinutes),
				MinPrice:        prefs.MinPrice.InexactFloat64(),
				SuggestedPrice:  request.SuggestedPrice,
				MaxPrice:        request.MaxPrice,
				Rating:          deliverer.AverageRating,
			}, weights)
			if err != nil {
				logger.Warnw("matching_candidate_skipped", "deliverer_id", deliverer.ID, "error", err)
				return
			}

			mu.Lock()
			scored = append(scored, scoredCandidate{
				deliverer: deliverer,
				prefs:     prefs,
				breakdown: breakdown,
				totalKm:   approachKm + tripKm,
			})
			mu.Unlock()
		}(pool[i])
	}
	wg.Wait()
	return scored
}

// List 分页查询候选，查询前先做一次懒过期
func (s *MatchingService) List(filter repository.MatchListFilter) ([]models.MatchCandidate, int64, error) {
	if _, err := s.matchRepo.ExpireOverdue(time.Now()); err != nil {
		logger.Warnw("matching_lazy_expire_failed", "error", err)
	}
	return s.matchRepo.List(filter)
}

// Get 获取单个候选，过期未落库时先落过期再返回
func (s *MatchingService) Get(id uint) (*models.MatchCandidate, error) {
	candidate, err := s.matchRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchFetchFailed, err)
	}
	if candidate == nil {
		return nil, ErrCandidateNotFound
	}
	now := time.Now()
	if candidate.State == constants.MatchStateSuggested && now.After(candidate.ExpiresAt) {
		changed, err := s.matchRepo.UpdateStateFrom(candidate.ID, constants.MatchStateSuggested,
			constants.MatchStateExpired, map[string]interface{}{"updated_at": now})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
		}
		if changed {
			candidate.State = constants.MatchStateExpired
		}
	}
	return candidate, nil
}

func (s *MatchingService) candidateExpiry(now time.Time, prefs *models.DelivererPreferences) time.Time {
	hours := s.cfg.CandidateExpireHours
	if hours <= 0 {
		hours = 24
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	if prefs != nil && prefs.AutoDeclineAfterMinutes != nil && *prefs.AutoDeclineAfterMinutes > 0 {
		autoDecline := now.Add(time.Duration(*prefs.AutoDeclineAfterMinutes) * time.Minute)
		if autoDecline.Before(expiresAt) {
			expiresAt = autoDecline
		}
	}
	return expiresAt
}

func buildMatchRequest(announcement *models.Announcement, criteria *models.MatchingCriteria) matching.Request {
	request := matching.Request{
		PickupLat:       announcement.PickupLat,
		PickupLng:       announcement.PickupLng,
		DeliveryLat:     announcement.DeliveryLat,
		DeliveryLng:     announcement.DeliveryLng,
		PackageCategory: announcement.PackageCategory,
		WeightKg:        announcement.WeightKg,
		SuggestedPrice:  announcement.SuggestedPrice.InexactFloat64(),
		MaxPrice:        announcement.MaxPrice.InexactFloat64(),
		Negotiable:      announcement.Negotiable,
		PickupAfter:     announcement.PickupAfter,
		PickupBefore:    announcement.PickupBefore,
	}
	// 条件里的窗口覆盖公告窗口
	if criteria.PickupAfter != nil {
		request.PickupAfter = criteria.PickupAfter
	}
	if criteria.PickupBefore != nil {
		request.PickupBefore = criteria.PickupBefore
	}
	return request
}

func buildConstraints(criteria *models.MatchingCriteria) matching.Constraints {
	return matching.Constraints{
		MaxDistanceKm:        criteria.MaxDistanceKm,
		VehicleTypes:         criteria.VehicleTypes,
		MinVehicleCapacityKg: criteria.MinVehicleCapacityKg,
		MinRating:            criteria.MinRating,
		MaxDelayMinutes:      float64(criteria.MaxDelayMinutes),
	}
}

func toAgent(deliverer models.Deliverer) matching.Agent {
	return matching.Agent{
		ID:                deliverer.ID,
		Available:         deliverer.Available,
		VehicleType:       deliverer.VehicleType,
		VehicleCapacityKg: deliverer.VehicleCapacityKg,
		Lat:               deliverer.CurrentLat,
		Lng:               deliverer.CurrentLng,
		AvailableFrom:     deliverer.AvailableFrom,
		Rating:            deliverer.AverageRating,
		RatingCount:       deliverer.RatingCount,
	}
}

func toAgentPreferences(prefs *models.DelivererPreferences) matching.AgentPreferences {
	return matching.AgentPreferences{
		MaxRadiusKm:       prefs.MaxRadiusKm,
		WorkDays:          prefs.WorkDays,
		WorkStartHour:     prefs.WorkStartHour,
		WorkEndHour:       prefs.WorkEndHour,
		PackageCategories: prefs.PackageCategories,
		MaxWeightKg:       prefs.MaxWeightKg,
		MinPrice:          prefs.MinPrice.InexactFloat64(),
		Negotiable:        prefs.Negotiable,
	}
}

func toRanked(scored []scoredCandidate) []matching.Ranked {
	ranked := make([]matching.Ranked, 0, len(scored))
	for _, item := range scored {
		ranked = append(ranked, matching.Ranked{
			AgentID:             item.deliverer.ID,
			Breakdown:           item.breakdown,
			EstimatedDistanceKm: item.totalKm,
		})
	}
	return ranked
}
