package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/queue"
	"github.com/ecomatch/internal/repository"

	"gorm.io/gorm"
)

// LifecycleService 候选生命周期服务：接受、拒绝、自动指派、取消、过期
type LifecycleService struct {
	db               *gorm.DB
	announcementRepo repository.AnnouncementRepository
	matchRepo        repository.MatchRepository
	criteriaRepo     repository.CriteriaRepository
	queueClient      *queue.Client
}

// NewLifecycleService 创建生命周期服务
func NewLifecycleService(
	db *gorm.DB,
	announcementRepo repository.AnnouncementRepository,
	matchRepo repository.MatchRepository,
	criteriaRepo repository.CriteriaRepository,
	queueClient *queue.Client,
) *LifecycleService {
	return &LifecycleService{
		db:               db,
		announcementRepo: announcementRepo,
		matchRepo:        matchRepo,
		criteriaRepo:     criteriaRepo,
		queueClient:      queueClient,
	}
}

// RespondInput 候选响应参数
type RespondInput struct {
	CandidateID   uint
	Accept        bool
	ProposedPrice *models.Money
	Reason        string
}

// Respond 处理配送员对建议的接受或拒绝。
// 接受路径先抢占公告指派权，抢占失败的候选直接过期。
func (s *LifecycleService) Respond(input RespondInput) (*models.MatchCandidate, error) {
	candidate, err := s.matchRepo.GetByID(input.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchFetchFailed, err)
	}
	if candidate == nil {
		return nil, ErrCandidateNotFound
	}

	now := time.Now()
	if candidate.State == constants.MatchStateSuggested && now.After(candidate.ExpiresAt) {
		if _, err := s.matchRepo.UpdateStateFrom(candidate.ID, constants.MatchStateSuggested,
			constants.MatchStateExpired, map[string]interface{}{"updated_at": now}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
		}
		return nil, ErrCandidateNotOpen
	}
	if candidate.State != constants.MatchStateSuggested {
		return nil, ErrCandidateNotOpen
	}

	if !input.Accept {
		return s.reject(candidate, input.Reason, now)
	}
	return s.accept(candidate, input.ProposedPrice, now)
}

// reject 拒绝只迁移自身状态，兄弟候选保持可接受
func (s *LifecycleService) reject(candidate *models.MatchCandidate, reason string, now time.Time) (*models.MatchCandidate, error) {
	changed, err := s.matchRepo.UpdateStateFrom(candidate.ID, constants.MatchStateSuggested,
		constants.MatchStateRejected, map[string]interface{}{
			"responded_at":     now,
			"rejection_reason": reason,
			"updated_at":       now,
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
	}
	if !changed {
		return nil, ErrCandidateNotOpen
	}

	candidate.State = constants.MatchStateRejected
	candidate.RespondedAt = &now
	candidate.RejectionReason = reason

	s.notify(candidate.ID, constants.MatchStateRejected)
	logger.Infow("match_rejected",
		"candidate_id", candidate.ID,
		"announcement_id", candidate.AnnouncementID,
		"deliverer_id", candidate.DelivererID,
	)
	return candidate, nil
}

// accept 接受路径。公告指派权、候选状态迁移、配送记录与兄弟过期
// 在同一事务内完成，任一步失败整体回滚，不会留下已指派但无人履约的公告。
// 输掉指派权竞争的一方把自己的候选置为过期并返回冲突。
func (s *LifecycleService) accept(candidate *models.MatchCandidate, proposedPrice *models.Money, now time.Time) (*models.MatchCandidate, error) {
	agreedPrice := candidate.SuggestedPrice
	if proposedPrice != nil {
		agreedPrice = *proposedPrice
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		assigned, err := s.announcementRepo.WithTx(tx).AssignIfUnassigned(candidate.AnnouncementID, candidate.DelivererID, now)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrAssignConflict
		}

		matchRepo := s.matchRepo.WithTx(tx)
		changed, err := matchRepo.UpdateStateFrom(candidate.ID, constants.MatchStateSuggested,
			constants.MatchStateAccepted, map[string]interface{}{
				"responded_at": now,
				"updated_at":   now,
			})
		if err != nil {
			return err
		}
		if !changed {
			return ErrCandidateNotOpen
		}
		delivery := &models.Delivery{
			AnnouncementID: candidate.AnnouncementID,
			DelivererID:    candidate.DelivererID,
			CandidateID:    candidate.ID,
			AgreedPrice:    agreedPrice,
			Status:         constants.DeliveryStatusCreated,
		}
		if err := tx.Create(delivery).Error; err != nil {
			return err
		}
		_, err = matchRepo.ExpireSiblings(candidate.AnnouncementID, candidate.ID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAssignConflict) {
			if _, expireErr := s.matchRepo.UpdateStateFrom(candidate.ID, constants.MatchStateSuggested,
				constants.MatchStateExpired, map[string]interface{}{"updated_at": now}); expireErr != nil {
				logger.Warnw("match_expire_loser_failed", "candidate_id", candidate.ID, "error", expireErr)
			}
			return nil, ErrAssignConflict
		}
		if errors.Is(err, ErrCandidateNotOpen) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
	}

	candidate.State = constants.MatchStateAccepted
	candidate.RespondedAt = &now

	s.notify(candidate.ID, constants.MatchStateAccepted)
	logger.Infow("match_accepted",
		"candidate_id", candidate.ID,
		"announcement_id", candidate.AnnouncementID,
		"deliverer_id", candidate.DelivererID,
		"agreed_price", agreedPrice.String(),
	)
	return candidate, nil
}

// AutoAssign 延迟任务回调：公告仍未指派时接受得分最高的有效建议。
// 公告已关闭或没有可用建议视为正常结束。
func (s *LifecycleService) AutoAssign(announcementID uint) error {
	announcement, err := s.announcementRepo.GetByID(announcementID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAnnouncementFetch, err)
	}
	if announcement == nil || announcement.Status != constants.AnnouncementStatusPublished {
		return nil
	}

	now := time.Now()
	if _, err := s.matchRepo.ExpireOverdue(now); err != nil {
		logger.Warnw("auto_assign_expire_failed", "announcement_id", announcementID, "error", err)
	}

	candidates, err := s.matchRepo.ListByAnnouncement(announcementID, constants.MatchStateSuggested)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMatchFetchFailed, err)
	}
	if len(candidates) == 0 {
		logger.Infow("auto_assign_no_candidates", "announcement_id", announcementID)
		return nil
	}

	// 排序已按总分降序，取第一个即最佳候选
	top := candidates[0]

	// 阈值可能在撮合运行后被调高，自动指派前按当前条件复核
	criteria, err := s.criteriaRepo.GetByAnnouncement(announcementID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMatchFetchFailed, err)
	}
	if criteria != nil && top.OverallScore < criteria.ScoreThreshold {
		logger.Infow("auto_assign_below_threshold",
			"announcement_id", announcementID,
			"candidate_id", top.ID,
			"overall_score", top.OverallScore,
			"score_threshold", criteria.ScoreThreshold,
		)
		return nil
	}

	_, err = s.accept(&top, nil, now)
	if err != nil {
		// 配送员在任务执行间隙抢先响应属正常竞态
		if errors.Is(err, ErrAssignConflict) || errors.Is(err, ErrCandidateNotOpen) {
			logger.Infow("auto_assign_raced", "announcement_id", announcementID, "candidate_id", top.ID)
			return nil
		}
		return err
	}
	logger.Infow("auto_assign_completed",
		"announcement_id", announcementID,
		"candidate_id", top.ID,
		"deliverer_id", top.DelivererID,
	)
	return nil
}

// CancelMatching 取消公告撮合并过期全部未终态候选。
// 重复取消幂等返回，已指派公告不可取消。
func (s *LifecycleService) CancelMatching(announcementID uint) error {
	announcement, err := s.announcementRepo.GetByID(announcementID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAnnouncementFetch, err)
	}
	if announcement == nil {
		return ErrAnnouncementNotFound
	}

	now := time.Now()
	switch announcement.Status {
	case constants.AnnouncementStatusPublished:
		if _, err := s.announcementRepo.Cancel(announcementID, now); err != nil {
			return fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
		}
	case constants.AnnouncementStatusCancelled:
		// 幂等：已取消公告只补扫残留候选
	default:
		return ErrAnnouncementClosed
	}

	expired, err := s.matchRepo.ExpireSiblings(announcementID, 0, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMatchPersistFailed, err)
	}
	logger.Infow("matching_cancelled",
		"announcement_id", announcementID,
		"expired_candidates", expired,
	)
	return nil
}

// ExpireSweep 周期兜底：过期所有超时未响应的候选
func (s *LifecycleService) ExpireSweep() (int64, error) {
	expired, err := s.matchRepo.ExpireOverdue(time.Now())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		logger.Infow("match_expire_sweep", "expired", expired)
	}
	return expired, nil
}

func (s *LifecycleService) notify(candidateID uint, event string) {
	err := s.queueClient.EnqueueMatchNotify(queue.MatchNotifyPayload{
		CandidateID: candidateID,
		Event:       event,
	})
	if err != nil {
		logger.Warnw("match_notify_enqueue_failed", "candidate_id", candidateID, "error", err)
	}
}
