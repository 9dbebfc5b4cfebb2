package service

import (
	"fmt"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/models"
	"github.com/ecomatch/internal/repository"
)

// NotificationService 撮合事件通知服务：将事件落为站内通知记录
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	matchRepo        repository.MatchRepository
	announcementRepo repository.AnnouncementRepository
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	matchRepo repository.MatchRepository,
	announcementRepo repository.AnnouncementRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		matchRepo:        matchRepo,
		announcementRepo: announcementRepo,
	}
}

// NotifyMatchEvent 为撮合事件写入通知。
// 建议事件通知配送员，其余事件通知公告客户。
func (s *NotificationService) NotifyMatchEvent(candidateID uint, event string) error {
	candidate, err := s.matchRepo.GetByID(candidateID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMatchFetchFailed, err)
	}
	if candidate == nil {
		// 候选可能已被清理，任务无需重试
		logger.Warnw("notify_candidate_missing", "candidate_id", candidateID)
		return nil
	}

	announcement, err := s.announcementRepo.GetByID(candidate.AnnouncementID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAnnouncementFetch, err)
	}
	if announcement == nil {
		logger.Warnw("notify_announcement_missing", "candidate_id", candidateID)
		return nil
	}

	notification, err := buildMatchNotification(candidate, announcement, event)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		return err
	}
	logger.Infow("notification_created",
		"candidate_id", candidateID,
		"event", event,
		"recipient_type", notification.RecipientType,
		"recipient_id", notification.RecipientID,
	)
	return nil
}

func buildMatchNotification(candidate *models.MatchCandidate, announcement *models.Announcement, event string) (*models.Notification, error) {
	payload := models.JSON{
		"candidate_id":    candidate.ID,
		"announcement_id": candidate.AnnouncementID,
		"deliverer_id":    candidate.DelivererID,
		"overall_score":   candidate.OverallScore,
	}

	switch event {
	case constants.MatchStateSuggested:
		return &models.Notification{
			RecipientType: constants.RecipientTypeDeliverer,
			RecipientID:   candidate.DelivererID,
			Type:          constants.NotificationMatchSuggested,
			Title:         "New delivery suggestion",
			Message:       fmt.Sprintf("You have been suggested for delivery %s", announcement.Reference),
			Payload:       payload,
		}, nil
	case constants.MatchStateAccepted:
		return &models.Notification{
			RecipientType: constants.RecipientTypeClient,
			RecipientID:   announcement.ClientID,
			Type:          constants.NotificationMatchAccepted,
			Title:         "Delivery accepted",
			Message:       fmt.Sprintf("A deliverer accepted your delivery %s", announcement.Reference),
			Payload:       payload,
		}, nil
	case constants.MatchStateRejected:
		return &models.Notification{
			RecipientType: constants.RecipientTypeClient,
			RecipientID:   announcement.ClientID,
			Type:          constants.NotificationMatchRejected,
			Title:         "Suggestion declined",
			Message:       fmt.Sprintf("A deliverer declined your delivery %s", announcement.Reference),
			Payload:       payload,
		}, nil
	case constants.MatchStateExpired:
		return &models.Notification{
			RecipientType: constants.RecipientTypeClient,
			RecipientID:   announcement.ClientID,
			Type:          constants.NotificationMatchExpired,
			Title:         "Suggestion expired",
			Message:       fmt.Sprintf("A suggestion for delivery %s expired without response", announcement.Reference),
			Payload:       payload,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotificationInvalid, event)
	}
}

// ListForRecipient 分页查询接收方的通知记录
func (s *NotificationService) ListForRecipient(recipientType string, recipientID uint, page, pageSize int) ([]models.Notification, int64, error) {
	if recipientType != constants.RecipientTypeClient && recipientType != constants.RecipientTypeDeliverer {
		return nil, 0, fmt.Errorf("%w: recipient type %q", ErrNotificationInvalid, recipientType)
	}
	return s.notificationRepo.ListByRecipient(recipientType, recipientID, page, pageSize)
}
