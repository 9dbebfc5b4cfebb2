package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ecomatch/internal/constants"
	"github.com/ecomatch/internal/models"
)

func TestNotifyMatchEventRoutesSuggestedToDeliverer(t *testing.T) {
	env := setupMatchingServiceTest(t, "notify_suggested")
	announcement := createTestAnnouncement(t, env, "ANN-NTF-1")
	candidate := seedTestCandidate(t, env, announcement.ID, 81, 0.9, time.Now().Add(time.Hour))

	if err := env.notificationService.NotifyMatchEvent(candidate.ID, constants.MatchStateSuggested); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	notifications, total, err := env.notificationService.ListForRecipient(constants.RecipientTypeDeliverer, 81, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", total)
	}
	notification := notifications[0]
	if notification.Type != constants.NotificationMatchSuggested {
		t.Fatalf("expected suggested type, got %s", notification.Type)
	}
	if notification.Payload["candidate_id"] == nil {
		t.Fatalf("expected candidate id in payload, got %v", notification.Payload)
	}
}

func TestNotifyMatchEventRoutesTerminalEventsToClient(t *testing.T) {
	env := setupMatchingServiceTest(t, "notify_client")
	announcement := createTestAnnouncement(t, env, "ANN-NTF-2")
	candidate := seedTestCandidate(t, env, announcement.ID, 82, 0.9, time.Now().Add(time.Hour))

	for _, event := range []string{constants.MatchStateAccepted, constants.MatchStateRejected, constants.MatchStateExpired} {
		if err := env.notificationService.NotifyMatchEvent(candidate.ID, event); err != nil {
			t.Fatalf("notify %s failed: %v", event, err)
		}
	}

	notifications, total, err := env.notificationService.ListForRecipient(constants.RecipientTypeClient, announcement.ClientID, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 client notifications, got %d", total)
	}
	for _, notification := range notifications {
		if notification.RecipientType != constants.RecipientTypeClient {
			t.Fatalf("expected client recipient, got %s", notification.RecipientType)
		}
	}
}

func TestNotifyMatchEventUnknownEvent(t *testing.T) {
	env := setupMatchingServiceTest(t, "notify_unknown")
	announcement := createTestAnnouncement(t, env, "ANN-NTF-3")
	candidate := seedTestCandidate(t, env, announcement.ID, 83, 0.9, time.Now().Add(time.Hour))

	err := env.notificationService.NotifyMatchEvent(candidate.ID, "exploded")
	if !errors.Is(err, ErrNotificationInvalid) {
		t.Fatalf("expected ErrNotificationInvalid, got %v", err)
	}
}

func TestNotifyMatchEventMissingCandidateIsNoop(t *testing.T) {
	env := setupMatchingServiceTest(t, "notify_missing")

	// 候选可能已被清理，任务不应重试
	if err := env.notificationService.NotifyMatchEvent(9999, constants.MatchStateSuggested); err != nil {
		t.Fatalf("expected nil for missing candidate, got %v", err)
	}

	var count int64
	if err := env.db.Model(&models.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no notifications, got %d", count)
	}
}

func TestListForRecipientValidatesType(t *testing.T) {
	env := setupMatchingServiceTest(t, "notify_list_type")
	if _, _, err := env.notificationService.ListForRecipient("robot", 1, 1, 10); !errors.Is(err, ErrNotificationInvalid) {
		t.Fatalf("expected ErrNotificationInvalid, got %v", err)
	}
}
