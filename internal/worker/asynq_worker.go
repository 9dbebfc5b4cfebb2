package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ecomatch/internal/logger"
	"github.com/ecomatch/internal/provider"
	"github.com/ecomatch/internal/queue"
	"github.com/ecomatch/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskMatchNotify, c.handleMatchNotify)
	mux.HandleFunc(queue.TaskMatchAutoAssign, c.handleMatchAutoAssign)
}

func (c *Consumer) handleMatchNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_match_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MatchNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_match_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.CandidateID == 0 {
		logger.Debugw("worker_match_notify_skip_invalid_payload", "candidate_id", payload.CandidateID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_match_notify_skip_service_nil", "candidate_id", payload.CandidateID)
		return nil
	}
	if err := c.NotificationService.NotifyMatchEvent(payload.CandidateID, payload.Event); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationInvalid):
			logger.Debugw("worker_match_notify_skip_invalid_event", "candidate_id", payload.CandidateID, "event", payload.Event)
			return nil
		default:
			logger.Warnw("worker_match_notify_failed", "candidate_id", payload.CandidateID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleMatchAutoAssign(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_match_auto_assign_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.MatchAutoAssignPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_match_auto_assign_unmarshal_failed", "error", err)
		return err
	}
	if payload.AnnouncementID == 0 {
		logger.Debugw("worker_match_auto_assign_skip_invalid_payload", "announcement_id", payload.AnnouncementID)
		return nil
	}
	if c.LifecycleService == nil {
		logger.Warnw("worker_match_auto_assign_skip_service_nil", "announcement_id", payload.AnnouncementID)
		return nil
	}
	if err := c.LifecycleService.AutoAssign(payload.AnnouncementID); err != nil {
		switch {
		case errors.Is(err, service.ErrAnnouncementNotFound):
			logger.Debugw("worker_match_auto_assign_skip_announcement_not_found", "announcement_id", payload.AnnouncementID)
			return nil
		case errors.Is(err, service.ErrAssignConflict):
			logger.Debugw("worker_match_auto_assign_skip_conflict", "announcement_id", payload.AnnouncementID)
			return nil
		default:
			logger.Warnw("worker_match_auto_assign_failed", "announcement_id", payload.AnnouncementID, "error", err)
			return err
		}
	}
	return nil
}
