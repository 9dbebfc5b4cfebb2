package queue

import (
	"encoding/json"

	"github.com/ecomatch/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskMatchNotify 撮合事件通知任务
	TaskMatchNotify = constants.TaskMatchNotify
	// TaskMatchAutoAssign 延迟自动指派任务
	TaskMatchAutoAssign = constants.TaskMatchAutoAssign
)

// MatchNotifyPayload 撮合事件通知任务载荷
type MatchNotifyPayload struct {
	CandidateID uint   `json:"candidate_id"`
	Event       string `json:"event"`
}

// MatchAutoAssignPayload 自动指派任务载荷
type MatchAutoAssignPayload struct {
	AnnouncementID uint `json:"announcement_id"`
}

// NewMatchNotifyTask 创建撮合事件通知任务
func NewMatchNotifyTask(payload MatchNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMatchNotify, body), nil
}

// NewMatchAutoAssignTask 创建自动指派任务
func NewMatchAutoAssignTask(payload MatchAutoAssignPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMatchAutoAssign, body), nil
}
