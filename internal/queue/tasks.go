package queue

import (
	"encoding/json"

	"github.com/suzaku-admin/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSyncBackfill 历史回补任务
	TaskSyncBackfill = constants.TaskSyncBackfill
	// TaskStatRebuild 日报重建任务
	TaskStatRebuild = constants.TaskStatRebuild
)

// SyncBackfillPayload 回补任务载荷，日期为 YYYY-MM-DD
type SyncBackfillPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// StatRebuildPayload 日报重建任务载荷
type StatRebuildPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// NewSyncBackfillTask 创建回补任务
func NewSyncBackfillTask(payload SyncBackfillPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncBackfill, body), nil
}

// NewStatRebuildTask 创建日报重建任务
func NewStatRebuildTask(payload StatRebuildPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatRebuild, body), nil
}
