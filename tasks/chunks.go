package tasks

import (
	"context"
	"emfdscore.com/emfd/redis"
)

const ChunksDB redis.DB = 2

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	switch s {
	case TaskStatusCompletedSuccess, TaskStatusCompletedFailure, TaskStatusCanceled:
		return true
	}
	return false
}

// ChunkTask is the part of a chunk document this worker reads and writes.
type ChunkTask struct {
	DocID        string            `json:"document_id"`
	JobID        string            `json:"job_id"`
	TextFileKey  string            `json:"text_file_key"`
	TaskStatuses ChunkTaskStatuses `json:"task_statuses"`
}

type ChunkTaskStatuses struct {
	EMFD ChunkTaskInfo `json:"emfd"`
}

type ChunkTaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	ErrorMessages  []string   `json:"error_messages"`
}

type ChunkTasks struct {
	client *redis.Client
}

func (tasks ChunkTasks) Get(ctx context.Context, redisKey string) (*ChunkTask, error) {
	var task ChunkTask
	if err := tasks.client.GetDocument(ctx, redisKey, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies update to the emfd status of the chunk under the chunk lock.
func (tasks ChunkTasks) Update(ctx context.Context, redisKey string, update func(info *ChunkTaskInfo)) error {
	var task ChunkTask
	return tasks.client.UpdateDocument(ctx, redisKey, &task, func() error {
		update(&task.TaskStatuses.EMFD)
		return nil
	})
}
