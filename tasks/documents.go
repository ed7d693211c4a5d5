package tasks

import (
	"context"
	"emfdscore.com/emfd/redis"
)

const DocumentsDB redis.DB = 0

type DocumentTask struct {
	FailedTasks  []string            `json:"failed_tasks"`
	FailedChunks map[string][]string `json:"failed_chunks"`
}

// DocumentTaskCached mirrors the document fields other workers poll without
// loading the full document.
type DocumentTaskCached struct {
	FailedTasks []string `json:"failed_tasks"`
}

type DocumentTasks struct {
	client *redis.Client
}

func (tasks DocumentTasks) GetCached(ctx context.Context, redisKey string) (*DocumentTaskCached, error) {
	var task DocumentTaskCached
	if err := tasks.client.GetDocument(ctx, cachedPropertiesKey(redisKey), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// MarkFailed records chunkKey as failed by this worker on the document and
// its cached properties, both under the document lock.
func (tasks DocumentTasks) MarkFailed(ctx context.Context, redisKey string, chunkKey string) (err error) {
	release, err := tasks.client.Lock(ctx, redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := release(); err == nil {
			err = releaseErr
		}
	}()

	var task DocumentTask
	err = tasks.client.ModifyDocument(ctx, redisKey, &task, func() error {
		RecordFailure(&task, chunkKey)
		return nil
	})
	if err != nil {
		return err
	}
	var cached DocumentTaskCached
	return tasks.client.ModifyDocument(ctx, cachedPropertiesKey(redisKey), &cached, func() error {
		cached.FailedTasks = task.FailedTasks
		return nil
	})
}

func RecordFailure(task *DocumentTask, chunkKey string) {
	task.FailedTasks = append(task.FailedTasks, Worker)
	if task.FailedChunks == nil {
		task.FailedChunks = make(map[string][]string)
	}
	task.FailedChunks[chunkKey] = append(task.FailedChunks[chunkKey], Worker)
}
