package worker

import (
	"context"
	"emfdscore.com/emfd/metrics"
	"emfdscore.com/emfd/pipeline"
	"emfdscore.com/emfd/tasks"
	"emfdscore.com/emfd/utils"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// Message is the body exchanged with the sequencer.
type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery  *amqp.Delivery
	chunkTask *tasks.ChunkTask
	message   *Message
	redisKey  string
	log       *zerolog.Logger
}

var errPipelineClosed = errors.New("pipeline channel was closed before returning anything")

// processMessage runs one delivery to completion against the RMQ client it was
// received on. Cancelling ctx does not abort a task that has already started.
func (worker *Worker) processMessage(ctx context.Context, rmqClient rmqTransactions, delivery *amqp.Delivery) {
	ctx = context.WithoutCancel(ctx)
	rejectLogger := worker.log.With().Str("message_id", delivery.MessageId).Logger()
	task, err := worker.createTask(ctx, delivery)
	if err != nil {
		rejectLogger.Err(err).Str("body", string(delivery.Body)).Msg("Failed to create task for delivery")
		rmqClient.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(ctx, task); err != nil {
		rmqClient.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = rmqClient.pingSequencer(task, *task.message); err != nil {
		task.log.Err(err).Msg("Got error while sending message to sequencer queue")
		rmqClient.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = rmqClient.acknowledgeDelivery(delivery); err != nil {
		task.log.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.log.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(ctx context.Context, delivery *amqp.Delivery) (*Task, error) {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	chunkTask, err := worker.redis.getChunkTask(ctx, message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk task for message, got error %w", err)
	}
	taskLogger := worker.log.With().Str("tid", message.RedisKey).Str("doc_id", chunkTask.DocID).Logger()
	return &Task{
		delivery:  delivery,
		chunkTask: chunkTask,
		redisKey:  message.RedisKey,
		message:   &message,
		log:       &taskLogger,
	}, nil
}

// processTask returns an error only when the delivery should be rejected.
// A pipeline failure is recorded on the chunk and the delivery is still
// handed back to the sequencer.
func (worker *Worker) processTask(ctx context.Context, task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(ctx, task)
	if err != nil {
		task.log.Err(err).Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		metrics.Tasks.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return nil
	}
	if err = worker.redis.onTaskStarted(ctx, task); err != nil {
		task.log.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runPipeline(task); err != nil {
		task.log.Err(err).Msg("Got error while running pipeline")
		metrics.Tasks.WithLabelValues(metrics.OutcomeFailed).Inc()
		return worker.redis.onTaskFailedWithError(ctx, task, err)
	}
	task.log.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(ctx, task); err != nil {
		task.log.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	metrics.Tasks.WithLabelValues(metrics.OutcomeCompleted).Inc()
	return nil
}

func (worker *Worker) runPipeline(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.log.Info().Msgf("Processing message from RMQ, attempt # %d", task.chunkTask.TaskStatuses.EMFD.Attempts)
	data, err := worker.s3.getChunkText(task)
	if err != nil {
		task.log.Err(err).Caller().Msg("Could not fetch text data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	result, ok := <-worker.ppln(pipeline.Request{Tid: task.redisKey, Text: string(data)})
	if !ok {
		return errPipelineClosed
	}
	task.log.Info().Msg("Finished pipeline, saving results to s3")
	return worker.s3.saveResultsFile(task, result)
}

func (worker *Worker) shouldPerformTask(ctx context.Context, task *Task) (bool, error) {
	taskInfo := task.chunkTask.TaskStatuses.EMFD
	taskLogger := task.log

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done (might indicate issue acking message with RMQ). Sending back to Sequencer.")
		return false, nil
	}
	jobTask, err := worker.redis.getJobTask(ctx, task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query job task for chunk task")
		return false, err
	}
	if jobTask.UserCanceled {
		taskLogger.Info().Msg("Job was canceled, no need to perform this task. Sending back to Sequencer.")
		return false, worker.redis.onTaskCancelled(ctx, task)
	}
	if jobTask.StopDocumentsOnFailure {
		docTask, err := worker.redis.getDocTask(ctx, task)
		if err != nil {
			return false, err
		}
		if docTask == nil {
			return false, errors.New("document task not found")
		}
		if len(docTask.FailedTasks) > 0 {
			failedTask := docTask.FailedTasks[0]
			taskLogger.Info().Str("failed_task", failedTask).
				Msg("Document already failed in another worker. Sending back to Sequencer.")
			return false, worker.redis.onTaskCancelled(ctx, task, fmt.Sprintf(
				"Task was marked as %q because the current document has failed "+
					"in the %q worker and won't be processed successfully.",
				tasks.TaskStatusCanceled,
				failedTask,
			))
		}
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Task has exceeded retries. Sending back to Sequencer.")
		return false, worker.redis.onTaskExceededRetries(ctx, task, worker.config.TaskMaxRetries)
	}
	return true, nil
}
