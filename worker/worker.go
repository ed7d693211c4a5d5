// Package worker consumes scoring tasks from the queue, runs the moral
// pipeline over each chunk text and reports back to the sequencer.
package worker

import (
	"context"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/pipeline"
	"emfdscore.com/emfd/rmq"
	"emfdscore.com/emfd/s3client"
	"emfdscore.com/emfd/tasks"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"sync"
)

type Config struct {
	TaskMaxRetries int `envconfig:"MDL_COMN_RETRY_TASK_COUNT_MAX" default:"3"`
}

type Worker struct {
	config Config
	redis  redisTransactions
	s3     s3Transactions
	log    *zerolog.Logger
	ppln   pipeline.Pipeline

	// rmqMu guards rmq, which is swapped on reconnect while tasks run.
	rmqMu sync.Mutex
	rmq   rmqTransactions

	inFlight sync.WaitGroup
}

func New(ppln pipeline.Pipeline) (*Worker, error) {
	workerLogger := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		workerLogger.Error().Err(err).Msg("Could not read config")
		return nil, err
	}

	worker := &Worker{
		config: config,
		log:    &workerLogger,
		ppln:   ppln,
	}
	clients := []struct {
		name    string
		refresh func() error
	}{
		{"RMQ", worker.refreshRMQClient},
		{"S3", worker.refreshS3Client},
		{"Redis", worker.refreshRedisClient},
	}
	for _, client := range clients {
		if err := client.refresh(); err != nil {
			workerLogger.Error().Err(err).Msgf("Could not create %s client", client.name)
			worker.Close()
			return nil, err
		}
	}
	return worker, nil
}

// Start dispatches deliveries until ctx is done or a broken connection cannot
// be re-established. Each delivery is handled on its own goroutine; the
// prefetch count of the consumer bounds how many run at once. Before the
// clients are closed Start waits for every dispatched task to finish.
func (worker *Worker) Start(ctx context.Context) error {
	defer worker.Close()
	defer worker.inFlight.Wait()
	for {
		rmqClient := worker.rmqClient()
		select {
		case <-ctx.Done():
			worker.log.Info().Msg("Context done, waiting for running tasks before stopping worker")
			return nil
		case delivery, ok := <-rmqClient.getDeliveriesCh():
			if ok {
				worker.inFlight.Add(1)
				go func() {
					defer worker.inFlight.Done()
					worker.processMessage(ctx, rmqClient, &delivery)
				}()
				continue
			}
			worker.log.Error().Msg("Deliveries channel closed, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf("rmq deliveries channel has been closed and refresh returned error: %w", err)
			}
		case rmqErr := <-rmqClient.getRespChanErrorsCh():
			if err := worker.onConnectionError("response", rmqErr); err != nil {
				return err
			}
		case rmqErr := <-rmqClient.getReqChanErrorsCh():
			if err := worker.onConnectionError("request", rmqErr); err != nil {
				return err
			}
		}
	}
}

func (worker *Worker) onConnectionError(side string, rmqErr error) error {
	if rmqErr == nil {
		return nil
	}
	worker.log.Err(rmqErr).Msgf("The %s connection received error, trying to refresh RMQ client", side)
	if err := worker.refreshRMQClient(); err != nil {
		return fmt.Errorf("%s connection received error and refresh failed with: %w", side, err)
	}
	return nil
}

func (worker *Worker) Close() {
	if worker.redis != nil {
		worker.redis.close()
	}
	if worker.s3 != nil {
		worker.s3.close()
	}
	if rmqClient := worker.rmqClient(); rmqClient != nil {
		rmqClient.close()
	}
}

func (worker *Worker) rmqClient() rmqTransactions {
	worker.rmqMu.Lock()
	defer worker.rmqMu.Unlock()
	return worker.rmq
}

func (worker *Worker) refreshRedisClient() error {
	worker.log.Info().Msg("Refreshing Redis client")
	tasksClient, err := tasks.NewClient()
	if err != nil {
		return err
	}
	if old := worker.redis; old != nil {
		defer old.close()
	}
	worker.redis = &redisClientWrapper{tasksClient}
	return nil
}

func (worker *Worker) refreshRMQClient() error {
	worker.log.Info().Msg("Refreshing RMQ client")
	rmqClient, err := rmq.NewClient()
	if err != nil {
		worker.log.Err(err).Msg("Failed to refresh RMQ client")
		return err
	}
	worker.rmqMu.Lock()
	old := worker.rmq
	worker.rmq = &rmqClientWrapper{rmqClient}
	worker.rmqMu.Unlock()
	if old != nil {
		old.close()
	}
	worker.log.Info().Msg("Refreshed RMQ client")
	return nil
}

func (worker *Worker) refreshS3Client() error {
	worker.log.Info().Msg("Refreshing S3 client")
	s3Client, err := s3client.New()
	if err != nil {
		return err
	}
	if old := worker.s3; old != nil {
		defer old.close()
	}
	worker.s3 = &s3ClientWrapper{s3Client}
	return nil
}
