package worker

import (
	"context"
	"emfdscore.com/emfd/pipeline"
	"emfdscore.com/emfd/tasks"
	"errors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

var errMock = errors.New("mock failure")

type pipelineMock struct {
	ppln   pipeline.Pipeline
	closed bool
	result string
	called bool
}

func newPipelineMock(closed bool, result string) *pipelineMock {
	mock := &pipelineMock{closed: closed, result: result}
	mock.ppln = func(request pipeline.Request) <-chan string {
		mock.called = true
		ch := make(chan string, 1)
		if !mock.closed {
			ch <- mock.result + request.Text
		}
		close(ch)
		return ch
	}
	return mock
}

// newBlockingPipeline signals started once it has a request and answers only
// after release is closed.
func newBlockingPipeline(started chan<- struct{}, release <-chan struct{}) pipeline.Pipeline {
	return func(request pipeline.Request) <-chan string {
		ch := make(chan string, 1)
		go func() {
			defer close(ch)
			close(started)
			<-release
			ch <- "scored: " + request.Text
		}()
		return ch
	}
}

// redisMock fails every method named in fail and records every call.
type redisMock struct {
	fail      map[string]bool
	chunkTask tasks.ChunkTask
	jobTask   tasks.JobTask
	docTask   tasks.DocumentTaskCached
	calls     []string
}

func (mock *redisMock) call(name string) error {
	mock.calls = append(mock.calls, name)
	if mock.fail[name] {
		return errMock
	}
	return nil
}

func (mock *redisMock) close() {
	_ = mock.call("close")
}

func (mock *redisMock) getChunkTask(_ context.Context, _ string) (*tasks.ChunkTask, error) {
	if err := mock.call("getChunkTask"); err != nil {
		return nil, err
	}
	chunkTask := mock.chunkTask
	return &chunkTask, nil
}

func (mock *redisMock) getJobTask(_ context.Context, _ *Task) (*tasks.JobTask, error) {
	if err := mock.call("getJobTask"); err != nil {
		return nil, err
	}
	jobTask := mock.jobTask
	return &jobTask, nil
}

func (mock *redisMock) getDocTask(_ context.Context, _ *Task) (*tasks.DocumentTaskCached, error) {
	if err := mock.call("getDocTask"); err != nil {
		return nil, err
	}
	docTask := mock.docTask
	return &docTask, nil
}

func (mock *redisMock) onTaskStarted(_ context.Context, _ *Task) error {
	return mock.call("onTaskStarted")
}

func (mock *redisMock) onTaskCancelled(_ context.Context, _ *Task, _ ...string) error {
	return mock.call("onTaskCancelled")
}

func (mock *redisMock) onTaskExceededRetries(_ context.Context, _ *Task, _ int) error {
	return mock.call("onTaskExceededRetries")
}

func (mock *redisMock) onTaskFailedWithError(_ context.Context, _ *Task, _ error) error {
	return mock.call("onTaskFailedWithError")
}

func (mock *redisMock) onTaskComplete(_ context.Context, _ *Task) error {
	return mock.call("onTaskComplete")
}

type rmqMock struct {
	fail       map[string]bool
	calls      []string
	sent       []Message
	deliveries chan amqp.Delivery
}

func (mock *rmqMock) call(name string) error {
	mock.calls = append(mock.calls, name)
	if mock.fail[name] {
		return errMock
	}
	return nil
}

func (mock *rmqMock) close() {
	_ = mock.call("close")
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return mock.deliveries
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) pingSequencer(_ *Task, message Message) error {
	if err := mock.call("pingSequencer"); err != nil {
		return err
	}
	mock.sent = append(mock.sent, message)
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(_ *amqp.Delivery) error {
	return mock.call("acknowledgeDelivery")
}

func (mock *rmqMock) rejectDelivery(_ *amqp.Delivery, _ *zerolog.Logger) {
	_ = mock.call("rejectDelivery")
}

type s3Mock struct {
	fail  map[string]bool
	text  string
	calls []string
	saved map[string]string
}

func (mock *s3Mock) call(name string) error {
	mock.calls = append(mock.calls, name)
	if mock.fail[name] {
		return errMock
	}
	return nil
}

func (mock *s3Mock) close() {
	_ = mock.call("close")
}

func (mock *s3Mock) getChunkText(_ *Task) ([]byte, error) {
	if err := mock.call("getChunkText"); err != nil {
		return nil, err
	}
	return []byte(mock.text), nil
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	if err := mock.call("saveResultsFile"); err != nil {
		return err
	}
	if mock.saved == nil {
		mock.saved = map[string]string{}
	}
	mock.saved[resultsFileKey(task)] = result
	return nil
}
