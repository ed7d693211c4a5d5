package worker

import (
	"emfdscore.com/emfd/s3client"
	"emfdscore.com/emfd/tasks"
	"path"
)

// resultsFileKey places the pipeline output next to the chunk it was computed
// from: processed/documents/<doc>/chunks/<chunk>/<chunk>.emfd_results.json.
func resultsFileKey(task *Task) string {
	name := task.redisKey + "." + tasks.Worker + "_results.json"
	return path.Join("processed", "documents", task.chunkTask.DocID, "chunks", task.redisKey, name)
}

type s3Transactions interface {
	getChunkText(task *Task) ([]byte, error)
	saveResultsFile(task *Task, result string) error
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) getChunkText(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.chunkTask.TextFileKey)
}

func (wrapper *s3ClientWrapper) saveResultsFile(task *Task, result string) error {
	return wrapper.s3Client.Upload(resultsFileKey(task), []byte(result))
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}
