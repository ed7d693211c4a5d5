package tasks

import (
	"emfdscore.com/emfd/redis"
)

// Worker is the name this service reports in task statuses and failure lists.
const Worker = "emfd"

// Client reads and updates the task documents of the three task databases.
type Client struct {
	Documents DocumentTasks
	Chunks    ChunkTasks
	Jobs      JobTasks
}

func NewClient() (*Client, error) {
	docs, err := redis.NewClient(DocumentsDB)
	if err != nil {
		return nil, err
	}
	jobs, err := redis.NewClient(JobsDB)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}
	chunks, err := redis.NewClient(ChunksDB)
	if err != nil {
		_ = docs.Close()
		_ = jobs.Close()
		return nil, err
	}
	return &Client{
		Documents: DocumentTasks{client: docs},
		Jobs:      JobTasks{client: jobs},
		Chunks:    ChunkTasks{client: chunks},
	}, nil
}

func (client *Client) Close() {
	_ = client.Chunks.client.Close()
	_ = client.Documents.client.Close()
	_ = client.Jobs.client.Close()
}

func cachedPropertiesKey(redisKey string) string {
	return redisKey + "-cached-properties"
}
