package s3client

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestEnvConfig(t *testing.T) {
	t.Run("dev endpoint uses path style", func(t *testing.T) {
		client := &Client{env: EnvironmentConfig{
			Region:      "us-east-1",
			Env:         "dev",
			AwsEndpoint: "http://localstack:4566",
			AccessKeyID: "id",
			AccessKey:   "key",
		}}
		cfg, err := client.envConfig()
		require.NoError(t, err)
		require.Equal(t, "http://localstack:4566", *cfg.Endpoint)
		require.True(t, *cfg.S3ForcePathStyle)
		require.Equal(t, "us-east-1", *cfg.Region)
		require.Equal(t, maxRetries, *cfg.MaxRetries)
	})

	t.Run("endpoint ignored outside dev", func(t *testing.T) {
		client := &Client{env: EnvironmentConfig{
			Region:      "us-east-1",
			Env:         "prod",
			AwsEndpoint: "http://localstack:4566",
			AccessKeyID: "id",
			AccessKey:   "key",
		}}
		cfg, err := client.envConfig()
		require.NoError(t, err)
		require.Nil(t, cfg.Endpoint)
	})

	t.Run("missing keys", func(t *testing.T) {
		client := &Client{env: EnvironmentConfig{Region: "us-east-1"}}
		_, err := client.envConfig()
		require.Error(t, err)
	})
}

func TestClosedClient(t *testing.T) {
	client := &Client{}
	_, err := client.Download("key")
	require.EqualError(t, err, "s3 client is closed")
}
