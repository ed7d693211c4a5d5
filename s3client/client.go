package s3client

import (
	"bytes"
	"emfdscore.com/emfd/logger"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"sync"
)

type EnvironmentConfig struct {
	BucketName  string `envconfig:"MDL_COMN_STORAGE_CONTAINER_NAME" required:"true"`
	Env         string `envconfig:"T2P_ENV" required:"true"`
	Region      string `envconfig:"MDL_COMN_AWS_REGION_NAME" required:"true"`
	AwsEndpoint string `envconfig:"MDL_COMN_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"MDL_COMN_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"MDL_COMN_AWS_ACCESS_KEY" default:""`
}

const maxRetries = 4

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

// Client moves chunk texts and score results in one bucket. A failed call
// refreshes the session once and is retried.
type Client struct {
	env EnvironmentConfig

	mu   sync.Mutex
	sess *session.Session
}

func New() (*Client, error) {
	var env EnvironmentConfig
	if err := envconfig.Process("", &env); err != nil {
		clientLogger.Err(err).Caller().Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := &Client{env: env}
	if _, err := client.refresh(nil); err != nil {
		return nil, err
	}
	return client, nil
}

func (client *Client) Upload(key string, data []byte) error {
	return client.withSession(func(sess *session.Session) error {
		keyLogger := clientLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
		uploader := s3manager.NewUploader(sess.Copy(&aws.Config{Logger: sdkAdapter(key)}))
		keyLogger.Debug().Int("bytes", len(data)).Msg("Uploading file")
		_, err := uploader.Upload(&s3manager.UploadInput{
			Bucket: aws.String(client.env.BucketName),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		return err
	})
}

func (client *Client) Download(key string) ([]byte, error) {
	var data []byte
	err := client.withSession(func(sess *session.Session) error {
		keyLogger := clientLogger.With().Str("key", key).Str("bucket", client.env.BucketName).Logger()
		downloader := s3manager.NewDownloader(sess.Copy(&aws.Config{Logger: sdkAdapter(key)}))
		buf := aws.NewWriteAtBuffer([]byte{})
		size, err := downloader.Download(buf, &s3.GetObjectInput{
			Bucket: aws.String(client.env.BucketName),
			Key:    aws.String(key),
		})
		if err != nil {
			keyLogger.Error().Err(err).Msg("Failed to download file")
			return err
		}
		keyLogger.Debug().Int64("bytes", size).Msg("Downloaded file")
		data = buf.Bytes()
		return nil
	})
	return data, err
}

func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.sess = nil
	clientLogger.Info().Msg("Closed client")
}

func (client *Client) withSession(fn func(sess *session.Session) error) error {
	client.mu.Lock()
	sess := client.sess
	client.mu.Unlock()
	if sess == nil {
		return errors.New("s3 client is closed")
	}
	err := fn(sess)
	if err == nil {
		return nil
	}
	clientLogger.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
	sess, refreshErr := client.refresh(sess)
	if refreshErr != nil {
		return fmt.Errorf("%w (refresh failed: %v)", err, refreshErr)
	}
	return fn(sess)
}

// refresh replaces the session unless another caller already replaced stale.
func (client *Client) refresh(stale *session.Session) (*session.Session, error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.sess != nil && client.sess != stale {
		return client.sess, nil
	}
	sess, err := client.newSession()
	if err != nil {
		client.sess = nil
		return nil, err
	}
	client.sess = sess
	return sess, nil
}

// newSession prefers the instance role and falls back to keys from the
// environment. Both are verified against STS.
func (client *Client) newSession() (*session.Session, error) {
	sess, err := session.NewSession(client.instanceConfig())
	if err == nil {
		if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err == nil {
			clientLogger.Info().Msg("S3 session initialized using EC2")
			return sess, nil
		}
	}
	clientLogger.Info().Err(err).Msg("Could not initialize S3 session using EC2, trying env credentials")

	cfg, err := client.envConfig()
	if err != nil {
		return nil, err
	}
	sess, err = session.NewSession(cfg)
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	if _, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
		clientLogger.Error().Err(err).Msg("Could not verify S3 session")
		return nil, fmt.Errorf("could not initialize S3 session: %w", err)
	}
	clientLogger.Info().Msg("S3 session initialized using env credentials")
	return sess, nil
}

func (client *Client) instanceConfig() *aws.Config {
	return aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(maxRetries).
		WithLogLevel(aws.LogDebug)
}

func (client *Client) envConfig() (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(client.env.AccessKeyID, client.env.AccessKey, "")
	if _, err := creds.Get(); err != nil {
		clientLogger.Error().Err(err).Msg("Error with credentials from environment")
		return nil, err
	}
	cfg := client.instanceConfig().WithCredentials(creds)
	if client.env.Env == "dev" && client.env.AwsEndpoint != "" {
		cfg = cfg.WithEndpoint(client.env.AwsEndpoint).WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

type sdkLog struct {
	log zerolog.Logger
}

func sdkAdapter(key string) aws.Logger {
	return sdkLog{log: sdkLogger.With().Str("key", key).Logger()}
}

func (l sdkLog) Log(v ...interface{}) {
	l.log.Debug().Msg(fmt.Sprint(v...))
}
