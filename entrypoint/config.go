package main

import (
	"emfdscore.com/emfd/annotator"
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/pipeline"
	"emfdscore.com/emfd/redis"
	"emfdscore.com/emfd/types"
	"errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"io/fs"
	"time"
)

type Config struct {
	ResourcesPath string        `envconfig:"EMFD_RESOURCES_PATH" required:"true"`
	ConfigPath    string        `envconfig:"EMFD_CONFIG_PATH" default:""`
	RestAPIActive bool          `envconfig:"EMFD_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string        `envconfig:"EMFD_REST_API_PORT" default:"10000"`
	AnnotatorURL  string        `envconfig:"EMFD_ANNOTATOR_URL" default:""`
	CacheActive   bool          `envconfig:"EMFD_ANNOTATION_CACHE_ACTIVE" default:"false"`
	CacheDB       int           `envconfig:"EMFD_ANNOTATION_CACHE_DB" default:"3"`
	CacheTTL      time.Duration `envconfig:"EMFD_ANNOTATION_CACHE_TTL" default:"24h"`
}

const pipelineStartMaxRetries = 5

// loadEnv reads envFile into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnv(envFile string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func readConfig() (Config, error) {
	var config Config
	err := envconfig.Process("", &config)
	return config, err
}

// annotators holds the annotator used for word counts and the one used for
// role extraction. syntax is nil without an annotation service.
type annotators struct {
	bagOfWords annotator.Annotator
	syntax     annotator.Annotator
	cache      *redis.Client
}

func (a annotators) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

func newAnnotators(config Config) (annotators, error) {
	emfdLogger := logger.NewLogger("Annotators")
	if config.AnnotatorURL == "" {
		emfdLogger.Info().Msg("No annotation service configured, using rule tokenizer without syntax")
		return annotators{bagOfWords: annotator.NewRule()}, nil
	}
	bow, err := annotator.NewService(annotator.BagOfWords...)
	if err != nil {
		return annotators{}, err
	}
	syntax, err := annotator.NewService()
	if err != nil {
		return annotators{}, err
	}
	if !config.CacheActive {
		return annotators{bagOfWords: bow, syntax: syntax}, nil
	}
	cache, err := redis.NewClient(redis.DB(config.CacheDB))
	if err != nil {
		return annotators{}, err
	}
	emfdLogger.Info().Int("db", config.CacheDB).Dur("ttl", config.CacheTTL).Msg("Caching annotations in redis")
	return annotators{
		bagOfWords: annotator.NewCached(bow, cache, config.CacheTTL, bow.Disabled()...),
		syntax:     annotator.NewCached(syntax, cache, config.CacheTTL),
		cache:      cache,
	}, nil
}

func loadStore(config Config) (*lexicon.Store, error) {
	emfdLogger := logger.NewLogger("Lexicon")
	started := time.Now()
	store, err := lexicon.Load(config.ResourcesPath)
	if err != nil {
		emfdLogger.Err(err).Str("resources_path", config.ResourcesPath).Msg("Failed to load lexicons")
		return nil, err
	}
	emfdLogger.Info().Dur("took", time.Since(started)).Msg("Loaded lexicons")
	return store, nil
}

// loadPipeline builds the moral pipeline over the configurations found in
// config.ConfigPath, retrying while the configurations can not be read.
func loadPipeline(config Config, store *lexicon.Store, anns annotators) (pipeline.Pipeline, error) {
	emfdLogger := logger.NewLogger("Pipeline loader")
	if config.ConfigPath == "" {
		return nil, errors.New("EMFD_CONFIG_PATH is required to run configurations")
	}
	var lastErr error
	for retry := 0; retry < pipelineStartMaxRetries; retry++ {
		if retry > 0 {
			time.Sleep(5 * time.Second)
		}
		cfgs, err := types.LoadConfigurations(config.ConfigPath)
		if err != nil {
			emfdLogger.Err(err).Msg("Failed to load configurations. Retrying in 5 sec")
			lastErr = err
			continue
		}
		emfdLogger.Info().Msgf("Loaded %d configurations", len(cfgs))
		return pipeline.NewMoralPipeline(pipeline.MoralParams{
			Store:          store,
			Configurations: cfgs,
			BagOfWords:     anns.bagOfWords,
			Syntax:         anns.syntax,
		})
	}
	return nil, lastErr
}
