package types

import (
	"emfdscore.com/emfd/logger"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

type Dictionary string

const (
	DictionaryEMFD Dictionary = "emfd"
	DictionaryMFD  Dictionary = "mfd"
	DictionaryMFD2 Dictionary = "mfd2"
)

func ParseDictionary(s string) (Dictionary, error) {
	switch d := Dictionary(strings.ToLower(strings.TrimSpace(s))); d {
	case DictionaryEMFD, DictionaryMFD, DictionaryMFD2:
		return d, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrUnknownDictionary, s)
}

type Mode string

const (
	ModeBoW Mode = "bow"
	ModePAT Mode = "pat"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBoW, ModePAT:
		return m, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrUnknownMode, s)
}

// Configuration is one named scoring setup loaded from a yaml file.
type Configuration struct {
	Name       string     `yaml:"-" json:"name"`
	FilePath   string     `yaml:"-" json:"file_path"`
	Dictionary Dictionary `yaml:"dictionary" json:"dictionary"`
	Mode       Mode       `yaml:"mode" json:"mode"`
}

func (cfg *Configuration) Validate() error {
	if cfg.Mode == "" {
		cfg.Mode = ModeBoW
	}
	dict, err := ParseDictionary(string(cfg.Dictionary))
	if err != nil {
		return err
	}
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return err
	}
	if mode == ModePAT && dict != DictionaryEMFD {
		return fmt.Errorf("configuration %q: pat mode requires the emfd dictionary, got %q", cfg.Name, dict)
	}
	cfg.Dictionary, cfg.Mode = dict, mode
	return nil
}

// LoadConfigurations reads every *.yaml file of dirPath. Invalid files are
// logged and skipped. Result is sorted by name.
func LoadConfigurations(dirPath string) ([]Configuration, error) {
	emfdLogger := logger.NewLogger("LoadConfigurations")

	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(fileName string) {
			defer wg.Done()
			cfg := Configuration{
				Name:     strings.TrimSuffix(fileName, ".yaml"),
				FilePath: path.Join(dirPath, fileName),
			}
			buf, err := os.ReadFile(cfg.FilePath)
			if err != nil {
				emfdLogger.Err(err).Str("file_path", cfg.FilePath).Msg("Failed to read configuration")
				return
			}
			if err := yaml.Unmarshal(buf, &cfg); err != nil {
				emfdLogger.Err(err).Str("file_path", cfg.FilePath).Msg("Failed to parse configuration")
				return
			}
			if err := cfg.Validate(); err != nil {
				emfdLogger.Err(err).Str("file_path", cfg.FilePath).Msg("Skipping invalid configuration")
				return
			}
			configChan <- cfg
		}(f.Name())
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(files))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs, nil
}
