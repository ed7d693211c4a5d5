// Package lexicon holds the three moral foundations dictionaries and the merged
// stopword list. A Store is built once by Load and never mutated afterwards, so
// it can be shared by any number of scoring goroutines without locking.
package lexicon

import (
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/utils"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
)

const (
	EMFDFile      = "emfd_scoring.csv"
	MFDFile       = "mfd.dic"
	MFD2File      = "mfd2.dic"
	dictionaryDir = "dictionaries"
	stopwordsDir  = "stopwords"
)

// Stem is one MFD entry compiled to an anchored prefix pattern.
type Stem struct {
	Entry       string
	Pattern     *regexp.Regexp
	Foundations []int
}

type Store struct {
	emfd      map[string]EMFDScores
	mfd       []Stem
	mfd2      map[string]int
	stopwords map[string]struct{}
}

// Load reads <resourcesPath>/dictionaries/{emfd_scoring.csv,mfd.dic,mfd2.dic}
// and merges every list found in <resourcesPath>/stopwords.
func Load(resourcesPath string) (*Store, error) {
	emfdLogger := logger.NewLogger("Lexicon loader").With().Str("path", resourcesPath).Logger()
	errLogger := emfdLogger.With().Caller().Logger()
	emfdLogger.Info().Msg("Started loading")

	dictPath := path.Join(resourcesPath, dictionaryDir)
	var store Store
	var err error

	if store.emfd, err = loadEMFD(path.Join(dictPath, EMFDFile)); err != nil {
		errLogger.Err(err).Str("file", EMFDFile).Msg("Failed to load e-MFD")
		return nil, fmt.Errorf("load e-MFD: %w", err)
	}
	if store.mfd, err = loadMFD(path.Join(dictPath, MFDFile)); err != nil {
		errLogger.Err(err).Str("file", MFDFile).Msg("Failed to load MFD")
		return nil, fmt.Errorf("load MFD: %w", err)
	}
	if store.mfd2, err = loadMFD2(path.Join(dictPath, MFD2File)); err != nil {
		errLogger.Err(err).Str("file", MFD2File).Msg("Failed to load MFD2")
		return nil, fmt.Errorf("load MFD2: %w", err)
	}
	if store.stopwords, err = loadStopwords(path.Join(resourcesPath, stopwordsDir)); err != nil {
		errLogger.Err(err).Msg("Failed to load stopwords")
		return nil, fmt.Errorf("load stopwords: %w", err)
	}

	emfdLogger.Info().
		Int("emfd_words", len(store.emfd)).
		Int("mfd_stems", len(store.mfd)).
		Int("mfd2_words", len(store.mfd2)).
		Int("stopwords", len(store.stopwords)).
		Msg("Finished loading")
	return &store, nil
}

// New builds a store from in-memory tables. Stem entries follow the .dic
// convention: a trailing '*' is optional, every entry matches as a prefix.
func New(emfd map[string]EMFDScores, mfd map[string][]int, mfd2 map[string]int, stopwords []string) (*Store, error) {
	store := Store{
		emfd:      make(map[string]EMFDScores, len(emfd)),
		mfd2:      make(map[string]int, len(mfd2)),
		stopwords: make(map[string]struct{}, len(stopwords)),
	}
	for w, s := range emfd {
		store.emfd[w] = s
	}
	for w, f := range mfd2 {
		if f < 0 || f >= MFD2Size {
			return nil, fmt.Errorf("mfd2 entry %q: foundation index %d out of range", w, f)
		}
		store.mfd2[w] = f
	}
	entries := make([]string, 0, len(mfd))
	for e := range mfd {
		entries = append(entries, e)
	}
	sort.Strings(entries)
	for _, e := range entries {
		stem, err := compileStem(e, mfd[e])
		if err != nil {
			return nil, err
		}
		store.mfd = append(store.mfd, stem)
	}
	for _, w := range stopwords {
		store.stopwords[strings.ToLower(w)] = struct{}{}
	}
	return &store, nil
}

func compileStem(entry string, foundations []int) (Stem, error) {
	for _, f := range foundations {
		if f < 0 || f >= MFDSize {
			return Stem{}, fmt.Errorf("mfd entry %q: foundation index %d out of range", entry, f)
		}
	}
	pattern, err := regexp.Compile("^" + regexp.QuoteMeta(strings.TrimSuffix(entry, "*")))
	if err != nil {
		return Stem{}, fmt.Errorf("mfd entry %q: %w", entry, err)
	}
	return Stem{Entry: entry, Pattern: pattern, Foundations: foundations}, nil
}

func (store *Store) EMFD(word string) (EMFDScores, bool) {
	s, ok := store.emfd[word]
	return s, ok
}

// Stems returns the compiled MFD entries in dictionary order.
func (store *Store) Stems() []Stem {
	return store.mfd
}

func (store *Store) MFD2(word string) (int, bool) {
	f, ok := store.mfd2[word]
	return f, ok
}

func (store *Store) IsStopword(word string) bool {
	_, ok := store.stopwords[word]
	return ok
}

func loadStopwords(dirPath string) (map[string]struct{}, error) {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]struct{})
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".txt") {
			continue
		}
		set, err := utils.ReadSet(path.Join(dirPath, f.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name(), err)
		}
		for w := range set {
			merged[w] = struct{}{}
		}
	}
	return merged, nil
}
