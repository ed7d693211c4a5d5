package lexicon

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func loadEMFD(filePath string) (map[string]EMFDScores, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseEMFD(f)
}

// parseEMFD reads a csv with a "word" column and one column per e-MFD score.
// Extra columns are ignored.
func parseEMFD(r io.Reader) (map[string]EMFDScores, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	wordCol := -1
	var cols [EMFDSize]int
	for i := range cols {
		cols[i] = -1
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "word" {
			wordCol = i
			continue
		}
		if idx, ok := indexOf(EMFDNames[:], name); ok {
			cols[idx] = i
		}
	}
	if wordCol < 0 {
		return nil, errors.New("header has no \"word\" column")
	}
	for idx, col := range cols {
		if col < 0 {
			return nil, fmt.Errorf("header has no %q column", EMFDNames[idx])
		}
	}

	result := make(map[string]EMFDScores)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if wordCol >= len(record) {
			return nil, fmt.Errorf("line %d: missing word", line)
		}
		var scores EMFDScores
		for idx, col := range cols {
			if col >= len(record) {
				return nil, fmt.Errorf("line %d: missing %s", line, EMFDNames[idx])
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, %s: %w", line, EMFDNames[idx], err)
			}
			scores[idx] = v
		}
		result[strings.ToLower(strings.TrimSpace(record[wordCol]))] = scores
	}
	return result, nil
}

type dicEntry struct {
	word        string
	foundations []int
}

// parseDic reads a LIWC style dictionary: a '%' delimited header of
// "id name" lines followed by "entry id [id...]" lines. resolve maps a
// category name from the header to a foundation index.
func parseDic(r io.Reader, resolve func(name string) (int, bool)) ([]dicEntry, error) {
	scanner := bufio.NewScanner(r)
	categories := make(map[string]int)
	var entries []dicEntry
	section := 0

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "%" {
			section++
			continue
		}
		fields := strings.Fields(text)
		switch section {
		case 0:
			return nil, fmt.Errorf("line %d: expected '%%' header start", line)
		case 1:
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: malformed category %q", line, text)
			}
			foundation, ok := resolve(strings.ToLower(fields[1]))
			if !ok {
				return nil, fmt.Errorf("line %d: unknown category %q", line, fields[1])
			}
			categories[fields[0]] = foundation
		default:
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: entry %q has no category", line, text)
			}
			entry := dicEntry{word: strings.ToLower(fields[0])}
			for _, id := range fields[1:] {
				foundation, ok := categories[id]
				if !ok {
					return nil, fmt.Errorf("line %d: unknown category id %q", line, id)
				}
				entry.foundations = append(entry.foundations, foundation)
			}
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if section < 2 {
		return nil, errors.New("dictionary header is not terminated")
	}
	return entries, nil
}

func resolveMFD(name string) (int, bool) {
	if idx, ok := indexOf(MFDNames[:], name); ok {
		return idx, true
	}
	idx, ok := mfdAliases[name]
	return idx, ok
}

func resolveMFD2(name string) (int, bool) {
	return indexOf(MFD2Names[:], name)
}

func loadMFD(filePath string) ([]Stem, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := parseDic(f, resolveMFD)
	if err != nil {
		return nil, err
	}
	stems := make([]Stem, 0, len(entries))
	for _, e := range entries {
		stem, err := compileStem(e.word, e.foundations)
		if err != nil {
			return nil, err
		}
		stems = append(stems, stem)
	}
	return stems, nil
}

func loadMFD2(filePath string) (map[string]int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := parseDic(f, resolveMFD2)
	if err != nil {
		return nil, err
	}
	result := make(map[string]int, len(entries))
	for _, e := range entries {
		if len(e.foundations) != 1 {
			return nil, fmt.Errorf("entry %q maps to %d foundations, expected 1", e.word, len(e.foundations))
		}
		result[e.word] = e.foundations[0]
	}
	return result, nil
}
