package utils

import (
	"bufio"
	"github.com/twmb/murmur3"
	"os"
	"strings"
)

func HashString(s string) uint64 {
	hash := murmur3.New64()
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

func HashStrings(ss ...string) uint64 {
	hash := murmur3.New64()
	for _, s := range ss {
		_, err := hash.Write([]byte(s))
		if err != nil {
			panic(err)
		}
		// separator keeps ("ab","c") and ("a","bc") apart
		_, _ = hash.Write([]byte{0})
	}
	return hash.Sum64()
}

// ReadSet reads one lower-cased entry per line. Blank lines and lines starting
// with '#' are skipped.
func ReadSet(filePath string) (map[string]struct{}, error) {
	lines, err := ReadList(filePath)
	if err != nil {
		return nil, err
	}
	result := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		result[strings.ToLower(line)] = struct{}{}
	}
	return result, nil
}

func ReadList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	var result []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result = append(result, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
