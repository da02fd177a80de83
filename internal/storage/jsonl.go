package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/scholarank/internal/match"
)

// maxLineCapacity is the buffer size for reading JSONL lines (1MB per
// line covers provenance-heavy records).
const maxLineCapacity = 1024 * 1024

// WritePapers writes ranked papers as JSONL, one paper per line.
func WritePapers(path string, papers []match.RankedPaper) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating papers file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, p := range papers {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding paper %s: %w", p.Key, err)
		}
	}
	return w.Flush()
}

// ReadPapers reads ranked papers from a JSONL file. A missing file
// returns an empty slice.
func ReadPapers(path string) ([]match.RankedPaper, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening papers file: %w", err)
	}
	defer f.Close()

	var papers []match.RankedPaper
	scanner := bufio.NewScanner(f)
	buf := make([]byte, maxLineCapacity)
	scanner.Buffer(buf, maxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var p match.RankedPaper
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		papers = append(papers, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading papers file: %w", err)
	}
	return papers, nil
}
