package result

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Format renders results as a full TSV document with header.
func Format(results []*Result) string {
	var b strings.Builder
	b.WriteString(Header())
	b.WriteString("\n")
	for _, r := range results {
		b.WriteString(r.Row())
		b.WriteString("\n")
	}
	return b.String()
}

// Save writes results to path as TSV, replacing any existing file.
func Save(results []*Result, path string) error {
	if err := os.WriteFile(path, []byte(Format(results)), 0o644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// Load reads a TSV file written by Save.
func Load(path string) ([]*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results: %w", err)
	}
	defer f.Close()

	var results []*Result
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			if line != Header() {
				return nil, fmt.Errorf("%s: unexpected header %q", path, line)
			}
			continue
		}
		if line == "" {
			continue
		}
		r, err := ParseRow(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		results = append(results, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	return results, nil
}

// Table is a list of results that renders as a TSV document.
type Table []*Result

// TSV implements api.TSVer.
func (t Table) TSV() string {
	return Format(t)
}
