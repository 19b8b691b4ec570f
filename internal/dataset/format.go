// Package dataset turns raw CSV extracts into per-tool benchmark datasets.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackzampolin/reasonbench/internal/tools"
)

var (
	ErrQuoteInToken = errors.New("quotes are not allowed inside a token")
	ErrOutputExists = errors.New("output directory already exists")
)

var sizePattern = regexp.MustCompile(`^([0-9]+)([mk])?$`)

// ParseSize converts a size label such as "10k" or "1m" into a row count.
func ParseSize(label string) (int, error) {
	m := sizePattern.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("size label %q does not match %s", label, sizePattern)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, err
	}
	switch m[2] {
	case "k":
		n *= 1_000
	case "m":
		n *= 1_000_000
	}
	return n, nil
}

// NormalizedInteger zero-pads n to digits characters so partitions sort by size.
func NormalizedInteger(n, digits int) string {
	return fmt.Sprintf("%0*d", digits, n)
}

// Digits returns the number of decimal digits of the largest size.
func Digits(sizes []int) int {
	largest := 0
	for _, s := range sizes {
		largest = max(largest, s)
	}
	return len(strconv.Itoa(largest))
}

// QuoteCSVLine wraps every comma-separated token in double quotes. Tokens
// already quoted are kept as they are.
func QuoteCSVLine(line string) (string, error) {
	tokens := strings.Split(line, ",")
	for i, tok := range tokens {
		if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
			if strings.Contains(tok[1:len(tok)-1], `"`) {
				return "", fmt.Errorf("%w: %s", ErrQuoteInToken, tok)
			}
			continue
		}
		if strings.Contains(tok, `"`) {
			return "", fmt.Errorf("%w: %s", ErrQuoteInToken, tok)
		}
		tokens[i] = `"` + tok + `"`
	}
	return strings.Join(tokens, ","), nil
}

// Writer writes one dataset file for a tool.
type Writer func(path, header string, lines []string, predicate string) error

// WriterFor returns the dataset writer used for id.
func WriterFor(id tools.ToolID) Writer {
	if id == tools.DLV {
		return AtomsFile
	}
	return LinesFile
}

// AtomsFile writes each line as a fact: predicate("a","b").
func AtomsFile(path, header string, lines []string, predicate string) error {
	var sb strings.Builder
	if header != "" {
		sb.WriteString(header)
		sb.WriteByte('\n')
	}
	for i, line := range lines {
		quoted, err := QuoteCSVLine(line)
		if err != nil {
			return fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(predicate)
		sb.WriteByte('(')
		sb.WriteString(quoted)
		sb.WriteString(").")
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// LinesFile writes the raw CSV lines, preceded by header when one is given.
func LinesFile(path, header string, lines []string, _ string) error {
	content := strings.Join(lines, "\n")
	if header != "" {
		content = header + "\n" + content
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// NormalizeURLColumns keeps n URL columns per line, replacing commas inside
// each URL with underscores.
func NormalizeURLColumns(lines []string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("column count must be positive, got %d", n)
	}
	groups := make([]string, n)
	for i := range groups {
		groups[i] = "(http.*)"
	}
	re := regexp.MustCompile(strings.Join(groups, ","))

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: expected %d url columns: %q", i+1, n, line)
		}
		cols := make([]string, n)
		for j := range cols {
			cols[j] = strings.ReplaceAll(m[j+1], ",", "_")
		}
		out = append(out, strings.Join(cols, ","))
	}
	return out, nil
}

var personPattern = regexp.MustCompile(`(.*),.*,.*,.*,.*`)

// NormalizePersons drops the last four columns of every line and joins what
// remains into one identifier.
func NormalizePersons(lines []string) ([]string, error) {
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		m := personPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: expected at least 5 columns: %q", i+1, line)
		}
		out = append(out, strings.ReplaceAll(m[1], ",", "_"))
	}
	return out, nil
}

// PrepareOutputDir clears dir when force is set; otherwise an existing dir
// is an error.
func PrepareOutputDir(dir string, force bool) error {
	if force {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
	} else if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrOutputExists, dir)
	}
	return os.MkdirAll(dir, 0o755)
}

func readLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}
