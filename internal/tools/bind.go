package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Bind tells the Vadalog engine how to load a dataset into a named relation.
type Bind struct {
	PredicateName string
	DataFormat    string
	DatasetPath   string // absolute
}

// ParseBind parses "predicate_name:data_format:dataset_path", e.g.
//
//	own:csv:/path/to/company_control/relationships.csv
//
// The dataset path is made absolute and must be an existing regular file.
func ParseBind(arg string) (Bind, error) {
	tokens := strings.Split(arg, ":")
	if len(tokens) != 3 {
		return Bind{}, fmt.Errorf("%w: expected 3 tokens, got %d: %q", ErrInvalidBind, len(tokens), tokens)
	}

	path, err := filepath.Abs(tokens[2])
	if err != nil {
		return Bind{}, fmt.Errorf("%w: %v", ErrInvalidBind, err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return Bind{}, fmt.Errorf("%w: the dataset path provided is not a file: %s", ErrInvalidBind, path)
	}
	return Bind{PredicateName: tokens[0], DataFormat: tokens[1], DatasetPath: path}, nil
}

// String renders the bind in its command-line form.
func (b Bind) String() string {
	return b.PredicateName + ":" + b.DataFormat + ":" + b.DatasetPath
}

// BindList is a repeatable --bind flag (pflag.Value).
type BindList []Bind

// Set parses and appends one bind parameter.
func (l *BindList) Set(value string) error {
	b, err := ParseBind(value)
	if err != nil {
		return err
	}
	*l = append(*l, b)
	return nil
}

// String renders all binds space-separated.
func (l *BindList) String() string {
	parts := make([]string, len(*l))
	for i, b := range *l {
		parts[i] = b.String()
	}
	return strings.Join(parts, " ")
}

// Type names the flag value type in help output.
func (l *BindList) Type() string {
	return "bind"
}
