// Package result holds the normalized record of one reasoning-engine invocation
// and its tabular/structured serializations.
package result

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Status is the outcome of a tool invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure" // reserved
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// ParseStatus converts a status value back into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusSuccess, StatusFailure, StatusTimeout, StatusError:
		return st, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("unknown status: %q", s)
	}
}

// Columns are the TSV header fields, in order.
var Columns = []string{"name", "status", "time_end2end", "nb_atoms", "command"}

// Result describes one tool invocation.
// Statistics extractors fill Status and NbAtoms; tools.Run fills the rest.
type Result struct {
	Name        string
	Command     []string
	TimeEnd2End *float64 // seconds
	Status      Status
	NbAtoms     *int
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Header returns the TSV header line (without trailing newline).
func Header() string {
	return strings.Join(Columns, "\t")
}

// CommandLine renders the command as space-joined tokens.
func (r *Result) CommandLine() string {
	return strings.Join(r.Command, " ")
}

// Row renders the result as one TSV line (without trailing newline).
// Absent optional fields render as empty strings.
func (r *Result) Row() string {
	timeStr := ""
	if r.TimeEnd2End != nil {
		timeStr = strconv.FormatFloat(*r.TimeEnd2End, 'f', 6, 64)
	}
	atomsStr := ""
	if r.NbAtoms != nil {
		atomsStr = strconv.Itoa(*r.NbAtoms)
	}
	return strings.Join([]string{
		r.Name,
		string(r.Status),
		timeStr,
		atomsStr,
		r.CommandLine(),
	}, "\t")
}

// String implements fmt.Stringer using the TSV row form.
func (r *Result) String() string {
	return r.Row()
}

// ParseRow parses a TSV line produced by Row.
func ParseRow(line string) (*Result, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != len(Columns) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(Columns), len(fields))
	}

	status, err := ParseStatus(fields[1])
	if err != nil {
		return nil, err
	}

	r := &Result{Name: fields[0], Status: status}
	if s := strings.TrimSpace(fields[2]); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time_end2end %q: %w", s, err)
		}
		r.TimeEnd2End = &v
	}
	if s := strings.TrimSpace(fields[3]); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid nb_atoms %q: %w", s, err)
		}
		r.NbAtoms = &v
	}
	if fields[4] != "" {
		r.Command = strings.Split(fields[4], " ")
	}
	return r, nil
}

// View is the structured (JSON/YAML) form of a Result.
type View struct {
	Name        string   `json:"name" yaml:"name"`
	Status      Status   `json:"status" yaml:"status"`
	TimeEnd2End *float64 `json:"time_end2end" yaml:"time_end2end"`
	NbAtoms     *int     `json:"nb_atoms" yaml:"nb_atoms"`
	Command     string   `json:"command" yaml:"command"`
}

// View returns the structured form of r.
func (r *Result) View() View {
	return View{
		Name:        r.Name,
		Status:      r.Status,
		TimeEnd2End: r.TimeEnd2End,
		NbAtoms:     r.NbAtoms,
		Command:     r.CommandLine(),
	}
}

// MarshalJSON encodes the structured form.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}

// MarshalYAML encodes the structured form.
func (r *Result) MarshalYAML() (any, error) {
	return r.View(), nil
}
