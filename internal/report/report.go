// Package report compares the results tables of a benchmark run side by side.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackzampolin/reasonbench/internal/result"
)

// ToolTable locates one tool's results table.
type ToolTable struct {
	Tool string `json:"tool" yaml:"tool"`
	Path string `json:"path" yaml:"path"`
}

// FindToolTables maps every tool directory under benchmarkDir to its single
// *.tsv file. Tools listed in order come in that order; any other tool comes
// first, sorted by name.
func FindToolTables(benchmarkDir string, order []string) ([]ToolTable, error) {
	entries, err := os.ReadDir(benchmarkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark dir: %w", err)
	}

	rank := func(name string) int {
		for i, o := range order {
			if o == name {
				return i
			}
		}
		return -1
	}

	var tables []ToolTable
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(benchmarkDir, e.Name(), "*.tsv"))
		if err != nil {
			return nil, err
		}
		if len(matches) != 1 {
			return nil, fmt.Errorf("%s: expected exactly one .tsv file, found %d", e.Name(), len(matches))
		}
		tables = append(tables, ToolTable{Tool: e.Name(), Path: matches[0]})
	}
	sort.SliceStable(tables, func(i, j int) bool {
		ri, rj := rank(tables[i].Tool), rank(tables[j].Tool)
		if ri != rj {
			return ri < rj
		}
		return tables[i].Tool < tables[j].Tool
	})
	return tables, nil
}

// Comparison joins several tools' results by run name.
type Comparison struct {
	Tools []string           `json:"tools" yaml:"tools"`
	Names []string           `json:"names" yaml:"names"`
	Rows  map[string][]*Cell `json:"rows" yaml:"rows"`
}

// Cell is one tool's outcome for one run name. Nil when the tool has no row.
type Cell struct {
	Status      result.Status `json:"status" yaml:"status"`
	TimeEnd2End *float64      `json:"time_end2end" yaml:"time_end2end"`
	NbAtoms     *int          `json:"nb_atoms" yaml:"nb_atoms"`
}

// Compare loads every table and joins rows by name. Names keep the order in
// which they first appear.
func Compare(tables []ToolTable) (*Comparison, error) {
	c := &Comparison{Rows: map[string][]*Cell{}}
	for i, t := range tables {
		results, err := result.Load(t.Path)
		if err != nil {
			return nil, err
		}
		c.Tools = append(c.Tools, t.Tool)
		for _, r := range results {
			row, ok := c.Rows[r.Name]
			if !ok {
				row = make([]*Cell, len(tables))
				c.Rows[r.Name] = row
				c.Names = append(c.Names, r.Name)
			}
			row[i] = &Cell{Status: r.Status, TimeEnd2End: r.TimeEnd2End, NbAtoms: r.NbAtoms}
		}
	}
	return c, nil
}

// Header returns the column names.
func (c *Comparison) Header() []string {
	cols := []string{"name"}
	for _, tool := range c.Tools {
		cols = append(cols, tool+".status", tool+".time_end2end", tool+".nb_atoms")
	}
	return cols
}

// TSV implements api.TSVer.
func (c *Comparison) TSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(c.Header(), "\t"))
	b.WriteString("\n")
	for _, name := range c.Names {
		fields := []string{name}
		for _, cell := range c.Rows[name] {
			if cell == nil {
				fields = append(fields, "", "", "")
				continue
			}
			r := result.Result{Status: cell.Status, TimeEnd2End: cell.TimeEnd2End, NbAtoms: cell.NbAtoms}
			cols := strings.Split(r.Row(), "\t")
			fields = append(fields, cols[1], cols[2], cols[3])
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}
