package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/reasonbench/internal/result"
)

func saveTable(t *testing.T, dir, tool string, results ...*result.Result) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, tool), 0o755))
	require.NoError(t, result.Save(results, filepath.Join(dir, tool, "results.tsv")))
}

func TestFindToolTables(t *testing.T) {
	dir := t.TempDir()
	saveTable(t, dir, "vadalog")
	saveTable(t, dir, "dlv")
	saveTable(t, dir, "souffle")

	tables, err := FindToolTables(dir, []string{"vadalog", "dlv"})
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "souffle", tables[0].Tool)
	assert.Equal(t, "vadalog", tables[1].Tool)
	assert.Equal(t, "dlv", tables[2].Tool)
	assert.Equal(t, filepath.Join(dir, "dlv", "results.tsv"), tables[2].Path)
}

func TestFindToolTables_AmbiguousDir(t *testing.T) {
	dir := t.TempDir()
	saveTable(t, dir, "dlv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dlv", "other.tsv"), nil, 0o644))

	_, err := FindToolTables(dir, nil)
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	saveTable(t, dir, "vadalog",
		&result.Result{Name: "001", Status: result.StatusSuccess, TimeEnd2End: result.Float(1.5), NbAtoms: result.Int(10)},
		&result.Result{Name: "010", Status: result.StatusTimeout, TimeEnd2End: result.Float(5)},
	)
	saveTable(t, dir, "dlv",
		&result.Result{Name: "001", Status: result.StatusSuccess, TimeEnd2End: result.Float(0.25), NbAtoms: result.Int(10)},
	)

	tables, err := FindToolTables(dir, []string{"vadalog", "dlv"})
	require.NoError(t, err)
	c, err := Compare(tables)
	require.NoError(t, err)

	assert.Equal(t, []string{"vadalog", "dlv"}, c.Tools)
	assert.Equal(t, []string{"001", "010"}, c.Names)
	assert.Equal(t,
		"name\tvadalog.status\tvadalog.time_end2end\tvadalog.nb_atoms\tdlv.status\tdlv.time_end2end\tdlv.nb_atoms\n"+
			"001\tsuccess\t1.500000\t10\tsuccess\t0.250000\t10\n"+
			"010\ttimeout\t5.000000\t\t\t\t\n",
		c.TSV())
}
