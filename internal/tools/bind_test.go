package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "own.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	b, err := ParseBind("own:csv:" + path)
	require.NoError(t, err)
	assert.Equal(t, Bind{PredicateName: "own", DataFormat: "csv", DatasetPath: path}, b)
	assert.Equal(t, "own:csv:"+path, b.String())
}

func TestParseBind_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		arg  string
	}{
		{"too few tokens", "own:csv"},
		{"too many tokens", "own:csv:a:b"},
		{"missing file", "own:csv:" + filepath.Join(dir, "missing.csv")},
		{"directory", "own:csv:" + dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBind(tt.arg)
			assert.ErrorIs(t, err, ErrInvalidBind)
		})
	}
}

func TestBindList(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	var l BindList
	require.NoError(t, l.Set("a:csv:"+a))
	require.NoError(t, l.Set("b:csv:"+b))
	assert.Error(t, l.Set("broken"))

	assert.Len(t, l, 2)
	assert.Equal(t, "a:csv:"+a+" b:csv:"+b, l.String())
	assert.Equal(t, "bind", l.Type())
}
