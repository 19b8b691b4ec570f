package program

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctors(t *testing.T) {
	input := filepath.Join(t.TempDir(), "doctors")
	require.NoError(t, os.MkdirAll(input, 0o755))
	for _, name := range []string{"program_10kq1.vada", "program_10kq2.vada", "program_1mq1.vada"} {
		require.NoError(t, os.WriteFile(filepath.Join(input, name), []byte(doctorsProgram), 0o644))
	}

	output := t.TempDir()
	stale := filepath.Join(output, "doctors-q9")
	require.NoError(t, os.MkdirAll(stale, 0o755))

	require.NoError(t, Doctors(context.Background(), input, output, []string{"10k", "1m"}, nil))

	assert.NoDirExists(t, stale)
	for _, rel := range []string{
		"doctors-q1/0010000/dlv.txt",
		"doctors-q1/0010000/vadalog.txt",
		"doctors-q2/0010000/dlv.txt",
		"doctors-q1/1000000/vadalog.txt",
	} {
		assert.FileExists(t, filepath.Join(output, rel))
	}

	b, err := os.ReadFile(filepath.Join(output, "doctors-q1", "0010000", "dlv.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "#exists{P}prescription(I, N, P)")
}
