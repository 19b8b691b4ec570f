package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestGenerator_Doctors(t *testing.T) {
	src := filepath.Join(t.TempDir(), "doctors")
	writeFile(t, filepath.Join(src, "10k", "doctor.csv"), "1,alice\n2,bob\n")
	writeFile(t, filepath.Join(src, "1m", "doctor.csv"), "3,carol\n")
	out := t.TempDir()

	g := &Generator{OutputDir: out}
	require.NoError(t, g.Doctors(context.Background(), src))

	assert.Equal(t, "doctor(\"1\",\"alice\").\ndoctor(\"2\",\"bob\").",
		readFile(t, filepath.Join(out, "doctors", "dlv", "0010000", "doctor.data")))
	assert.Equal(t, "1,alice\n2,bob",
		readFile(t, filepath.Join(out, "doctors", "vadalog", "0010000", "doctor.data")))
	assert.FileExists(t, filepath.Join(out, "doctors", "vadalog", "1000000", "doctor.data"))

	assert.ErrorIs(t, g.Doctors(context.Background(), src), ErrOutputExists)

	g.Force = true
	assert.NoError(t, g.Doctors(context.Background(), src))
}

func TestGenerator_Doctors_BadLabel(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "lots"), 0o755))

	g := &Generator{OutputDir: t.TempDir()}
	assert.Error(t, g.Doctors(context.Background(), src))
}

func TestGenerator_PSC(t *testing.T) {
	src := t.TempDir()
	persons := []string{"uri,name,a,b,c", "type,,,,", "type,,,,"}
	for _, p := range []string{"http://x/P1", "http://x/P2", "http://x/P3"} {
		persons = append(persons, p+",n,1,2,3,4")
	}
	writeFile(t, filepath.Join(src, "persons_1m.csv"), strings.Join(persons, "\n"))
	writeFile(t, filepath.Join(src, "dbpedia_company_control.csv"), "http://x/C1,http://x/C2\n")
	writeFile(t, filepath.Join(src, "dbpedia_companies_kp.csv"), "company,person\nhttp://x/C1,http://x/P1\n")
	out := t.TempDir()

	g := &Generator{OutputDir: out}
	require.NoError(t, g.PSC(context.Background(), DefaultPSCSources(src), []int{1, 10}))

	assert.Equal(t, "http://x/P1_n",
		readFile(t, filepath.Join(out, "psc", "vadalog", "01", "person.data")))
	assert.Equal(t, "http://x/P1_n\nhttp://x/P2_n\nhttp://x/P3_n",
		readFile(t, filepath.Join(out, "psc", "vadalog", "10", "person.data")))
	assert.Equal(t, `keyPerson("http://x/C1","http://x/P1").`,
		readFile(t, filepath.Join(out, "psc", "dlv", "10", "keyPerson.data")))
	assert.Equal(t, `control("http://x/C1","http://x/C2").`,
		readFile(t, filepath.Join(out, "psc", "dlv", "01", "control.data")))
}
