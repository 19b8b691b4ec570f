package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackzampolin/reasonbench/internal/tools"
)

const doctorsProgram = `% doctors query
@input("doctor").
@bind("doctor", "csv", "/data", "doctor.csv").
@mapping("doctor", 0, "id", "string").
doctor(I, N) :- medprescriptions(I, N, C).
prescription(I, N, P) :- doctor(I, N).
q(I, P) :- prescription(I, N, P). % answer
@output("q").
`

func TestForVadalog(t *testing.T) {
	got := ForVadalog(doctorsProgram)
	assert.Equal(t, `doctor(I, N) :- medprescriptions(I, N, C).
prescription(I, N, P) :- doctor(I, N).
q(I, P) :- prescription(I, N, P). 
@output("q").
`, got)
}

func TestForDLV(t *testing.T) {
	got, err := ForDLV(doctorsProgram)
	require.NoError(t, err)
	assert.Equal(t, `doctor(I, N) :- medprescriptions(I, N, C).
#exists{P}prescription(I, N, P) :- doctor(I, N).
q(I, P) :- prescription(I, N, P). 
q(X0,X1)?`, got)
}

func TestForDLV_ExistentialQuery(t *testing.T) {
	got, err := ForDLV("r(X, Y) :- s(X).\n@output(\"r\").\n")
	require.NoError(t, err)
	assert.Equal(t, "#exists{Y}r(X, Y) :- s(X).\n#exists{X1}r(X0,X1)?", got)
}

func TestForDLV_SortedExistentials(t *testing.T) {
	got, err := ForDLV("r(Z, A, X) :- s(X).")
	require.NoError(t, err)
	assert.Equal(t, "#exists{A,Z}r(Z, A, X) :- s(X).", got)
}

func TestForDLV_ConstantsAreNotExistential(t *testing.T) {
	got, err := ForDLV(`r(X, "c", b) :- s(X).`)
	require.NoError(t, err)
	assert.Equal(t, `r(X, "c", b) :- s(X).`, got)
}

func TestForDLV_NoOutput(t *testing.T) {
	got, err := ForDLV("p(X) :- e(X).\n\n\nfact(a).\n")
	require.NoError(t, err)
	assert.Equal(t, "p(X) :- e(X).\nfact(a).", got)
}

func TestForDLV_Errors(t *testing.T) {
	_, err := ForDLV("p(X) :- e(X).\n@output(\"p\").\n@output(\"e\").\n")
	assert.ErrorIs(t, err, ErrMultipleOutputs)

	_, err = ForDLV("p(X) :- e(X).\n@output(\"missing\").\n")
	assert.Error(t, err)
}

func TestTranslate(t *testing.T) {
	out, err := Translate(tools.Vadalog, "p(X) :- e(X).")
	require.NoError(t, err)
	assert.Equal(t, "p(X) :- e(X).", out)

	_, err = Translate("souffle", "")
	assert.ErrorIs(t, err, tools.ErrUnknownTool)
}
