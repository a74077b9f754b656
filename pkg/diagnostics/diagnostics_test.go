package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaphRaly/mnacore/pkg/diagnostics"
)

type fakeNamer struct{}

func (fakeNamer) UnknownMeaning(idx int) string {
	names := []string{"V(A)", "V(B)", "V(C)", "I(V1)"}
	return names[idx]
}

func TestDiagnoseRanksDescendingByMagnitude(t *testing.T) {
	x := []float64{1.0, 2.0, 3.0, 0.5}
	residual := []float64{0.1, -5.0, 2.0, 0.01}
	deltaX := []float64{0.5, 0.2, -0.9, 0.05}

	f := diagnostics.Diagnose(fakeNamer{}, x, residual, deltaX, 1e-9)

	require.Len(t, f.WorstResiduals, 4)
	assert.Equal(t, "V(B)", f.WorstResiduals[0].Name)
	assert.InDelta(t, 5.0, f.WorstResiduals[0].Rank, 1e-12)
	assert.Equal(t, "I(V1)", f.WorstResiduals[len(f.WorstResiduals)-1].Name)

	assert.Equal(t, "V(C)", f.WorstDeltas[0].Name)
}

func TestDiagnoseTruncatesToTop10(t *testing.T) {
	n := 15
	x := make([]float64, n)
	residual := make([]float64, n)
	deltaX := make([]float64, n)
	for i := range residual {
		residual[i] = float64(i)
		deltaX[i] = float64(i)
	}
	namer := indexNamer{}
	f := diagnostics.Diagnose(namer, x, residual, deltaX, 1e-9)
	assert.Len(t, f.WorstResiduals, 10)
	assert.Len(t, f.WorstDeltas, 10)
}

type indexNamer struct{}

func (indexNamer) UnknownMeaning(idx int) string { return "N" }

func TestWriteToIncludesGminAndSections(t *testing.T) {
	f := diagnostics.NewtonFailure{
		Gmin: 1e-9,
		WorstResiduals: []diagnostics.NamedValue{{Name: "V(A)", Value: 1.0, Rank: 0.5}},
		WorstDeltas:    []diagnostics.NamedValue{{Name: "V(A)", Value: 1.0, Rank: 0.1}},
	}
	out := f.String()
	assert.Contains(t, out, "1e-09")
	assert.Contains(t, out, "WORST RESIDUALS")
	assert.Contains(t, out, "WORST DELTA-X")
	assert.Contains(t, out, "V(A)")
}
