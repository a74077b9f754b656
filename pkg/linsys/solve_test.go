package linsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveResistiveDivider(t *testing.T) {
	// One unknown, V(mid): the 10V source with its series 1k is replaced by
	// its Norton equivalent (10V/1k into mid, 1k shunt), in parallel with
	// the 1k from mid to ground.
	sys := New(1)
	const r = 1000.0
	sys.AddA(0, 0, 1.0/r+1.0/r)
	sys.AddZ(0, 10.0/r)

	x, fail := Solve(sys)
	require.Equal(t, NoFailure, fail)
	assert.InDelta(t, 5.0, x[0], 1e-6)
}

func TestSolveSingularReportsPivotRow(t *testing.T) {
	sys := New(2)
	// Row 1 is entirely zero: singular.
	sys.AddA(0, 0, 1.0)
	sys.AddZ(0, 1.0)

	_, fail := Solve(sys)
	assert.NotEqual(t, NoFailure, fail)
}

func TestAddAAccumulates(t *testing.T) {
	sys := New(1)
	sys.AddA(0, 0, 2.0)
	sys.AddA(0, 0, 3.0)
	assert.Equal(t, 5.0, sys.GetA(0, 0))
}

func TestClearZeroesSystem(t *testing.T) {
	sys := New(2)
	sys.AddA(0, 0, 1.0)
	sys.AddZ(1, 2.0)
	sys.Clear()
	assert.Equal(t, 0.0, sys.GetA(0, 0))
	assert.Equal(t, 0.0, sys.GetZ(1))
}
