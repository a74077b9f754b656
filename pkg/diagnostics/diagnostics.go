// Package diagnostics ranks Newton-iteration residuals and step sizes by
// unknown name after a DC solve fails to converge, grounded on
// original_source/core/circuit.h's diagnoseNewtonFailure.
package diagnostics

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/RaphRaly/mnacore/pkg/util"
)

// NamedValue pairs an unknown's human-readable name with a ranked quantity
// (a residual magnitude or a step magnitude) and its current value.
type NamedValue struct {
	Name  string
	Value float64 // the unknown's own value at the point of failure
	Rank  float64 // the |residual| or |deltaX| this entry is ranked by
}

// NewtonFailure is the structured result of ranking a failed Newton
// iteration's residual and step vectors. Formatting to a human trace is
// this package's responsibility (spec.md assigns C9 both the ranking data
// and, per its own "name lookup" remit, presentation of that data).
type NewtonFailure struct {
	Gmin           float64
	WorstResiduals []NamedValue // top entries by |residual|, descending
	WorstDeltas    []NamedValue // top entries by |deltaX|, descending
}

const topN = 10

// UnknownNamer resolves an unknown index to a human-readable name, satisfied
// by *circuit.Circuit's UnknownMeaning method.
type UnknownNamer interface {
	UnknownMeaning(idx int) string
}

// Diagnose ranks x, residual, and deltaX (all indexed by unknown, same
// length) into the top topN worst residuals and worst deltas by magnitude.
func Diagnose(namer UnknownNamer, x, residual, deltaX []float64, gmin float64) NewtonFailure {
	n := len(x)

	byResidual := make([]NamedValue, n)
	byDelta := make([]NamedValue, n)
	for i := 0; i < n; i++ {
		name := namer.UnknownMeaning(i)
		byResidual[i] = NamedValue{Name: name, Value: x[i], Rank: math.Abs(residual[i])}
		byDelta[i] = NamedValue{Name: name, Value: x[i], Rank: math.Abs(deltaX[i])}
	}

	sort.Slice(byResidual, func(i, j int) bool { return byResidual[i].Rank > byResidual[j].Rank })
	sort.Slice(byDelta, func(i, j int) bool { return byDelta[i].Rank > byDelta[j].Rank })

	if len(byResidual) > topN {
		byResidual = byResidual[:topN]
	}
	if len(byDelta) > topN {
		byDelta = byDelta[:topN]
	}

	return NewtonFailure{Gmin: gmin, WorstResiduals: byResidual, WorstDeltas: byDelta}
}

// WriteTo renders the diagnosis as a human-readable trace, mirroring the
// teacher's PrintSystem text-dump idiom.
func (f NewtonFailure) WriteTo(w io.Writer) {
	fmt.Fprintf(w, "\n=== NEWTON FAILURE DIAGNOSIS at Gmin=%g ===\n", f.Gmin)

	fmt.Fprintf(w, "\nTOP %d WORST RESIDUALS:\n", topN)
	fmt.Fprintf(w, "%20s%15s%15s\n", "Node", "|R|", "V")
	for _, nv := range f.WorstResiduals {
		fmt.Fprintf(w, "%20s%15s%15s\n", nv.Name, util.FormatValueFactor(nv.Rank, "A"), util.FormatValueFactor(nv.Value, "V"))
	}

	fmt.Fprintf(w, "\nTOP %d WORST DELTA-X:\n", topN)
	fmt.Fprintf(w, "%20s%15s%15s\n", "Node", "|dX|", "V")
	for _, nv := range f.WorstDeltas {
		fmt.Fprintf(w, "%20s%15s%15s\n", nv.Name, util.FormatValueFactor(nv.Rank, "V"), util.FormatValueFactor(nv.Value, "V"))
	}

	fmt.Fprintln(w, "=== END DIAGNOSIS ===")
}

// String renders the diagnosis via WriteTo into a string.
func (f NewtonFailure) String() string {
	var sb strings.Builder
	f.WriteTo(&sb)
	return sb.String()
}
