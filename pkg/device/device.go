// Package device defines the element stamping contracts (C3) and the
// concrete element library (C4): resistors, independent sources, trapezoidal
// capacitor/inductor companion models, the Shockley diode, and the
// Ebers-Moll BJT. Elements compose the small interfaces below rather than
// implementing one fat interface, mirroring original_source/elements.h's
// IElement / INewtonElement / IDynamicElement / IBranchElement split.
package device

import (
	"math"

	"github.com/RaphRaly/mnacore/pkg/linsys"
)

// NodeIndex names an unknown-voltage node. Ground is a sentinel value
// outside the valid node range, not node 0 — see Ground below.
type NodeIndex int

// Ground is the sentinel node index meaning "0V reference", matching
// original_source/mna_types.h's GND = -1. Stamps addressed to Ground are
// no-ops against the matrix; they never occupy an unknown slot.
const Ground NodeIndex = -1

// NodeVoltage reads node n's voltage out of a solved unknown vector,
// returning 0 for Ground without touching x.
func NodeVoltage(x []float64, n NodeIndex) float64 {
	if n == Ground {
		return 0
	}
	return x[int(n)]
}

// StampContext carries the destination system and the homotopy source-scale
// factor applied to independent sources during DC ramping (spec.md C6).
type StampContext struct {
	Sys   *linsys.System
	Scale float64
}

// Stampable is the base contract every element satisfies: a linear (or,
// for Newton elements, pre-linearized) contribution to the MNA system, plus
// a report of which node pairs it DC-couples for connectivity auditing by
// an external caller.
type Stampable interface {
	Name() string
	Stamp(ctx *StampContext)
	DCConnections() [][2]NodeIndex
}

// LimitContext carries the current Newton guess and the last accepted
// solution, used by nonlinear elements to compute junction-voltage-limited
// operating points before they stamp their linearization.
type LimitContext struct {
	X    []float64
	XOld []float64
}

// Newton is implemented by nonlinear elements (diode, BJT) that linearize
// around a junction-voltage-limited operating point each iteration.
type Newton interface {
	Stampable
	// ComputeLimitedVoltages derives and stores the element's internal
	// limited junction voltages from ctx, without mutating ctx.X.
	ComputeLimitedVoltages(ctx LimitContext)
	// StampNewton stamps the linearized companion model (conductances and
	// Norton-equivalent currents) computed from the limited voltages.
	StampNewton(ctx *StampContext)
}

// Dynamic is implemented by elements with memory across time steps
// (capacitor, inductor) that stamp a trapezoidal companion model.
type Dynamic interface {
	Stampable
	// BeginStep computes companion parameters (conductance/Norton current
	// or effective resistance) for the upcoming step of size dt.
	BeginStep(dt float64)
	// CommitStep updates history state (previous voltage/current) from the
	// converged solution xSolved.
	CommitStep(xSolved []float64)
}

// Brancher is implemented by elements that need an extra MNA branch
// variable (voltage sources, inductors).
type Brancher interface {
	BranchCount() int
	SetBranchIndex(first int)
}

// TimeVarying is implemented by elements whose stamp depends on absolute
// simulation time (SIN/PULSE/PWL independent sources). The transient
// driver (C7) dispatches through StampAt at the step's time coordinate
// instead of the time-invariant Stamp; DC analysis (which has no time
// coordinate) always uses Stamp.
type TimeVarying interface {
	Stampable
	// StampAt stamps the element's contribution using its value at
	// absolute time t instead of Stamp's t=0 value.
	StampAt(ctx *StampContext, t float64)
}

// StampConductance is the canonical two-terminal conductance stamp, shared
// by every element whose linearization reduces to a conductance between two
// nodes: +g on the self terms, -g on the cross terms, skipping Ground.
func StampConductance(sys *linsys.System, a, b NodeIndex, g float64) {
	if a != Ground {
		sys.AddA(int(a), int(a), g)
	}
	if b != Ground {
		sys.AddA(int(b), int(b), g)
	}
	if a != Ground && b != Ground {
		sys.AddA(int(a), int(b), -g)
		sys.AddA(int(b), int(a), -g)
	}
}

// StampCurrentSource stamps a current of value i flowing from node a to
// node b (KCL convention: current leaving a node is positive on its row).
func StampCurrentSource(sys *linsys.System, a, b NodeIndex, i float64) {
	if a != Ground {
		sys.AddZ(int(a), -i)
	}
	if b != Ground {
		sys.AddZ(int(b), i)
	}
}

// Pnjlim applies SPICE-style pn-junction voltage limiting: a logarithmic
// growth limit for forward bias beyond vcrit, followed by a hard symmetric
// delta clamp. Grounded on original_source/utils.h's pnjlim.
func Pnjlim(vNew, vOld, vt, vcrit, maxStep float64) float64 {
	result := vNew

	if vNew > vcrit && vNew > vOld {
		arg := (vNew - vOld) / vt
		result = vOld + vt*math.Log1p(arg)
	}

	if result > vOld+maxStep {
		result = vOld + maxStep
	}
	if result < vOld-maxStep {
		result = vOld - maxStep
	}

	return result
}

// DefaultPnjlimStep is the maxStep pnjlim uses when callers don't need a
// tighter clamp, matching original_source/utils.h's default of 0.2V.
const DefaultPnjlimStep = 0.2

// SafeExp is exp(x) clamped to a bounded argument range, preventing
// overflow in the Shockley/Ebers-Moll exponentials during early Newton
// iterations where junction voltages are far from their limited values.
func SafeExp(x float64) float64 {
	const clamp = 40.0
	if x > clamp {
		x = clamp
	}
	if x < -clamp {
		x = -clamp
	}
	return math.Exp(x)
}
