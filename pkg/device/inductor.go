package device

import "fmt"

// Inductor is a trapezoidal companion-model inductor using a branch current
// variable: v = L*di/dt discretizes to i = R_eff^-1... expressed instead as
// a branch equation -R_eff*i_branch + (va-vb) = rhs, with
// R_eff = 2L/dt and rhs = -R_eff*iPrev - vPrev.
// Grounded on original_source/inductor.h.
type Inductor struct {
	name      string
	a, b      NodeIndex
	l         float64
	branchIdx int

	rEff float64
	rhs  float64

	iPrev, vPrev float64
}

// NewInductor constructs an inductor. It panics if l is not positive.
func NewInductor(name string, a, b NodeIndex, l float64) *Inductor {
	if l <= 0 {
		panic(fmt.Sprintf("device: inductor %s: L must be > 0, got %g", name, l))
	}
	return &Inductor{name: name, a: a, b: b, l: l, branchIdx: -1}
}

func (l *Inductor) Name() string { return l.name }

func (l *Inductor) BranchCount() int { return 1 }

func (l *Inductor) SetBranchIndex(first int) { l.branchIdx = first }

// BeginStep computes the companion resistance and RHS term for dt. dt must
// be positive: an inductor has no DC-analysis special case of its own
// (it is a short at DC, handled by DCConnections for connectivity, and by
// the DC solver never calling BeginStep at all).
func (l *Inductor) BeginStep(dt float64) {
	if dt <= 0 {
		panic(fmt.Sprintf("device: inductor %s: dt must be > 0", l.name))
	}
	l.rEff = 2.0 * l.l / dt
	l.rhs = -l.rEff*l.iPrev - l.vPrev
}

func (l *Inductor) CommitStep(xSolved []float64) {
	iCurr := xSolved[l.branchIdx]
	vCurr := NodeVoltage(xSolved, l.a) - NodeVoltage(xSolved, l.b)
	l.iPrev = iCurr
	l.vPrev = vCurr
}

func (l *Inductor) Stamp(ctx *StampContext) {
	k := l.branchIdx
	if l.a != Ground {
		ctx.Sys.AddA(k, int(l.a), 1.0)
		ctx.Sys.AddA(int(l.a), k, 1.0)
	}
	if l.b != Ground {
		ctx.Sys.AddA(k, int(l.b), -1.0)
		ctx.Sys.AddA(int(l.b), k, -1.0)
	}
	ctx.Sys.AddA(k, k, -l.rEff)
	ctx.Sys.AddZ(k, l.rhs)
}

// DCConnections reports a short: an inductor conducts at DC.
func (l *Inductor) DCConnections() [][2]NodeIndex {
	return [][2]NodeIndex{{l.a, l.b}}
}
