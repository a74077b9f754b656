package analysis

import (
	"math"

	"github.com/RaphRaly/mnacore/pkg/circuit"
	"github.com/RaphRaly/mnacore/pkg/device"
	"github.com/RaphRaly/mnacore/pkg/linsys"
)

// Step advances the circuit from time t to t+dt, building the trapezoidal
// companion models via BeginStep, running damped Newton iteration (step
// deltas clamped to +/-5V per component, the teacher's safety margin
// against divergence on a stiff step), and committing history state via
// CommitStep only when the step converges. xInit seeds the Newton guess.
// Elements satisfying TimeVarying are stamped at t+dt rather than their
// t=0 value, so SIN/PULSE/PWL sources actually drive the step (spec.md §8
// scenario 6). Time-step adaptation is intentionally not implemented here
// (spec.md §4.7); callers choose dt.
//
// Grounded on original_source/core/circuit.h's step method.
func Step(ckt *circuit.Circuit, t, dt float64, xInit []float64, cfg TransientConfig) ([]float64, bool) {
	ckt.Finalize()
	sys := ckt.System()
	n := sys.Size
	tNext := t + dt

	for _, d := range ckt.DynamicElements() {
		d.BeginStep(dt)
	}

	xGuess := make([]float64, n)
	if len(xInit) == n {
		copy(xGuess, xInit)
	}

	converged := false
	for k := 0; k < cfg.MaxNewtonIters; k++ {
		sys.Clear()
		ctx := &device.StampContext{Sys: sys, Scale: 1.0}
		for _, e := range ckt.Elements() {
			if tv, ok := e.(device.TimeVarying); ok {
				tv.StampAt(ctx, tNext)
				continue
			}
			e.Stamp(ctx)
		}
		for _, ne := range ckt.NewtonElements() {
			ne.StampNewton(ctx)
		}
		for i := 0; i < ckt.NumNodes(); i++ {
			sys.AddA(i, i, ckt.Gmin())
		}

		xNew, pivotFail := linsys.Solve(sys)
		if pivotFail != linsys.NoFailure {
			return xGuess, false
		}

		maxDelta := 0.0
		for i := 0; i < n; i++ {
			delta := xNew[i] - xGuess[i]
			if delta > 5.0 {
				delta = 5.0
			}
			if delta < -5.0 {
				delta = -5.0
			}
			xNew[i] = xGuess[i] + delta
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}

		xOld := xGuess
		xGuess = xNew
		lctx := device.LimitContext{X: xGuess, XOld: xOld}
		for _, ne := range ckt.NewtonElements() {
			ne.ComputeLimitedVoltages(lctx)
		}

		if maxDelta < cfg.AbsTol {
			converged = true
			break
		}
	}

	if converged {
		for _, d := range ckt.DynamicElements() {
			d.CommitStep(xGuess)
		}
		ckt.SetLastSolution(xGuess)
	}
	return xGuess, converged
}

// InitializeDynamics seeds every dynamic element's history state from x
// (typically a DC operating point) before the first transient Step,
// matching original_source's initializeDynamics.
func InitializeDynamics(ckt *circuit.Circuit, x []float64) {
	for _, d := range ckt.DynamicElements() {
		d.CommitStep(x)
	}
	ckt.SetLastSolution(x)
}
