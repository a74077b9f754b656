package analysis

import (
	"fmt"
	"io"
	"math"

	"github.com/RaphRaly/mnacore/pkg/circuit"
	"github.com/RaphRaly/mnacore/pkg/device"
	"github.com/RaphRaly/mnacore/pkg/diagnostics"
	"github.com/RaphRaly/mnacore/pkg/linsys"
)

// gminSequence is the SPICE-like geometric Stage 2 refinement sequence:
// 5-2-1 steps, three per decade (each reducing Gmin by 2x to 2.5x), after
// which DC appends the circuit's target Gmin. Grounded on original_source/core/circuit.h.
var gminSequence = []float64{
	5e-4, 2e-4, 1e-4,
	5e-5, 2e-5, 1e-5,
	5e-6, 2e-6, 1e-6,
	5e-7, 2e-7, 1e-7,
	5e-8, 2e-8, 1e-8,
	5e-9, 2e-9, 1e-9,
	5e-10, 2e-10, 1e-10,
	5e-11, 2e-11, 1e-11,
	5e-12, 2e-12,
}

// DC finds a DC operating point by two-stage homotopy: a source-scale ramp
// from 0 to 1 at a conservative Gmin (retried from zero at a higher Gmin on
// failure), followed by a Gmin refinement sequence down toward the
// circuit's target Gmin. xInit seeds the initial guess (nil or
// wrong-length means "start from zero"); nodeset entries override it.
// trace, if non-nil, receives verbose iteration and failure-diagnosis
// output. Returns the converged solution and whether it converged.
//
// Grounded on original_source/core/circuit.h's solveDc.
func DC(ckt *circuit.Circuit, xInit []float64, cfg DCConfig, stats *Stats, trace io.Writer) ([]float64, bool) {
	ckt.Finalize()
	sys := ckt.System()
	n := sys.Size

	xGuess := make([]float64, n)
	if len(xInit) == n {
		copy(xGuess, xInit)
	}
	for node, v := range ckt.Nodeset() {
		xGuess[int(node)] = v
	}

	globalIterCount := 0

	var stabilizationNode device.NodeIndex = device.Ground
	haveStabilizationNode := false
	if cfg.StabilizationNode != nil {
		for i := 0; i < ckt.NumNodes(); i++ {
			if name, ok := ckt.NodeNameByIndex(device.NodeIndex(i)); ok && name == *cfg.StabilizationNode {
				stabilizationNode = device.NodeIndex(i)
				haveStabilizationNode = true
				break
			}
		}
	}

	computeResidualNorm := func(sol []float64) float64 {
		sumSq := 0.0
		for i := 0; i < n; i++ {
			rowSum := 0.0
			for j := 0; j < n; j++ {
				rowSum += sys.GetA(i, j) * sol[j]
			}
			fi := rowSum - sys.GetZ(i)
			sumSq += fi * fi
		}
		return math.Sqrt(sumSq)
	}

	var lastResidual, lastDeltaX []float64

	innerNewton := func(iters int, scale, g float64, guess []float64, diagnoseOnFail bool) ([]float64, bool) {
		actualMaxIters := iters
		if actualMaxIters < 300 {
			actualMaxIters = 300
		}

		for k := 0; k < actualMaxIters; k++ {
			globalIterCount++
			if globalIterCount > globalIterCap {
				if cfg.Verbose && trace != nil {
					fmt.Fprintf(trace, "[DC] global iteration cap (%d) exceeded\n", globalIterCap)
				}
				return guess, false
			}
			if stats != nil {
				stats.TotalIterations++
			}

			sys.Clear()
			ctx := &device.StampContext{Sys: sys, Scale: scale}
			for _, e := range ckt.Elements() {
				e.Stamp(ctx)
			}
			for _, ne := range ckt.NewtonElements() {
				ne.StampNewton(ctx)
			}
			for i := 0; i < ckt.NumNodes(); i++ {
				sys.AddA(i, i, g)
			}

			if haveStabilizationNode && scale < 0.5 {
				sys.AddA(int(stabilizationNode), int(stabilizationNode), 1e-2*(1.0-scale*2.0))
			}

			oldResidNorm := computeResidualNorm(guess)

			deltaX, pivotFail := linsys.Solve(sys)
			if pivotFail != linsys.NoFailure {
				for i := 0; i < ckt.NumNodes(); i++ {
					sys.AddA(i, i, g*100.0)
				}
				deltaX, pivotFail = linsys.Solve(sys)
				if pivotFail != linsys.NoFailure {
					return guess, false
				}
			}

			alpha := 1.0
			var xNew []float64
			backtracked := false
			for b := 0; b < 10; b++ {
				xNew = append([]float64(nil), guess...)
				for i := 0; i < n; i++ {
					dx := alpha * (deltaX[i] - guess[i])
					if dx > 2.0 {
						dx = 2.0
					}
					if dx < -2.0 {
						dx = -2.0
					}
					xNew[i] += dx
				}
				lctx := device.LimitContext{X: xNew, XOld: guess}
				for _, ne := range ckt.NewtonElements() {
					ne.ComputeLimitedVoltages(lctx)
				}
				if computeResidualNorm(xNew) < oldResidNorm || alpha < 1e-6 {
					if b > 0 {
						backtracked = true
					}
					break
				}
				alpha *= 0.5
			}

			dxMax := 0.0
			deltaXOut := make([]float64, n)
			for i := 0; i < n; i++ {
				d := xNew[i] - guess[i]
				deltaXOut[i] = d
				if math.Abs(d) > dxMax {
					dxMax = math.Abs(d)
				}
			}
			lastDeltaX = deltaXOut
			guess = xNew

			if cfg.Verbose && trace != nil && (k%50 == 0 || dxMax < cfg.Tol) {
				bt := ""
				if backtracked {
					bt = " (BT)"
				}
				fmt.Fprintf(trace, "[DC] G=%g S=%g K=%d R=%g dX=%g%s\n", g, scale, k, oldResidNorm, dxMax, bt)
			}

			if dxMax < cfg.Tol && oldResidNorm < 1e-4 {
				return guess, true
			}
		}

		if diagnoseOnFail {
			lastResidual = make([]float64, n)
			for i := 0; i < n; i++ {
				rowSum := 0.0
				for j := 0; j < n; j++ {
					rowSum += sys.GetA(i, j) * guess[j]
				}
				lastResidual[i] = rowSum - sys.GetZ(i)
			}
		}
		return guess, false
	}

	activeGmin := 1e-7
	rampSteps := cfg.NumSteps
	if rampSteps < 50 {
		rampSteps = 50
	}

	rampSuccessful := false
	for s := 0; s <= rampSteps; s++ {
		scale := float64(s) / float64(rampSteps)
		if stats != nil {
			stats.SourceStepsReached = s
		}
		var ok bool
		xGuess, ok = innerNewton(cfg.MaxIters, scale, activeGmin, xGuess, false)
		if !ok {
			activeGmin = 1e-3
			xGuess = make([]float64, n)
			fallbackSuccess := true
			for s2 := 0; s2 <= rampSteps; s2++ {
				scale2 := float64(s2) / float64(rampSteps)
				if stats != nil {
					stats.SourceStepsReached = s2
				}
				xGuess, ok = innerNewton(cfg.MaxIters, scale2, activeGmin, xGuess, false)
				if !ok {
					fallbackSuccess = false
					break
				}
			}
			if !fallbackSuccess {
				return nil, false
			}
			rampSuccessful = true
			break
		}
		if s == rampSteps {
			rampSuccessful = true
		}
	}
	if !rampSuccessful {
		return nil, false
	}

	targetGmin := ckt.Gmin()
	for _, g := range append(append([]float64(nil), gminSequence...), targetGmin) {
		if g >= activeGmin {
			continue
		}

		xGood := append([]float64(nil), xGuess...)

		var ok bool
		xGuess, ok = innerNewton(cfg.MaxIters*2, 1.0, g, xGuess, true)

		if !ok {
			if cfg.Verbose && trace != nil && lastResidual != nil {
				diagnostics.Diagnose(ckt, xGuess, lastResidual, lastDeltaX, g).WriteTo(trace)
			}
			xGuess = xGood
			if cfg.Verbose && trace != nil {
				fmt.Fprintf(trace, "[DC] Gmin stepping stopped at G=%g (failed at G=%g)\n", activeGmin, g)
			}
			break
		}
		activeGmin = g
		if cfg.Verbose && trace != nil && (g == 1e-6 || g == 1e-9 || g == targetGmin) {
			fmt.Fprintf(trace, "[DC] Gmin stepped to %g successfully\n", g)
		}
	}

	if activeGmin > targetGmin*10.0 && cfg.Verbose && trace != nil {
		fmt.Fprintf(trace, "[DC] WARNING: final Gmin=%g (target=%g). Solution may be contaminated.\n", activeGmin, targetGmin)
	}

	ckt.SetLastSolution(xGuess)
	ckt.SetFinalGmin(activeGmin)
	if stats != nil {
		stats.Converged = true
		stats.LastResidual = activeGmin
	}
	return xGuess, true
}
