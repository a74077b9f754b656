package analysis

import (
	"io"

	"github.com/RaphRaly/mnacore/pkg/circuit"
)

// PseudoTransientDC attempts to discover a DC operating point by running a
// short overdamped transient from the circuit's nodeset (or zero) and
// handing the settled state to DC as its initial guess. This rescues
// circuits whose DC homotopy alone doesn't converge but that settle nicely
// under transient relaxation (e.g. bistable latches). Individual transient
// step failures during the relaxation are tolerated; only the final DC call
// must succeed.
//
// Grounded on original_source/core/circuit.h's solveDcPseudoTransient.
func PseudoTransientDC(ckt *circuit.Circuit, cfg PseudoTransientConfig, dcCfg DCConfig, stats *Stats, trace io.Writer) ([]float64, bool) {
	ckt.Finalize()
	n := ckt.Size()

	x := make([]float64, n)
	for node, v := range ckt.Nodeset() {
		x[int(node)] = v
	}

	InitializeDynamics(ckt, x)

	steps := int(cfg.Duration / cfg.Dt)
	relaxed := TransientConfig{MaxNewtonIters: 10, AbsTol: 1e-6}
	tCur := 0.0
	for i := 0; i < steps; i++ {
		next, ok := Step(ckt, tCur, cfg.Dt, x, relaxed)
		x = next
		tCur += cfg.Dt
		_ = ok // individual step failures are tolerated; keep the latest x
	}

	return DC(ckt, x, dcCfg, stats, trace)
}
