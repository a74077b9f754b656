// Package analysis drives the circuit's Newton iteration: the two-stage
// homotopy DC solver (C6), the fixed-step transient driver (C7), and the
// pseudo-transient DC fallback (C8). All three share pkg/circuit's element
// lists and pkg/linsys's solver.
package analysis

// DCConfig documents the homotopy tuning parameters the teacher hardcoded as
// inline literals (original_source/core/circuit.h's solveDc default
// arguments and internal constants). Promoting them to a config struct
// follows spec.md §9's "Homotopy parameters" design note.
type DCConfig struct {
	MaxIters int     // Newton iterations per homotopy step (raised to at least 300; Stage 2 uses twice this)
	Tol      float64 // convergence tolerance on max |delta x|
	NumSteps int     // source-scale ramp steps in Stage 1 (raised to at least 50)
	Verbose  bool

	// StabilizationNode, if non-nil, names a node that receives a small
	// soft-stabilization shunt while the source scale is below 0.5. This
	// generalizes original_source's hardwired "OUT"-named node lookup
	// (spec.md §9 Open Question) to a caller-designated node.
	StabilizationNode *string
}

// DefaultDCConfig matches original_source/core/circuit.h's solveDc defaults.
func DefaultDCConfig() DCConfig {
	return DCConfig{MaxIters: 250, Tol: 1e-6, NumSteps: 50}
}

// TransientConfig documents the fixed-step Newton tuning for Step.
type TransientConfig struct {
	MaxNewtonIters int
	AbsTol         float64 // convergence tolerance on max |delta|, volts/amps
}

// DefaultTransientConfig matches original_source/core/circuit.h's step
// defaults.
func DefaultTransientConfig() TransientConfig {
	return TransientConfig{MaxNewtonIters: 8, AbsTol: 1e-9}
}

// PseudoTransientConfig tunes the pseudo-transient DC fallback.
type PseudoTransientConfig struct {
	Duration float64
	Dt       float64
}

// DefaultPseudoTransientConfig matches original_source's
// solveDcPseudoTransient defaults.
func DefaultPseudoTransientConfig() PseudoTransientConfig {
	return PseudoTransientConfig{Duration: 1e-3, Dt: 1e-6}
}

// Stats reports convergence bookkeeping for a DC solve, grounded on
// original_source/mna_types.h's ConvergenceStats.
type Stats struct {
	TotalIterations    int
	SourceStepsReached int
	LastResidual       float64 // repurposed to report the final Gmin reached
	Converged          bool
}

// globalIterCap bounds the total inner-Newton iteration count across an
// entire DC solve, a CI safety net against runaway loops.
const globalIterCap = 10000
