package device

import (
	"fmt"
	"math"
)

// waveform selects how a VoltageSource's value varies with time. DC is the
// only form spec.md's C4 requires; SIN/PULSE/PWL are supplemented from the
// teacher (pkg/device/vsource.go) since transient analysis (C7) benefits
// from time-varying independent sources and nothing in spec.md's Non-goals
// excludes them.
type waveform int

const (
	waveDC waveform = iota
	waveSIN
	wavePULSE
	wavePWL
)

// VoltageSource is an independent voltage source between nodes a (+) and b
// (-). It requires one MNA branch variable for its current. Only the
// source's DC/time-domain value is scaled by StampContext.Scale during
// homotopy ramping (spec.md C6); Gmin shunts and nonlinear elements are not.
type VoltageSource struct {
	name      string
	a, b      NodeIndex
	branchIdx int

	wave waveform

	dc float64

	amplitude, freq, phaseDeg float64

	v1, v2, delay, rise, fall, pulseWidth, period float64

	times, values []float64
}

// NewVoltageSource constructs a DC independent voltage source.
func NewVoltageSource(name string, a, b NodeIndex, volts float64) *VoltageSource {
	return &VoltageSource{name: name, a: a, b: b, branchIdx: -1, wave: waveDC, dc: volts}
}

// NewSinVoltageSource constructs a sinusoidal source: offset + amplitude*sin(2*pi*freq*t + phase).
func NewSinVoltageSource(name string, a, b NodeIndex, offset, amplitude, freq, phaseDeg float64) *VoltageSource {
	return &VoltageSource{
		name: name, a: a, b: b, branchIdx: -1, wave: waveSIN,
		dc: offset, amplitude: amplitude, freq: freq, phaseDeg: phaseDeg,
	}
}

// NewPulseVoltageSource constructs a trapezoidal pulse train.
func NewPulseVoltageSource(name string, a, b NodeIndex, v1, v2, delay, rise, fall, pulseWidth, period float64) *VoltageSource {
	return &VoltageSource{
		name: name, a: a, b: b, branchIdx: -1, wave: wavePULSE,
		v1: v1, v2: v2, delay: delay, rise: rise, fall: fall, pulseWidth: pulseWidth, period: period,
	}
}

// NewPWLVoltageSource constructs a piecewise-linear source from time/value
// breakpoints. It panics if the slices are empty or mismatched in length.
func NewPWLVoltageSource(name string, a, b NodeIndex, times, values []float64) *VoltageSource {
	if len(times) == 0 || len(times) != len(values) {
		panic(fmt.Sprintf("device: PWL source %s: times/values must be non-empty and equal length", name))
	}
	return &VoltageSource{name: name, a: a, b: b, branchIdx: -1, wave: wavePWL, times: times, values: values}
}

func (v *VoltageSource) Name() string { return v.name }

// SetVoltage updates the source's DC/offset value. Callers drive a source
// between solves through its own setter, per spec.md §3's lifecycle
// contract (setVoltage), rather than mutating it any other way.
func (v *VoltageSource) SetVoltage(volts float64) { v.dc = volts }

// ValueAt returns the source's unscaled value at time t.
func (v *VoltageSource) ValueAt(t float64) float64 {
	switch v.wave {
	case waveSIN:
		phaseRad := v.phaseDeg * math.Pi / 180.0
		return v.dc + v.amplitude*math.Sin(2.0*math.Pi*v.freq*t+phaseRad)
	case wavePULSE:
		return v.pulseValueAt(t)
	case wavePWL:
		return v.pwlValueAt(t)
	default:
		return v.dc
	}
}

func (v *VoltageSource) pulseValueAt(t float64) float64 {
	if t < v.delay {
		return v.v1
	}
	t -= v.delay
	if v.period > 0 {
		t = math.Mod(t, v.period)
	}
	if t < v.rise {
		if v.rise == 0 {
			return v.v2
		}
		return v.v1 + (v.v2-v.v1)*t/v.rise
	}
	if t < v.rise+v.pulseWidth {
		return v.v2
	}
	fallStart := v.rise + v.pulseWidth
	if t < fallStart+v.fall {
		if v.fall == 0 {
			return v.v1
		}
		return v.v2 - (v.v2-v.v1)*(t-fallStart)/v.fall
	}
	return v.v1
}

func (v *VoltageSource) pwlValueAt(t float64) float64 {
	last := len(v.times) - 1
	if t <= v.times[0] {
		return v.values[0]
	}
	if t >= v.times[last] {
		return v.values[last]
	}
	for i := 1; i <= last; i++ {
		if t <= v.times[i] {
			t0, t1 := v.times[i-1], v.times[i]
			v0, v1 := v.values[i-1], v.values[i]
			return v0 + (v1-v0)*(t-t0)/(t1-t0)
		}
	}
	return v.values[last]
}

// BranchCount reports the single extra unknown (source current) required.
func (v *VoltageSource) BranchCount() int { return 1 }

func (v *VoltageSource) SetBranchIndex(first int) { v.branchIdx = first }

// Stamp enforces Va - Vb = V*scale via the branch row/column, using the
// source's value at t=0 (its DC/offset value). This is what DC analysis
// (C6), which has no time coordinate, always calls.
func (v *VoltageSource) Stamp(ctx *StampContext) {
	v.stampValue(ctx, v.ValueAt(0))
}

// StampAt stamps the source using its time-domain value at t rather than
// the t=0 value Stamp uses. The transient driver (C7) dispatches here for
// any source satisfying TimeVarying.
func (v *VoltageSource) StampAt(ctx *StampContext, t float64) {
	v.stampValue(ctx, v.ValueAt(t))
}

// stampValue couples the branch current into each node's KCL row and
// enforces Va - Vb = value*scale via the branch row/column.
func (v *VoltageSource) stampValue(ctx *StampContext, value float64) {
	if v.branchIdx < 0 {
		panic(fmt.Sprintf("device: voltage source %s: branch index not assigned (call Circuit.Finalize first)", v.name))
	}
	k := v.branchIdx

	if v.a != Ground {
		ctx.Sys.AddA(int(v.a), k, 1.0)
		ctx.Sys.AddA(k, int(v.a), 1.0)
	}
	if v.b != Ground {
		ctx.Sys.AddA(int(v.b), k, -1.0)
		ctx.Sys.AddA(k, int(v.b), -1.0)
	}

	ctx.Sys.AddZ(k, value*ctx.Scale)
}

func (v *VoltageSource) DCConnections() [][2]NodeIndex {
	return [][2]NodeIndex{{v.a, v.b}}
}
