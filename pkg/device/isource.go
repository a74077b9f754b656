package device

import "math"

// CurrentSource is an independent current source flowing from node a to
// node b, with DC, SIN and PULSE waveforms (VoltageSource's PWL form has no
// current-source counterpart). Grounded on pkg/device/isource.go in the teacher and
// original_source/current_source.h's DC contract). It contributes no
// branch variable: its current is a constant (per-iteration) RHS term.
type CurrentSource struct {
	name string
	a, b NodeIndex

	wave waveform

	dc float64

	amplitude, freq, phaseDeg float64

	i1, i2, delay, rise, fall, pulseWidth, period float64

	times, values []float64
}

// NewCurrentSource constructs a DC independent current source.
func NewCurrentSource(name string, a, b NodeIndex, amps float64) *CurrentSource {
	return &CurrentSource{name: name, a: a, b: b, wave: waveDC, dc: amps}
}

// NewSinCurrentSource constructs a sinusoidal current source.
func NewSinCurrentSource(name string, a, b NodeIndex, offset, amplitude, freq, phaseDeg float64) *CurrentSource {
	return &CurrentSource{
		name: name, a: a, b: b, wave: waveSIN,
		dc: offset, amplitude: amplitude, freq: freq, phaseDeg: phaseDeg,
	}
}

// NewPulseCurrentSource constructs a trapezoidal pulse-train current source.
func NewPulseCurrentSource(name string, a, b NodeIndex, i1, i2, delay, rise, fall, pulseWidth, period float64) *CurrentSource {
	return &CurrentSource{
		name: name, a: a, b: b, wave: wavePULSE,
		i1: i1, i2: i2, delay: delay, rise: rise, fall: fall, pulseWidth: pulseWidth, period: period,
	}
}

func (i *CurrentSource) Name() string { return i.name }

// SetCurrent updates the source's DC/offset value. Callers drive a source
// between solves through its own setter, per spec.md §3's lifecycle
// contract (setCurrent), rather than mutating it any other way.
func (i *CurrentSource) SetCurrent(amps float64) { i.dc = amps }

// ValueAt returns the source's unscaled current at time t.
func (i *CurrentSource) ValueAt(t float64) float64 {
	switch i.wave {
	case waveSIN:
		phaseRad := i.phaseDeg * math.Pi / 180.0
		return i.dc + i.amplitude*math.Sin(2.0*math.Pi*i.freq*t+phaseRad)
	case wavePULSE:
		return i.pulseValueAt(t)
	default:
		return i.dc
	}
}

func (i *CurrentSource) pulseValueAt(t float64) float64 {
	if t < i.delay {
		return i.i1
	}
	t -= i.delay
	if i.period > 0 {
		t = math.Mod(t, i.period)
	}
	if t < i.rise {
		if i.rise == 0 {
			return i.i2
		}
		return i.i1 + (i.i2-i.i1)*t/i.rise
	}
	if t < i.rise+i.pulseWidth {
		return i.i2
	}
	fallStart := i.rise + i.pulseWidth
	if t < fallStart+i.fall {
		if i.fall == 0 {
			return i.i1
		}
		return i.i2 - (i.i2-i.i1)*(t-fallStart)/i.fall
	}
	return i.i1
}

// Stamp injects the source's value at t=0 (its DC/offset value), scaled by
// the homotopy source factor. This is what DC analysis (C6), which has no
// time coordinate, always calls.
func (i *CurrentSource) Stamp(ctx *StampContext) {
	StampCurrentSource(ctx.Sys, i.a, i.b, i.ValueAt(0)*ctx.Scale)
}

// StampAt stamps using the time-domain value at t, for the transient
// driver (C7), which dispatches here for any source satisfying
// TimeVarying.
func (i *CurrentSource) StampAt(ctx *StampContext, t float64) {
	StampCurrentSource(ctx.Sys, i.a, i.b, i.ValueAt(t)*ctx.Scale)
}

// DCConnections reports no conduction path: an ideal current source is
// infinite impedance and provides no DC path for connectivity auditing,
// matching original_source/current_source.h's getDcConnections (which
// intentionally records nothing).
func (i *CurrentSource) DCConnections() [][2]NodeIndex { return nil }
