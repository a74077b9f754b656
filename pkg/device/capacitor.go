package device

import "fmt"

// Capacitor is a trapezoidal companion-model capacitor: i = G*v + Ieq,
// with G = 2C/dt and Ieq = -(iPrev + G*vPrev). Grounded on
// original_source/components/capacitor_trap.h.
type Capacitor struct {
	name string
	a, b NodeIndex
	c    float64

	g   float64
	ieq float64

	vPrev, iPrev float64
}

// NewCapacitor constructs a capacitor. It panics if c is negative.
func NewCapacitor(name string, a, b NodeIndex, c float64) *Capacitor {
	if c < 0 {
		panic(fmt.Sprintf("device: capacitor %s: C must be >= 0, got %g", name, c))
	}
	return &Capacitor{name: name, a: a, b: b, c: c}
}

func (c *Capacitor) Name() string { return c.name }

// BeginStep computes the companion conductance and Norton current for the
// upcoming step. dt <= 0 (DC analysis) makes the capacitor an open circuit.
func (c *Capacitor) BeginStep(dt float64) {
	if dt <= 0 {
		c.g = 0
		c.ieq = 0
		return
	}
	c.g = 2.0 * c.c / dt
	c.ieq = -(c.iPrev + c.g*c.vPrev)
}

// CommitStep updates the history voltage/current from the converged
// solution, following original_source's nodeVoltage-based reconstruction.
func (c *Capacitor) CommitStep(xSolved []float64) {
	vNew := NodeVoltage(xSolved, c.a) - NodeVoltage(xSolved, c.b)
	if c.g == 0 {
		c.vPrev = vNew
		c.iPrev = 0
		return
	}
	c.iPrev = c.g*vNew + c.ieq
	c.vPrev = vNew
}

func (c *Capacitor) Stamp(ctx *StampContext) {
	StampConductance(ctx.Sys, c.a, c.b, c.g)
	StampCurrentSource(ctx.Sys, c.a, c.b, c.ieq)
}

// DCConnections reports nothing: a capacitor is open at DC.
func (c *Capacitor) DCConnections() [][2]NodeIndex { return nil }
