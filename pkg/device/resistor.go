package device

import "fmt"

// Resistor stamps a pure conductance g = 1/R between two nodes.
type Resistor struct {
	name string
	a, b NodeIndex
	ohms float64
}

// NewResistor constructs a resistor. It panics if ohms is not positive,
// matching original_source/resistor.h's constructor validation: an
// invalid element is a programming error, not a runtime condition.
func NewResistor(name string, a, b NodeIndex, ohms float64) *Resistor {
	if ohms <= 0 {
		panic(fmt.Sprintf("device: resistor %s: R must be > 0, got %g", name, ohms))
	}
	return &Resistor{name: name, a: a, b: b, ohms: ohms}
}

func (r *Resistor) Name() string { return r.name }

// SetResistance updates R between solves, per spec.md §3's lifecycle
// contract (setResistance). It panics if ohms is not positive, matching
// NewResistor's validation.
func (r *Resistor) SetResistance(ohms float64) {
	if ohms <= 0 {
		panic(fmt.Sprintf("device: resistor %s: R must be > 0, got %g", r.name, ohms))
	}
	r.ohms = ohms
}

func (r *Resistor) Stamp(ctx *StampContext) {
	StampConductance(ctx.Sys, r.a, r.b, 1.0/r.ohms)
}

func (r *Resistor) DCConnections() [][2]NodeIndex {
	return [][2]NodeIndex{{r.a, r.b}}
}
