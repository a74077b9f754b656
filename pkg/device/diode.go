package device

import (
	"fmt"
	"math"

	"github.com/RaphRaly/mnacore/internal/consts"
)

// Diode is a Shockley-equation junction with Newton-Raphson linearization,
// pn-junction voltage limiting, and an optional piecewise-linear reverse
// breakdown (zener) region. Current flows anode -> cathode. Grounded on
// original_source/components/diode_shockley_nr.h.
type Diode struct {
	name     string
	a, c     NodeIndex
	is, n    float64
	vt       float64
	gmin     float64
	bv, ibv  float64
	limitedV float64
}

// NewDiode constructs a diode. gmin defaults to 1e-12 and bv to 0 (no
// breakdown modeling); vt defaults to the room-temperature thermal voltage
// and ibv defaults to 1e-3, matching original_source's defaults. It panics
// if any parameter violates the model's validity constraints.
func NewDiode(name string, anode, cathode NodeIndex, is, n float64, opts ...DiodeOption) *Diode {
	d := &Diode{
		name: name, a: anode, c: cathode,
		is: is, n: n, vt: consts.ThermalVoltage(consts.RoomTemp), gmin: 1e-12, bv: 0.0, ibv: 1e-3,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.is <= 0 {
		panic(fmt.Sprintf("device: diode %s: Is must be > 0", name))
	}
	if d.n <= 0 {
		panic(fmt.Sprintf("device: diode %s: n must be > 0", name))
	}
	if d.vt <= 0 {
		panic(fmt.Sprintf("device: diode %s: Vt must be > 0", name))
	}
	if d.gmin < 0 {
		panic(fmt.Sprintf("device: diode %s: gmin must be >= 0", name))
	}
	if d.bv < 0 {
		panic(fmt.Sprintf("device: diode %s: BV must be >= 0", name))
	}
	if d.ibv <= 0 {
		panic(fmt.Sprintf("device: diode %s: IBV must be > 0", name))
	}
	return d
}

// DiodeOption customizes a Diode's secondary model parameters.
type DiodeOption func(*Diode)

func WithDiodeVt(vt float64) DiodeOption     { return func(d *Diode) { d.vt = vt } }
func WithDiodeGmin(gmin float64) DiodeOption { return func(d *Diode) { d.gmin = gmin } }
func WithDiodeBreakdown(bv, ibv float64) DiodeOption {
	return func(d *Diode) { d.bv = bv; d.ibv = ibv }
}

func (d *Diode) Name() string { return d.name }

// Stamp is a no-op: a diode contributes nothing in the pure linear pass,
// only through its Newton linearization.
func (d *Diode) Stamp(ctx *StampContext) {}

func (d *Diode) DCConnections() [][2]NodeIndex {
	return [][2]NodeIndex{{d.a, d.c}}
}

// ComputeLimitedVoltages derives the junction-voltage-limited anode-cathode
// voltage used by StampNewton, via Pnjlim anchored on the critical voltage
// vcrit = nVt*ln(nVt/(1.414*Is)).
func (d *Diode) ComputeLimitedVoltages(ctx LimitContext) {
	vdNew := NodeVoltage(ctx.X, d.a) - NodeVoltage(ctx.X, d.c)
	vdOld := NodeVoltage(ctx.XOld, d.a) - NodeVoltage(ctx.XOld, d.c)

	nVt := d.n * d.vt
	vcrit := nVt * math.Log(nVt/(1.414*d.is))

	d.limitedV = Pnjlim(vdNew, vdOld, nVt, vcrit, DefaultPnjlimStep)
}

// StampNewton stamps the Norton-equivalent linearization of the diode at
// its limited operating point, switching to the breakdown branch when the
// limited voltage falls below -BV.
func (d *Diode) StampNewton(ctx *StampContext) {
	v := d.limitedV

	if d.bv > 0 && v < -d.bv {
		gdZener := d.ibv / d.bv
		ieqZener := -gdZener * d.bv
		StampConductance(ctx.Sys, d.a, d.c, gdZener+d.gmin)
		StampCurrentSource(ctx.Sys, d.a, d.c, ieqZener)
		return
	}

	vte := d.n * d.vt
	ev := SafeExp(v / vte)

	id := d.is * (ev - 1.0)
	gd := (d.is/vte)*ev + d.gmin
	ieq := id - gd*v

	StampConductance(ctx.Sys, d.a, d.c, gd)
	StampCurrentSource(ctx.Sys, d.a, d.c, ieq)
}
