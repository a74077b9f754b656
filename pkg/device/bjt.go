package device

import (
	"math"

	"github.com/RaphRaly/mnacore/internal/consts"
)

// BJTParams collects the Ebers-Moll transport-model parameters shared by
// NPN and PNP devices, grounded on original_source/components/bjt_params.h.
// Defaults match the original's constructor defaults.
type BJTParams struct {
	Is    float64 // saturation current
	NVt   float64 // n*Vt, emission coefficient times thermal voltage
	BetaF float64 // forward current gain
	BetaR float64 // reverse current gain
	VAF   float64 // forward Early voltage; <= 0 disables the Early effect
	Gmin  float64 // minimum junction conductance

	// Parasitic extension (used only by Circuit.AddExtendedBJT in pkg/circuit)
	RB, RC, RE   float64
	CJE, CJC     float64
}

// DefaultBJTParams returns the original's default parameter set.
func DefaultBJTParams() BJTParams {
	return BJTParams{
		Is: 1e-15, NVt: consts.ThermalVoltage(consts.RoomTemp), BetaF: 200.0, BetaR: 2.0, VAF: 100.0, Gmin: 1e-12,
	}
}

// BJT is an Ebers-Moll transport-model bipolar junction transistor with an
// Early-effect output conductance modeled as a resistor between collector
// and emitter (the "ro" form). Set pnp to build a PNP device; the two
// polarities are structural mirrors of one another and must produce
// symmetric small-signal Jacobians under sign-flipped bias, per spec.md's
// testable-property requirement. Grounded on
// original_source/components/bjt_ebers_moll.h.
type BJT struct {
	name         string
	c, b, e      NodeIndex
	p            BJTParams
	pnp          bool
	vbeLim       float64 // NPN: Vbe limited; PNP: Veb limited
	vbcLim       float64 // NPN: Vbc limited; PNP: Vcb limited
}

// NewBJT constructs an Ebers-Moll BJT. pnp selects the PNP transport-model
// variant; all other parameters are shared. It panics if Is or NVt is not
// positive or Gmin is negative.
func NewBJT(name string, c, b, e NodeIndex, p BJTParams, pnp bool) *BJT {
	if p.Is <= 0 {
		panic("device: bjt " + name + ": Is must be > 0")
	}
	if p.NVt <= 0 {
		panic("device: bjt " + name + ": NVt must be > 0")
	}
	if p.Gmin < 0 {
		panic("device: bjt " + name + ": Gmin must be >= 0")
	}
	return &BJT{name: name, c: c, b: b, e: e, p: p, pnp: pnp}
}

func (q *BJT) Name() string { return q.name }

// Stamp is a no-op: the BJT contributes nothing outside its Newton
// linearization.
func (q *BJT) Stamp(ctx *StampContext) {}

func (q *BJT) DCConnections() [][2]NodeIndex {
	return [][2]NodeIndex{{q.b, q.e}, {q.b, q.c}}
}

// ComputeLimitedVoltages derives the junction-limited bias voltages: Vbe/Vbc
// for NPN, or Veb/Vcb for PNP, sharing one vcrit formula across both
// polarities.
func (q *BJT) ComputeLimitedVoltages(ctx LimitContext) {
	vb, vc, ve := NodeVoltage(ctx.X, q.b), NodeVoltage(ctx.X, q.c), NodeVoltage(ctx.X, q.e)
	vbOld, vcOld, veOld := NodeVoltage(ctx.XOld, q.b), NodeVoltage(ctx.XOld, q.c), NodeVoltage(ctx.XOld, q.e)

	vcrit := q.p.NVt * math.Log(q.p.NVt/(1.414*q.p.Is))

	if !q.pnp {
		vbeNew, vbcNew := vb-ve, vb-vc
		vbeOld, vbcOld := vbOld-veOld, vbOld-vcOld
		q.vbeLim = Pnjlim(vbeNew, vbeOld, q.p.NVt, vcrit, DefaultPnjlimStep)
		q.vbcLim = Pnjlim(vbcNew, vbcOld, q.p.NVt, vcrit, DefaultPnjlimStep)
		return
	}

	vebNew, vcbNew := ve-vb, vc-vb
	vebOld, vcbOld := veOld-vbOld, vcOld-vbOld
	q.vbeLim = Pnjlim(vebNew, vebOld, q.p.NVt, vcrit, DefaultPnjlimStep)
	q.vbcLim = Pnjlim(vcbNew, vcbOld, q.p.NVt, vcrit, DefaultPnjlimStep)
}

// StampNewton stamps the transport-model linearization at the limited
// operating point, including the Early-effect conductance between
// collector and emitter.
func (q *BJT) StampNewton(ctx *StampContext) {
	if q.pnp {
		q.stampNewtonPNP(ctx)
		return
	}
	q.stampNewtonNPN(ctx)
}

func (q *BJT) stampNewtonNPN(ctx *StampContext) {
	p := q.p
	vbe, vbc := q.vbeLim, q.vbcLim

	expBE := SafeExp(vbe / p.NVt)
	expBC := SafeExp(vbc / p.NVt)

	iTran := p.Is * (expBE - expBC)
	iBeDiode := (p.Is/p.BetaF)*(expBE-1.0) + p.Gmin*vbe
	iBcDiode := (p.Is/p.BetaR)*(expBC-1.0) + p.Gmin*vbc

	vce := vbe - vbc
	icBase := iTran - iBcDiode

	go_ := 0.0
	if p.VAF > 0 {
		go_ = math.Abs(icBase) / p.VAF
	}
	ic := icBase + go_*vce
	ib := iBeDiode + iBcDiode
	ie := -(ic + ib)

	gTranF := (p.Is / p.NVt) * expBE
	gTranR := (p.Is / p.NVt) * expBC
	gBE := (p.Is/(p.BetaF*p.NVt))*expBE + p.Gmin
	gBC := (p.Is/(p.BetaR*p.NVt))*expBC + p.Gmin

	dIcDVb := gTranF - gTranR - gBC
	dIcDVc := gTranR + gBC + go_
	dIcDVe := -gTranF - go_

	// go_ itself varies with |icBase|; fold vce*d(go_)/dV into the
	// collector row so the Jacobian matches ic as computed above.
	jvGo := 0.0
	if p.VAF > 0 {
		k := math.Copysign(1.0/p.VAF, icBase) * vce
		dIcDVb += k * (gTranF - gTranR - gBC)
		dIcDVc += k * (gTranR + gBC)
		dIcDVe -= k * gTranF
		jvGo = k * (gTranF*vbe - (gTranR+gBC)*vbc)
	}

	dIbDVb := gBE + gBC
	dIbDVc := -gBC
	dIbDVe := -gBE

	dIeDVb := -(dIcDVb + dIbDVb)
	dIeDVc := -(dIcDVc + dIbDVc)
	dIeDVe := -(dIcDVe + dIbDVe)

	jvIc := gTranF*vbe + (-gTranR-gBC)*vbc + go_*vce + jvGo
	jvIb := gBE*vbe + gBC*vbc
	jvIe := -(jvIc + jvIb)

	q.stampRow(ctx, q.c, ic, dIcDVc, dIcDVb, dIcDVe, jvIc)
	q.stampRow(ctx, q.b, ib, dIbDVc, dIbDVb, dIbDVe, jvIb)
	q.stampRow(ctx, q.e, ie, dIeDVc, dIeDVb, dIeDVe, jvIe)
}

func (q *BJT) stampNewtonPNP(ctx *StampContext) {
	p := q.p
	veb, vcb := q.vbeLim, q.vbcLim

	expEB := SafeExp(veb / p.NVt)
	expCB := SafeExp(vcb / p.NVt)

	iTran := p.Is * (expEB - expCB)
	iEbDiode := (p.Is/p.BetaF)*(expEB-1.0) + p.Gmin*veb
	iCbDiode := (p.Is/p.BetaR)*(expCB-1.0) + p.Gmin*vcb

	vec := veb - vcb
	icBase := -iTran + iCbDiode

	go_ := 0.0
	if p.VAF > 0 {
		go_ = math.Abs(icBase) / p.VAF
	}
	ic := icBase - go_*vec
	ie := iTran + iEbDiode + go_*vec
	ib := -(ie + ic)

	gTranF := (p.Is / p.NVt) * expEB
	gTranR := (p.Is / p.NVt) * expCB
	gEB := (p.Is/(p.BetaF*p.NVt))*expEB + p.Gmin
	gCB := (p.Is/(p.BetaR*p.NVt))*expCB + p.Gmin

	dIeDVe := gTranF + gEB + go_
	dIeDVc := -gTranR - go_
	dIeDVb := -(gTranF + gEB - gTranR)

	dIcDVe := -gTranF - go_
	dIcDVc := gTranR + gCB + go_
	dIcDVb := gTranF - (gTranR + gCB)

	// go_ itself varies with |icBase|; fold vec*d(go_)/dV into the
	// emitter and collector rows so the Jacobian matches ie and ic.
	jvGo := 0.0
	if p.VAF > 0 {
		k := math.Copysign(1.0/p.VAF, icBase) * vec
		dgoE, dgoC, dgoB := -k*gTranF, k*(gTranR+gCB), k*(gTranF-gTranR-gCB)
		dIeDVe, dIeDVc, dIeDVb = dIeDVe+dgoE, dIeDVc+dgoC, dIeDVb+dgoB
		dIcDVe, dIcDVc, dIcDVb = dIcDVe-dgoE, dIcDVc-dgoC, dIcDVb-dgoB
		jvGo = k * (-gTranF*veb + (gTranR+gCB)*vcb)
	}

	dIbDVe := -(dIeDVe + dIcDVe)
	dIbDVc := -(dIeDVc + dIcDVc)
	dIbDVb := -(dIeDVb + dIcDVb)

	jvIe := (gTranF+gEB)*veb + (-gTranR)*vcb + go_*vec + jvGo
	jvIc := (-gTranF)*veb + (gTranR+gCB)*vcb - go_*vec - jvGo
	jvIb := -(jvIe + jvIc)

	q.stampRow(ctx, q.e, ie, dIeDVc, dIeDVb, dIeDVe, jvIe)
	q.stampRow(ctx, q.c, ic, dIcDVc, dIcDVb, dIcDVe, jvIc)
	q.stampRow(ctx, q.b, ib, dIbDVc, dIbDVb, dIbDVe, jvIb)
}

func (q *BJT) stampRow(ctx *StampContext, row NodeIndex, iOp, dDVc, dDVb, dDVe, jv float64) {
	if row == Ground {
		return
	}
	if q.c != Ground {
		ctx.Sys.AddA(int(row), int(q.c), dDVc)
	}
	if q.b != Ground {
		ctx.Sys.AddA(int(row), int(q.b), dDVb)
	}
	if q.e != Ground {
		ctx.Sys.AddA(int(row), int(q.e), dDVe)
	}
	ctx.Sys.AddZ(int(row), jv-iOp)
}
