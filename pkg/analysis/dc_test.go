package analysis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaphRaly/mnacore/pkg/analysis"
	"github.com/RaphRaly/mnacore/pkg/circuit"
	"github.com/RaphRaly/mnacore/pkg/device"
)

func TestResistiveDivider(t *testing.T) {
	ckt := circuit.New()
	vin := ckt.CreateNode("IN")
	mid := ckt.CreateNode("MID")

	ckt.AddElement(device.NewVoltageSource("V1", vin, device.Ground, 10.0))
	ckt.AddElement(device.NewResistor("R1", vin, mid, 1000.0))
	ckt.AddElement(device.NewResistor("R2", mid, device.Ground, 1000.0))
	ckt.Finalize()

	x, ok := analysis.DC(ckt, nil, analysis.DefaultDCConfig(), nil, nil)
	require.True(t, ok)

	assert.InDelta(t, 5.0, x[mid], 1e-6)

	branchIdx := ckt.NumNodes() // V1 is the only branch element, index numNodes
	assert.InDelta(t, -0.005, x[branchIdx], 1e-6)
}

func TestVoltageSourceSignConvention(t *testing.T) {
	ckt := circuit.New()
	a := ckt.CreateNode("A")
	ckt.AddElement(device.NewVoltageSource("V1", a, device.Ground, 3.3))
	ckt.AddElement(device.NewResistor("Rload", a, device.Ground, 1000.0))
	ckt.Finalize()

	x, ok := analysis.DC(ckt, nil, analysis.DefaultDCConfig(), nil, nil)
	require.True(t, ok)
	assert.InDelta(t, 3.3, x[a], 1e-6)
}

func TestCurrentSourceSignConvention(t *testing.T) {
	ckt := circuit.New()
	a := ckt.CreateNode("A")
	ckt.AddElement(device.NewCurrentSource("I1", a, device.Ground, 1e-3))
	ckt.AddElement(device.NewResistor("Rload", a, device.Ground, 1000.0))
	ckt.Finalize()

	x, ok := analysis.DC(ckt, nil, analysis.DefaultDCConfig(), nil, nil)
	require.True(t, ok)
	// Current source pushes 1mA from a to ground; through 1k to ground the
	// node settles at -I*R since current *leaves* node a per KCL convention.
	assert.InDelta(t, -1.0, x[a], 1e-6)
}

func TestDiodeForwardBias(t *testing.T) {
	ckt := circuit.New()
	vin := ckt.CreateNode("IN")
	anode := ckt.CreateNode("A")

	ckt.AddElement(device.NewVoltageSource("V1", vin, device.Ground, 1.0))
	ckt.AddElement(device.NewResistor("R1", vin, anode, 1000.0))
	ckt.AddElement(device.NewDiode("D1", anode, device.Ground, 1e-14, 1.0))
	ckt.Finalize()

	x, ok := analysis.DC(ckt, nil, analysis.DefaultDCConfig(), nil, nil)
	require.True(t, ok)
	assert.Greater(t, x[anode], 0.6)
	assert.Less(t, x[anode], 0.8)
}

func TestNPNActiveBiasCurrentRatio(t *testing.T) {
	ckt := circuit.New()
	vc := ckt.CreateNode("C")
	vb := ckt.CreateNode("B")

	is, nvt, betaF := 1e-14, 0.02585, 100.0
	ckt.AddElement(device.NewVoltageSource("VC", vc, device.Ground, 5.0))
	ckt.AddElement(device.NewVoltageSource("VB", vb, device.Ground, 0.7))

	params := device.BJTParams{Is: is, NVt: nvt, BetaF: betaF, BetaR: 2.0, VAF: 100.0, Gmin: 1e-12}
	ckt.AddElement(device.NewBJT("Q1", vc, vb, device.Ground, params, false))
	ckt.Finalize()

	x, ok := analysis.DC(ckt, nil, analysis.DefaultDCConfig(), nil, nil)
	require.True(t, ok)

	branchVC := ckt.NumNodes() // VC declared first
	vbe, vbc := 0.7, 0.7-5.0
	icBase := is * (math.Exp(vbe/nvt) - math.Exp(vbc/nvt))
	vaf := 100.0
	icExpected := icBase * (1.0 + (vbe-vbc)/vaf) // includes the ro-form Early correction
	icMeasured := -x[branchVC]

	assert.InEpsilon(t, icExpected, icMeasured, 0.01)
}

func TestFinalizeIsIdempotent(t *testing.T) {
	ckt := circuit.New()
	a := ckt.CreateNode("A")
	ckt.AddElement(device.NewResistor("R1", a, device.Ground, 1000.0))
	ckt.Finalize()
	sysBefore := ckt.System()
	ckt.Finalize()
	assert.Same(t, sysBefore, ckt.System())
}

func TestCapacitorStepSettlesToSourceVoltage(t *testing.T) {
	ckt := circuit.New()
	a := ckt.CreateNode("A")
	ckt.AddElement(device.NewVoltageSource("V1", a, device.Ground, 5.0))
	ckt.AddElement(device.NewCapacitor("C1", a, device.Ground, 1e-6))
	ckt.Finalize()

	x0, ok := analysis.DC(ckt, nil, analysis.DefaultDCConfig(), nil, nil)
	require.True(t, ok)
	analysis.InitializeDynamics(ckt, x0)

	x1, ok := analysis.Step(ckt, 0, 1e-3, x0, analysis.DefaultTransientConfig())
	require.True(t, ok)
	assert.InDelta(t, 5.0, x1[a], 1e-6)
}

func TestInductorIsShortAtDC(t *testing.T) {
	ckt := circuit.New()
	a := ckt.CreateNode("A")
	b := ckt.CreateNode("B")
	ckt.AddElement(device.NewVoltageSource("V1", a, device.Ground, 5.0))
	ckt.AddElement(device.NewResistor("R1", a, b, 100.0))
	// DC analysis never calls BeginStep, so the inductor's rEff/rhs stay at
	// their zero value and Stamp enforces V(B) - V(GND) = 0 across it: a
	// genuine short, solved end-to-end here rather than just inspected via
	// DCConnections. The full 5V then drops across R1, so 50mA flows.
	ckt.AddElement(device.NewInductor("L1", b, device.Ground, 1e-3))
	ckt.Finalize()

	x, ok := analysis.DC(ckt, nil, analysis.DefaultDCConfig(), nil, nil)
	require.True(t, ok)
	branchL1 := ckt.NumNodes() + 1 // V1 owns the first branch, L1 the second
	assert.InDelta(t, 0.05, x[branchL1], 1e-6)
	assert.InDelta(t, 0.0, x[b], 1e-6)
}
