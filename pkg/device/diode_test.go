package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaphRaly/mnacore/pkg/device"
	"github.com/RaphRaly/mnacore/pkg/linsys"
)

func TestDiodeInvalidParamsPanic(t *testing.T) {
	assert.Panics(t, func() { device.NewDiode("D1", 0, device.Ground, 0, 1.0) })
	assert.Panics(t, func() { device.NewDiode("D1", 0, device.Ground, 1e-14, 0) })
	assert.Panics(t, func() { device.NewDiode("D1", 0, device.Ground, 1e-14, 1.0, device.WithDiodeVt(-1)) })
	assert.Panics(t, func() { device.NewDiode("D1", 0, device.Ground, 1e-14, 1.0, device.WithDiodeGmin(-1)) })
}

func TestDiodeDCConnections(t *testing.T) {
	d := device.NewDiode("D1", 3, 7, 1e-14, 1.0)
	conns := d.DCConnections()
	require.Len(t, conns, 1)
	assert.Equal(t, device.NodeIndex(3), conns[0][0])
	assert.Equal(t, device.NodeIndex(7), conns[0][1])
}

func TestDiodeForwardStampProducesPositiveConductance(t *testing.T) {
	d := device.NewDiode("D1", 0, device.Ground, 1e-14, 1.0)
	x := []float64{0.7}
	d.ComputeLimitedVoltages(device.LimitContext{X: x, XOld: x})

	sys := linsys.New(1)
	ctx := &device.StampContext{Sys: sys, Scale: 1.0}
	d.StampNewton(ctx)

	assert.Greater(t, sys.GetA(0, 0), 0.0)
}

func TestDiodeBreakdownEngagesBelowNegativeBV(t *testing.T) {
	d := device.NewDiode("D1", 0, device.Ground, 1e-14, 1.0, device.WithDiodeBreakdown(5.0, 1e-3))
	x := []float64{-6.0}
	d.ComputeLimitedVoltages(device.LimitContext{X: x, XOld: x})

	sys := linsys.New(1)
	ctx := &device.StampContext{Sys: sys, Scale: 1.0}
	d.StampNewton(ctx)

	gdZener := 1e-3 / 5.0
	assert.InDelta(t, gdZener, sys.GetA(0, 0), 1e-9)
}

func TestPnjlimClampsLargeForwardStep(t *testing.T) {
	vt := 0.02585
	vcrit := vt * 30.0
	limited := device.Pnjlim(10.0, 0.0, vt, vcrit, device.DefaultPnjlimStep)
	assert.Less(t, limited, 10.0)
	assert.Greater(t, limited, 0.0)
}

func TestSafeExpClampsExtremeArguments(t *testing.T) {
	assert.Equal(t, device.SafeExp(1000.0), device.SafeExp(40.0))
	assert.Equal(t, device.SafeExp(-1000.0), device.SafeExp(-40.0))
}
