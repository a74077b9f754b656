package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaphRaly/mnacore/pkg/device"
	"github.com/RaphRaly/mnacore/pkg/linsys"
)

func TestResistorStampsConductanceMatrix(t *testing.T) {
	sys := linsys.New(2)
	r := device.NewResistor("R1", 0, 1, 500.0)
	r.Stamp(&device.StampContext{Sys: sys, Scale: 1.0})

	g := 1.0 / 500.0
	assert.Equal(t, g, sys.GetA(0, 0))
	assert.Equal(t, g, sys.GetA(1, 1))
	assert.Equal(t, -g, sys.GetA(0, 1))
	assert.Equal(t, -g, sys.GetA(1, 0))
}

func TestResistorToGroundOnlyStampsSelfTerm(t *testing.T) {
	sys := linsys.New(1)
	r := device.NewResistor("R1", 0, device.Ground, 1000.0)
	r.Stamp(&device.StampContext{Sys: sys, Scale: 1.0})
	assert.Equal(t, 1.0/1000.0, sys.GetA(0, 0))
}

func TestNewResistorPanicsOnNonPositiveOhms(t *testing.T) {
	assert.Panics(t, func() { device.NewResistor("R1", 0, 1, 0) })
	assert.Panics(t, func() { device.NewResistor("R1", 0, 1, -1) })
}

func TestResistorDCConnections(t *testing.T) {
	r := device.NewResistor("R1", 2, 5, 100.0)
	conns := r.DCConnections()
	require.Len(t, conns, 1)
	assert.Equal(t, device.NodeIndex(2), conns[0][0])
	assert.Equal(t, device.NodeIndex(5), conns[0][1])
}
