package circuit

import (
	"fmt"

	"github.com/RaphRaly/mnacore/pkg/device"
)

// ExtendedBJTNodes reports the intrinsic collector/base/emitter node indices
// an extended BJT was built with, distinct from the external terminals when
// parasitic resistances introduce internal nodes.
type ExtendedBJTNodes struct {
	C, B, E device.NodeIndex
}

// AddExtendedBJT wires an Ebers-Moll BJT together with the parasitic base,
// collector, and emitter resistances and junction capacitances named in p,
// creating internal nodes only for the resistances that are actually
// present. Grounded on original_source/components/bjt_ebers_moll.h's
// addBjtExtended builder.
func (c *Circuit) AddExtendedBJT(cExt, bExt, eExt device.NodeIndex, p device.BJTParams, pnp bool, name string) ExtendedBJTNodes {
	cInt, bInt, eInt := cExt, bExt, eExt

	if p.RC > 0 {
		cInt = c.CreateNode(name + "_Ci")
	}
	if p.RB > 0 {
		bInt = c.CreateNode(name + "_Bi")
	}
	if p.RE > 0 {
		eInt = c.CreateNode(name + "_Ei")
	}

	if p.RB > 0 {
		c.AddElement(device.NewResistor(fmt.Sprintf("%s_RB", name), bExt, bInt, p.RB))
	}
	if p.RC > 0 {
		c.AddElement(device.NewResistor(fmt.Sprintf("%s_RC", name), cExt, cInt, p.RC))
	}
	if p.RE > 0 {
		c.AddElement(device.NewResistor(fmt.Sprintf("%s_RE", name), eExt, eInt, p.RE))
	}

	if p.CJE > 0 {
		c.AddElement(device.NewCapacitor(fmt.Sprintf("%s_CJE", name), bInt, eInt, p.CJE))
	}
	if p.CJC > 0 {
		c.AddElement(device.NewCapacitor(fmt.Sprintf("%s_CJC", name), bInt, cInt, p.CJC))
	}

	c.AddElement(device.NewBJT(name, cInt, bInt, eInt, p, pnp))

	return ExtendedBJTNodes{C: cInt, B: bInt, E: eInt}
}
