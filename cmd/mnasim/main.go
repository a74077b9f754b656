// Command mnasim is a minimal demonstration harness: it assembles a couple
// of small circuits programmatically and reports their DC operating point.
// Netlist parsing and richer reporting are external-collaborator concerns
// this module does not implement.
package main

import (
	"fmt"
	"os"

	"github.com/RaphRaly/mnacore/pkg/analysis"
	"github.com/RaphRaly/mnacore/pkg/circuit"
	"github.com/RaphRaly/mnacore/pkg/device"
)

func main() {
	if err := runResistiveDivider(); err != nil {
		fmt.Fprintln(os.Stderr, "resistive divider:", err)
		os.Exit(1)
	}
	if err := runDiodeBias(); err != nil {
		fmt.Fprintln(os.Stderr, "diode bias:", err)
		os.Exit(1)
	}
}

func runResistiveDivider() error {
	ckt := circuit.New()
	vin := ckt.CreateNode("IN")
	vout := ckt.CreateNode("OUT")

	ckt.AddElement(device.NewVoltageSource("V1", vin, device.Ground, 10.0))
	ckt.AddElement(device.NewResistor("R1", vin, vout, 1000.0))
	ckt.AddElement(device.NewResistor("R2", vout, device.Ground, 1000.0))
	ckt.Finalize()

	cfg := analysis.DefaultDCConfig()
	x, ok := analysis.DC(ckt, nil, cfg, nil, nil)
	if !ok {
		return fmt.Errorf("did not converge")
	}

	fmt.Println("Resistive divider DC operating point:")
	fmt.Printf("  %s = %.4f V\n", ckt.UnknownMeaning(int(vin)), x[vin])
	fmt.Printf("  %s = %.4f V\n", ckt.UnknownMeaning(int(vout)), x[vout])
	return nil
}

func runDiodeBias() error {
	ckt := circuit.New()
	vin := ckt.CreateNode("IN")
	anode := ckt.CreateNode("A")

	ckt.AddElement(device.NewVoltageSource("V1", vin, device.Ground, 5.0))
	ckt.AddElement(device.NewResistor("R1", vin, anode, 1000.0))
	ckt.AddElement(device.NewDiode("D1", anode, device.Ground, 1e-14, 1.0))
	ckt.Finalize()

	cfg := analysis.DefaultDCConfig()
	x, ok := analysis.DC(ckt, nil, cfg, nil, nil)
	if !ok {
		return fmt.Errorf("did not converge")
	}

	fmt.Println("\nDiode bias DC operating point:")
	fmt.Printf("  %s = %.4f V\n", ckt.UnknownMeaning(int(anode)), x[anode])
	return nil
}
