// Package consts holds the physical constants used to derive thermal
// voltages for junction devices.
package consts

const (
	Charge    = 1.6021918e-19 // elementary charge (C)
	Boltzmann = 1.3806226e-23 // Boltzmann constant (J/K)
	Kelvin    = 273.15        // 0 degrees C, in kelvin

	RoomTemp = Kelvin + 27.0 // default device operating temperature (K)
)

// ThermalVoltage returns kT/q at the given absolute temperature, the Vt that
// feeds into a diode or BJT's n*Vt emission term.
func ThermalVoltage(tempKelvin float64) float64 {
	return Boltzmann * tempKelvin / Charge
}
