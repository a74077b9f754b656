package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RaphRaly/mnacore/pkg/util"
)

func TestFormatValueFactorPicksSIPrefix(t *testing.T) {
	assert.Equal(t, "4700.000 Ohm", util.FormatValueFactor(4700, "Ohm"))
	assert.Equal(t, "12.500 nF", util.FormatValueFactor(12.5e-9, "F"))
	assert.Equal(t, "1.000 mA", util.FormatValueFactor(1e-3, "A"))
	assert.Equal(t, "1.000 uV", util.FormatValueFactor(1e-6, "V"))
	assert.Equal(t, "1.000 pF", util.FormatValueFactor(1e-12, "F"))
}

func TestFormatValueFactorHandlesNegative(t *testing.T) {
	assert.Equal(t, "-4.700 mA", util.FormatValueFactor(-4.7e-3, "A"))
}
