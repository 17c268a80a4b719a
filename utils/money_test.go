package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 12.6, RoundMoney(4.2*3))
	assert.Equal(t, 0.3, RoundMoney(0.1+0.2))
	assert.Equal(t, -1.5, RoundMoney(-1.499999))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "13,00 €", FormatCurrency(13))
	assert.Equal(t, "1.234,50 €", FormatCurrency(1234.5))
	assert.Equal(t, "1.000.000,00 €", FormatCurrency(1e6))
	assert.Equal(t, "-5,25 €", FormatCurrency(-5.25))
	assert.Equal(t, "0,00 €", FormatCurrency(0))
}
