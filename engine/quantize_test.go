package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQuantize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		value       string
		granularity string
		precision   int32
		want        string
	}{
		{"exact multiple unchanged", "50000", "1", 0, "50000"},
		{"rounds down to step", "1.0004", "0.001", 3, "1"},
		{"rounds up to step", "1.0006", "0.001", 3, "1.001"},
		{"half rounds up", "1.0015", "0.001", 3, "1.002"},
		{"granularity itself", "0.001", "0.001", 3, "0.001"},
		{"coarse tick", "50000.7", "5", 0, "50000"},
		{"sub-unit price", "99.4700", "0.01", 2, "99.47"},
		{"tiny size", "0.0123456", "0.0001", 4, "0.0123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Quantize(d(tt.value), d(tt.granularity), tt.precision)
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestQuantizeIsMultipleOfGranularity(t *testing.T) {
	t.Parallel()

	values := []string{"0.0007", "1", "3.14159", "49999.5", "123456.789"}
	grans := []string{"0.001", "0.5", "1", "2.5"}

	for _, v := range values {
		for _, g := range grans {
			got, err := Quantize(d(v), d(g), 6)
			require.NoError(t, err)
			rem := got.Mod(d(g))
			assert.True(t, rem.IsZero(), "quantize(%s, %s) = %s, remainder %s", v, g, got, rem)
		}
	}
}

func TestQuantizeInvalidGranularity(t *testing.T) {
	t.Parallel()

	_, err := Quantize(d("1"), decimal.Zero, 2)
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = Quantize(d("1"), d("-0.01"), 2)
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestTickPrecision(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int32(3), TickPrecision(d("0.001")))
	assert.Equal(t, int32(1), TickPrecision(d("0.5")))
	assert.Equal(t, int32(0), TickPrecision(d("1")))
	assert.Equal(t, int32(0), TickPrecision(d("10")))
}
