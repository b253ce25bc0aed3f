package core

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.out, got, 1e-9)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 2.68, Round2(2.675000001))
}

func TestRound2MatchesBinaryValue(t *testing.T) {
	cases := []struct {
		in, out float64
	}{
		{2.675, 2.67},
		{1.005, 1.0},
		{1.015, 1.01},
		{0.125, 0.13},
		{-2.675, -2.67},
		{10, 10},
	}
	for _, tc := range cases {
		t.Run(strconv.FormatFloat(tc.in, 'g', -1, 64), func(t *testing.T) {
			assert.Equal(t, tc.out, Round2(tc.in))
		})
	}
	assert.Equal(t, 0.0, Round2(math.NaN()))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₹1,234.50", FormatAmount(1234.5, "INR"))
	assert.Equal(t, "₹0.30", FormatAmount(0.1+0.2, "inr"))
	assert.Equal(t, "$10.00", FormatAmount(10, "USD"))
	assert.Equal(t, "₹5.00", FormatAmount(5, "???"))
	assert.Equal(t, "₹2.67", FormatAmount(2.675, "INR"))
	assert.Equal(t, "₹1.00", FormatAmount(1.005, "INR"))
	assert.True(t, KnownCurrency("eur"))
	assert.False(t, KnownCurrency("XYZ1"))
}
