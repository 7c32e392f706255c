package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in       string
		decimals int
		want     string
		ok       bool
	}{
		{"100", 18, "100000000000000000000", true},
		{"1.5", 18, "1500000000000000000", true},
		{"0.000000000000000001", 18, "1", true},
		{"100", 6, "100000000", true},
		{"100", 0, "100", true},
		{"", 18, "0", true},
		{"0", 18, "0", true},
		// Excess fractional digits are truncated, not rounded.
		{"1.1234567", 6, "1123456", true},
		{"-1", 18, "", false},
		{"1.2.3", 18, "", false},
		{"abc", 18, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseAmount(tc.in, tc.decimals)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got.String())
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	wei := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		return v
	}

	assert.Equal(t, "100.000000000000000000", FormatAmount(wei("100000000000000000000"), 18))
	assert.Equal(t, "1.500000", FormatAmount(wei("1500000"), 6))
	assert.Equal(t, "0.000001", FormatAmount(wei("1"), 6))
	assert.Equal(t, "0", FormatAmount(nil, 18))
	assert.Equal(t, "42", FormatAmount(wei("42"), 0))
	assert.Equal(t, "-1.000000", FormatAmount(wei("-1000000"), 6))
}

func TestParseFormatRoundTrip(t *testing.T) {
	raw, ok := ParseAmount("123.456789", 6)
	require.True(t, ok)
	assert.Equal(t, "123.456789", FormatAmount(raw, 6))
}
