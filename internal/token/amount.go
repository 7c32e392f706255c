package token

import (
	"math/big"
	"strings"
)

// ParseAmount converts a decimal string (e.g. "100" or "1.5") to its
// smallest-unit big.Int representation for a token with the given decimals.
// Returns (nil, false) on invalid input.
//
// Rules:
//   - Empty string returns (0, true)
//   - Negative amounts are rejected
//   - Multiple decimal points are rejected
//   - Fractional parts are padded/truncated to the token's decimals
func ParseAmount(s string, decimals int) (*big.Int, bool) {
	if s == "" {
		return big.NewInt(0), true
	}

	if strings.HasPrefix(s, "-") {
		return nil, false
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return nil, false
	}
	whole := parts[0]
	frac := ""
	if len(parts) > 1 {
		frac = parts[1]
	}

	for len(frac) < decimals {
		frac += "0"
	}
	frac = frac[:decimals]

	combined := whole + frac
	result, ok := new(big.Int).SetString(combined, 10)
	return result, ok
}

// FormatAmount converts a smallest-unit big.Int to a human-readable decimal
// string with exactly `decimals` fractional digits.
func FormatAmount(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	neg := amount.Sign() < 0
	s := new(big.Int).Abs(amount).String()
	for len(s) < decimals+1 {
		s = "0" + s
	}
	cut := len(s) - decimals
	result := s[:cut]
	if decimals > 0 {
		result += "." + s[cut:]
	}
	if neg {
		result = "-" + result
	}
	return result
}
