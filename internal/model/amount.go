package model

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a human-readable amount (e.g. "0.001") into the raw
// smallest-unit integer for a token with the given decimals. The amount must
// be positive and must not carry more fractional digits than the token can
// represent.
func ParseAmount(amount string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %q: %v", ErrInvalidAmount, amount, err)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %q", ErrInvalidAmount, amount)
	}

	raw := d.Shift(int32(decimals))
	if !raw.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, amount, decimals)
	}

	return raw.BigInt(), nil
}

// FormatAmount renders a raw smallest-unit integer in human units.
func FormatAmount(raw *big.Int, decimals uint8) string {
	return decimal.NewFromBigInt(raw, 0).Shift(-int32(decimals)).String()
}
