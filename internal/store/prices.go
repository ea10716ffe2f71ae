package store

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ScalePrice parses a decimal price string into an int64 scaled by 10^scale.
// The shift happens in exact decimal arithmetic, so "97.123" at scale 4
// becomes 971230 without a float round trip.
func ScalePrice(s string, scale int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d.Shift(scale).IntPart(), nil
}

// FormatPrice renders a scaled integer price back as a decimal string.
func FormatPrice(p int64, scale int32) string {
	return decimal.NewFromInt(p).Shift(-scale).String()
}
