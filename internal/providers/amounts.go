package providers

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"swap-router.backend/internal/domain/entities"
)

// PriceFunc resolves an asset's USD price. The bool is false when the price
// is unavailable; adapters treat that as "no USD fee figure", never an error.
type PriceFunc func(ctx context.Context, asset entities.AssetID) (float64, bool)

// RescaleBaseUnit converts a base-unit decimal string between precisions
// using integer arithmetic. Downscaling truncates toward zero.
func RescaleBaseUnit(amount string, fromDecimals, toDecimals int) (string, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok {
		return "", fmt.Errorf("invalid base-unit amount %q", amount)
	}
	switch {
	case fromDecimals == toDecimals:
		return v.String(), nil
	case toDecimals > fromDecimals:
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(toDecimals-fromDecimals)), nil)
		return new(big.Int).Mul(v, scale).String(), nil
	default:
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(fromDecimals-toDecimals)), nil)
		return new(big.Int).Quo(v, scale).String(), nil
	}
}

// ParseBaseUnit parses a positive base-unit decimal string.
func ParseBaseUnit(amount string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok {
		return nil, fmt.Errorf("invalid base-unit amount %q", amount)
	}
	if v.Sign() <= 0 {
		return nil, fmt.Errorf("base-unit amount must be positive, got %q", amount)
	}
	return v, nil
}

// FormatDecimal renders a base-unit amount at the given precision as a
// human-readable decimal string with trailing zeros trimmed.
func FormatDecimal(baseUnit string, decimals int) string {
	v, ok := new(big.Int).SetString(strings.TrimSpace(baseUnit), 10)
	if !ok {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(v, scale, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}
	frac := strings.TrimRight(fmt.Sprintf("%0*s", decimals, rem.Abs(rem).String()), "0")
	return quo.String() + "." + frac
}
