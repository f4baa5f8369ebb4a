package token

import (
	"fmt"
	"math"
)

// RawAmount converts a human-readable supply into integer base units:
// floor(totalSupply * 10^decimals).
//
// Flooring (rather than truncation-by-cast) keeps the result exact at
// representable boundaries, e.g. totalSupply=1 decimals=9 yields exactly
// 1000000000. NaN, Inf, non-positive and overflowing inputs are rejected
// so they can never reach the mint-to call.
func RawAmount(totalSupply float64, decimals uint8) (uint64, error) {
	if math.IsNaN(totalSupply) || math.IsInf(totalSupply, 0) {
		return 0, fmt.Errorf("total supply is not a finite number")
	}
	if totalSupply <= 0 {
		return 0, fmt.Errorf("total supply must be positive")
	}
	if decimals > MaxDecimals {
		return 0, fmt.Errorf("decimals %d exceeds maximum %d", decimals, MaxDecimals)
	}

	scaled := math.Floor(totalSupply * math.Pow10(int(decimals)))
	if scaled >= math.MaxUint64 {
		return 0, fmt.Errorf("raw amount overflows uint64")
	}
	return uint64(scaled), nil
}
