// Package convert holds checked numeric conversions.
package convert

import (
	"fmt"
	"math"
)

// IntToUintSafe converts v to uint, panicking if v is negative. Callers use
// it only where v is non-negative by construction.
func IntToUintSafe(v int) uint {
	if v < 0 {
		panic(fmt.Sprintf("cannot convert negative int to uint: %d", v))
	}
	return uint(v)
}

// Int64ToIntClamped narrows v to int, saturating at the platform bounds.
func Int64ToIntClamped(v int64) int {
	if v > math.MaxInt {
		return math.MaxInt
	}
	if v < math.MinInt {
		return math.MinInt
	}
	return int(v)
}

// MinutesToInt converts a minute count read from storage, rejecting values
// that do not fit a 32-bit column.
func MinutesToInt(v int64) (int, error) {
	if v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("minute count out of range: %d", v)
	}
	return int(v), nil
}
