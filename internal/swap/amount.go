// internal/swap/amount.go
package swap

import (
	"math"
)

// ToRaw converts a human-entered amount to base units of a token with the
// given precision, rounding to the nearest unit.
func ToRaw(human float64, decimals uint8) uint64 {
	return uint64(math.Round(human * math.Pow10(int(decimals))))
}

// PercentToBps normalizes a slippage percentage to basis points. The result
// is always an integer in [0, 10000].
func PercentToBps(percent float64) (int, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) {
		return 0, Errorf(KindInvalidRequest, "slippage is not a number")
	}
	bps := int(math.Round(percent * 100))
	if bps < 0 || bps > 10_000 {
		return 0, Errorf(KindInvalidRequest, "slippage %.2f%% out of range [0, 100]", percent)
	}
	return bps, nil
}
