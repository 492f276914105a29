package vidreader

import (
	"math"
	"math/big"
	"time"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// TicksToSeconds converts a timestamp in tb units to seconds. Unknown
// timestamps and time bases with a zero denominator yield 0.
func TicksToSeconds(ticks int64, tb engine.Rational) float64 {
	if ticks == engine.NoPTS || tb.Den == 0 {
		return 0
	}
	return float64(ticks) * tb.Float64()
}

// SecondsToTicks converts seconds to the nearest tick in tb. Invalid time
// bases and NaN yield 0. Out of range values saturate, so the result is
// never NoPTS.
func SecondsToTicks(seconds float64, tb engine.Rational) int64 {
	if !tb.Valid() || math.IsNaN(seconds) {
		return 0
	}
	v := math.Round(seconds * float64(tb.Den) / float64(tb.Num))
	switch {
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64 + 1
	}
	return int64(v)
}

// TicksToDuration converts a timestamp in tb units to a time.Duration.
func TicksToDuration(ticks int64, tb engine.Rational) time.Duration {
	if ticks == engine.NoPTS || !tb.Valid() {
		return 0
	}
	return time.Duration(RescaleTicks(ticks, tb, engine.Rational{Num: 1, Den: int32(time.Second)}))
}

// FrameTicks returns the duration of one frame at fps in tb units, rounded
// to the nearest tick and never less than 1. Non-positive fps or an
// invalid time base yield 0.
func FrameTicks(tb engine.Rational, fps float64) int64 {
	if !tb.Valid() || fps <= 0 {
		return 0
	}
	step := int64(math.Round(float64(tb.Den) / (float64(tb.Num) * fps)))
	if step <= 0 {
		step = 1
	}
	return step
}

// RescaleTicks converts ticks from one time base to another, rounding half
// away from zero like av_rescale_q. NoPTS is passed through.
func RescaleTicks(ticks int64, from, to engine.Rational) int64 {
	if ticks == engine.NoPTS || !from.Valid() || !to.Valid() {
		return engine.NoPTS
	}
	num := new(big.Int).SetInt64(ticks)
	num.Mul(num, big.NewInt(int64(from.Num)*int64(to.Den)))
	den := big.NewInt(int64(from.Den) * int64(to.Num))

	half := new(big.Int).Rsh(den, 1)
	if num.Sign() < 0 {
		num.Sub(num, half)
	} else {
		num.Add(num, half)
	}
	num.Quo(num, den)
	if !num.IsInt64() {
		return engine.NoPTS
	}
	return num.Int64()
}
