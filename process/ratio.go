package process

import (
	"fmt"
	"math"
	"math/bits"
)

const nanosPerSecond = 1_000_000_000

// TickRatio converts native CPU ticks to nanoseconds: nanos = ticks * Numer / Denom.
type TickRatio struct {
	Numer uint64
	Denom uint64
}

// IdentityRatio is used when the source reports ticks in nanoseconds
// or the real ratio cannot be obtained.
var IdentityRatio = TickRatio{Numer: 1, Denom: 1}

// Validate rejects a ratio with a zero denominator. A zero numerator is
// accepted and converts every tick count to zero.
func (r TickRatio) Validate() error {
	if r.Denom == 0 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidTimebase, r.Numer, r.Denom)
	}
	return nil
}

// Nanos converts ticks to nanoseconds, multiplying before dividing.
// The product is computed in 128 bits; results that do not fit in 64 bits
// saturate at math.MaxUint64.
func (r TickRatio) Nanos(ticks uint64) uint64 {
	hi, lo := bits.Mul64(ticks, r.Numer)
	if hi >= r.Denom {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, r.Denom)
	return q
}

// NanosToSeconds truncates nanoseconds to whole seconds.
func NanosToSeconds(nanos uint64) uint64 {
	return nanos / nanosPerSecond
}
