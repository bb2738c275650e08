package types

import (
	"encoding/binary"
	"math"
	"math/bits"
	"sort"
)

// MaxSelectionAttempts bounds the rejection-sampling loop of UniformIndex.
const MaxSelectionAttempts = 32

// DrawFunc returns a 32-bit draw for the given salt.
type DrawFunc func(salt uint32) uint32

// UniformIndex reduces draws uniformly over [0, n). Draws at or above
// MaxUint32 - MaxUint32%n are rejected and redrawn with the next salt so that
// the modulo reduction carries no bias. ok is false when n is zero or every
// attempt was rejected.
func UniformIndex(n uint32, draw DrawFunc, maxAttempts uint32) (index uint32, ok bool) {
	if n == 0 {
		return 0, false
	}
	limit := uint32(math.MaxUint32) - uint32(math.MaxUint32)%n
	for salt := uint32(0); salt < maxAttempts; salt++ {
		v := draw(salt)
		if v >= limit {
			continue
		}
		return v % n, true
	}
	return 0, false
}

// SeedToUint32 reads the first four bytes of a seed as a big-endian draw.
func SeedToUint32(seed [32]byte) uint32 {
	return binary.BigEndian.Uint32(seed[:4])
}

// SubnetWeight is the emission weight assigned to a subnet for one reward tick.
type SubnetWeight struct {
	SubnetID uint32
	Weight   uint64
}

// SortWeightsDesc orders weights by descending weight, ties by ascending subnet id.
func SortWeightsDesc(weights []SubnetWeight) {
	sort.SliceStable(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].SubnetID < weights[j].SubnetID
	})
}

// RedistributeWeights caps every weight at capWeight and hands the excess to
// the entries below the cap in proportion to their headroom, repeating until
// no excess remains or every entry sits at the cap. The input is sorted in
// place (descending) and returned. The total is preserved whenever
// len(weights)*capWeight is at least the total.
func RedistributeWeights(weights []SubnetWeight, capWeight uint64) []SubnetWeight {
	SortWeightsDesc(weights)

	for iter := 0; iter <= len(weights); iter++ {
		var excess uint64
		for i := range weights {
			if weights[i].Weight > capWeight {
				excess += weights[i].Weight - capWeight
				weights[i].Weight = capWeight
			}
		}
		if excess == 0 {
			break
		}

		var headroom uint64
		for _, w := range weights {
			if w.Weight < capWeight {
				headroom += capWeight - w.Weight
			}
		}
		if headroom == 0 {
			break
		}

		var distributed uint64
		for i := range weights {
			if weights[i].Weight >= capWeight {
				continue
			}
			room := capWeight - weights[i].Weight
			share := mulDivUint64(excess, room, headroom)
			weights[i].Weight += share
			distributed += share
		}

		// Rounding dust goes to the first entries that still have room.
		remainder := excess - distributed
		for i := range weights {
			if remainder == 0 {
				break
			}
			if weights[i].Weight >= capWeight {
				continue
			}
			room := capWeight - weights[i].Weight
			add := remainder
			if add > room {
				add = room
			}
			weights[i].Weight += add
			remainder -= add
		}
	}

	return weights
}

// SubnetWeightCap returns max(maxWeight, PercentageFactor/n).
func SubnetWeightCap(maxWeight uint64, n int) uint64 {
	if n <= 0 {
		return maxWeight
	}
	equal := PercentageFactor / uint64(n)
	if equal > maxWeight {
		return equal
	}
	return maxWeight
}

func mulDivUint64(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, c)
	return q
}
