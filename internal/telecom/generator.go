package telecom

import (
	"math/rand"
	"strings"
)

// digitGraph lists the digits allowed to follow each digit.
// A digit without successors is followed by any digit.
var digitGraph = [10][]int{
	0: {4, 6},
	1: {6, 8},
	2: {7, 9},
	3: {4, 8},
	4: {0, 3, 9},
	5: {},
	6: {0, 1, 7},
	7: {2, 6},
	8: {1, 3},
	9: {2, 4},
}

// GenerateNumber walks the digit graph from a leading 6-9 and returns length digits.
func GenerateNumber(rng *rand.Rand, length int) string {
	if length <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(length)

	current := 6 + rng.Intn(4)
	b.WriteByte(byte('0' + current))
	for i := 1; i < length; i++ {
		next := digitGraph[current]
		if len(next) == 0 {
			current = rng.Intn(10)
		} else {
			current = next[rng.Intn(len(next))]
		}
		b.WriteByte(byte('0' + current))
	}
	return b.String()
}
