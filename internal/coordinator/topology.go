package coordinator

import (
	"math"

	"github.com/dreamware/dbfs/internal/dbfserr"
)

// isPerfectSquare reports whether n is a perfect square, mirroring the
// distilled source's integer-sqrt check that gates every fleet-creation
// endpoint (§4.4, §7 ConfigurationError).
func isPerfectSquare(n int) bool {
	if n < 0 {
		return false
	}
	root := int(math.Sqrt(float64(n)))
	for _, candidate := range []int{root - 1, root, root + 1} {
		if candidate >= 0 && candidate*candidate == n {
			return true
		}
	}
	return false
}

// neighbors returns the four toroidal grid neighbors (up, down, left,
// right, with wraparound) of shard i on a side×side grid, in that order.
func neighbors(i, side int) [4]int {
	row, col := i/side, i%side
	up := ((row-1+side)%side)*side + col
	down := ((row+1)%side)*side + col
	left := row*side + (col-1+side)%side
	right := row*side + (col+1)%side
	return [4]int{up, down, left, right}
}

// neighborPairs enumerates every unordered neighbor pair on a side×side
// toroidal grid exactly once, the set topology wiring (§4.4 step 3) walks
// to place mirror-edge pairs.
func neighborPairs(numShards, side int) [][2]int {
	seen := make(map[[2]int]struct{})
	var pairs [][2]int
	for i := 0; i < numShards; i++ {
		for _, j := range neighbors(i, side) {
			key := [2]int{i, j}
			if i > j {
				key = [2]int{j, i}
			}
			if i == j {
				continue // a 1x1 torus is its own neighbor; no self pairing
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			pairs = append(pairs, key)
		}
	}
	return pairs
}

// samplePairsWithoutReplacement draws exactly count distinct pairs from the
// Cartesian product of left × right without replacement, the mechanism
// §4.4 step 3 uses to pick which far nodes get wired together, and fails
// with a ConfigurationError if count exceeds the product's size. pick(n)
// returns an index in [0, n) and is supplied by the caller so topology
// construction stays deterministic under a fixed seed.
func samplePairsWithoutReplacement(left, right []int, count int, pick func(n int) int) ([][2]int, error) {
	total := len(left) * len(right)
	if count > total {
		return nil, dbfserr.Configuration("need %d far-node pairings but only %d are available", count, total)
	}
	// Partial Fisher-Yates over the flattened index space: only the last
	// count positions are shuffled, and pairs are decoded from those
	// indices rather than materialized for the whole product.
	indices := make([]int, total)
	for i := range indices {
		indices[i] = i
	}
	for i := total - 1; i > 0 && i >= total-count; i-- {
		j := pick(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}
	out := make([][2]int, count)
	for k := 0; k < count; k++ {
		idx := indices[total-1-k]
		out[k] = [2]int{left[idx/len(right)], right[idx%len(right)]}
	}
	return out, nil
}
