package lane

// This file provides the prefix-sum unit of the control plane. For each lane
// it counts the disabled lanes below it; the routing network turns these
// counts into compaction ranks, and the total yields the active-lane count
// that steps the rotation accumulator.

// PrefixCounts computes, for the given lane-enable vector, the running count
// of disabled lanes. The result has length P+1:
//
//	counts[0] = 0
//	counts[i+1] = counts[i] + (lane i enabled ? 0 : 1)
//
// counts[P] is the total number of disabled lanes, so the enabled-lane count
// is P - counts[P].
func PrefixCounts(mask LaneMask) []int {
	counts := make([]int, len(mask.bits)+1)
	for i, bit := range mask.bits {
		counts[i+1] = counts[i]
		if !bit {
			counts[i+1]++
		}
	}
	return counts
}

// ActiveRank returns the compacted position of enabled lane p under the given
// prefix counts: the lane index minus the number of disabled lanes below it.
// The result is meaningful only for enabled lanes.
func ActiveRank(counts []int, p int) int {
	return p - counts[p]
}
