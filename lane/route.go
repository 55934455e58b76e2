package lane

// This file provides the routing network: the permutation that moves each
// enabled lane to or from its compacted position. The network is stateless;
// it is realized as a rank table precomputed from the prefix counts, plus
// gather/scatter apply operations parameterized by the rotation offset.
//
// For enabled lane p with prefix count counts[p], the active rank is
// rank = p - counts[p], and the packed slot of that lane in the current group
// is rotate + rank. Both directions use a doubled (2P) packed view so that a
// group reaching past a word boundary needs no modular wrap in the apply
// loop: slots [0,P) belong to the earlier word, slots [P,2P) to the later.

// Router routes enabled lanes between port order and packed slots for one
// latched enable vector.
type Router struct {
	lanes int
	// order[rank] is the port index of the enabled lane with that rank.
	order []int
}

// NewRouter builds the routing table for the given lane-enable vector.
func NewRouter(mask LaneMask) *Router {
	counts := PrefixCounts(mask)
	r := &Router{
		lanes: mask.NumLanes(),
		order: make([]int, mask.CountTrue()),
	}
	for p, bit := range mask.bits {
		if bit {
			r.order[ActiveRank(counts, p)] = p
		}
	}
	return r
}

// NumLanes returns the lane count P the router was built for.
func (r *Router) NumLanes() int {
	return r.lanes
}

// Active returns the number of enabled lanes, the group size per tick.
func (r *Router) Active() int {
	return len(r.order)
}

// Gather routes the enabled lanes of a port-order vector into contiguous
// packed slots starting at rotate. src has length P; dst has length 2P, with
// dst[0:P] receiving the slots of the word being completed and dst[P:2P] any
// spill into the following word. Slots outside the group window are left
// untouched.
func Gather[T Sample](r *Router, rotate int, src, dst []T) {
	for rank, p := range r.order {
		dst[rotate+rank] = src[p]
	}
}

// Scatter routes contiguous packed slots starting at rotate back to their
// enabled lanes in port order. src has length 2P, holding the earlier packed
// word at [0:P) and the following word at [P:2P); dst has length P. Disabled
// lanes are left untouched, so callers pass a zeroed dst to get the
// zero-padding contract.
func Scatter[T Sample](r *Router, rotate int, src, dst []T) {
	for rank, p := range r.order {
		dst[p] = src[rotate+rank]
	}
}
