package lane

// This file provides the fixed interleave/deinterleave shuffle that converts
// lane vectors between channel-major order (all samples of channel 0, then
// channel 1, ...) and port order (slot 0 of every channel, then slot 1, ...).
// The permutation depends only on the configuration, never on the enable
// mask, so both tables are precomputed once at construction. Applying it is
// pure rewiring with no state and no latency.

// Shuffle holds the precomputed lane permutation tables for a configuration.
type Shuffle struct {
	// port[l] is the port index of channel-major lane l.
	port []int
}

// NewShuffle builds the shuffle tables for cfg.
// For lane l = c*S + s the port index is s*N + c; when S == 1 or N == 1 the
// permutation is the identity.
func NewShuffle(cfg Config) *Shuffle {
	n, s := cfg.Channels, cfg.SamplesPerChannel
	port := make([]int, cfg.Lanes())
	for c := 0; c < n; c++ {
		for slot := 0; slot < s; slot++ {
			port[c*s+slot] = slot*n + c
		}
	}
	return &Shuffle{port: port}
}

// NumLanes returns the lane count the shuffle was built for.
func (sh *Shuffle) NumLanes() int {
	return len(sh.port)
}

// Port returns the port index of channel-major lane l.
func (sh *Shuffle) Port(l int) int {
	return sh.port[l]
}

// Interleave permutes a channel-major lane vector into port order.
// src and dst must both have length P and must not alias.
func Interleave[T Sample](sh *Shuffle, src, dst []T) {
	for l, p := range sh.port {
		dst[p] = src[l]
	}
}

// Deinterleave permutes a port-order lane vector back to channel-major
// order. It is the exact inverse of Interleave.
// src and dst must both have length P and must not alias.
func Deinterleave[T Sample](sh *Shuffle, src, dst []T) {
	for l, p := range sh.port {
		dst[l] = src[p]
	}
}
