package lane

// This file provides the enable-mask data model. A ChannelMask selects whole
// channels; Config.LaneMask replicates it across each channel's sample slots
// to form the per-lane enable vector the control plane operates on.
//
// Lane masks live in port order (sample slot major): port p = s*N + c for
// channel c and slot s. The Interleave shuffle converts lane vectors between
// channel-major order and port order.

// ChannelMask is a bitset of enabled channels. Bit c corresponds to channel c.
type ChannelMask uint64

// Enabled reports whether channel c is enabled.
func (m ChannelMask) Enabled(c int) bool {
	if c < 0 || c >= MaxChannels {
		return false
	}
	return m&(1<<c) != 0
}

// Count returns the number of enabled channels among the first n.
func (m ChannelMask) Count(n int) int {
	count := 0
	for c := 0; c < n && c < MaxChannels; c++ {
		if m.Enabled(c) {
			count++
		}
	}
	return count
}

// masked truncates the mask to the first n channels.
func (m ChannelMask) masked(n int) ChannelMask {
	if n >= MaxChannels {
		return m
	}
	return m & (1<<n - 1)
}

// LaneMask is a per-lane enable vector in port order.
//
// LaneMask instances should not be built directly; use Config.LaneMask so the
// channel-to-lane replication stays consistent with the shuffle tables.
type LaneMask struct {
	bits []bool
}

// LaneMask expands a channel mask to the P-lane enable vector, replicating
// each channel bit across its sample slots.
func (c Config) LaneMask(m ChannelMask) LaneMask {
	bits := make([]bool, c.Lanes())
	for p := range bits {
		bits[p] = m.Enabled(p % c.Channels)
	}
	return LaneMask{bits: bits}
}

// NumLanes returns the number of lanes in this mask.
func (m LaneMask) NumLanes() int {
	return len(m.bits)
}

// Enabled reports whether lane p is enabled.
func (m LaneMask) Enabled(p int) bool {
	return p >= 0 && p < len(m.bits) && m.bits[p]
}

// CountTrue returns the number of enabled lanes.
func (m LaneMask) CountTrue() int {
	count := 0
	for _, bit := range m.bits {
		if bit {
			count++
		}
	}
	return count
}

// AnyTrue returns true if at least one lane is enabled.
func (m LaneMask) AnyTrue() bool {
	for _, bit := range m.bits {
		if bit {
			return true
		}
	}
	return false
}

// AllFalse returns true if no lane is enabled.
func (m LaneMask) AllFalse() bool {
	return !m.AnyTrue()
}
