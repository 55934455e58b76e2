// Package lane implements a bidirectional lane compaction / expansion engine.
//
// A fixed set of channels each carries a fixed number of samples per tick.
// The pack engine gathers the samples of the currently enabled channels into
// dense packed words; the unpack engine expands packed words back out to
// per-channel lanes, zeroing disabled lanes. Both directions share one
// control plane: a latched enable mask, a prefix count of disabled lanes, and
// a modular rotation offset that advances by the active-lane count each tick.
//
// Basic usage:
//
//	cfg := lane.Config{Channels: 4, SamplesPerChannel: 1}
//	p, _ := lane.NewPacker[uint16](cfg)
//	out := p.Tick(lane.PackIn[uint16]{
//	    Enable:   0b0101,
//	    Lanes:    []uint16{10, 11, 12, 13},
//	    WriteReq: true,
//	})
//	if out.WriteEnable {
//	    // out.Word holds one completed packed word
//	}
//
// The engines are cycle-accurate: each Tick models one clock edge, and after
// any enable-mask change the pipelines resynchronize through a short startup
// window during which no output is produced.
package lane

import (
	"fmt"
	"unsafe"
)

// Sample is a constraint for the unsigned integer types a lane can carry.
// The sample width in bits is determined by the concrete type.
type Sample interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// SampleBits returns the width in bits of the sample type T.
func SampleBits[T Sample]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

// MaxChannels is the largest supported channel count, bounded by the
// ChannelMask representation.
const MaxChannels = 64

// Config holds the fixed instantiation parameters of an engine.
// Only the enable mask is mutable at run time; channel count and samples per
// channel are set once and derive the lane count.
type Config struct {
	// Channels is the number of logical channels N, 1..MaxChannels.
	Channels int

	// SamplesPerChannel is the number of sample slots S each channel
	// carries per tick, >= 1.
	SamplesPerChannel int
}

// Lanes returns the total lane count P = Channels * SamplesPerChannel.
func (c Config) Lanes() int {
	return c.Channels * c.SamplesPerChannel
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.Channels < 1 || c.Channels > MaxChannels {
		return fmt.Errorf("lane: channels must be in 1..%d, got %d", MaxChannels, c.Channels)
	}
	if c.SamplesPerChannel < 1 {
		return fmt.Errorf("lane: samples per channel must be >= 1, got %d", c.SamplesPerChannel)
	}
	return nil
}
