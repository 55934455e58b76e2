// Copyright 2025 The hdl Authors. SPDX-License-Identifier: Apache-2.0

package lane

// This file provides the enable tracker and reset/startup sequencer shared by
// both engines. The routing network's control inputs are pipelined ahead of
// the data they steer, so after any reset or enable change the data path must
// stay suppressed until the control path has produced valid values. The
// sequencer makes that ordering explicit: an enumerated state with a fixed
// warmup depth, rather than scattered boolean flags.

// seqState is the startup state machine's mode.
type seqState int

const (
	// stateReset is forced by an external reset, an enable-vector change,
	// or an all-disabled enable vector. In-flight data is discarded.
	stateReset seqState = iota

	// stateWarmup holds the data path suppressed for a fixed number of
	// ticks while the control path computes its first valid values.
	stateWarmup

	// stateSteady runs both control and data pipelines.
	stateSteady
)

func (s seqState) String() string {
	switch s {
	case stateReset:
		return "reset"
	case stateWarmup:
		return "warmup"
	case stateSteady:
		return "steady"
	}
	return "unknown"
}

// sequencer latches the enable vector each tick and gates the pipelines.
type sequencer struct {
	channels int
	depth    int // warmup ticks before data is released

	state   seqState
	warmup  int
	latched ChannelMask
	primed  bool // latched holds a real sample
}

func newSequencer(cfg Config, depth int) *sequencer {
	return &sequencer{channels: cfg.Channels, depth: depth}
}

// tick latches the presented enable vector and advances the state machine by
// one clock. It returns true on the tick warmup begins, which is when the
// engines rebuild their mask-derived control state from the latched vector.
func (s *sequencer) tick(enable ChannelMask) (warm bool) {
	enable = enable.masked(s.channels)
	changed := !s.primed || enable != s.latched
	s.latched = enable
	s.primed = true

	if changed || enable == 0 {
		s.state = stateReset
		return false
	}

	switch s.state {
	case stateReset:
		s.state = stateWarmup
		s.warmup = s.depth
		return true
	case stateWarmup:
		s.warmup--
		if s.warmup <= 0 {
			s.state = stateSteady
		}
	}
	return false
}

// enableVector returns the currently latched enable vector.
func (s *sequencer) enableVector() ChannelMask {
	return s.latched
}

// ctrlActive reports whether the control pipeline is released from reset.
func (s *sequencer) ctrlActive() bool {
	return s.state != stateReset
}

// dataActive reports whether the data pipeline is released; output pulses and
// valid assertions may only occur while this holds.
func (s *sequencer) dataActive() bool {
	return s.state == stateSteady
}

// reset forces the state machine back to reset, as on a global reset pin.
func (s *sequencer) reset() {
	s.state = stateReset
	s.warmup = 0
	s.primed = false
	s.latched = 0
}
