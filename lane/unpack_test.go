package lane

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// wordSource models an always-valid upstream FIFO: it presents the front
// word every tick and pops it on a granted transfer.
type wordSource[T Sample] struct {
	words [][]T
}

func (s *wordSource[T]) in(enable ChannelMask, readReq bool) UnpackIn[T] {
	in := UnpackIn[T]{Enable: enable, ReadReq: readReq}
	if len(s.words) > 0 {
		in.Word = s.words[0]
		in.Valid = true
	}
	return in
}

func (s *wordSource[T]) pop(out UnpackOut[T], valid bool) {
	if out.Ready && valid {
		s.words = s.words[1:]
	}
}

// driveUnpacker runs the engine with ReadReq held high against an
// always-valid source and returns the lane vectors of all granted reads.
func driveUnpacker[T Sample](t *testing.T, u *Unpacker[T], enable ChannelMask, words [][]T, ticks int) [][]T {
	t.Helper()
	src := &wordSource[T]{words: words}
	var got [][]T
	for tick := 0; tick < ticks; tick++ {
		in := src.in(enable, true)
		out := u.Tick(in)
		src.pop(out, in.Valid)
		if out.Valid {
			got = append(got, out.Lanes)
		}
	}
	return got
}

func TestUnpackerAllEnabled(t *testing.T) {
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	words := [][]uint16{
		{10, 11, 12, 13},
		{20, 21, 22, 23},
		{30, 31, 32, 33},
	}
	got := driveUnpacker(t, u, 0b1111, words, 6)

	require.Equal(t, words, got, "full-width expansion must reproduce the packed words")
}

func TestUnpackerAlternating(t *testing.T) {
	// enable=0101: each packed word carries two groups of two samples, and
	// each expanded vector places them on channels 0 and 2 with the disabled
	// channels zeroed.
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	words := [][]uint16{
		{10, 12, 20, 22},
		{30, 32, 40, 42},
	}
	got := driveUnpacker(t, u, 0b0101, words, 8)

	want := [][]uint16{
		{10, 0, 12, 0},
		{20, 0, 22, 0},
		{30, 0, 32, 0},
		{40, 0, 42, 0},
	}
	require.Equal(t, want, got)
}

func TestUnpackerNonDividingActiveCount(t *testing.T) {
	// Three of four channels: every fourth group spans two consecutive
	// packed words and must be assembled from the lookback buffer plus the
	// freshly fetched word, with no stall tick in between.
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	words := [][]uint16{
		{10, 11, 12, 20},
		{21, 22, 30, 31},
		{32, 40, 41, 42},
	}
	got := driveUnpacker(t, u, 0b0111, words, 8)

	want := [][]uint16{
		{10, 11, 12, 0},
		{20, 21, 22, 0},
		{30, 31, 32, 0},
		{40, 41, 42, 0},
	}
	require.Equal(t, want, got, "groups must be reassembled across word boundaries")
}

func TestUnpackerHandshakeTiming(t *testing.T) {
	// Tick-accurate trace for enable=0111: the engine primes the first word
	// during warmup, then requests refills on exact-boundary groups and one
	// group early when the coming group spans a boundary.
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	src := &wordSource[uint16]{words: [][]uint16{
		{10, 11, 12, 20},
		{21, 22, 30, 31},
		{32, 40, 41, 42},
	}}

	type step struct {
		valid, underflow, ready bool
	}
	want := []step{
		{false, true, false},  // reset tick
		{false, true, true},   // warmup: prime first word
		{false, true, false},  // warmup
		{true, false, false},  // group 0, within word 0
		{true, false, true},   // group 1 spans words 0/1: early fetch
		{true, false, true},   // group 2 spans words 1/2
		{true, false, false},  // group 3, within word 2
		{false, true, true},   // exact boundary, queue empty: underflow
	}

	for tick, w := range want {
		in := src.in(0b0111, true)
		out := u.Tick(in)
		src.pop(out, in.Valid)
		require.Equalf(t, w.valid, out.Valid, "tick %d: Valid", tick)
		require.Equalf(t, w.underflow, out.Underflow, "tick %d: Underflow", tick)
		require.Equalf(t, w.ready, out.Ready, "tick %d: Ready", tick)
	}
}

func TestUnpackerUnderflowZeroing(t *testing.T) {
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	// No upstream data at all: every read must underflow with zeroed lanes.
	for tick := 0; tick < 8; tick++ {
		out := u.Tick(UnpackIn[uint16]{Enable: 0b1111, ReadReq: true})
		require.Falsef(t, out.Valid, "tick %d", tick)
		require.Truef(t, out.Underflow, "tick %d", tick)
		require.Equalf(t, []uint16{0, 0, 0, 0}, out.Lanes, "tick %d: lanes must be zeroed", tick)
	}
}

func TestUnpackerReadReqGating(t *testing.T) {
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	src := &wordSource[uint16]{words: [][]uint16{
		{10, 11, 12, 13},
		{20, 21, 22, 23},
	}}

	// Warm up with reads deasserted; the first word still primes.
	for tick := 0; tick < 3; tick++ {
		in := src.in(0b1111, false)
		out := u.Tick(in)
		src.pop(out, in.Valid)
		require.False(t, out.Valid)
		require.False(t, out.Underflow, "no read requested, underflow must not fire")
	}

	// Idle steady ticks do not consume groups.
	in := src.in(0b1111, false)
	out := u.Tick(in)
	src.pop(out, in.Valid)
	require.False(t, out.Valid)

	in = src.in(0b1111, true)
	out = u.Tick(in)
	src.pop(out, in.Valid)
	require.True(t, out.Valid)
	require.Equal(t, []uint16{10, 11, 12, 13}, out.Lanes)
}

func TestUnpackerAllDisabledHaltsFlow(t *testing.T) {
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	for tick := 0; tick < 32; tick++ {
		out := u.Tick(UnpackIn[uint16]{
			Enable:  0,
			Word:    []uint16{1, 2, 3, 4},
			Valid:   true,
			ReadReq: true,
		})
		require.Falsef(t, out.Valid, "tick %d: valid with all channels disabled", tick)
		require.Falsef(t, out.Ready, "tick %d: fetch with all channels disabled", tick)
	}
}

func TestUnpackerReconfigurationDiscards(t *testing.T) {
	cfg := Config{Channels: 4, SamplesPerChannel: 1}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	src := &wordSource[uint16]{words: [][]uint16{
		{10, 12, 20, 22},
		{90, 91, 92, 93}, // stale word, must never surface after the switch
	}}
	for tick := 0; tick < 4; tick++ {
		in := src.in(0b0101, true)
		out := u.Tick(in)
		src.pop(out, in.Valid)
	}

	// Switch masks mid-word; the engine must stay silent for the full
	// startup window and then restart from freshly fetched words.
	fresh := &wordSource[uint16]{words: [][]uint16{{50, 51, 52, 53}}}
	var got [][]uint16
	for tick := 0; tick < 5; tick++ {
		in := fresh.in(0b1111, true)
		out := u.Tick(in)
		fresh.pop(out, in.Valid)
		if tick < 3 {
			require.Falsef(t, out.Valid, "tick %d after switch: inside startup window", tick)
		}
		if out.Valid {
			got = append(got, out.Lanes)
		}
	}
	require.Equal(t, [][]uint16{{50, 51, 52, 53}}, got)
}

func TestUnpackerMultipleSampleSlots(t *testing.T) {
	// N=2, S=2 with only channel 0 enabled: each packed word expands into
	// two ticks of channel 0's sample pair, channel 1 zeroed.
	cfg := Config{Channels: 2, SamplesPerChannel: 2}
	u, err := NewUnpacker[uint16](cfg)
	require.NoError(t, err)

	words := [][]uint16{{10, 11, 20, 21}}
	got := driveUnpacker(t, u, 0b01, words, 6)

	want := [][]uint16{
		{10, 11, 0, 0},
		{20, 21, 0, 0},
	}
	require.Equal(t, want, got)
}
