package lane

// This file provides the unpack datapath: packed words arrive over a
// ready/valid handshake, and every granted read expands the next group of
// enabled lanes out to the full-width per-channel vector, zeroing disabled
// lanes. When the active-lane count does not divide the lane count a group
// can span two consecutive packed words; the engine keeps the previous word
// in a one-word lookback buffer and requests the next word one group early,
// so the crossing is routed without a stall cycle.

// UnpackIn is the unpack engine's input for one tick.
type UnpackIn[T Sample] struct {
	// Enable selects the active channels. A change forces resynchronization
	// and discards any partially drained word.
	Enable ChannelMask

	// Word is the upstream packed word, sampled on ticks where Valid and
	// the returned Ready are both set.
	Word []T

	// Valid asserts that Word carries real data this tick.
	Valid bool

	// ReadReq requests one expanded group this tick.
	ReadReq bool
}

// UnpackOut is the unpack engine's output for one tick.
type UnpackOut[T Sample] struct {
	// Lanes is the expanded lane vector in channel-major order, P samples.
	// Disabled lanes are zero. The whole vector is zero unless Valid.
	Lanes []T

	// Valid is set on ticks where a read was granted with real data.
	Valid bool

	// Underflow is set when a read was requested but could not be served,
	// either because upstream was not valid or because the engine is still
	// inside its startup window. Lanes is zeroed when it fires.
	Underflow bool

	// Ready requests the next packed word. A transfer happens on any tick
	// where Ready and UnpackIn.Valid are both set.
	Ready bool
}

// Unpacker expands dense packed words back into per-channel lanes.
// One Tick call models one clock edge.
type Unpacker[T Sample] struct {
	cfg    Config
	seq    *sequencer
	shuf   *Shuffle
	router *Router
	rot    *Rotator

	// One-word lookback: a fixed double buffer with an explicit live half.
	// buf[live] is the current packed word, buf[live^1] the previous one.
	buf  [2][]T
	live int

	refill bool // a new word must transfer before the next group
	span   bool // the next group crosses a word boundary

	view  []T // scratch: doubled packed view fed to the routing network
	ports []T // scratch: expanded group in port order
}

// unpackWarmup is the control-pipeline depth of the unpack network. The
// extended stage that feeds the lookback view adds one tick over the pack
// side.
const unpackWarmup = 2

// NewUnpacker returns an unpack engine for the given configuration.
func NewUnpacker[T Sample](cfg Config) (*Unpacker[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := cfg.Lanes()
	u := &Unpacker[T]{
		cfg:   cfg,
		seq:   newSequencer(cfg, unpackWarmup),
		shuf:  NewShuffle(cfg),
		rot:   NewRotator(p, p),
		view:  make([]T, 2*p),
		ports: make([]T, p),
	}
	u.buf[0] = make([]T, p)
	u.buf[1] = make([]T, p)
	return u, nil
}

// Config returns the engine's fixed configuration.
func (u *Unpacker[T]) Config() Config {
	return u.cfg
}

// Reset forces the engine back to its startup sequence, discarding the
// buffered packed words.
func (u *Unpacker[T]) Reset() {
	u.seq.reset()
	u.clearData()
}

// Tick advances the engine by one clock. Reads are granted only while the
// engine is past its startup window; the Ready output requests packed words,
// including the early request that primes the lookback path before a group
// spans two words.
func (u *Unpacker[T]) Tick(in UnpackIn[T]) UnpackOut[T] {
	lanes := u.cfg.Lanes()
	out := UnpackOut[T]{Lanes: make([]T, lanes)}

	warm := u.seq.tick(in.Enable)
	if !u.seq.ctrlActive() {
		u.clearData()
		out.Underflow = in.ReadReq
		return out
	}
	if warm {
		u.rebuild()
	}

	// Accept the next packed word. During warmup the first word is primed
	// unconditionally; in steady state fetches are gated by the read request.
	if u.refill && (in.ReadReq || !u.seq.dataActive()) {
		out.Ready = true
		if in.Valid {
			u.latch(in.Word)
			u.refill = false
		}
	}

	if !in.ReadReq {
		return out
	}
	if !u.seq.dataActive() || u.refill {
		out.Underflow = true
		return out
	}

	// Assemble the packed view: the earlier word in the low half, and for a
	// spanning group the freshly latched word in the high half.
	if u.span {
		copy(u.view[:lanes], u.buf[u.live^1])
		copy(u.view[lanes:], u.buf[u.live])
	} else {
		copy(u.view[:lanes], u.buf[u.live])
	}

	clear(u.ports)
	Scatter(u.router, u.rot.Offset(), u.view, u.ports)
	Deinterleave(u.shuf, u.ports, out.Lanes)
	out.Valid = true

	// Advance the rotation and derive the two refill conditions: an exact
	// word boundary, or an early fetch because the coming group spans one.
	exact := u.rot.AtExactBoundary()
	u.rot.Advance()
	u.span = u.rot.Spans()
	if exact || u.span {
		u.refill = true
	}
	return out
}

// rebuild derives the mask-dependent control state from the newly latched
// enable vector at the start of warmup.
func (u *Unpacker[T]) rebuild() {
	mask := u.cfg.LaneMask(u.seq.enableVector())
	u.router = NewRouter(mask)
	u.rot = NewRotator(u.cfg.Lanes(), u.router.Active())
	u.refill = true
	u.span = false
	clear(u.buf[0])
	clear(u.buf[1])
}

// latch stores a transferred packed word, rotating the previous one into the
// lookback half.
func (u *Unpacker[T]) latch(word []T) {
	u.live ^= 1
	clear(u.buf[u.live])
	copy(u.buf[u.live], word)
}

// clearData discards buffered words and rotation state on reset.
func (u *Unpacker[T]) clearData() {
	u.rot.Reset()
	u.refill = true
	u.span = false
	clear(u.buf[0])
	clear(u.buf[1])
}
