package lane

// This file provides the pack datapath: a full-width lane vector comes in
// every accepted tick, the enabled lanes are routed to contiguous slots of an
// accumulator register, and a completed packed word is emitted with a
// one-tick write pulse whenever the rotation accumulator wraps. Lanes routed
// past the wrap seed the fresh accumulator, so active-lane counts that do not
// divide the lane count are handled without stalling.

// PackIn is the pack engine's input for one tick.
type PackIn[T Sample] struct {
	// Enable selects the active channels. A change forces resynchronization
	// and discards any partially accumulated word.
	Enable ChannelMask

	// Lanes is the full-width input vector in channel-major order; it must
	// hold P samples. Disabled lanes are ignored.
	Lanes []T

	// WriteReq asserts that Lanes carries data to consume this tick.
	WriteReq bool

	// Overflow is the downstream consumer's overflow status. The engine
	// passes it through unmodified; it is the caller's responsibility to
	// deassert WriteReq while downstream is full.
	Overflow bool
}

// PackOut is the pack engine's output for one tick.
type PackOut[T Sample] struct {
	// Word is the completed packed word; its content is defined only on
	// ticks where WriteEnable is set.
	Word []T

	// WriteEnable pulses for exactly one tick per completed word.
	WriteEnable bool

	// Overflow mirrors PackIn.Overflow.
	Overflow bool
}

// Packer accumulates the samples of enabled channels into dense packed words.
// One Tick call models one clock edge.
type Packer[T Sample] struct {
	cfg    Config
	seq    *sequencer
	shuf   *Shuffle
	router *Router
	rot    *Rotator

	acc    []T // output accumulator, one packed word
	ports  []T // scratch: input vector in port order
	routed []T // scratch: doubled gather window
	input  []T // scratch: clamped copy of the input vector
}

// packWarmup is the control-pipeline depth of the pack network: the prefix
// stages feeding the always two-wide mux tree settle in a single tick.
const packWarmup = 1

// NewPacker returns a pack engine for the given configuration.
func NewPacker[T Sample](cfg Config) (*Packer[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := cfg.Lanes()
	return &Packer[T]{
		cfg:    cfg,
		seq:    newSequencer(cfg, packWarmup),
		shuf:   NewShuffle(cfg),
		rot:    NewRotator(p, p),
		acc:    make([]T, p),
		ports:  make([]T, p),
		routed: make([]T, 2*p),
		input:  make([]T, p),
	}, nil
}

// Config returns the engine's fixed configuration.
func (p *Packer[T]) Config() Config {
	return p.cfg
}

// Reset forces the engine back to its startup sequence, discarding any
// partially accumulated word.
func (p *Packer[T]) Reset() {
	p.seq.reset()
	p.rot.Reset()
	clear(p.acc)
}

// Tick advances the engine by one clock. Input is consumed only while the
// engine is past its startup window and WriteReq is asserted; the returned
// WriteEnable pulses on the tick a packed word completes.
func (p *Packer[T]) Tick(in PackIn[T]) PackOut[T] {
	out := PackOut[T]{Overflow: in.Overflow}

	warm := p.seq.tick(in.Enable)
	if !p.seq.ctrlActive() {
		// Reset: any in-flight accumulation is invalid.
		p.rot.Reset()
		clear(p.acc)
		return out
	}
	if warm {
		p.rebuild()
	}
	if !p.seq.dataActive() || !in.WriteReq {
		return out
	}

	lanes := p.cfg.Lanes()
	clear(p.input)
	copy(p.input, in.Lanes)
	Interleave(p.shuf, p.input, p.ports)

	off := p.rot.Offset()
	hi := off + p.router.Active()
	Gather(p.router, off, p.ports, p.routed)

	if !p.rot.Advance() {
		copy(p.acc[off:hi], p.routed[off:hi])
		return out
	}

	// Word boundary: finish the accumulator, pulse, and seed the next word
	// with any lanes routed past the wrap.
	copy(p.acc[off:lanes], p.routed[off:lanes])
	out.Word = make([]T, lanes)
	copy(out.Word, p.acc)
	out.WriteEnable = true

	clear(p.acc)
	copy(p.acc[:hi-lanes], p.routed[lanes:hi])
	return out
}

// rebuild derives the mask-dependent control state from the newly latched
// enable vector at the start of warmup.
func (p *Packer[T]) rebuild() {
	mask := p.cfg.LaneMask(p.seq.enableVector())
	p.router = NewRouter(mask)
	p.rot = NewRotator(p.cfg.Lanes(), p.router.Active())
	clear(p.acc)
}
