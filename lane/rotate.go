package lane

// This file provides the rotation accumulator: the single scheduling
// primitive of the control plane. Each active tick the offset advances by the
// active-lane count modulo P; the wrap marks a completed (pack) or exhausted
// (unpack) dense word. The lookahead views let the unpack engine detect one
// group early that an expansion will cross a word boundary.

// Rotator tracks the modular rotation offset for a fixed lane count and
// active-lane step.
type Rotator struct {
	lanes  int
	step   int
	offset int
}

// NewRotator returns a rotator over lanes with the given step.
// The step must be in 1..lanes.
func NewRotator(lanes, step int) *Rotator {
	return &Rotator{lanes: lanes, step: step}
}

// Offset returns the current rotation offset, always in [0, lanes).
func (r *Rotator) Offset() int {
	return r.offset
}

// Step returns the per-tick advance, the active-lane count.
func (r *Rotator) Step() int {
	return r.step
}

// Advance moves the offset forward by one group and reports whether the
// addition wrapped past the lane count, i.e. a word boundary was crossed or
// reached this tick.
func (r *Rotator) Advance() (wrapped bool) {
	sum := r.offset + r.step
	wrapped = sum >= r.lanes
	r.offset = sum % r.lanes
	return wrapped
}

// Next returns the offset after one Advance, without moving.
func (r *Rotator) Next() int {
	return (r.offset + r.step) % r.lanes
}

// AtExactBoundary reports whether the current group ends exactly on a word
// boundary: the next group starts in a word not yet presented.
func (r *Rotator) AtExactBoundary() bool {
	return r.offset+r.step == r.lanes
}

// Spans reports whether the group starting at the current offset crosses a
// word boundary, requiring lanes from two consecutive packed words.
func (r *Rotator) Spans() bool {
	return r.offset+r.step > r.lanes
}

// Reset returns the offset to zero.
func (r *Rotator) Reset() {
	r.offset = 0
}
