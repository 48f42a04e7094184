package systems

import "github.com/go-gl/mathgl/mgl32"

const (
	goldenGamma = 0x9E3779B97F4A7C15
	float01Unit = 4.6566128752457969e-10 // 2^-31
)

// Stream is a per-emitter xorshift64 generator seeded from the emitter's
// identity. Reads do not advance the state; call Advance between draws that
// must differ.
type Stream struct {
	state uint64
}

// NewStream seeds a stream from an entity index.
func NewStream(id uint32) Stream {
	return Stream{state: uint64(id) * goldenGamma}
}

// Advance steps the generator once.
func (s *Stream) Advance() {
	s.state ^= s.state << 13
	s.state ^= s.state >> 17
	s.state ^= s.state << 5
}

// Float01 returns a value in [0, 1] derived from the low 31 bits of the
// current state.
func (s Stream) Float01() float32 {
	return float32(s.state&0x7FFFFFFF) * float01Unit
}

// Vector01 returns a vector in [0, 1]^3. All three components are read from
// the same state and are therefore equal.
func (s Stream) Vector01() mgl32.Vec3 {
	return mgl32.Vec3{s.Float01(), s.Float01(), s.Float01()}
}

// State returns the raw generator state.
func (s Stream) State() uint64 {
	return s.state
}
