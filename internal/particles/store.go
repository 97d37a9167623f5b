// Package particles stores the cloud as flat float32 buffers laid out for
// direct upload to a renderer.
package particles

import (
	"math/rand"

	"github.com/san-kum/handcloud/internal/dynamo"
)

const (
	DefaultCount  = 8000
	DefaultSize   = 0.08
	DefaultSpread = 20.0
)

// Store owns position, color and size buffers for n particles.
// Positions and Colors hold three components per particle.
type Store struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32

	n       int
	dirty   bool
	version uint64
}

// New scatters n particles uniformly in a cube of side spread centred on the
// origin with random red/green and full blue.
func New(n int, size float32, spread float64, rng *rand.Rand) *Store {
	if n < 0 {
		n = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	s := &Store{
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
		Sizes:     make([]float32, n),
		n:         n,
		dirty:     true,
	}
	for i := 0; i < n; i++ {
		j := 3 * i
		s.Positions[j] = float32((rng.Float64() - 0.5) * spread)
		s.Positions[j+1] = float32((rng.Float64() - 0.5) * spread)
		s.Positions[j+2] = float32((rng.Float64() - 0.5) * spread)

		s.Colors[j] = rng.Float32()
		s.Colors[j+1] = rng.Float32()
		s.Colors[j+2] = 1.0

		s.Sizes[i] = size
	}
	return s
}

func (s *Store) Len() int { return s.n }

func (s *Store) Position(i int) dynamo.Vec3 {
	j := 3 * i
	return dynamo.Vec3{
		X: float64(s.Positions[j]),
		Y: float64(s.Positions[j+1]),
		Z: float64(s.Positions[j+2]),
	}
}

func (s *Store) SetPosition(i int, v dynamo.Vec3) {
	j := 3 * i
	s.Positions[j] = float32(v.X)
	s.Positions[j+1] = float32(v.Y)
	s.Positions[j+2] = float32(v.Z)
}

func (s *Store) Color(i int) dynamo.Color {
	j := 3 * i
	return dynamo.Color{R: s.Colors[j], G: s.Colors[j+1], B: s.Colors[j+2]}
}

// SetColor writes red and green only; blue is fixed at creation.
func (s *Store) SetColor(i int, r, g float32) {
	j := 3 * i
	s.Colors[j] = r
	s.Colors[j+1] = g
}

// MarkDirty flags the buffers as changed since the last upload.
func (s *Store) MarkDirty() {
	s.dirty = true
	s.version++
}

func (s *Store) Dirty() bool { return s.dirty }

// TakeDirty reports and clears the dirty flag.
func (s *Store) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// Version counts MarkDirty calls.
func (s *Store) Version() uint64 { return s.version }

// Buffers is a detached copy of the store contents.
type Buffers struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32
}

func (b Buffers) Len() int { return len(b.Sizes) }

func (s *Store) Snapshot() Buffers {
	return Buffers{
		Positions: append([]float32(nil), s.Positions...),
		Colors:    append([]float32(nil), s.Colors...),
		Sizes:     append([]float32(nil), s.Sizes...),
	}
}
