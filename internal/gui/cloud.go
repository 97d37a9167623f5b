package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/handcloud/internal/particles"
)

// cloudCache holds the draw-ready copy of the particle buffers. It is
// refreshed only when the store reports a change.
type cloudCache struct {
	positions []mgl32.Vec3
	colors    []rl.Color
	sizes     []float32
	uploads   int
}

func (c *cloudCache) sync(s *particles.Store) bool {
	if !s.TakeDirty() {
		return false
	}
	n := s.Len()
	if len(c.positions) != n {
		c.positions = make([]mgl32.Vec3, n)
		c.colors = make([]rl.Color, n)
		c.sizes = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		j := 3 * i
		c.positions[i] = mgl32.Vec3{s.Positions[j], s.Positions[j+1], s.Positions[j+2]}
		c.colors[i] = toColor(s.Colors[j], s.Colors[j+1], s.Colors[j+2])
		c.sizes[i] = s.Sizes[i]
	}
	c.uploads++
	return true
}

func toColor(r, g, b float32) rl.Color {
	return rl.NewColor(channel(r), channel(g), channel(b), 220)
}

func channel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
