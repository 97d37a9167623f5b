package metrics

import (
	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
)

// Warmth is the fraction of particles currently tinted with the grasp color.
type Warmth struct {
	name string
	r, g float32
	last float64
}

func NewWarmth(warm [2]float32) *Warmth {
	return &Warmth{name: "warmth", r: warm[0], g: warm[1]}
}

func (w *Warmth) Name() string { return w.name }

func (w *Warmth) Observe(store *particles.Store, _ *scene.State) {
	n := store.Len()
	if n == 0 {
		return
	}
	c := store.Colors
	warm := 0
	for i := 0; i < n; i++ {
		if c[3*i] == w.r && c[3*i+1] == w.g {
			warm++
		}
	}
	w.last = float64(warm) / float64(n)
}

func (w *Warmth) Value() float64 { return w.last }

func (w *Warmth) Reset() { w.last = 0 }
