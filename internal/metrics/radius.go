package metrics

import (
	"math"

	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
)

// Radius is the mean distance of the cloud from the origin at the latest tick.
type Radius struct {
	name string
	last float64
}

func NewRadius() *Radius {
	return &Radius{name: "radius"}
}

func (r *Radius) Name() string { return r.name }

func (r *Radius) Observe(store *particles.Store, _ *scene.State) {
	n := store.Len()
	if n == 0 {
		return
	}
	p := store.Positions
	sum := 0.0
	for i := 0; i < n; i++ {
		x, y, z := float64(p[3*i]), float64(p[3*i+1]), float64(p[3*i+2])
		sum += math.Sqrt(x*x + y*y + z*z)
	}
	r.last = sum / float64(n)
}

func (r *Radius) Value() float64 { return r.last }

func (r *Radius) Reset() {
	r.last = 0
}
