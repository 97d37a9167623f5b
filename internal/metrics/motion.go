package metrics

import (
	"math"

	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
)

// Motion is the mean distance a particle moved during the latest tick.
// The first observation only records positions.
type Motion struct {
	name string
	prev []float32
	last float64
}

func NewMotion() *Motion {
	return &Motion{name: "motion"}
}

func (m *Motion) Name() string { return m.name }

func (m *Motion) Observe(store *particles.Store, _ *scene.State) {
	p := store.Positions
	if len(m.prev) != len(p) {
		m.prev = append(m.prev[:0], p...)
		m.last = 0
		return
	}
	n := store.Len()
	if n == 0 {
		return
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := 3 * i
		dx := float64(p[j] - m.prev[j])
		dy := float64(p[j+1] - m.prev[j+1])
		dz := float64(p[j+2] - m.prev[j+2])
		sum += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	m.last = sum / float64(n)
	copy(m.prev, p)
}

func (m *Motion) Value() float64 { return m.last }

func (m *Motion) Reset() {
	m.prev = m.prev[:0]
	m.last = 0
}
