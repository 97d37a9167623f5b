package sim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
)

// Loop advances the particle buffers one display frame at a time.
type Loop struct {
	store  *particles.Store
	state  *scene.State
	gen    *shape.Generator
	params Params

	metrics   []Metric
	observers []Observer

	Rotation float64
	Ticks    int
}

func NewLoop(store *particles.Store, state *scene.State, gen *shape.Generator, params Params) *Loop {
	return &Loop{
		store:     store,
		state:     state,
		gen:       gen,
		params:    params,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Store() *particles.Store { return l.store }
func (l *Loop) State() *scene.State     { return l.state }
func (l *Loop) Params() Params          { return l.params }

// graspChunk is the smallest slice of particles worth its own goroutine.
// The template branch stays serial because the generator shares its rng.
const graspChunk = 2048

// Tick smooths every particle toward its target once. While grasping the
// target is the pointer in the xy plane and depth is left alone; otherwise
// it is the active template.
func (l *Loop) Tick() {
	s := l.state
	n := l.store.Len()
	pos := l.store.Positions

	if s.Grasping {
		a := float32(l.params.GraspAlpha)
		px, py := float32(s.X), float32(s.Y)
		r, g := l.params.Warm[0], l.params.Warm[1]
		dynamo.ParallelFor(n, graspChunk, func(start, end int) {
			for i := start; i < end; i++ {
				j := 3 * i
				pos[j] += (px - pos[j]) * a
				pos[j+1] += (py - pos[j+1]) * a
				l.store.SetColor(i, r, g)
			}
		})
	} else {
		a := l.params.TemplateAlpha
		r, g := l.params.Cool[0], l.params.Cool[1]
		for i := 0; i < n; i++ {
			p := l.store.Position(i)
			l.store.SetPosition(i, p.Lerp(l.gen.Target(i, s.Template), a))
			l.store.SetColor(i, r, g)
		}
	}

	l.store.MarkDirty()
	l.Rotation += l.params.RotationSpeed
	l.Ticks++

	for _, m := range l.metrics {
		m.Observe(l.store, s)
	}
	for _, o := range l.observers {
		o.OnTick(l.Ticks, s)
	}
}

// Model is the model matrix for the current spin about the y axis.
func (l *Loop) Model() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(float32(l.Rotation))
}

// MetricValues reports every registered metric by name.
func (l *Loop) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(l.metrics))
	for _, m := range l.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
