package sim

import (
	"time"

	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
)

// Metric accumulates a value over ticks.
type Metric interface {
	Name() string
	Observe(store *particles.Store, state *scene.State)
	Value() float64
	Reset()
}

// Observer is called after every tick.
type Observer interface {
	OnTick(tick int, state *scene.State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(tick int, state *scene.State)

func (f ObserverFunc) OnTick(tick int, state *scene.State) { f(tick, state) }

// Params controls how fast particles settle and how they are tinted.
type Params struct {
	TemplateAlpha float64
	GraspAlpha    float64
	RotationSpeed float64
	Warm          [2]float32
	Cool          [2]float32
}

func DefaultParams() Params {
	return Params{
		TemplateAlpha: 0.04,
		GraspAlpha:    0.08,
		RotationSpeed: 0.005,
		Warm:          [2]float32{1.0, 0.3},
		Cool:          [2]float32{0.2, 0.6},
	}
}

type Config struct {
	TickRate time.Duration
	Duration time.Duration
	MaxTicks int
}

type Result struct {
	Ticks     int
	Frames    int
	Switches  int
	Malformed int
	Template  shape.Template
	Elapsed   time.Duration
	Metrics   map[string]float64
}
