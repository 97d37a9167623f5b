package sim

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
)

const testN = 400

func newTestLoop(t shape.Template) *Loop {
	store := particles.New(testN, particles.DefaultSize, particles.DefaultSpread, rand.New(rand.NewSource(1)))
	gen := shape.NewGenerator(testN, rand.New(rand.NewSource(2)))
	return NewLoop(store, scene.New(t), gen, DefaultParams())
}

func TestTickConvergesToSphere(t *testing.T) {
	l := newTestLoop(shape.Sphere)
	gen := shape.NewGenerator(testN, nil)

	prev := make([]float64, 3*testN)
	for i := 0; i < testN; i++ {
		p, q := l.store.Position(i), gen.Target(i, shape.Sphere)
		prev[3*i], prev[3*i+1], prev[3*i+2] = math.Abs(q.X-p.X), math.Abs(q.Y-p.Y), math.Abs(q.Z-p.Z)
	}

	for tick := 0; tick < 20; tick++ {
		l.Tick()
		for i := 0; i < testN; i++ {
			p, q := l.store.Position(i), gen.Target(i, shape.Sphere)
			errs := [3]float64{math.Abs(q.X - p.X), math.Abs(q.Y - p.Y), math.Abs(q.Z - p.Z)}
			for c, e := range errs {
				if prev[3*i+c] > 1e-3 && e >= prev[3*i+c] {
					t.Fatalf("tick %d particle %d axis %d: error %v did not shrink from %v", tick, i, c, e, prev[3*i+c])
				}
				prev[3*i+c] = e
			}
		}
	}
}

func TestTickSmoothingStep(t *testing.T) {
	l := newTestLoop(shape.Sphere)
	gen := shape.NewGenerator(testN, nil)

	before := l.store.Position(7)
	l.Tick()
	after := l.store.Position(7)
	want := before.Lerp(gen.Target(7, shape.Sphere), 0.04)

	if math.Abs(after.X-want.X) > 1e-5 || math.Abs(after.Y-want.Y) > 1e-5 || math.Abs(after.Z-want.Z) > 1e-5 {
		t.Errorf("position after tick = %v, want %v", after, want)
	}
}

func TestGraspColorsAndDepth(t *testing.T) {
	l := newTestLoop(shape.Sphere)
	l.state.Grasping = true
	l.state.X, l.state.Y = 3, -2

	depth := make([]float32, testN)
	for i := range depth {
		depth[i] = l.store.Positions[3*i+2]
	}
	sizes := append([]float32(nil), l.store.Sizes...)

	l.Tick()
	for i := 0; i < testN; i++ {
		c := l.store.Color(i)
		if c.R != 1.0 || c.G != 0.3 || c.B != 1.0 {
			t.Fatalf("grasp color %d = %v, want (1, 0.3, 1)", i, c)
		}
		if l.store.Positions[3*i+2] != depth[i] {
			t.Fatalf("grasp moved depth of %d", i)
		}
		if l.store.Sizes[i] != sizes[i] {
			t.Fatalf("size %d changed", i)
		}
	}

	l.state.Grasping = false
	l.Tick()
	for i := 0; i < testN; i++ {
		c := l.store.Color(i)
		if c.R != 0.2 || c.G != 0.6 || c.B != 1.0 {
			t.Fatalf("release color %d = %v, want (0.2, 0.6, 1)", i, c)
		}
	}
}

func TestGraspPullsTowardPointer(t *testing.T) {
	l := newTestLoop(shape.Heart)
	l.state.Grasping = true
	l.state.X, l.state.Y = 5, 5

	for i := 0; i < 200; i++ {
		l.Tick()
	}
	for i := 0; i < testN; i++ {
		p := l.store.Position(i)
		if math.Abs(p.X-5) > 1e-3 || math.Abs(p.Y-5) > 1e-3 {
			t.Fatalf("particle %d = %v, want near (5, 5)", i, p)
		}
	}
}

func TestTickBookkeeping(t *testing.T) {
	l := newTestLoop(shape.Saturn)
	l.store.TakeDirty()

	var seen []int
	l.AddObserver(ObserverFunc(func(tick int, _ *scene.State) { seen = append(seen, tick) }))

	for i := 0; i < 3; i++ {
		l.Tick()
	}
	if !l.store.TakeDirty() {
		t.Error("store not dirty after tick")
	}
	if l.Ticks != 3 {
		t.Errorf("Ticks = %d, want 3", l.Ticks)
	}
	if math.Abs(l.Rotation-0.015) > 1e-12 {
		t.Errorf("Rotation = %v, want 0.015", l.Rotation)
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Errorf("observer ticks = %v, want [1 2 3]", seen)
	}

	m := l.Model()
	want := float32(math.Cos(0.015))
	if math.Abs(float64(m.At(0, 0)-want)) > 1e-6 {
		t.Errorf("Model()[0][0] = %v, want %v", m.At(0, 0), want)
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string                           { return "count" }
func (c *countMetric) Observe(*particles.Store, *scene.State) { c.n++ }
func (c *countMetric) Value() float64                         { return float64(c.n) }
func (c *countMetric) Reset()                                 { c.n = 0 }

type chanTracker struct{ ch chan hand.Result }

func (c *chanTracker) Results() <-chan hand.Result { return c.ch }
func (c *chanTracker) Close() error                { return nil }

func TestRunnerStep(t *testing.T) {
	l := newTestLoop(shape.Sphere)
	r := NewRunner(l, gesture.New(l.State(), gesture.DefaultConfig()))

	res := hand.Result{Hands: [][]hand.Landmark{hand.Synthesize(0.5, 0.5, false, true)}, At: time.Unix(1, 0)}
	r.Step(&res)
	r.Step(nil)
	r.Step(&hand.Result{Hands: [][]hand.Landmark{{}}, At: time.Unix(2, 0)})

	got := r.Result()
	if got.Ticks != 3 || got.Frames != 2 || got.Switches != 1 || got.Malformed != 1 {
		t.Errorf("result = %+v, want 3 ticks, 2 frames, 1 switch, 1 malformed", got)
	}
	if got.Template != shape.Heart {
		t.Errorf("template = %v, want heart", got.Template)
	}
}

func TestRunnerRunStopsOnTrackerClose(t *testing.T) {
	l := newTestLoop(shape.Sphere)
	metric := &countMetric{}
	l.AddMetric(metric)
	r := NewRunner(l, gesture.New(l.State(), gesture.DefaultConfig()))

	tr := &chanTracker{ch: make(chan hand.Result, 2)}
	tr.ch <- hand.Result{Hands: [][]hand.Landmark{hand.Synthesize(0.2, 0.2, true, false)}, At: time.Now()}
	close(tr.ch)

	res, err := r.Run(context.Background(), tr, Config{TickRate: time.Millisecond, Duration: 5 * time.Second})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Frames != 1 {
		t.Errorf("frames = %d, want 1", res.Frames)
	}
	if !l.State().Grasping {
		t.Error("grasp from tracker not applied")
	}
	if res.Metrics["count"] != float64(res.Ticks) {
		t.Errorf("count metric = %v, want %d", res.Metrics["count"], res.Ticks)
	}
}

func TestRunnerMaxTicks(t *testing.T) {
	l := newTestLoop(shape.Fireworks)
	r := NewRunner(l, gesture.New(l.State(), gesture.DefaultConfig()))

	res, err := r.Run(context.Background(), nil, Config{TickRate: time.Millisecond, MaxTicks: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Ticks != 5 {
		t.Errorf("ticks = %d, want 5", res.Ticks)
	}
}

func TestRunnerCancel(t *testing.T) {
	l := newTestLoop(shape.Sphere)
	r := NewRunner(l, gesture.New(l.State(), gesture.DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, nil, Config{TickRate: time.Hour}); err != nil {
		t.Errorf("cancelled run error = %v, want nil", err)
	}
}

func TestRunnerInvalidConfig(t *testing.T) {
	l := newTestLoop(shape.Sphere)
	r := NewRunner(l, gesture.New(l.State(), gesture.DefaultConfig()))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero tick rate", Config{TickRate: 0}},
		{"negative duration", Config{TickRate: time.Millisecond, Duration: -1}},
		{"negative max ticks", Config{TickRate: time.Millisecond, MaxTicks: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Run(context.Background(), nil, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
