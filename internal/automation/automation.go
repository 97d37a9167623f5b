package automation

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/metrics"
	"github.com/san-kum/handcloud/internal/particles"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
	"github.com/san-kum/handcloud/internal/sim"
)

// DefaultFrameRate is the tracker rate assumed when a scenario omits one.
const DefaultFrameRate = 30

// Scenario defines a scripted gesture sequence
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
	FrameRate   int    `yaml:"frame_rate"`
	Steps       []Step `yaml:"steps"`
}

// Step holds one hand pose for Duration seconds. Pointer is the index
// fingertip in normalized image coordinates; when To is set the fingertip
// glides from Pointer to To over the step. Hidden steps report no hand.
type Step struct {
	Name     string      `yaml:"name"`
	Duration float64     `yaml:"duration"`
	Pointer  [2]float64  `yaml:"pointer,flow"`
	To       *[2]float64 `yaml:"to,flow"`
	Grasp    bool        `yaml:"grasp"`
	Pinch    bool        `yaml:"pinch"`
	Hidden   bool        `yaml:"hidden"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, st := range s.Steps {
		if st.Duration <= 0 {
			return fmt.Errorf("step %d: duration must be positive, got %v", i+1, st.Duration)
		}
	}
	if s.Template != "" {
		if _, err := shape.Parse(s.Template); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) rate() int {
	if s.FrameRate > 0 {
		return s.FrameRate
	}
	return DefaultFrameRate
}

// Duration is the total scripted time.
func (s *Scenario) Duration() time.Duration {
	total := 0.0
	for _, st := range s.Steps {
		total += st.Duration
	}
	return time.Duration(total * float64(time.Second))
}

// Frames synthesizes the tracker results of the scenario starting at start.
func (s *Scenario) Frames(start time.Time) []hand.Result {
	rate := s.rate()
	period := time.Second / time.Duration(rate)

	var out []hand.Result
	at := start
	for _, st := range s.Steps {
		n := int(math.Round(st.Duration * float64(rate)))
		if n < 1 {
			n = 1
		}
		for k := 0; k < n; k++ {
			res := hand.Result{At: at}
			if !st.Hidden {
				x, y := st.Pointer[0], st.Pointer[1]
				if st.To != nil && n > 1 {
					f := float64(k) / float64(n-1)
					x += (st.To[0] - x) * f
					y += (st.To[1] - y) * f
				}
				res.Hands = [][]hand.Landmark{hand.Synthesize(x, y, st.Grasp, st.Pinch)}
			}
			out = append(out, res)
			at = at.Add(period)
		}
	}
	return out
}

// ScriptTracker plays a scenario at its frame rate.
type ScriptTracker struct {
	*hand.ReplayTracker
}

func NewScriptTracker(s *Scenario) *ScriptTracker {
	return &ScriptTracker{hand.NewReplay(s.Frames(time.Now()), false)}
}

type RunOptions struct {
	Particles int
	Seed      int64
	Params    sim.Params
	Gesture   gesture.Config
	// Realtime plays the scenario through a ScriptTracker and a ticking
	// runner instead of one tick per frame.
	Realtime bool
	TickRate time.Duration
}

func DefaultRunOptions() RunOptions {
	return RunOptions{
		Particles: particles.DefaultCount,
		Seed:      1,
		Params:    sim.DefaultParams(),
		Gesture:   gesture.DefaultConfig(),
		TickRate:  time.Second / 60,
	}
}

// StepReport is the scene after a step finished.
type StepReport struct {
	Name     string
	Template shape.Template
	Grasping bool
	X, Y     float64
}

type Report struct {
	Name      string
	Ticks     int
	Frames    int
	Switches  int
	Malformed int
	Template  shape.Template
	Elapsed   time.Duration
	Metrics   map[string]float64
	Steps     []StepReport
	Results   []hand.Result
}

// RunScenario plays a scenario against a fresh cloud and reports how the
// scene evolved.
func RunScenario(ctx context.Context, s *Scenario, opts RunOptions) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if opts.Particles < 1 {
		opts.Particles = particles.DefaultCount
	}
	start := shape.Sphere
	if s.Template != "" {
		start, _ = shape.Parse(s.Template)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	store := particles.New(opts.Particles, particles.DefaultSize, particles.DefaultSpread, rng)
	state := scene.New(start)
	loop := sim.NewLoop(store, state, shape.NewGenerator(opts.Particles, rng), opts.Params)
	loop.AddMetric(metrics.NewRadius())
	loop.AddMetric(metrics.NewMotion())
	loop.AddMetric(metrics.NewWarmth(opts.Params.Warm))

	classifier := gesture.New(state, opts.Gesture)
	classifier.OnSwitch(func(t shape.Template) {
		log.Printf("automation: %s: %s", s.Name, gesture.Banner(t))
	})
	runner := sim.NewRunner(loop, classifier)

	report := &Report{Name: s.Name}
	began := time.Now()

	if opts.Realtime {
		tracker := NewScriptTracker(s)
		defer tracker.Close()
		res, err := runner.Run(ctx, tracker, sim.Config{TickRate: opts.TickRate})
		if err != nil {
			return nil, err
		}
		fill(report, res)
		report.Elapsed = res.Elapsed
		return report, nil
	}

	frames := s.Frames(began)
	report.Results = frames
	rate := s.rate()
	idx := 0
	for i, st := range s.Steps {
		n := int(math.Round(st.Duration * float64(rate)))
		if n < 1 {
			n = 1
		}
		for k := 0; k < n; k++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			runner.Step(&frames[idx])
			idx++
		}
		report.Steps = append(report.Steps, StepReport{
			Name:     stepName(i, st),
			Template: state.Template,
			Grasping: state.Grasping,
			X:        state.X,
			Y:        state.Y,
		})
	}

	fill(report, runner.Result())
	report.Elapsed = time.Since(began)
	return report, nil
}

func fill(r *Report, res *sim.Result) {
	r.Ticks = res.Ticks
	r.Frames = res.Frames
	r.Switches = res.Switches
	r.Malformed = res.Malformed
	r.Template = res.Template
	r.Metrics = res.Metrics
}

func stepName(i int, st Step) string {
	if st.Name != "" {
		return st.Name
	}
	return fmt.Sprintf("step %d", i+1)
}
