package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
)

// Runner owns a loop and its classifier and feeds them from a tracker. All
// state mutation happens on the goroutine that calls Run or Step.
type Runner struct {
	loop       *Loop
	classifier *gesture.Classifier

	frames    int
	malformed int
}

func NewRunner(loop *Loop, classifier *gesture.Classifier) *Runner {
	return &Runner{loop: loop, classifier: classifier}
}

func (r *Runner) Loop() *Loop { return r.loop }

// Apply feeds one tracker result through the classifier.
func (r *Runner) Apply(res hand.Result) gesture.Update {
	r.frames++
	u, err := r.classifier.OnHandFrame(res)
	if err != nil {
		if errors.Is(err, dynamo.ErrMalformedLandmarks) {
			r.malformed++
		}
		log.Printf("sim: skipping frame: %v", err)
	}
	return u
}

func (r *Runner) Classifier() *gesture.Classifier { return r.classifier }

// Step applies res, when given, and then ticks once.
func (r *Runner) Step(res *hand.Result) {
	if res != nil {
		r.Apply(*res)
	}
	r.loop.Tick()
}

// Run ticks at cfg.TickRate and applies tracker results as they arrive. It
// stops when ctx is cancelled, the tracker closes, cfg.Duration elapses or
// cfg.MaxTicks is reached. A nil tracker only ticks.
func (r *Runner) Run(ctx context.Context, tracker hand.Tracker, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range r.loop.metrics {
		m.Reset()
	}

	ticker := time.NewTicker(cfg.TickRate)
	defer ticker.Stop()

	var results <-chan hand.Result
	if tracker != nil {
		results = tracker.Results()
	}

	var deadline <-chan time.Time
	if cfg.Duration > 0 {
		timer := time.NewTimer(cfg.Duration)
		defer timer.Stop()
		deadline = timer.C
	}

	start := time.Now()
	startTicks := r.loop.Ticks

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		case <-deadline:
			break loop
		case res, ok := <-results:
			if !ok {
				break loop
			}
			r.Apply(res)
		case <-ticker.C:
			r.loop.Tick()
			if cfg.MaxTicks > 0 && r.loop.Ticks-startTicks >= cfg.MaxTicks {
				break loop
			}
		}
	}

	res := r.Result()
	res.Elapsed = time.Since(start)
	if errors.Is(runErr, context.Canceled) {
		return res, nil
	}
	return res, runErr
}

// Result summarizes everything the runner has done so far.
func (r *Runner) Result() *Result {
	st := r.loop.State()
	return &Result{
		Ticks:     r.loop.Ticks,
		Frames:    r.frames,
		Switches:  st.Switches,
		Malformed: r.malformed,
		Template:  st.Template,
		Metrics:   r.loop.MetricValues(),
	}
}

func validateConfig(cfg Config) error {
	if cfg.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %v", cfg.TickRate)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %v", cfg.Duration)
	}
	if cfg.MaxTicks < 0 {
		return fmt.Errorf("max ticks must not be negative, got %d", cfg.MaxTicks)
	}
	return nil
}
