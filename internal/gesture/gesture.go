// Package gesture turns hand landmarks into pointer, grasp and pinch
// signals and applies them to the shared scene state.
package gesture

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
)

type Config struct {
	GraspThreshold float64
	PinchThreshold float64
	Cooldown       time.Duration
	ScaleX         float64
	ScaleY         float64
}

func DefaultConfig() Config {
	return Config{
		GraspThreshold: 0.08,
		PinchThreshold: 0.03,
		Cooldown:       time.Second,
		ScaleX:         30,
		ScaleY:         20,
	}
}

// Frame is what one hand says about the pointer and the two gestures.
type Frame struct {
	X, Y      float64
	Grasp     bool
	Pinch     bool
	GraspDist float64
	PinchDist float64
}

// Classify derives a Frame from a single hand. The pointer is mirrored so a
// hand moving left moves the cloud left.
func Classify(lms []hand.Landmark, cfg Config) (Frame, error) {
	if len(lms) < hand.NumLandmarks {
		return Frame{}, fmt.Errorf("%w: got %d points, want %d",
			dynamo.ErrMalformedLandmarks, len(lms), hand.NumLandmarks)
	}
	tip := lms[hand.IndexTip]
	f := Frame{
		X:         (0.5 - tip.X) * cfg.ScaleX,
		Y:         (0.5 - tip.Y) * cfg.ScaleY,
		GraspDist: planar(tip, lms[hand.IndexMCP]),
		PinchDist: planar(lms[hand.ThumbTip], tip),
	}
	f.Grasp = f.GraspDist < cfg.GraspThreshold
	f.Pinch = f.PinchDist < cfg.PinchThreshold
	return f, nil
}

func planar(a, b hand.Landmark) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Update describes what a hand frame changed.
type Update struct {
	Applied  bool
	Switched bool
	Template shape.Template
	Frame    Frame
}

// Classifier applies hand results to a scene. Like the scene it mutates, it
// belongs to one goroutine.
type Classifier struct {
	state    *scene.State
	cfg      Config
	onSwitch []func(shape.Template)
}

func New(state *scene.State, cfg Config) *Classifier {
	return &Classifier{state: state, cfg: cfg}
}

// OnSwitch registers fn to run after every accepted template change.
func (c *Classifier) OnSwitch(fn func(shape.Template)) {
	c.onSwitch = append(c.onSwitch, fn)
}

// OnHandFrame applies the first hand of res. Frames without hands leave the
// state untouched; a held pinch advances again once the cooldown has passed.
func (c *Classifier) OnHandFrame(res hand.Result) (Update, error) {
	lms, ok := res.First()
	if !ok {
		return Update{Template: c.state.Template}, nil
	}

	f, err := Classify(lms, c.cfg)
	if err != nil {
		return Update{Template: c.state.Template}, err
	}

	s := c.state
	s.X, s.Y = f.X, f.Y
	s.Grasping = f.Grasp
	s.Pinching = f.Pinch
	s.Seen++

	u := Update{Applied: true, Template: s.Template, Frame: f}
	if f.Pinch && s.CanSwitch(res.At, c.cfg.Cooldown) {
		u.Template = s.Advance(res.At)
		u.Switched = true
		for _, fn := range c.onSwitch {
			fn(u.Template)
		}
	}
	return u, nil
}

func (c *Classifier) State() *scene.State { return c.state }

// Banner is the mode line shown after a switch.
func Banner(t shape.Template) string {
	return "Current Template: " + t.Label()
}
