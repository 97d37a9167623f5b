// Package scene holds the mode state shared by the gesture classifier and
// the integration loop. A State is owned by a single goroutine.
package scene

import (
	"time"

	"github.com/san-kum/handcloud/internal/shape"
)

type State struct {
	Template   shape.Template
	LastSwitch time.Time

	// Pointer in world units.
	X, Y float64

	Grasping bool
	Pinching bool

	Switches int
	Seen     int
}

func New(t shape.Template) *State {
	return &State{Template: t}
}

// CanSwitch reports whether a pinch at now may advance the template.
func (s *State) CanSwitch(now time.Time, cooldown time.Duration) bool {
	return s.LastSwitch.IsZero() || now.Sub(s.LastSwitch) >= cooldown
}

// Advance moves to the next template and stamps the switch time.
func (s *State) Advance(now time.Time) shape.Template {
	s.Template = s.Template.Next()
	s.LastSwitch = now
	s.Switches++
	return s.Template
}

// Snapshot is a value copy for display.
func (s *State) Snapshot() State {
	return *s
}
