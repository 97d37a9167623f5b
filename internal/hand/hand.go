// Package hand defines hand-tracking results and the trackers that produce
// them.
//
// A [Tracker] runs in its own goroutine and publishes one [Result] per
// analysed camera frame. Landmarks follow the 21-point hand topology with
// coordinates normalized to the image: x and y in [0, 1], z relative to the
// wrist.
//
// The UDP tracker reads datagrams of the form
// {"hands":[{"score":0.9,"landmarks":[{"x":..,"y":..,"z":..}, ...]}]}.
// A hand without a score is taken as fully confident.
package hand

import "time"

// Landmark indices used by the gesture classifier.
const (
	Wrist    = 0
	ThumbTip = 4
	IndexMCP = 5
	IndexTip = 8

	NumLandmarks = 21
)

type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Result is one analysed frame. Hands is empty when nothing was detected.
type Result struct {
	Hands [][]Landmark
	At    time.Time
}

// First returns the first reported hand.
func (r Result) First() ([]Landmark, bool) {
	if len(r.Hands) == 0 {
		return nil, false
	}
	return r.Hands[0], true
}

// Options mirrors the detector configuration of the tracking sidecar.
type Options struct {
	MaxHands               int     `yaml:"max_hands" json:"max_hands"`
	ModelComplexity        int     `yaml:"model_complexity" json:"model_complexity"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence" json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence" json:"min_tracking_confidence"`
}

func DefaultOptions() Options {
	return Options{
		MaxHands:               1,
		ModelComplexity:        1,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
	}
}

// Tracker produces results until closed. The Results channel is closed when
// the tracker stops.
type Tracker interface {
	Results() <-chan Result
	Close() error
}
