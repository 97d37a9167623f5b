package storage

import (
	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
)

// Trace is a session reduced to the signals the classifier looks at, one
// entry per recorded frame. Frames without a usable hand repeat zero values
// and have Hands set to 0.
type Trace struct {
	Times  []float64 `json:"t"`
	Hands  []int     `json:"hands"`
	IndexX []float64 `json:"index_x"`
	IndexY []float64 `json:"index_y"`
	Grasp  []float64 `json:"grasp_dist"`
	Pinch  []float64 `json:"pinch_dist"`
}

func NewTrace(results []hand.Result) *Trace {
	tr := &Trace{}
	if len(results) == 0 {
		return tr
	}
	origin := results[0].At
	cfg := gesture.DefaultConfig()

	for _, res := range results {
		var x, y, g, p float64
		hands := 0
		if lms, ok := res.First(); ok {
			if f, err := gesture.Classify(lms, cfg); err == nil {
				hands = len(res.Hands)
				x, y = lms[hand.IndexTip].X, lms[hand.IndexTip].Y
				g, p = f.GraspDist, f.PinchDist
			}
		}
		tr.Times = append(tr.Times, res.At.Sub(origin).Seconds())
		tr.Hands = append(tr.Hands, hands)
		tr.IndexX = append(tr.IndexX, x)
		tr.IndexY = append(tr.IndexY, y)
		tr.Grasp = append(tr.Grasp, g)
		tr.Pinch = append(tr.Pinch, p)
	}
	return tr
}

func (t *Trace) Len() int { return len(t.Times) }
