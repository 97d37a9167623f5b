package hand

// Geometry of a synthesized hand in normalized image units.
const (
	palmLength   = 0.15
	curledLength = 0.04
	wristOffset  = 0.30
	thumbSpread  = 0.12
	pinchGap     = 0.01
	fingerGap    = 0.04
)

// Synthesize builds a 21-point hand whose index fingertip sits at (x, y).
// curl folds the index finger onto its knuckle and pinch closes the thumb
// onto the fingertip. Used to drive the cloud from a mouse or a script.
func Synthesize(x, y float64, curl, pinch bool) []Landmark {
	lms := make([]Landmark, NumLandmarks)

	wrist := Landmark{X: x, Y: y + wristOffset}
	lms[Wrist] = wrist

	mcp := Landmark{X: x, Y: y + palmLength}
	if curl {
		mcp.Y = y + curledLength
	}
	tip := Landmark{X: x, Y: y}

	lms[IndexMCP] = mcp
	lms[6] = lerp(mcp, tip, 1.0/3)
	lms[7] = lerp(mcp, tip, 2.0/3)
	lms[IndexTip] = tip

	thumb := Landmark{X: x - thumbSpread, Y: y + thumbSpread}
	if pinch {
		thumb = Landmark{X: x + pinchGap/2, Y: y + pinchGap/2}
	}
	thumbBase := Landmark{X: x - thumbSpread/2, Y: wrist.Y - 0.05}
	lms[1] = lerp(wrist, thumbBase, 0.5)
	lms[2] = thumbBase
	lms[3] = lerp(thumbBase, thumb, 0.5)
	lms[ThumbTip] = thumb

	// Middle, ring and pinky sit beside the index finger and stay open.
	for f := 1; f <= 3; f++ {
		base := 5 + 4*f
		dx := float64(f) * fingerGap
		knuckle := Landmark{X: x + dx, Y: mcp.Y}
		if curl {
			knuckle.Y = y + palmLength
		}
		fingertip := Landmark{X: x + dx, Y: knuckle.Y - palmLength + 0.01*float64(f)}
		lms[base] = knuckle
		lms[base+1] = lerp(knuckle, fingertip, 1.0/3)
		lms[base+2] = lerp(knuckle, fingertip, 2.0/3)
		lms[base+3] = fingertip
	}
	return lms
}

func lerp(a, b Landmark, t float64) Landmark {
	return Landmark{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// Pointer synthesizes a hand under a window pointer at (px, py) in a w×h
// window. The x axis is mirrored the way a front-facing camera sees the
// user, so moving the pointer right moves the cloud right.
func Pointer(px, py, w, h float64, curl, pinch bool) []Landmark {
	if w <= 0 || h <= 0 {
		return Synthesize(0.5, 0.5, curl, pinch)
	}
	return Synthesize(clamp01(1-px/w), clamp01(py/h), curl, pinch)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
