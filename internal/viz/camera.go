package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/handcloud/internal/particles"
)

// Camera is a perspective camera on the z axis looking at the origin.
type Camera struct {
	Distance float32
	FOV      float32 // vertical, degrees
	Near     float32
	Far      float32
	Zoom     float32
	Tilt     float32 // radians about x
}

func NewCamera(fov, distance float64) *Camera {
	return &Camera{
		Distance: float32(distance),
		FOV:      float32(fov),
		Near:     0.1,
		Far:      1000,
		Zoom:     1,
	}
}

func (c *Camera) ZoomIn()  { c.Zoom = float32(math.Min(10, float64(c.Zoom*1.2))) }
func (c *Camera) ZoomOut() { c.Zoom = float32(math.Max(0.1, float64(c.Zoom/1.2))) }

const (
	tiltStep = math.Pi / 24
	maxTilt  = math.Pi / 3
)

// TiltBy rotates the view about x, clamped to +-60 degrees.
func (c *Camera) TiltBy(d float32) {
	c.Tilt = float32(math.Max(-maxTilt, math.Min(maxTilt, float64(c.Tilt+d))))
}

// Eye is the camera position after zoom.
func (c *Camera) Eye() mgl32.Vec3 {
	return mgl32.Vec3{0, 0, c.Distance / c.Zoom}
}

func (c *Camera) View() mgl32.Mat4 {
	view := mgl32.LookAtV(c.Eye(), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	if c.Tilt != 0 {
		view = view.Mul4(mgl32.HomogRotate3DX(c.Tilt))
	}
	return view
}

func (c *Camera) Projection(width, height int) mgl32.Mat4 {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Projector maps world points to pixel coordinates for one frame.
type Projector struct {
	mvp           mgl32.Mat4
	width, height float32
}

// Frame combines model, view and projection for a viewport of the given size.
func (c *Camera) Frame(model mgl32.Mat4, width, height int) Projector {
	mvp := c.Projection(width, height).Mul4(c.View()).Mul4(model)
	return Projector{mvp: mvp, width: float32(width), height: float32(height)}
}

// Project returns screen coordinates with y growing downward and the
// normalized depth. ok is false behind the camera or off screen.
func (p Projector) Project(v mgl32.Vec3) (x, y, depth float32, ok bool) {
	clip := p.mvp.Mul4x1(v.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / w)
	x = (ndc.X() + 1) / 2 * p.width
	y = (1 - ndc.Y()) / 2 * p.height
	depth = ndc.Z()
	ok = x >= 0 && x < p.width && y >= 0 && y < p.height && depth <= 1
	return x, y, depth, ok
}

// Scale is the on-screen size in pixels of a world length at distance w
// from the eye, used to size sprites.
func (p Projector) Scale(v mgl32.Vec3, length float32) float32 {
	clip := p.mvp.Mul4x1(v.Vec4(1))
	if clip.W() <= 0 {
		return 0
	}
	return length * p.mvp.At(1, 1) / clip.W() * p.height / 2
}

const crossArm = 3

// RenderPointer draws a crosshair at the grasp point (x, y, 0) in model
// space. It reports whether the point was on screen.
func RenderPointer(c *Canvas, x, y float32, model mgl32.Mat4, cam *Camera) bool {
	proj := cam.Frame(model, c.SubWidth(), c.SubHeight())
	sx, sy, _, ok := proj.Project(mgl32.Vec3{x, y, 0})
	if !ok {
		return false
	}
	px, py := int(sx), int(sy)
	c.DrawLine(px-crossArm, py, px+crossArm, py)
	c.DrawLine(px, py-crossArm, px, py+crossArm)
	return true
}

// RenderCloud plots every visible particle of store on c.
func RenderCloud(c *Canvas, store *particles.Store, model mgl32.Mat4, cam *Camera) int {
	proj := cam.Frame(model, c.SubWidth(), c.SubHeight())
	pos := store.Positions
	drawn := 0
	for i := 0; i < store.Len(); i++ {
		j := 3 * i
		x, y, _, ok := proj.Project(mgl32.Vec3{pos[j], pos[j+1], pos[j+2]})
		if !ok {
			continue
		}
		c.Plot(int(x), int(y), store.Color(i))
		drawn++
	}
	return drawn
}
