package flat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/handcloud/internal/viz"
)

func TestGlowImage(t *testing.T) {
	img := glowImage(glowSize)

	if a := img.RGBAAt(glowSize/2, glowSize/2).A; a < 200 {
		t.Errorf("centre alpha = %d, want near opaque", a)
	}
	if a := img.RGBAAt(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	inner := img.RGBAAt(glowSize/2, glowSize/2).A
	outer := img.RGBAAt(glowSize/2, glowSize/8).A
	if outer >= inner {
		t.Errorf("alpha does not fall off: inner %d outer %d", inner, outer)
	}
}

func TestSprite(t *testing.T) {
	proj := viz.NewCamera(75, 15).Frame(mgl32.Ident4(), 200, 100)

	x, y, r, ok := sprite(proj, mgl32.Vec3{}, 0.08)
	if !ok {
		t.Fatal("origin not visible")
	}
	if x != 100 || y != 50 {
		t.Errorf("centre = (%v, %v), want (100, 50)", x, y)
	}
	if r < 1 {
		t.Errorf("radius = %v, want at least 1", r)
	}

	_, _, rNear, ok := sprite(proj, mgl32.Vec3{Z: 10}, 0.5)
	_, _, rFar, _ := sprite(proj, mgl32.Vec3{Z: -10}, 0.5)
	if !ok || rNear <= rFar {
		t.Errorf("near radius %v should exceed far radius %v", rNear, rFar)
	}

	if _, _, _, ok := sprite(proj, mgl32.Vec3{Z: 20}, 0.08); ok {
		t.Error("point behind the eye reported visible")
	}
}
