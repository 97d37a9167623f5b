package gui

import (
	"math/rand"
	"testing"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/particles"
)

func TestCloudCacheSyncsOnlyWhenDirty(t *testing.T) {
	store := particles.New(3, 0.1, 10, rand.New(rand.NewSource(1)))
	var c cloudCache

	if !c.sync(store) {
		t.Fatal("new store should be dirty")
	}
	if c.sync(store) {
		t.Error("clean store synced again")
	}
	if c.uploads != 1 {
		t.Errorf("uploads = %d, want 1", c.uploads)
	}

	store.SetPosition(1, dynamo.Vec3{X: 1, Y: 2, Z: 3})
	store.SetColor(1, 1, 0)
	store.MarkDirty()
	if !c.sync(store) {
		t.Fatal("dirty store not synced")
	}
	if p := c.positions[1]; p.X() != 1 || p.Y() != 2 || p.Z() != 3 {
		t.Errorf("position = %v", p)
	}
	if col := c.colors[1]; col.R != 255 || col.G != 0 || col.B != 255 {
		t.Errorf("color = %+v", col)
	}
	if c.sizes[1] != 0.1 {
		t.Errorf("size = %v", c.sizes[1])
	}
}

func TestChannel(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{3, 255},
	}
	for _, tt := range tests {
		if got := channel(tt.in); got != tt.want {
			t.Errorf("channel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampZoom(t *testing.T) {
	if clampZoom(0) != zoomMin || clampZoom(100) != zoomMax || clampZoom(1) != 1 {
		t.Error("zoom not clamped to range")
	}
}
