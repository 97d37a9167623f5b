package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/particles"
)

func newStore(n int) *particles.Store {
	return particles.New(n, particles.DefaultSize, particles.DefaultSpread, rand.New(rand.NewSource(1)))
}

func TestRadius(t *testing.T) {
	s := newStore(2)
	s.SetPosition(0, dynamo.Vec3{X: 3, Y: 4})
	s.SetPosition(1, dynamo.Vec3{Z: -1})

	r := NewRadius()
	r.Observe(s, nil)
	if got := r.Value(); math.Abs(got-3) > 1e-9 {
		t.Errorf("Value() = %v, want 3", got)
	}
	r.Reset()
	if r.Value() != 0 {
		t.Errorf("Value() after Reset = %v, want 0", r.Value())
	}
}

func TestMotion(t *testing.T) {
	s := newStore(2)
	s.SetPosition(0, dynamo.Vec3{})
	s.SetPosition(1, dynamo.Vec3{})

	m := NewMotion()
	m.Observe(s, nil)
	if m.Value() != 0 {
		t.Errorf("first Value() = %v, want 0", m.Value())
	}

	s.SetPosition(0, dynamo.Vec3{X: 2})
	m.Observe(s, nil)
	if got := m.Value(); math.Abs(got-1) > 1e-9 {
		t.Errorf("Value() = %v, want 1", got)
	}

	m.Observe(s, nil)
	if m.Value() != 0 {
		t.Errorf("still Value() = %v, want 0", m.Value())
	}
}

func TestWarmth(t *testing.T) {
	tests := []struct {
		name string
		warm int
		want float64
	}{
		{"none", 0, 0},
		{"quarter", 1, 0.25},
		{"all", 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(4)
			for i := 0; i < 4; i++ {
				s.SetColor(i, 0.2, 0.6)
			}
			for i := 0; i < tt.warm; i++ {
				s.SetColor(i, 1.0, 0.3)
			}
			w := NewWarmth([2]float32{1.0, 0.3})
			w.Observe(s, nil)
			if got := w.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTremor(t *testing.T) {
	const rate = 30.0
	signal := make([]float64, 300)
	for i := range signal {
		signal[i] = 0.5 + 0.01*math.Sin(2*math.Pi*6*float64(i)/rate)
	}

	freq, share := Tremor(signal, rate)
	if math.Abs(freq-6) > rate/float64(len(signal)) {
		t.Errorf("freq = %v, want ~6 Hz", freq)
	}
	if share <= 0 || share > 1 {
		t.Errorf("share = %v, want in (0, 1]", share)
	}

	if f, s := Tremor(make([]float64, 50), rate); f != 0 || s != 0 {
		t.Errorf("flat signal = %v, %v, want 0, 0", f, s)
	}
	if f, _ := Tremor([]float64{1, 2}, rate); f != 0 {
		t.Errorf("short signal freq = %v, want 0", f)
	}
}
