package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestVec3_IsFinite(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec3
		valid bool
	}{
		{"zero", Vec3{}, true},
		{"normal", Vec3{1, -2, 3}, true},
		{"with NaN", Vec3{1, math.NaN(), 0}, false},
		{"with +Inf", Vec3{math.Inf(1), 0, 0}, false},
		{"with -Inf", Vec3{0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.valid {
				t.Errorf("IsFinite() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if sum := a.Add(b); sum != (Vec3{5, 7, 9}) {
		t.Errorf("Add failed: got %v", sum)
	}
	if diff := b.Sub(a); diff != (Vec3{3, 3, 3}) {
		t.Errorf("Sub failed: got %v", diff)
	}
	if scaled := a.Scale(2); scaled != (Vec3{2, 4, 6}) {
		t.Errorf("Scale failed: got %v", scaled)
	}
	if l := (Vec3{3, 4, 0}).Length(); math.Abs(l-5) > 1e-12 {
		t.Errorf("Length = %v, want 5", l)
	}
}

func TestVec3_Lerp(t *testing.T) {
	p := Vec3{10, -10, 0}
	got := p.Lerp(Vec3{}, 0.5)
	if got != (Vec3{5, -5, 0}) {
		t.Errorf("Lerp = %v, want {5 -5 0}", got)
	}
	if same := p.Lerp(Vec3{1, 1, 1}, 0); same != p {
		t.Errorf("Lerp with alpha 0 moved the point: %v", same)
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "particles.count", Value: 0}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigError should unwrap to ErrInvalidConfig")
	}
	want := "dynamo: invalid configuration: particles.count = 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
