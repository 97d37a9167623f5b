package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/scene"
	"github.com/san-kum/handcloud/internal/shape"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Particles.Count != 8000 {
		t.Errorf("expected 8000 particles, got %d", cfg.Particles.Count)
	}
	if cfg.Gesture.Cooldown != time.Second {
		t.Errorf("expected 1s cooldown, got %v", cfg.Gesture.Cooldown)
	}
	if cfg.StartTemplate() != shape.Sphere {
		t.Errorf("expected sphere, got %v", cfg.StartTemplate())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.TickRate() != time.Second/60 {
		t.Errorf("tick rate = %v, want 1/60s", cfg.TickRate())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handcloud.yaml")
	data := []byte(`
template: saturn
particles:
  count: 1200
gesture:
  cooldown: 1500ms
tracker:
  max_hands: 2
  listen: 0.0.0.0:6000
colors:
  warm: [0.9, 0.1]
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StartTemplate() != shape.Saturn {
		t.Errorf("template = %v, want saturn", cfg.StartTemplate())
	}
	if cfg.Particles.Count != 1200 {
		t.Errorf("count = %d, want 1200", cfg.Particles.Count)
	}
	if cfg.Particles.Size != DefaultSize {
		t.Errorf("size = %v, want default %v", cfg.Particles.Size, DefaultSize)
	}
	if cfg.Gesture.Cooldown != 1500*time.Millisecond {
		t.Errorf("cooldown = %v, want 1.5s", cfg.Gesture.Cooldown)
	}
	if cfg.Tracker.MaxHands != 2 || cfg.Tracker.Listen != "0.0.0.0:6000" {
		t.Errorf("tracker = %+v", cfg.Tracker)
	}
	if cfg.Tracker.MinDetectionConfidence != 0.5 {
		t.Errorf("min detection confidence = %v, want 0.5", cfg.Tracker.MinDetectionConfidence)
	}
	if cfg.Colors.Warm != [2]float32{0.9, 0.1} {
		t.Errorf("warm = %v, want [0.9 0.1]", cfg.Colors.Warm)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("snappy")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Gesture.Cooldown != cfg.Gesture.Cooldown || got.Motion != cfg.Motion {
		t.Errorf("round trip = %+v / %+v, want %+v / %+v", got.Gesture, got.Motion, cfg.Gesture, cfg.Motion)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"no particles", func(c *Config) { c.Particles.Count = 0 }, "particles.count"},
		{"alpha above one", func(c *Config) { c.Motion.TemplateAlpha = 1.5 }, "motion.template_alpha"},
		{"negative cooldown", func(c *Config) { c.Gesture.Cooldown = -time.Second }, "gesture.cooldown"},
		{"sub-second cooldown", func(c *Config) { c.Gesture.Cooldown = 500 * time.Millisecond }, "gesture.cooldown"},
		{"zero fps", func(c *Config) { c.Render.FPS = 0 }, "render.fps"},
		{"no hands", func(c *Config) { c.Tracker.MaxHands = 0 }, "tracker.max_hands"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			err := cfg.Validate()
			var ce *dynamo.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() = %v, want ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("field = %s, want %s", ce.Field, tt.field)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Template = "cube"
	if err := cfg.Validate(); !errors.Is(err, dynamo.ErrUnknownTemplate) {
		t.Errorf("Validate() = %v, want ErrUnknownTemplate", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("dense")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Particles.Count != 16000 {
		t.Errorf("expected 16000 particles, got %d", cfg.Particles.Count)
	}

	cfg.Particles.Count = 1
	if GetPreset("dense").Particles.Count != 16000 {
		t.Error("GetPreset returned shared config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	got := ListPresets()
	want := []string{"calm", "default", "dense", "snappy"}
	if len(got) != len(want) {
		t.Fatalf("ListPresets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ListPresets()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPresetsKeepCooldown(t *testing.T) {
	for _, name := range ListPresets() {
		cfg, err := Resolve(name, "")
		if err != nil {
			t.Fatalf("Resolve(%s): %v", name, err)
		}
		if cfg.Gesture.Cooldown < time.Second {
			t.Errorf("%s cooldown = %v, want at least 1s", name, cfg.Gesture.Cooldown)
		}
	}

	cfg, err := Resolve("snappy", "")
	if err != nil {
		t.Fatalf("Resolve(snappy): %v", err)
	}
	state := scene.New(shape.Sphere)
	c := gesture.New(state, cfg.GestureConfig())
	t0 := time.Unix(1000, 0)
	frames := []struct {
		at    time.Duration
		pinch bool
	}{
		{0, true},
		{100 * time.Millisecond, false},
		{500 * time.Millisecond, true},
		{600 * time.Millisecond, false},
	}
	for _, f := range frames {
		res := hand.Result{Hands: [][]hand.Landmark{hand.Synthesize(0.5, 0.5, false, f.pinch)}, At: t0.Add(f.at)}
		if _, err := c.OnHandFrame(res); err != nil {
			t.Fatalf("OnHandFrame: %v", err)
		}
	}
	if state.Switches != 1 || state.Template != shape.Heart {
		t.Errorf("switches = %d, template = %v, want one switch to heart", state.Switches, state.Template)
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.SimParams()
	if p.TemplateAlpha != 0.04 || p.GraspAlpha != 0.08 || p.Warm != [2]float32{1.0, 0.3} {
		t.Errorf("SimParams() = %+v", p)
	}
	g := cfg.GestureConfig()
	if g.ScaleX != 30 || g.ScaleY != 20 || g.Cooldown != time.Second {
		t.Errorf("GestureConfig() = %+v", g)
	}
	if cfg.ResolvedSeed() == 0 {
		t.Error("ResolvedSeed() = 0, want time based")
	}
	cfg.Seed = 7
	if cfg.ResolvedSeed() != 7 {
		t.Errorf("ResolvedSeed() = %d, want 7", cfg.ResolvedSeed())
	}
}

func TestResolveLayersFileOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handcloud.yaml")
	if err := os.WriteFile(path, []byte("particles:\n  count: 500\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Resolve("calm", path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Particles.Count != 500 {
		t.Errorf("count = %d, want 500 from file", cfg.Particles.Count)
	}
	if cfg.Motion.TemplateAlpha != 0.02 {
		t.Errorf("template alpha = %v, want 0.02 from preset", cfg.Motion.TemplateAlpha)
	}
	if Presets["calm"].Particles.Count != DefaultCount {
		t.Error("Resolve modified the preset table")
	}

	cfg, err = Resolve("", "")
	if err != nil || cfg.Particles.Count != DefaultCount {
		t.Errorf("Resolve defaults = %+v, %v", cfg, err)
	}

	if _, err := Resolve("loud", ""); err == nil {
		t.Error("expected error for unknown preset")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("particles:\n  count: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var cerr *dynamo.ConfigError
	if _, err := Resolve("default", bad); !errors.As(err, &cerr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}
