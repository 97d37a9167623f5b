package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/handcloud/internal/dynamo"
	"github.com/san-kum/handcloud/internal/gesture"
	"github.com/san-kum/handcloud/internal/hand"
	"github.com/san-kum/handcloud/internal/shape"
	"github.com/san-kum/handcloud/internal/sim"
)

const (
	DefaultCount         = 8000
	DefaultSize          = 0.08
	DefaultSpread        = 20.0
	DefaultTemplateAlpha = 0.04
	DefaultGraspAlpha    = 0.08
	DefaultRotation      = 0.005
	DefaultCooldown      = time.Second
	DefaultListen        = "127.0.0.1:5005"
	DefaultFPS           = 60
	DefaultDataDir       = ".handcloud"
)

type Config struct {
	Template  string          `yaml:"template"`
	Seed      int64           `yaml:"seed"`
	DataDir   string          `yaml:"data_dir"`
	Particles ParticlesConfig `yaml:"particles"`
	Motion    MotionConfig    `yaml:"motion"`
	Colors    ColorsConfig    `yaml:"colors"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Render    RenderConfig    `yaml:"render"`
}

type ParticlesConfig struct {
	Count  int     `yaml:"count"`
	Size   float32 `yaml:"size"`
	Spread float64 `yaml:"spread"`
}

type MotionConfig struct {
	TemplateAlpha float64 `yaml:"template_alpha"`
	GraspAlpha    float64 `yaml:"grasp_alpha"`
	RotationSpeed float64 `yaml:"rotation_speed"`
}

// ColorsConfig holds the red and green channels; blue never changes.
type ColorsConfig struct {
	Warm [2]float32 `yaml:"warm,flow"`
	Cool [2]float32 `yaml:"cool,flow"`
}

type GestureConfig struct {
	GraspThreshold float64       `yaml:"grasp_threshold"`
	PinchThreshold float64       `yaml:"pinch_threshold"`
	Cooldown       time.Duration `yaml:"cooldown"`
	ScaleX         float64       `yaml:"scale_x"`
	ScaleY         float64       `yaml:"scale_y"`
}

type TrackerConfig struct {
	hand.Options  `yaml:",inline"`
	CaptureWidth  int    `yaml:"capture_width"`
	CaptureHeight int    `yaml:"capture_height"`
	Listen        string `yaml:"listen"`
}

type RenderConfig struct {
	FPS     int     `yaml:"fps"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	FOV     float64 `yaml:"fov"`
	CameraZ float64 `yaml:"camera_z"`
	Theme   string  `yaml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Template: shape.Sphere.String(),
		DataDir:  DefaultDataDir,
		Particles: ParticlesConfig{
			Count:  DefaultCount,
			Size:   DefaultSize,
			Spread: DefaultSpread,
		},
		Motion: MotionConfig{
			TemplateAlpha: DefaultTemplateAlpha,
			GraspAlpha:    DefaultGraspAlpha,
			RotationSpeed: DefaultRotation,
		},
		Colors: ColorsConfig{
			Warm: [2]float32{1.0, 0.3},
			Cool: [2]float32{0.2, 0.6},
		},
		Gesture: GestureConfig{
			GraspThreshold: 0.08,
			PinchThreshold: 0.03,
			Cooldown:       DefaultCooldown,
			ScaleX:         30,
			ScaleY:         20,
		},
		Tracker: TrackerConfig{
			Options:       hand.DefaultOptions(),
			CaptureWidth:  640,
			CaptureHeight: 480,
			Listen:        DefaultListen,
		},
		Render: RenderConfig{
			FPS:     DefaultFPS,
			Width:   1280,
			Height:  720,
			FOV:     75,
			CameraZ: 15,
			Theme:   "cyberpunk",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	bad := func(field string, v any) error { return &dynamo.ConfigError{Field: field, Value: v} }

	if c.Particles.Count < 1 {
		return bad("particles.count", c.Particles.Count)
	}
	if c.Particles.Size <= 0 {
		return bad("particles.size", c.Particles.Size)
	}
	if c.Particles.Spread <= 0 {
		return bad("particles.spread", c.Particles.Spread)
	}
	if c.Motion.TemplateAlpha <= 0 || c.Motion.TemplateAlpha > 1 {
		return bad("motion.template_alpha", c.Motion.TemplateAlpha)
	}
	if c.Motion.GraspAlpha <= 0 || c.Motion.GraspAlpha > 1 {
		return bad("motion.grasp_alpha", c.Motion.GraspAlpha)
	}
	if c.Gesture.GraspThreshold <= 0 {
		return bad("gesture.grasp_threshold", c.Gesture.GraspThreshold)
	}
	if c.Gesture.PinchThreshold <= 0 {
		return bad("gesture.pinch_threshold", c.Gesture.PinchThreshold)
	}
	if c.Gesture.Cooldown < DefaultCooldown {
		return bad("gesture.cooldown", c.Gesture.Cooldown)
	}
	if c.Tracker.MaxHands < 1 {
		return bad("tracker.max_hands", c.Tracker.MaxHands)
	}
	if c.Render.FPS < 1 {
		return bad("render.fps", c.Render.FPS)
	}
	if _, err := shape.Parse(c.Template); err != nil {
		return err
	}
	return nil
}

// StartTemplate resolves the configured template, falling back to sphere.
func (c *Config) StartTemplate() shape.Template {
	t, err := shape.Parse(c.Template)
	if err != nil {
		return shape.Sphere
	}
	return t
}

// ResolvedSeed returns the configured seed, or a time-based one when it is zero.
func (c *Config) ResolvedSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

func (c *Config) SimParams() sim.Params {
	return sim.Params{
		TemplateAlpha: c.Motion.TemplateAlpha,
		GraspAlpha:    c.Motion.GraspAlpha,
		RotationSpeed: c.Motion.RotationSpeed,
		Warm:          c.Colors.Warm,
		Cool:          c.Colors.Cool,
	}
}

func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		GraspThreshold: c.Gesture.GraspThreshold,
		PinchThreshold: c.Gesture.PinchThreshold,
		Cooldown:       c.Gesture.Cooldown,
		ScaleX:         c.Gesture.ScaleX,
		ScaleY:         c.Gesture.ScaleY,
	}
}

func (c *Config) TickRate() time.Duration {
	return time.Second / time.Duration(c.Render.FPS)
}
