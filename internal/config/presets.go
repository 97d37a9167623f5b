package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"calm": with(func(c *Config) {
		c.Motion.TemplateAlpha = 0.02
		c.Motion.GraspAlpha = 0.04
		c.Motion.RotationSpeed = 0.002
	}),
	"snappy": with(func(c *Config) {
		c.Motion.TemplateAlpha = 0.1
		c.Motion.GraspAlpha = 0.2
	}),
	"dense": with(func(c *Config) {
		c.Particles.Count = 16000
		c.Particles.Size = 0.05
	}),
}

func with(edit func(*Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve layers a config file over a named preset. An empty preset means
// "default" and an empty path skips the file.
func Resolve(preset, path string) (*Config, error) {
	if preset == "" {
		preset = "default"
	}
	cfg := GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, ListPresets())
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
