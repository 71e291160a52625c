package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/liquidbox/internal/liquid"
)

const sceneYAML = `
world:
  gravityY: 9.8
  bounds:
    north: -20
    east: 120
    south: 90
    west: -5
  pixelsPerUnit: 8
liquids:
  - gravityScale: 1
    density: 1.2
    radius: 0.4
items:
  - kind: surface
    x: 0
    y: 70
    width: 100
    height: 2
  - kind: Cup
    x: 40
    y: 50
    width: 8
    height: 10
sponges:
  - x: 20
    y: 40
    halfWidth: 3
    halfHeight: 1
dispensers:
  - x: 60
    y: 5
    flags: [viscous]
    color: [10, 20, 30, 255]
`

const sceneTOML = `
script = "demo.lua"

[world]
gravity_y = 9.8
pour_rate = 200.0

[world.bounds]
north = -20
east = 120
south = 90
west = -5

[step]
particle_iterations = 5

[[liquids]]
gravity_scale = 1.0
density = 1.2
radius = 0.4

[[items]]
kind = "box"
x = 10.0
y = 10.0
width = 2.0
height = 2.0

[[dispensers]]
x = 60.0
y = 5.0
`

func writeScene(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write scene: %v", err)
	}
	return path
}

func TestLoadSceneConfigYAML(t *testing.T) {
	cfg, err := LoadSceneConfig(writeScene(t, "scene.yaml", sceneYAML))
	if err != nil {
		t.Fatalf("LoadSceneConfig failed: %v", err)
	}

	if cfg.World.GravityY != 9.8 || cfg.World.Bounds.East != 120 || cfg.World.Bounds.North != -20 {
		t.Errorf("world mismatch: %+v", cfg.World)
	}
	// 未指定的字段保留默认值
	if cfg.Step.VelocityIterations != 8 || cfg.Step.TimeStep != 1.0/60 {
		t.Errorf("step defaults lost: %+v", cfg.Step)
	}
	if cfg.World.PourRate != 120 {
		t.Errorf("pourRate default lost: %v", cfg.World.PourRate)
	}
	if len(cfg.Items) != 2 || cfg.Items[1].Kind != "Cup" {
		t.Errorf("items mismatch: %+v", cfg.Items)
	}
	if len(cfg.Sponges) != 1 || cfg.Sponges[0].HalfWidth != 3 {
		t.Errorf("sponges mismatch: %+v", cfg.Sponges)
	}

	flags, err := cfg.Dispensers[0].ParticleFlags()
	if err != nil || flags != liquid.ViscousParticle {
		t.Errorf("flags = %v, %v", flags, err)
	}
	rgba, err := cfg.Dispensers[0].RGBA()
	if err != nil || rgba != [4]uint8{10, 20, 30, 255} {
		t.Errorf("color = %v, %v", rgba, err)
	}
}

func TestLoadSceneConfigTOML(t *testing.T) {
	cfg, err := LoadSceneConfig(writeScene(t, "scene.toml", sceneTOML))
	if err != nil {
		t.Fatalf("LoadSceneConfig failed: %v", err)
	}
	if cfg.Script != "demo.lua" {
		t.Errorf("script = %q", cfg.Script)
	}
	if cfg.World.PourRate != 200 || cfg.World.Bounds.South != 90 {
		t.Errorf("world mismatch: %+v", cfg.World)
	}
	if cfg.Step.ParticleIterations != 5 || cfg.Step.VelocityIterations != 8 {
		t.Errorf("step mismatch: %+v", cfg.Step)
	}
	if len(cfg.Liquids) != 1 || cfg.Liquids[0].Radius != 0.4 {
		t.Errorf("liquids mismatch: %+v", cfg.Liquids)
	}
	rgba, _ := cfg.Dispensers[0].RGBA()
	if rgba != DefaultDispenserColor {
		t.Errorf("default color expected, got %v", rgba)
	}
}

func TestSceneConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*SceneConfig)
		errContains string
	}{
		{"defaults", func(c *SceneConfig) {}, ""},
		{"inverted east/west", func(c *SceneConfig) { c.World.Bounds.East = c.World.Bounds.West }, "east"},
		{"inverted north/south", func(c *SceneConfig) { c.World.Bounds.South = c.World.Bounds.North - 1 }, "south"},
		{"zero time step", func(c *SceneConfig) { c.Step.TimeStep = 0 }, "timeStep"},
		{"no velocity iterations", func(c *SceneConfig) { c.Step.VelocityIterations = 0 }, "iterations"},
		{"zero radius", func(c *SceneConfig) {
			c.Liquids = []LiquidConfig{{Radius: 0}}
		}, "radius must be positive"},
		{"duplicate radius", func(c *SceneConfig) {
			c.Liquids = []LiquidConfig{{Radius: 0.5}, {Radius: 0.5}}
		}, "already used"},
		{"unknown item", func(c *SceneConfig) {
			c.Items = []ItemConfig{{Kind: "trampoline", Width: 1, Height: 1}}
		}, "unknown kind"},
		{"degenerate item", func(c *SceneConfig) {
			c.Items = []ItemConfig{{Kind: "box", Width: 0, Height: 1}}
		}, "size"},
		{"sponge without liquid", func(c *SceneConfig) {
			c.Sponges = []SpongeConfig{{HalfWidth: 1, HalfHeight: 1}}
		}, "require at least one liquid"},
		{"bad flag", func(c *SceneConfig) {
			c.Liquids = []LiquidConfig{{Radius: 1}}
			c.Dispensers = []DispenserConfig{{Flags: []string{"lava"}}}
		}, "unknown particle flag"},
		{"bad color", func(c *SceneConfig) {
			c.Liquids = []LiquidConfig{{Radius: 1}}
			c.Dispensers = []DispenserConfig{{Color: []int{1, 2, 300, 4}}}
		}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSceneConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadSceneConfigErrors(t *testing.T) {
	if _, err := LoadSceneConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := LoadSceneConfig(writeScene(t, "scene.json", "{}")); err == nil {
		t.Error("unsupported extension should fail")
	}
	if _, err := LoadSceneConfig(writeScene(t, "bad.yaml", "world: [")); err == nil {
		t.Error("malformed yaml should fail")
	}
	if _, err := ParseSceneConfig([]byte("{}"), "json"); err == nil {
		t.Error("unknown format should fail")
	}
}
