package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/types"
)

func TestTransformApply(t *testing.T) {
	tests := []struct {
		name string
		xf   Transform
		in   mgl64.Vec2
		want mgl64.Vec2
	}{
		{"identity", Identity, mgl64.Vec2{1, 2}, mgl64.Vec2{1, 2}},
		{"translate", Transform{Position: mgl64.Vec2{3, -1}}, mgl64.Vec2{1, 2}, mgl64.Vec2{4, 1}},
		{"rotate quarter", Transform{Angle: math.Pi / 2}, mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}},
		{"rotate then translate", Transform{Position: mgl64.Vec2{1, 1}, Angle: math.Pi}, mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.xf.Apply(tt.in)
			if !got.ApproxEqualThreshold(tt.want, 1e-9) {
				t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPolygonDrawAndDispose(t *testing.T) {
	verts := []mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}}
	p := NewPolygon(verts, BoxColor)

	// 修改原切片不影响多边形
	verts[0] = mgl64.Vec2{9, 9}
	if p.Vertices()[0] != (mgl64.Vec2{0, 0}) {
		t.Error("NewPolygon should copy vertices")
	}

	target := &RecordingTarget{}
	p.Draw(target, Identity)
	if target.Polygons != 1 {
		t.Fatalf("expected 1 polygon call, got %d", target.Polygons)
	}

	p.Dispose()
	if !p.Disposed() {
		t.Error("polygon should report disposed")
	}
	p.Draw(target, Identity)
	if target.Polygons != 1 {
		t.Error("disposed polygon must not draw")
	}
}

func TestNozzleSpriteFallback(t *testing.T) {
	chain := []mgl64.Vec2{{0, 0}, {0, 4}, {2, 4}, {2, 0}}
	n := NewNozzleSprite(chain, nil)

	want := [4]mgl64.Vec2{{0, 0}, {2, 0}, {2, 4}, {0, 4}}
	if n.Quad() != want {
		t.Errorf("Quad() = %v, want %v", n.Quad(), want)
	}

	target := &RecordingTarget{}
	n.Draw(target, Identity)
	if target.Polygons != 1 || target.Lines != 4 || target.Quads != 0 {
		t.Errorf("untextured nozzle draws polygon + outline, got %+v", *target)
	}

	n.Dispose()
	target.Reset()
	n.Draw(target, Identity)
	if target.Calls() != 0 {
		t.Error("disposed nozzle must not draw")
	}
}

func TestLiquidRendererSkipsZombies(t *testing.T) {
	sys := liquid.NewSystem(liquid.Def{Radius: 0.5})
	sys.CreateParticle(liquid.ParticleDef{Position: mgl64.Vec2{0, 0}})
	sys.CreateParticle(liquid.ParticleDef{Position: mgl64.Vec2{5, 0}})
	sys.SetParticleFlags(1, liquid.ZombieParticle)

	r := NewLiquidRenderer(sys.Radius())
	target := &RecordingTarget{}
	r.Step(target, sys)

	if target.Circles != 1 {
		t.Fatalf("expected a single batched call, got %d", target.Circles)
	}
	if target.Particles != 1 {
		t.Errorf("expected 1 live particle drawn, got %d", target.Particles)
	}
}

func TestLiquidRendererEmptySystem(t *testing.T) {
	sys := liquid.NewSystem(liquid.Def{Radius: 1})
	target := &RecordingTarget{}
	NewLiquidRenderer(1).Step(target, sys)
	if target.Calls() != 0 {
		t.Errorf("empty system should not draw, got %d calls", target.Calls())
	}
}

func TestCameraRoundTrip(t *testing.T) {
	bounds := types.Bounds{North: -100, East: 400, South: 300, West: -20}
	cam := NewCamera(bounds, 2)

	w, h := cam.ScreenSize()
	if w != 840 || h != 800 {
		t.Errorf("ScreenSize() = %dx%d, want 840x800", w, h)
	}

	// 西北角（渲染坐标 (-20,-100)，引擎坐标 (-20,100)）映射到屏幕原点
	if s := cam.ToScreen(mgl64.Vec2{-20, 100}); !s.ApproxEqualThreshold(mgl64.Vec2{0, 0}, 1e-9) {
		t.Errorf("north-west corner maps to %v", s)
	}

	p := mgl64.Vec2{37.5, -12}
	back := cam.ToWorld(cam.ToScreen(p))
	if !back.ApproxEqualThreshold(p, 1e-9) {
		t.Errorf("round trip %v -> %v", p, back)
	}

	r := cam.ToRenderSpace(cam.ToScreen(p))
	if !r.ApproxEqualThreshold(mgl64.Vec2{37.5, 12}, 1e-9) {
		t.Errorf("ToRenderSpace = %v, want (37.5, 12)", r)
	}
}

func TestDebugGrid(t *testing.T) {
	g := NewDebugGrid(types.Bounds{North: -10, East: 10, South: 10, West: -10}, 10)
	// 3 条竖线 + 3 条横线 + 2 条坐标轴
	if g.LineCount() != 8 {
		t.Errorf("LineCount() = %d, want 8", g.LineCount())
	}
	target := &RecordingTarget{}
	g.Draw(target)
	if target.Lines != 8 {
		t.Errorf("expected 8 lines drawn, got %d", target.Lines)
	}

	if NewDebugGrid(types.Bounds{}, 0).LineCount() != 0 {
		t.Error("zero spacing should produce no lines")
	}
}
