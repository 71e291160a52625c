package liquid

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func newTestSystem() *System {
	return NewSystem(Def{Radius: 0.5, Density: 1.2, GravityScale: 1})
}

func TestCreateParticleGroupLattice(t *testing.T) {
	s := newTestSystem()

	// stride = 0.75 → 2/0.75 = 2.67 → 3 列 × 3 行
	g := s.CreateParticleGroup(GroupDef{
		Flags:    WallParticle,
		Position: mgl64.Vec2{10, -5},
		HalfSize: mgl64.Vec2{1, 1},
		Color:    color.RGBA{R: 200, A: 255},
	})

	if g.ParticleCount() != 9 {
		t.Fatalf("expected 9 particles, got %d", g.ParticleCount())
	}
	if s.ParticleCount() != 9 {
		t.Fatalf("system count: expected 9, got %d", s.ParticleCount())
	}

	// 点阵关于中心对称
	var sum mgl64.Vec2
	for i, p := range s.PositionBuffer() {
		sum = sum.Add(p)
		if s.GetParticleFlags(i) != WallParticle {
			t.Errorf("particle %d flags = %v, want WallParticle", i, s.GetParticleFlags(i))
		}
		if s.GroupOf(i) != g {
			t.Errorf("particle %d should belong to the group", i)
		}
	}
	center := sum.Mul(1.0 / 9)
	if !center.ApproxEqualThreshold(mgl64.Vec2{10, -5}, 1e-9) {
		t.Errorf("lattice center = %v, want (10,-5)", center)
	}
}

func TestCreateParticleGroupEmpty(t *testing.T) {
	s := newTestSystem()
	g := s.CreateParticleGroup(GroupDef{Position: mgl64.Vec2{1, 1}})
	if g.ParticleCount() != 0 || s.ParticleCount() != 0 {
		t.Errorf("group without half size should be empty")
	}
	if len(s.Groups()) != 1 {
		t.Errorf("empty group should still be registered")
	}
}

func TestCreateParticleMaxCount(t *testing.T) {
	s := NewSystem(Def{Radius: 1, MaxCount: 2})
	if s.CreateParticle(ParticleDef{}) != 0 || s.CreateParticle(ParticleDef{}) != 1 {
		t.Fatal("first two particles should be created")
	}
	if idx := s.CreateParticle(ParticleDef{}); idx != InvalidParticleIndex {
		t.Errorf("expected InvalidParticleIndex, got %d", idx)
	}
}

func TestNewSystemRejectsZeroRadius(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero radius")
		}
	}()
	NewSystem(Def{Radius: 0})
}

// TestZombieCompactedOnNextStep 标记 Zombie 不改变数量，下一次 Step 才移除
func TestZombieCompactedOnNextStep(t *testing.T) {
	s := newTestSystem()
	g := s.CreateParticleGroup(GroupDef{})
	for i := 0; i < 4; i++ {
		s.CreateParticle(ParticleDef{Position: mgl64.Vec2{float64(i) * 10, 0}, Group: g})
	}

	s.SetParticleFlags(1, s.GetParticleFlags(1)|ZombieParticle)
	s.SetParticleFlags(3, s.GetParticleFlags(3)|ZombieParticle)

	if s.ParticleCount() != 4 {
		t.Fatalf("flagging must not change count, got %d", s.ParticleCount())
	}
	if s.AliveCount() != 2 {
		t.Errorf("AliveCount() = %d, want 2", s.AliveCount())
	}

	s.Step(1.0/60, mgl64.Vec2{}, 0, nil)

	if s.ParticleCount() != 2 {
		t.Fatalf("expected 2 particles after compaction, got %d", s.ParticleCount())
	}
	if g.ParticleCount() != 2 {
		t.Errorf("group count = %d, want 2", g.ParticleCount())
	}
	// 剩余粒子保持原有顺序
	if s.PositionBuffer()[0].X() != 0 || s.PositionBuffer()[1].X() != 20 {
		t.Errorf("unexpected survivors: %v", s.PositionBuffer())
	}
}

func TestStepGravity(t *testing.T) {
	s := NewSystem(Def{Radius: 0.5, GravityScale: 2})
	s.CreateParticle(ParticleDef{Position: mgl64.Vec2{0, 0}})
	wall := s.CreateParticle(ParticleDef{Flags: WallParticle, Position: mgl64.Vec2{100, 0}})

	dt := 0.1
	s.Step(dt, mgl64.Vec2{0, -10}, 0, nil)

	// v = g·scale·dt = -2, p = v·dt = -0.2
	p := s.PositionBuffer()[0]
	if math.Abs(p.Y()+0.2) > 1e-9 {
		t.Errorf("particle y = %v, want -0.2", p.Y())
	}
	if v := s.VelocityBuffer()[0]; math.Abs(v.Y()+2) > 1e-9 {
		t.Errorf("particle vy = %v, want -2", v.Y())
	}
	if s.PositionBuffer()[wall] != (mgl64.Vec2{100, 0}) {
		t.Error("wall particle must not move")
	}
}

func TestStepRelaxSeparatesOverlap(t *testing.T) {
	s := newTestSystem()
	s.CreateParticle(ParticleDef{Position: mgl64.Vec2{0, 0}})
	s.CreateParticle(ParticleDef{Position: mgl64.Vec2{0.2, 0}})

	s.Step(1.0/60, mgl64.Vec2{}, 4, nil)

	d := s.PositionBuffer()[1].Sub(s.PositionBuffer()[0]).Len()
	if d < 1-1e-6 {
		t.Errorf("particles still overlap, distance = %v", d)
	}
}

func TestStepColliderBlocksPenetration(t *testing.T) {
	s := NewSystem(Def{Radius: 0.1, GravityScale: 1})
	s.CreateParticle(ParticleDef{Position: mgl64.Vec2{0, 0.05}, Velocity: mgl64.Vec2{1, -10}})

	floor := ColliderFunc(func(p mgl64.Vec2) bool { return p.Y() < 0 })
	s.Step(0.1, mgl64.Vec2{}, 0, floor)

	p := s.PositionBuffer()[0]
	if p.Y() < 0 {
		t.Errorf("particle penetrated floor: %v", p)
	}
	// 水平方向继续滑动
	if p.X() <= 0 {
		t.Errorf("particle should slide along the floor, x = %v", p.X())
	}
	if v := s.VelocityBuffer()[0]; v.Y() != 0 {
		t.Errorf("blocked axis velocity should be zero, got %v", v.Y())
	}
}

func TestParseFlag(t *testing.T) {
	if f, ok := ParseFlag("wall"); !ok || f != WallParticle {
		t.Error("wall should parse")
	}
	if _, ok := ParseFlag("lava"); ok {
		t.Error("unknown flag should not parse")
	}
}

// thinFloor 厚度 0.05 的地板，顶面 y=0.05
type thinFloor struct{}

func (thinFloor) Blocked(p mgl64.Vec2) bool { return p.Y() >= 0 && p.Y() <= 0.05 }

func (thinFloor) Sweep(from, to mgl64.Vec2) (Hit, bool) {
	const top = 0.05
	if from.Y() < top || to.Y() >= top {
		return Hit{}, false
	}
	t := (from.Y() - top) / (from.Y() - to.Y())
	x := from.X() + t*(to.X()-from.X())
	return Hit{Point: mgl64.Vec2{x, top}, Normal: mgl64.Vec2{0, 1}}, true
}

func TestStepSweepStopsFastParticle(t *testing.T) {
	s := NewSystem(Def{Radius: 0.1, GravityScale: 1})
	s.CreateParticle(ParticleDef{Position: mgl64.Vec2{0, 1}, Velocity: mgl64.Vec2{3, -120}})

	s.Step(1.0/60, mgl64.Vec2{}, 0, thinFloor{})

	p := s.PositionBuffer()[0]
	if p.Y() < 0.05 {
		t.Fatalf("particle tunnelled through floor: %v", p)
	}
	if p.Y() > 0.05+1e-3 {
		t.Errorf("particle should rest on the floor, y = %v", p.Y())
	}
	// 切向位移保留
	if p.X() <= 0.01 {
		t.Errorf("particle should keep sliding along the floor, x = %v", p.X())
	}

	// 第二步起点已在地板上方，竖直位移被完全吸收
	s.Step(1.0/60, mgl64.Vec2{}, 0, thinFloor{})
	if p := s.PositionBuffer()[0]; p.Y() < 0.05 {
		t.Fatalf("particle tunnelled on second step: %v", p)
	}
	if v := s.VelocityBuffer()[0]; math.Abs(v.Y()) > 1 {
		t.Errorf("vertical velocity should be absorbed, got %v", v.Y())
	}
}

func TestGridCellsBoundedDuringLongFall(t *testing.T) {
	const count = 50
	s := NewSystem(Def{Radius: 0.5, GravityScale: 1})
	for i := 0; i < count; i++ {
		s.CreateParticle(ParticleDef{Position: mgl64.Vec2{float64(i) * 3, 0}})
	}

	for step := 1; step <= 1000; step++ {
		s.Step(1.0/60, mgl64.Vec2{0, -10}, 1, nil)
		if n := len(s.grid.cells); n > 2*count {
			t.Fatalf("step %d: grid holds %d cells for %d particles", step, n, count)
		}
	}
}
