package systems

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
)

func newTestEmitter(em *ecs.EntityManager, rate float64) (*components.EmitterComponent, *liquid.System) {
	sys := liquid.NewSystem(liquid.Def{Radius: 0.5, Density: 1, GravityScale: 1})
	group := sys.CreateParticleGroup(liquid.GroupDef{})
	emitter := &components.EmitterComponent{
		System:   sys,
		Group:    group,
		Origin:   mgl64.Vec2{10, -10},
		Size:     mgl64.Vec2{2, 4},
		Velocity: mgl64.Vec2{0, -120},
		Rate:     rate,
		Color:    color.RGBA{R: 10, G: 20, B: 200, A: 255},
		Flags:    liquid.ViscousParticle,
	}
	id := em.CreateEntity()
	ecs.AddComponent(em, id, emitter)
	return emitter, sys
}

func TestEmitterDormantAtZeroRate(t *testing.T) {
	em := ecs.NewEntityManager()
	emitter, sys := newTestEmitter(em, 0)
	s := NewEmitterSystem(em, rand.New(rand.NewSource(7)))

	for i := 0; i < 100; i++ {
		if n := s.Update(1.0 / 60); n != 0 {
			t.Fatalf("dormant emitter emitted %d particles", n)
		}
	}
	if sys.ParticleCount() != 0 || emitter.Remainder != 0 {
		t.Errorf("dormant emitter changed state: count=%d remainder=%v", sys.ParticleCount(), emitter.Remainder)
	}
}

func TestEmitterRateAccumulates(t *testing.T) {
	em := ecs.NewEntityManager()
	emitter, sys := newTestEmitter(em, 25)
	s := NewEmitterSystem(em, rand.New(rand.NewSource(7)))

	// 25 粒子/秒 × 0.1 秒 = 2.5 个单位：发射 2 个，余 0.5
	n := s.Update(0.1)
	if n != 2 {
		t.Fatalf("expected 2 particles, got %d", n)
	}
	if sys.ParticleCount() != 2 || emitter.TotalLaunched != 2 {
		t.Errorf("count=%d launched=%d", sys.ParticleCount(), emitter.TotalLaunched)
	}
	if emitter.Remainder < 0.499 || emitter.Remainder > 0.501 {
		t.Errorf("remainder = %v, want ~0.5", emitter.Remainder)
	}

	// 余量跨帧累积
	if n := s.Update(0.01); n != 0 {
		t.Errorf("0.75 units should not emit, got %d particles", n)
	}
	if n := s.Update(0.1); n != 3 {
		t.Errorf("expected 3 particles from 3.25 units, got %d", n)
	}
}

func TestEmitterParticleTemplate(t *testing.T) {
	em := ecs.NewEntityManager()
	emitter, sys := newTestEmitter(em, 600)
	s := NewEmitterSystem(em, rand.New(rand.NewSource(3)))
	s.Update(0.1)

	if sys.ParticleCount() == 0 {
		t.Fatal("expected particles")
	}
	half := emitter.Size.Mul(0.5)
	for i, p := range sys.PositionBuffer() {
		d := p.Sub(emitter.Origin)
		// 落在以 Origin 为中心、半轴为 half 的椭圆内
		if (d.X()/half.X())*(d.X()/half.X())+(d.Y()/half.Y())*(d.Y()/half.Y()) > 1+1e-9 {
			t.Errorf("particle %d at %v outside emitter ellipse", i, p)
		}
		if sys.VelocityBuffer()[i] != emitter.Velocity {
			t.Errorf("particle %d velocity %v, want %v", i, sys.VelocityBuffer()[i], emitter.Velocity)
		}
		if sys.GetParticleFlags(i) != liquid.ViscousParticle {
			t.Errorf("particle %d flags %v", i, sys.GetParticleFlags(i))
		}
		if sys.ColorBuffer()[i] != emitter.Color {
			t.Errorf("particle %d color %v", i, sys.ColorBuffer()[i])
		}
		if sys.GroupOf(i) != emitter.Group {
			t.Errorf("particle %d not in emitter group", i)
		}
	}
}

func TestEmitterSpeedSpreadsVelocity(t *testing.T) {
	em := ecs.NewEntityManager()
	emitter, sys := newTestEmitter(em, 120)
	emitter.Speed = 5
	emitter.Velocity = mgl64.Vec2{}
	NewEmitterSystem(em, rand.New(rand.NewSource(11))).Update(0.1)

	for i, v := range sys.VelocityBuffer() {
		if l := v.Len(); l < 5-1e-9 || l > 5+1e-9 {
			t.Errorf("particle %d speed %v, want 5", i, l)
		}
	}
}

func TestEmitterDeterministicWithSeed(t *testing.T) {
	run := func() []mgl64.Vec2 {
		em := ecs.NewEntityManager()
		_, sys := newTestEmitter(em, 300)
		NewEmitterSystem(em, rand.New(rand.NewSource(42))).Update(0.1)
		return append([]mgl64.Vec2(nil), sys.PositionBuffer()...)
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("length mismatch %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("particle %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}
