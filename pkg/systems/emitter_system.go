package systems

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
)

// EmitterSystem 推进所有发射器（世界步进的第 2 阶段）
type EmitterSystem struct {
	entityManager *ecs.EntityManager
	rng           *rand.Rand
}

// NewEmitterSystem 创建发射器系统
// rng 为 nil 时使用固定种子，保证回放确定
func NewEmitterSystem(em *ecs.EntityManager, rng *rand.Rand) *EmitterSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &EmitterSystem{
		entityManager: em,
		rng:           rng,
	}
}

// Update 按创建顺序推进每个发射器，返回本帧注入的粒子总数
func (s *EmitterSystem) Update(dt float64) int {
	emitted := 0
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](s.entityManager) {
		emitter, ok := ecs.GetComponent[*components.EmitterComponent](s.entityManager, id)
		if !ok {
			continue
		}
		emitted += s.Emit(emitter, dt)
	}
	return emitted
}

// Emit 推进单个发射器
//
// Rate 为 0 时只做记账，不注入粒子。
func (s *EmitterSystem) Emit(emitter *components.EmitterComponent, dt float64) int {
	if emitter.System == nil || emitter.Rate <= 0 {
		return 0
	}

	emitter.Remainder += emitter.Rate * dt

	halfSize := emitter.Size.Mul(0.5)
	pd := liquid.ParticleDef{
		Flags: emitter.Flags,
		Color: emitter.Color,
		Group: emitter.Group,
	}

	created := 0
	for emitter.Remainder > 1 {
		emitter.Remainder--

		angle := s.rng.Float64() * 2 * math.Pi
		distance := s.rng.Float64()
		unit := mgl64.Vec2{math.Sin(angle), math.Cos(angle)}

		pd.Position = mgl64.Vec2{
			emitter.Origin.X() + unit.X()*distance*halfSize.X(),
			emitter.Origin.Y() + unit.Y()*distance*halfSize.Y(),
		}
		pd.Velocity = emitter.Velocity
		if emitter.Speed != 0 {
			pd.Velocity = pd.Velocity.Add(unit.Mul(emitter.Speed))
		}

		if emitter.System.CreateParticle(pd) == liquid.InvalidParticleIndex {
			continue
		}
		emitter.TotalLaunched++
		created++
	}
	return created
}
