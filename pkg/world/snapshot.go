package world

import (
	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/physics"
)

// Snapshot 世界状态的只读快照，可安全地交给其他 goroutine
type Snapshot struct {
	Tick       uint64           `json:"tick"`
	Bodies     []BodySnapshot   `json:"bodies"`
	Liquids    []LiquidSnapshot `json:"liquids"`
	Dispensers []EmitterState   `json:"dispensers"`
}

// BodySnapshot 刚体状态（引擎坐标）
type BodySnapshot struct {
	Entity   uint64  `json:"entity"`
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Fixtures int     `json:"fixtures"`
}

// LiquidSnapshot 粒子系统状态
type LiquidSnapshot struct {
	Entity    uint64  `json:"entity"`
	Radius    float64 `json:"radius"`
	Particles int     `json:"particles"`
	Alive     int     `json:"alive"`
}

// EmitterState 发射器状态
type EmitterState struct {
	Entity   uint64  `json:"entity"`
	Rate     float64 `json:"rate"`
	Launched int     `json:"launched"`
}

// nozzleKind 喷嘴刚体在快照中的类型名（几何上按台面处理）
const nozzleKind = "nozzle"

// Snapshot 采集当前状态
func (w *World) Snapshot() Snapshot {
	s := Snapshot{Tick: w.tick}

	for _, id := range w.Bodies() {
		bc, ok := ecs.GetComponent[*components.BodyComponent](w.entityManager, id)
		if !ok || bc.Body == nil {
			continue
		}
		c := physics.FromB2(bc.Body.GetWorldCenter())
		kind := bc.Kind.String()
		if bc.Nozzle {
			kind = nozzleKind
		}
		s.Bodies = append(s.Bodies, BodySnapshot{
			Entity:   uint64(id),
			Kind:     kind,
			X:        c.X(),
			Y:        c.Y(),
			Angle:    bc.Body.GetAngle(),
			Fixtures: len(physics.Fixtures(bc.Body)),
		})
	}

	for _, id := range w.ParticleSystems() {
		lc, ok := ecs.GetComponent[*components.LiquidComponent](w.entityManager, id)
		if !ok {
			continue
		}
		s.Liquids = append(s.Liquids, LiquidSnapshot{
			Entity:    uint64(id),
			Radius:    lc.System.Radius(),
			Particles: lc.System.ParticleCount(),
			Alive:     lc.System.AliveCount(),
		})
	}

	for _, id := range w.Dispensers() {
		emitter, ok := ecs.GetComponent[*components.EmitterComponent](w.entityManager, id)
		if !ok {
			continue
		}
		s.Dispensers = append(s.Dispensers, EmitterState{
			Entity:   uint64(id),
			Rate:     emitter.Rate,
			Launched: emitter.TotalLaunched,
		})
	}
	return s
}
