package world

import (
	"github.com/ByteArena/box2d"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/physics"
	"github.com/decker502/liquidbox/pkg/types"
)

// Bounds 返回世界边界
func (w *World) Bounds() types.Bounds {
	return w.cfg.Bounds
}

// Tick 返回已执行的 Step 次数
func (w *World) Tick() uint64 {
	return w.tick
}

// Engine 返回物理引擎
func (w *World) Engine() *physics.Engine {
	return w.engine
}

// Ground 返回地面锚点（Destroy 之后为 nil）
func (w *World) Ground() *box2d.B2Body {
	return w.ground
}

// BodyCount 返回物品刚体数量（不含地面锚点）
func (w *World) BodyCount() int {
	return len(w.Bodies())
}

// Bodies 按创建顺序返回存活的刚体实体
func (w *World) Bodies() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.BodyComponent](w.entityManager)
}

// Body 返回实体对应的刚体
func (w *World) Body(id ecs.EntityID) (*box2d.B2Body, bool) {
	bc, ok := ecs.GetComponent[*components.BodyComponent](w.entityManager, id)
	if !ok || bc.Body == nil {
		return nil, false
	}
	return bc.Body, true
}

// ParticleSystems 按创建顺序返回粒子系统实体
func (w *World) ParticleSystems() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.LiquidComponent](w.entityManager)
}

// Liquid 返回实体对应的粒子系统
func (w *World) Liquid(id ecs.EntityID) (*liquid.System, bool) {
	lc, ok := ecs.GetComponent[*components.LiquidComponent](w.entityManager, id)
	if !ok {
		return nil, false
	}
	return lc.System, true
}

// Dispensers 按创建顺序返回发射器实体
func (w *World) Dispensers() []ecs.EntityID {
	return ecs.GetEntitiesWith2[*components.EmitterComponent, *components.DispenserComponent](w.entityManager)
}

// SetDispenserRate 设置单个发射器的速率；实体不是发射器时返回 false
func (w *World) SetDispenserRate(id ecs.EntityID, rate float64) bool {
	emitter, ok := ecs.GetComponent[*components.EmitterComponent](w.entityManager, id)
	if !ok {
		return false
	}
	if rate < 0 {
		rate = 0
	}
	emitter.Rate = rate
	return true
}

// SetAllDispenserRates 设置全部发射器的速率
func (w *World) SetAllDispenserRates(rate float64) {
	for _, id := range w.Dispensers() {
		w.SetDispenserRate(id, rate)
	}
}

// Pour 触发（on=true，使用各自的 PourRate）或停止全部发射器
func (w *World) Pour(on bool) {
	for _, id := range w.Dispensers() {
		rate := 0.0
		if on {
			if dc, ok := ecs.GetComponent[*components.DispenserComponent](w.entityManager, id); ok {
				rate = dc.PourRate
			}
		}
		w.SetDispenserRate(id, rate)
	}
}

// Pouring 返回是否有发射器处于激活状态
func (w *World) Pouring() bool {
	for _, id := range w.Dispensers() {
		if emitter, ok := ecs.GetComponent[*components.EmitterComponent](w.entityManager, id); ok && emitter.Rate > 0 {
			return true
		}
	}
	return false
}
