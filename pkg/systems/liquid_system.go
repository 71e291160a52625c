package systems

import (
	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/types"
)

// LiquidSystem 绘制并剔除粒子（世界步进的第 3 阶段）
//
// 剔除只设置 ZombieParticle 标志，从不改变粒子数量；
// 真正的移除由粒子系统下一次 Step 的压缩完成。
type LiquidSystem struct {
	entityManager *ecs.EntityManager
	bounds        types.Bounds
}

// NewLiquidSystem 创建粒子剔除系统
func NewLiquidSystem(em *ecs.EntityManager, bounds types.Bounds) *LiquidSystem {
	return &LiquidSystem{
		entityManager: em,
		bounds:        bounds,
	}
}

// Update 对每个粒子系统先绘制（suppressRender 时跳过）再剔除
// 返回本帧新标记的粒子数
func (s *LiquidSystem) Update(target render.Target, suppressRender bool) int {
	culled := 0
	for _, id := range ecs.GetEntitiesWith1[*components.LiquidComponent](s.entityManager) {
		lc, ok := ecs.GetComponent[*components.LiquidComponent](s.entityManager, id)
		if !ok || lc.System == nil {
			continue
		}
		if !suppressRender && target != nil {
			RenderLiquid(target, lc)
		}
		culled += CullParticles(lc.System, s.bounds)
	}
	return culled
}

// RenderLiquids 只绘制，不剔除
func (s *LiquidSystem) RenderLiquids(target render.Target) {
	for _, id := range ecs.GetEntitiesWith1[*components.LiquidComponent](s.entityManager) {
		if lc, ok := ecs.GetComponent[*components.LiquidComponent](s.entityManager, id); ok {
			RenderLiquid(target, lc)
		}
	}
}

// RenderLiquid 使用粒子系统自己的处理器绘制
func RenderLiquid(target render.Target, lc *components.LiquidComponent) {
	if lc.Renderer == nil || lc.System == nil {
		return
	}
	lc.Renderer.Step(target, lc.System)
}

// CullParticles 将越界粒子标记为 Zombie，返回新标记的数量
func CullParticles(sys *liquid.System, bounds types.Bounds) int {
	culled := 0
	for i, p := range sys.PositionBuffer() {
		flags := sys.GetParticleFlags(i)
		if flags.Has(liquid.ZombieParticle) || !bounds.OutOfBounds(p) {
			continue
		}
		sys.SetParticleFlags(i, flags|liquid.ZombieParticle)
		culled++
	}
	return culled
}
