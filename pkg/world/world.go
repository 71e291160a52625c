// Package world 实现有界物理世界的模拟循环
//
// World 拥有物理引擎、地面锚点、粒子系统、发射器和全部刚体。每次 Step 按固定顺序执行：
//
//  1. 推进物理引擎
//  2. 推进每个发射器
//  3. 对每个粒子系统：绘制（可禁用），再将越界粒子标记为 Zombie
//  4. 对每个刚体：质心越界则销毁（释放夹具渲染数据），否则绘制（可禁用）
//
// 剔除与渲染相互独立：禁用渲染时仍然执行剔除。
// World 不是线程安全的，所有调用必须来自同一个 goroutine。
package world

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/ByteArena/box2d"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/entities"
	"github.com/decker502/liquidbox/pkg/physics"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/systems"
	"github.com/decker502/liquidbox/pkg/types"
)

var (
	// ErrNoParticleSystem 在没有任何粒子系统时创建海绵或发射器
	ErrNoParticleSystem = errors.New("world: no particle system")
	// ErrDuplicateRadius 粒子系统半径重复
	ErrDuplicateRadius = errors.New("world: duplicate particle radius")
)

// 发射器默认运动参数
var (
	dispenserVelocity   = mgl64.Vec2{0, -120}
	dispenserSizeFactor = 2.1
	dispenserDepth      = 5.0
)

// SpongeColor 海绵粒子颜色
var SpongeColor = render.ToColor([4]uint8{230, 200, 90, 255})

// Config 世界构造参数
type Config struct {
	// Gravity 渲染坐标系（Y 轴向下）的重力
	Gravity mgl64.Vec2
	Bounds  types.Bounds
	// PourRate 发射器被触发时的速率（粒子/秒）
	PourRate float64
	// Rand 发射器随机源，nil 时使用固定种子
	Rand *rand.Rand
}

// StepStats 单次 Step 的统计
type StepStats struct {
	Emitted         int
	CulledParticles int
	CulledBodies    int
}

// World 有界物理世界
type World struct {
	cfg    Config
	logger *zap.Logger

	engine        *physics.Engine
	entityManager *ecs.EntityManager
	ground        *box2d.B2Body

	emitterSystem *systems.EmitterSystem
	liquidSystem  *systems.LiquidSystem
	bodySystem    *systems.BodySystem

	lastLiquid ecs.EntityID
	tick       uint64
	destroyed  bool
}

// New 创建世界并建立永久的地面锚点
func New(cfg Config, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("world")

	engine := physics.NewEngine(mgl64.Vec2{cfg.Gravity.X(), -cfg.Gravity.Y()})
	em := ecs.NewEntityManager()

	w := &World{
		cfg:           cfg,
		logger:        logger,
		engine:        engine,
		entityManager: em,
		ground:        engine.CreateBody(false),
		emitterSystem: systems.NewEmitterSystem(em, cfg.Rand),
		liquidSystem:  systems.NewLiquidSystem(em, cfg.Bounds),
		bodySystem:    systems.NewBodySystem(em, engine, cfg.Bounds, logger),
	}
	if w.ground == nil {
		panic("world: physics engine failed to create ground body")
	}

	logger.Info("world created",
		zap.Float64("gravity_x", cfg.Gravity.X()),
		zap.Float64("gravity_y", cfg.Gravity.Y()),
		zap.Int("north", cfg.Bounds.North),
		zap.Int("east", cfg.Bounds.East),
		zap.Int("south", cfg.Bounds.South),
		zap.Int("west", cfg.Bounds.West))
	return w
}

// CreateItem 在渲染坐标 position 处创建物品
// 杯子和箱子为动态刚体，台面为静态刚体；无法识别的类型被忽略并返回 ecs.InvalidEntity
func (w *World) CreateItem(kind types.ItemType, position, size mgl64.Vec2) ecs.EntityID {
	id := entities.NewItemEntity(w.entityManager, w.engine, kind, position, size)
	if id == ecs.InvalidEntity {
		w.logger.Debug("ignored unknown item kind", zap.Stringer("kind", kind))
		return id
	}
	w.logger.Debug("item created",
		zap.Uint64("entity", uint64(id)),
		zap.Stringer("kind", kind),
		zap.Float64("x", position.X()),
		zap.Float64("y", position.Y()))
	return id
}

// CreateParticleSystem 创建粒子系统及其绘制处理器
//
// 半径在世界内必须唯一，重复时 panic（ErrDuplicateRadius）。
func (w *World) CreateParticleSystem(gravityScale, density, radius float64) ecs.EntityID {
	for _, id := range ecs.GetEntitiesWith1[*components.LiquidComponent](w.entityManager) {
		lc, _ := ecs.GetComponent[*components.LiquidComponent](w.entityManager, id)
		if lc.System.Radius() == radius {
			panic(fmt.Errorf("%w: %g", ErrDuplicateRadius, radius))
		}
	}

	sys := w.engine.CreateParticleSystem(gravityScale, density, radius)
	id := w.entityManager.CreateEntity()
	ecs.AddComponent(w.entityManager, id, &components.LiquidComponent{
		System:   sys,
		Renderer: render.NewLiquidRenderer(sys.Radius()),
	})
	w.lastLiquid = id

	w.logger.Debug("particle system created",
		zap.Uint64("entity", uint64(id)),
		zap.Float64("radius", radius),
		zap.Float64("density", density),
		zap.Float64("gravity_scale", gravityScale))
	return id
}

// latestLiquid 返回最近创建的粒子系统，没有时 panic
func (w *World) latestLiquid(op string) (ecs.EntityID, *components.LiquidComponent) {
	lc, ok := ecs.GetComponent[*components.LiquidComponent](w.entityManager, w.lastLiquid)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrNoParticleSystem, op))
	}
	return w.lastLiquid, lc
}

// CreateSponge 在最近创建的粒子系统中创建海绵（静止的方形粒子组）
// size 为半宽高；没有粒子系统时 panic（ErrNoParticleSystem）
func (w *World) CreateSponge(position, size mgl64.Vec2) {
	_, lc := w.latestLiquid("create sponge")
	group := lc.System.CreateParticleGroup(liquid.GroupDef{
		Flags:    liquid.WallParticle,
		Position: mgl64.Vec2{position.X(), -position.Y()},
		HalfSize: size,
		Color:    SpongeColor,
	})
	w.logger.Debug("sponge created", zap.Int("particles", group.ParticleCount()))
}

// CreateDispenser 创建发射器：粒子组 + 待命的径向发射器 + 喷嘴刚体
//
// 发射器初始速率为 0，由 SetDispenserRate / Pour 触发。
// 没有粒子系统时 panic（ErrNoParticleSystem）。
func (w *World) CreateDispenser(def liquid.GroupDef, position mgl64.Vec2, texture *ebiten.Image) ecs.EntityID {
	liquidID, lc := w.latestLiquid("create dispenser")
	sys := lc.System
	group := sys.CreateParticleGroup(def)
	radius := sys.Radius()

	nozzle := entities.NewNozzleEntity(w.entityManager, w.engine, position, radius, texture)

	id := w.entityManager.CreateEntity()
	ecs.AddComponent(w.entityManager, id, &components.EmitterComponent{
		System:   sys,
		Group:    group,
		Origin:   mgl64.Vec2{position.X(), -position.Y()},
		Size:     mgl64.Vec2{dispenserSizeFactor * radius, dispenserDepth},
		Velocity: dispenserVelocity,
		Color:    def.Color,
		Flags:    def.Flags,
	})
	ecs.AddComponent(w.entityManager, id, &components.DispenserComponent{
		Liquid:   liquidID,
		Nozzle:   nozzle,
		PourRate: w.cfg.PourRate,
	})

	w.logger.Debug("dispenser created",
		zap.Uint64("entity", uint64(id)),
		zap.Float64("x", position.X()),
		zap.Float64("y", position.Y()))
	return id
}

// Step 推进世界一个固定时间步
func (w *World) Step(dt float64, velocityIterations, positionIterations, particleIterations int, target render.Target, suppressRender bool) StepStats {
	var stats StepStats

	w.engine.Step(dt, velocityIterations, positionIterations, particleIterations)
	stats.Emitted = w.emitterSystem.Update(dt)
	stats.CulledParticles = w.liquidSystem.Update(target, suppressRender)
	stats.CulledBodies = w.bodySystem.Update(target, suppressRender)

	w.tick++
	if stats.CulledBodies > 0 {
		w.logger.Debug("bodies culled",
			zap.Uint64("tick", w.tick),
			zap.Int("count", stats.CulledBodies))
	}
	return stats
}

// PositionOutOfBounds 判断引擎坐标是否越界（不检查北边界）
func (w *World) PositionOutOfBounds(position mgl64.Vec2) bool {
	return w.cfg.Bounds.OutOfBounds(position)
}

// Destroy 释放全部夹具的渲染数据（每个恰好一次），然后销毁所有刚体
// 重复调用是安全的
func (w *World) Destroy() {
	if w.destroyed {
		return
	}
	w.destroyed = true

	released := 0
	for _, body := range w.engine.Bodies() {
		released += systems.ReleaseFixtures(body)
		w.engine.DestroyBody(body)
	}
	w.ground = nil

	for _, id := range ecs.GetEntitiesWith1[*components.BodyComponent](w.entityManager) {
		if bc, ok := ecs.GetComponent[*components.BodyComponent](w.entityManager, id); ok {
			bc.Body = nil
		}
		w.entityManager.DestroyEntity(id)
	}
	w.entityManager.RemoveMarkedEntities()

	w.logger.Info("world destroyed",
		zap.Uint64("ticks", w.tick),
		zap.Int("payloads_released", released))
}
