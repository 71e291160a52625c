package systems

import (
	"github.com/ByteArena/box2d"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/physics"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/types"
)

// BodySystem 剔除越界刚体并绘制其余刚体（世界步进的第 4 阶段）
//
// 先只读扫描收集越界刚体，扫描结束后再销毁，迭代过程中不修改刚体链表。
type BodySystem struct {
	entityManager *ecs.EntityManager
	engine        *physics.Engine
	bounds        types.Bounds
	logger        *zap.Logger
}

// NewBodySystem 创建刚体系统
func NewBodySystem(em *ecs.EntityManager, engine *physics.Engine, bounds types.Bounds, logger *zap.Logger) *BodySystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BodySystem{
		entityManager: em,
		engine:        engine,
		bounds:        bounds,
		logger:        logger,
	}
}

// Update 剔除越界刚体，然后在未禁用渲染时绘制剩余刚体
// 返回本帧销毁的刚体数
func (s *BodySystem) Update(target render.Target, suppressRender bool) int {
	doomed := s.CollectOutOfBounds()
	for _, id := range doomed {
		s.DestroyBody(id)
	}
	s.entityManager.RemoveMarkedEntities()

	if !suppressRender && target != nil {
		s.RenderBodies(target)
	}
	return len(doomed)
}

// CollectOutOfBounds 返回质心越界的刚体实体（只读）
func (s *BodySystem) CollectOutOfBounds() []ecs.EntityID {
	var doomed []ecs.EntityID
	for _, id := range ecs.GetEntitiesWith1[*components.BodyComponent](s.entityManager) {
		bc, ok := ecs.GetComponent[*components.BodyComponent](s.entityManager, id)
		if !ok || bc.Body == nil {
			continue
		}
		if s.bounds.OutOfBounds(physics.FromB2(bc.Body.GetWorldCenter())) {
			doomed = append(doomed, id)
		}
	}
	return doomed
}

// DestroyBody 释放刚体全部夹具的渲染数据，然后销毁刚体并标记实体
// 对同一实体重复调用是安全的
func (s *BodySystem) DestroyBody(id ecs.EntityID) {
	bc, ok := ecs.GetComponent[*components.BodyComponent](s.entityManager, id)
	if !ok || bc.Body == nil {
		return
	}
	body := bc.Body
	bc.Body = nil

	ReleaseFixtures(body)
	s.engine.DestroyBody(body)
	s.entityManager.DestroyEntity(id)

	s.logger.Debug("body destroyed",
		zap.Uint64("entity", uint64(id)),
		zap.Stringer("kind", bc.Kind))
}

// RenderBodies 绘制所有刚体夹具上的渲染数据
func (s *BodySystem) RenderBodies(target render.Target) {
	for _, id := range ecs.GetEntitiesWith1[*components.BodyComponent](s.entityManager) {
		bc, ok := ecs.GetComponent[*components.BodyComponent](s.entityManager, id)
		if !ok || bc.Body == nil {
			continue
		}
		xf := render.Transform{
			Position: physics.FromB2(bc.Body.GetPosition()),
			Angle:    bc.Body.GetAngle(),
		}
		for f := bc.Body.GetFixtureList(); f != nil; f = f.GetNext() {
			if d, ok := f.GetUserData().(render.Drawable); ok && d != nil {
				d.Draw(target, xf)
			}
		}
	}
}

// ReleaseFixtures 对刚体每个夹具的渲染数据调用且仅调用一次 Dispose
// 释放后清空用户数据，再次调用不会重复释放
func ReleaseFixtures(body *box2d.B2Body) int {
	released := 0
	for _, f := range physics.Fixtures(body) {
		d, ok := f.GetUserData().(render.Drawable)
		if !ok || d == nil {
			continue
		}
		f.SetUserData(nil)
		d.Dispose()
		released++
	}
	return released
}
