// Package physics 封装刚体引擎（box2d）与粒子流体系统
//
// Engine 是世界唯一的物理实例：刚体由 box2d 管理，粒子系统由 internal/liquid 管理。
// Step 先推进刚体，再以刚体夹具作为碰撞体推进每个粒子系统。
// 非线程安全，只能在游戏循环所在的 goroutine 中使用。
package physics

import (
	"github.com/ByteArena/box2d"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/internal/liquid"
)

// Engine 物理引擎实例
type Engine struct {
	world   *box2d.B2World
	gravity mgl64.Vec2
	liquids []*liquid.System
}

// NewEngine 以引擎坐标（Y 轴向上）的重力创建引擎
func NewEngine(gravity mgl64.Vec2) *Engine {
	w := box2d.MakeB2World(ToB2(gravity))
	return &Engine{
		world:   &w,
		gravity: gravity,
		liquids: make([]*liquid.System, 0),
	}
}

// Gravity 返回引擎重力
func (e *Engine) Gravity() mgl64.Vec2 {
	return e.gravity
}

// World 返回底层 box2d 世界（供几何工厂创建夹具使用）
func (e *Engine) World() *box2d.B2World {
	return e.world
}

// CreateBody 在原点创建刚体
// 夹具顶点直接使用世界坐标，因此刚体本身位于原点、零角度
func (e *Engine) CreateBody(dynamic bool) *box2d.B2Body {
	def := box2d.MakeB2BodyDef()
	if dynamic {
		def.Type = box2d.B2BodyType.B2_dynamicBody
	} else {
		def.Type = box2d.B2BodyType.B2_staticBody
	}
	return e.world.CreateBody(&def)
}

// DestroyBody 销毁刚体及其全部夹具
// 夹具上的用户数据由调用方在此之前释放
func (e *Engine) DestroyBody(body *box2d.B2Body) {
	e.world.DestroyBody(body)
}

// BodyCount 返回刚体数量（包含地面锚点）
func (e *Engine) BodyCount() int {
	return e.world.GetBodyCount()
}

// Bodies 返回当前全部刚体的快照
// 遍历快照期间销毁刚体不会影响迭代
func (e *Engine) Bodies() []*box2d.B2Body {
	bodies := make([]*box2d.B2Body, 0, e.world.GetBodyCount())
	for b := e.world.GetBodyList(); b != nil; b = b.GetNext() {
		bodies = append(bodies, b)
	}
	return bodies
}

// Fixtures 返回刚体夹具的快照
func Fixtures(body *box2d.B2Body) []*box2d.B2Fixture {
	fixtures := make([]*box2d.B2Fixture, 0, 4)
	for f := body.GetFixtureList(); f != nil; f = f.GetNext() {
		fixtures = append(fixtures, f)
	}
	return fixtures
}

// CreateParticleSystem 创建粒子系统
func (e *Engine) CreateParticleSystem(gravityScale, density, radius float64) *liquid.System {
	sys := liquid.NewSystem(liquid.Def{
		Radius:       radius,
		Density:      density,
		GravityScale: gravityScale,
	})
	e.liquids = append(e.liquids, sys)
	return sys
}

// ParticleSystems 返回按创建顺序排列的粒子系统
func (e *Engine) ParticleSystems() []*liquid.System {
	return e.liquids
}

// Step 推进引擎一个固定时间步
func (e *Engine) Step(dt float64, velocityIterations, positionIterations, particleIterations int) {
	e.world.Step(dt, velocityIterations, positionIterations)

	collider := fixtureCollider{world: e.world}
	for _, sys := range e.liquids {
		sys.Step(dt, e.gravity, particleIterations, collider)
	}
}

// fixtureCollider 以全部刚体夹具作为粒子碰撞体
// 链形夹具（喷嘴轮廓）只用于显示，粒子可以穿过
type fixtureCollider struct {
	world *box2d.B2World
}

// Blocked 判断点是否落在任一刚体夹具内部
func (c fixtureCollider) Blocked(p mgl64.Vec2) bool {
	point := ToB2(p)
	for b := c.world.GetBodyList(); b != nil; b = b.GetNext() {
		for f := b.GetFixtureList(); f != nil; f = f.GetNext() {
			if f.GetType() == box2d.B2Shape_Type.E_chain {
				continue
			}
			if f.TestPoint(point) {
				return true
			}
		}
	}
	return false
}

// Sweep 用 box2d 射线检测求线段 from→to 最先穿入的夹具表面
func (c fixtureCollider) Sweep(from, to mgl64.Vec2) (liquid.Hit, bool) {
	if from.ApproxEqual(to) {
		return liquid.Hit{}, false
	}
	var (
		hit   liquid.Hit
		found bool
	)
	c.world.RayCast(func(f *box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) float64 {
		if f.GetType() == box2d.B2Shape_Type.E_chain {
			return -1
		}
		hit = liquid.Hit{Point: FromB2(point), Normal: FromB2(normal)}
		found = true
		// 裁剪射线，之后只会报告更近的命中
		return fraction
	}, ToB2(from), ToB2(to))
	return hit, found
}

// ToB2 转换为 box2d 向量
func ToB2(v mgl64.Vec2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X(), v.Y())
}

// FromB2 转换为 mathgl 向量
func FromB2(v box2d.B2Vec2) mgl64.Vec2 {
	return mgl64.Vec2{v.X, v.Y}
}
