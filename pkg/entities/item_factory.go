package entities

import (
	"image/color"

	"github.com/ByteArena/box2d"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/physics"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/types"
)

// 杯子几何参数
const (
	cupEdgeThickness = 0.5
	cupSideSlope     = 0.2
	cupDensity       = 0.4
	cupRestitution   = 0.5
)

// 箱子材质（仅动态刚体）
const (
	boxDensity     = 2.0
	boxRestitution = 0.15
)

// 喷嘴尺寸（以粒子半径为单位）
const (
	nozzleHeightFactor = 35.0
	nozzleWidthFactor  = 8.0
)

// NewItemEntity 创建物品刚体及其实体
//
// 参数:
//   - position/size: 渲染坐标（Y 轴向下）
//
// 返回:
//   - ecs.EntityID: 无法识别的物品类型返回 ecs.InvalidEntity，不创建刚体
func NewItemEntity(em *ecs.EntityManager, engine *physics.Engine, kind types.ItemType, position, size mgl64.Vec2) ecs.EntityID {
	var body *box2d.B2Body
	switch kind {
	case types.ItemCup:
		body = engine.CreateBody(true)
		CreateCup(body, position, size)
	case types.ItemBox:
		body = engine.CreateBody(true)
		CreateBox(body, position, size)
	case types.ItemSurface:
		body = engine.CreateBody(false)
		CreateBox(body, position, size)
	default:
		return ecs.InvalidEntity
	}

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.BodyComponent{Body: body, Kind: kind})
	return id
}

// NewNozzleEntity 创建发射器喷嘴的静态刚体及其实体
func NewNozzleEntity(em *ecs.EntityManager, engine *physics.Engine, position mgl64.Vec2, particleRadius float64, texture *ebiten.Image) ecs.EntityID {
	body := engine.CreateBody(false)
	CreateDispenserItem(body, position, particleRadius, texture)

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.BodyComponent{Body: body, Kind: types.ItemSurface, Nozzle: true})
	return id
}

// CreateCup 为刚体附加杯子的三个夹具（左壁、右壁、杯底）
// 杯壁向外倾斜，每个夹具拥有独立的多边形渲染数据
func CreateCup(body *box2d.B2Body, position, size mgl64.Vec2) {
	width, height := size.X(), size.Y()

	left := [4]mgl64.Vec2{
		{0, height},
		{cupEdgeThickness, height},
		{cupEdgeThickness + cupSideSlope, 0},
		{cupSideSlope, 0},
	}

	var right [4]mgl64.Vec2
	for i := range left {
		right[i] = left[i].Add(mgl64.Vec2{width, 0})
	}
	right[0][0] += 2 * cupSideSlope
	right[1][0] += 2 * cupSideSlope

	bottom := [4]mgl64.Vec2{
		left[3],
		right[2],
		right[2].Sub(mgl64.Vec2{0, cupEdgeThickness}),
		left[3].Sub(mgl64.Vec2{0, cupEdgeThickness}),
	}

	offset := mgl64.Vec2{position.X(), -(position.Y() + height)}
	for _, quad := range [][4]mgl64.Vec2{left, right, bottom} {
		for i := range quad {
			quad[i] = quad[i].Add(offset)
		}
		attachPolygon(body, quad[:], cupDensity, cupRestitution, render.CupColor)
	}
}

// CreateBox 为刚体附加矩形夹具
// 只有动态刚体设置密度和弹性，静态刚体保持引擎默认值
func CreateBox(body *box2d.B2Body, position, size mgl64.Vec2) {
	width, height := size.X(), size.Y()
	vertices := []mgl64.Vec2{
		{0, 0},
		{width, 0},
		{width, height},
		{0, height},
	}
	for i := range vertices {
		v := vertices[i].Add(position)
		vertices[i] = mgl64.Vec2{v.X(), -v.Y()}
	}

	var density, restitution float64
	if body.GetType() == box2d.B2BodyType.B2_dynamicBody {
		density = boxDensity
		restitution = boxRestitution
	}
	attachPolygon(body, vertices, density, restitution, render.BoxColor)
}

// CreateDispenserItem 为刚体附加喷嘴链形夹具
// 喷嘴高度为粒子半径的 35 倍，宽度为 8 倍，以 position 为水平中心
func CreateDispenserItem(body *box2d.B2Body, position mgl64.Vec2, particleRadius float64, texture *ebiten.Image) {
	height := nozzleHeightFactor * particleRadius
	width := nozzleWidthFactor * particleRadius

	vertices := []mgl64.Vec2{
		{0, 0},
		{0, height},
		{width, height},
		{width, 0},
	}
	offset := mgl64.Vec2{position.X() - width/2, -(position.Y() + height/3)}
	points := make([]box2d.B2Vec2, len(vertices))
	for i := range vertices {
		vertices[i] = vertices[i].Add(offset)
		points[i] = physics.ToB2(vertices[i])
	}

	shape := box2d.MakeB2ChainShape()
	shape.CreateChain(points, len(points))

	def := box2d.MakeB2FixtureDef()
	def.Shape = &shape
	fixture := body.CreateFixtureFromDef(&def)
	fixture.SetUserData(render.NewNozzleSprite(vertices, texture))
}

// attachPolygon 创建凸多边形夹具，并将多边形渲染数据的所有权转移给夹具
func attachPolygon(body *box2d.B2Body, vertices []mgl64.Vec2, density, restitution float64, clr color.RGBA) {
	points := make([]box2d.B2Vec2, len(vertices))
	for i, v := range vertices {
		points[i] = physics.ToB2(v)
	}

	shape := box2d.MakeB2PolygonShape()
	shape.Set(points, len(points))

	def := box2d.MakeB2FixtureDef()
	def.Shape = &shape
	def.Density = density
	def.Restitution = restitution
	fixture := body.CreateFixtureFromDef(&def)
	fixture.SetUserData(render.NewPolygon(vertices, clr))
}
