package components

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/internal/liquid"
)

// EmitterComponent 径向粒子发射器
//
// 每帧 EmitterSystem 将 Rate·dt 累加到 Remainder，每满 1 个单位就在
// 以 Origin 为中心、Size/2 为半轴的椭圆区域内注入一个粒子。
// Rate 为 0 时发射器处于待命状态，不会自行终止。
//
// This is a pure data component following ECS principles - it contains no methods.
type EmitterComponent struct {
	// 目标粒子系统与粒子组
	System *liquid.System
	Group  *liquid.Group

	// 发射区域（引擎坐标）
	Origin mgl64.Vec2
	Size   mgl64.Vec2

	// 初速度与径向扩散速度
	Velocity mgl64.Vec2
	Speed    float64

	// Rate 每秒发射粒子数
	Rate      float64
	Remainder float64

	// 新粒子模板
	Color color.RGBA
	Flags liquid.ParticleFlag

	// TotalLaunched 累计发射数量（容量已满时未创建的粒子不计入）
	TotalLaunched int
}
