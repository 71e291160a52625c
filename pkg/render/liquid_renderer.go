package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/internal/liquid"
)

// LiquidRenderer 粒子系统的绘制处理器
//
// 每次 Step 以一次 FillCircles 调用绘制所有未标记 Zombie 的粒子。
// 缓冲区在帧间复用。
type LiquidRenderer struct {
	radius  float64
	centers []mgl64.Vec2
	colors  []color.RGBA
}

// NewLiquidRenderer 以粒子半径创建处理器
func NewLiquidRenderer(radius float64) *LiquidRenderer {
	return &LiquidRenderer{radius: radius}
}

// Radius 返回绘制半径
func (r *LiquidRenderer) Radius() float64 {
	return r.radius
}

// Step 绘制粒子系统
func (r *LiquidRenderer) Step(target Target, sys *liquid.System) {
	positions := sys.PositionBuffer()
	colors := sys.ColorBuffer()

	r.centers = r.centers[:0]
	r.colors = r.colors[:0]
	for i, p := range positions {
		if sys.GetParticleFlags(i).Has(liquid.ZombieParticle) {
			continue
		}
		r.centers = append(r.centers, p)
		r.colors = append(r.colors, colors[i])
	}
	if len(r.centers) == 0 {
		return
	}
	target.FillCircles(r.centers, r.radius, r.colors)
}
