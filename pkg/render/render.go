// Package render 定义世界与渲染后端之间的契约
//
// 世界只持有 Drawable 的生命周期，从不检查其内容。所有绘制调用使用引擎坐标
// （Y 轴向上），由具体的 Target 负责投影到屏幕。
package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// Target 渲染目标
type Target interface {
	// FillPolygon 填充凸多边形
	FillPolygon(points []mgl64.Vec2, clr color.RGBA)
	// FillCircles 以相同半径绘制一批实心圆，colors 与 centers 一一对应
	FillCircles(centers []mgl64.Vec2, radius float64, colors []color.RGBA)
	// StrokeLine 绘制线段，width 以引擎单位计
	StrokeLine(from, to mgl64.Vec2, width float64, clr color.RGBA)
	// DrawTexturedQuad 将整张贴图映射到四边形（顺序：左下、右下、右上、左上）
	DrawTexturedQuad(img *ebiten.Image, quad [4]mgl64.Vec2)
}

// Drawable 夹具携带的渲染数据
//
// 所有权在夹具创建时转移给夹具，夹具销毁时由世界调用且仅调用一次 Dispose。
type Drawable interface {
	Draw(target Target, xf Transform)
	Dispose()
}

// Transform 刚体变换：先旋转再平移
type Transform struct {
	Position mgl64.Vec2
	Angle    float64
}

// Identity 单位变换
var Identity = Transform{}

// Apply 将局部坐标变换到世界坐标
func (xf Transform) Apply(p mgl64.Vec2) mgl64.Vec2 {
	if xf.Angle == 0 {
		return xf.Position.Add(p)
	}
	return xf.Position.Add(mgl64.Rotate2D(xf.Angle).Mul2x1(p))
}

// ToColor 将 0-255 的四元组转换为颜色
func ToColor(rgba [4]uint8) color.RGBA {
	return color.RGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
}
