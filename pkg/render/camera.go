package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/pkg/types"
)

// Camera 引擎坐标到屏幕像素的投影
//
// 屏幕坐标 = scale · ((x, -y) - (west, north))
// 即先翻转 Y 轴回到渲染坐标系，再以西北角为原点缩放。
type Camera struct {
	bounds  types.Bounds
	scale   float64
	project mgl64.Mat3
	inverse mgl64.Mat3
}

// NewCamera 创建相机；pixelsPerUnit <= 0 时按 1 处理
func NewCamera(bounds types.Bounds, pixelsPerUnit float64) *Camera {
	if pixelsPerUnit <= 0 {
		pixelsPerUnit = 1
	}
	project := mgl64.Scale2D(pixelsPerUnit, pixelsPerUnit).
		Mul3(mgl64.Translate2D(-float64(bounds.West), -float64(bounds.North))).
		Mul3(mgl64.Scale2D(1, -1))
	return &Camera{
		bounds:  bounds,
		scale:   pixelsPerUnit,
		project: project,
		inverse: project.Inv(),
	}
}

// Scale 返回每单位像素数
func (c *Camera) Scale() float64 {
	return c.scale
}

// ScreenSize 返回覆盖整个边界所需的屏幕尺寸
func (c *Camera) ScreenSize() (int, int) {
	return int(float64(c.bounds.Width()) * c.scale), int(float64(c.bounds.Height()) * c.scale)
}

// ToScreen 引擎坐标 → 屏幕像素
func (c *Camera) ToScreen(p mgl64.Vec2) mgl64.Vec2 {
	return c.project.Mul3x1(mgl64.Vec3{p.X(), p.Y(), 1}).Vec2()
}

// ToWorld 屏幕像素 → 引擎坐标
func (c *Camera) ToWorld(screen mgl64.Vec2) mgl64.Vec2 {
	return c.inverse.Mul3x1(mgl64.Vec3{screen.X(), screen.Y(), 1}).Vec2()
}

// ToRenderSpace 屏幕像素 → 渲染坐标（Y 轴向下），即 Create* 接口使用的坐标
func (c *Camera) ToRenderSpace(screen mgl64.Vec2) mgl64.Vec2 {
	w := c.ToWorld(screen)
	return mgl64.Vec2{w.X(), -w.Y()}
}
