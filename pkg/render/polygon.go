package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// 物品颜色
var (
	CupColor     = color.RGBA{R: 50, G: 50, B: 250, A: 150}
	BoxColor     = color.RGBA{R: 150, G: 150, B: 150, A: 50}
	NozzleColor  = color.RGBA{R: 90, G: 90, B: 110, A: 255}
	outlineColor = color.RGBA{R: 30, G: 30, B: 40, A: 255}
)

// Polygon 单色凸多边形
type Polygon struct {
	vertices []mgl64.Vec2
	color    color.RGBA
	scratch  []mgl64.Vec2
	disposed bool
}

// NewPolygon 以刚体局部坐标创建多边形（复制顶点）
func NewPolygon(vertices []mgl64.Vec2, clr color.RGBA) *Polygon {
	v := make([]mgl64.Vec2, len(vertices))
	copy(v, vertices)
	return &Polygon{
		vertices: v,
		color:    clr,
		scratch:  make([]mgl64.Vec2, len(vertices)),
	}
}

// Vertices 返回局部坐标顶点
func (p *Polygon) Vertices() []mgl64.Vec2 { return p.vertices }

// Color 返回填充色
func (p *Polygon) Color() color.RGBA { return p.color }

// Disposed 返回是否已释放
func (p *Polygon) Disposed() bool { return p.disposed }

// Draw 实现 Drawable
func (p *Polygon) Draw(target Target, xf Transform) {
	if p.disposed || len(p.vertices) < 3 {
		return
	}
	for i, v := range p.vertices {
		p.scratch[i] = xf.Apply(v)
	}
	target.FillPolygon(p.scratch, p.color)
}

// Dispose 实现 Drawable
func (p *Polygon) Dispose() {
	p.vertices = nil
	p.scratch = nil
	p.disposed = true
}
