package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// NozzleSprite 发射器喷嘴：贴图四边形，无贴图时退化为纯色多边形
type NozzleSprite struct {
	quad     [4]mgl64.Vec2
	texture  *ebiten.Image
	disposed bool
}

// NewNozzleSprite 创建喷嘴贴图；vertices 至少包含 4 个顶点（左下、左上、右上、右下）
func NewNozzleSprite(vertices []mgl64.Vec2, texture *ebiten.Image) *NozzleSprite {
	n := &NozzleSprite{texture: texture}
	if len(vertices) >= 4 {
		// 链形顶点顺序为 左下→左上→右上→右下，转换为 左下→右下→右上→左上
		n.quad = [4]mgl64.Vec2{vertices[0], vertices[3], vertices[2], vertices[1]}
	}
	return n
}

// Quad 返回局部坐标四边形
func (n *NozzleSprite) Quad() [4]mgl64.Vec2 { return n.quad }

// Disposed 返回是否已释放
func (n *NozzleSprite) Disposed() bool { return n.disposed }

// Draw 实现 Drawable
func (n *NozzleSprite) Draw(target Target, xf Transform) {
	if n.disposed {
		return
	}
	var q [4]mgl64.Vec2
	for i, v := range n.quad {
		q[i] = xf.Apply(v)
	}
	if n.texture == nil {
		target.FillPolygon(q[:], NozzleColor)
		for i := range q {
			target.StrokeLine(q[i], q[(i+1)%4], 0.5, outlineColor)
		}
		return
	}
	target.DrawTexturedQuad(n.texture, q)
}

// Dispose 实现 Drawable
// 贴图由资源管理器共享持有，这里只释放引用
func (n *NozzleSprite) Dispose() {
	n.texture = nil
	n.disposed = true
}
