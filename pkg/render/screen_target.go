package render

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

// solidSource 返回用于纯色三角形的 1x1 白色源图（首次绘制时创建）
func solidSource() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// ScreenTarget 基于 Ebitengine 的渲染目标
//
// 每帧调用 Begin 绑定屏幕。顶点与索引数组在帧间复用，避免每帧分配。
type ScreenTarget struct {
	camera   *Camera
	screen   *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
	calls    int
}

// NewScreenTarget 创建屏幕渲染目标
func NewScreenTarget(camera *Camera) *ScreenTarget {
	return &ScreenTarget{
		camera:   camera,
		vertices: make([]ebiten.Vertex, 0, 64),
		indices:  make([]uint16, 0, 96),
	}
}

// Begin 绑定本帧的屏幕并重置计数
func (t *ScreenTarget) Begin(screen *ebiten.Image) {
	t.screen = screen
	t.calls = 0
}

// DrawCalls 返回本帧的绘制调用次数
func (t *ScreenTarget) DrawCalls() int {
	return t.calls
}

func (t *ScreenTarget) point(p mgl64.Vec2) (float32, float32) {
	s := t.camera.ToScreen(p)
	return float32(s.X()), float32(s.Y())
}

// FillPolygon 以扇形三角化填充凸多边形
func (t *ScreenTarget) FillPolygon(points []mgl64.Vec2, clr color.RGBA) {
	if t.screen == nil || len(points) < 3 {
		return
	}
	r, g, b, a := float32(clr.R)/0xff, float32(clr.G)/0xff, float32(clr.B)/0xff, float32(clr.A)/0xff

	t.vertices = t.vertices[:0]
	t.indices = t.indices[:0]
	for _, p := range points {
		x, y := t.point(p)
		t.vertices = append(t.vertices, ebiten.Vertex{
			DstX: x, DstY: y,
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}
	for i := 1; i+1 < len(points); i++ {
		t.indices = append(t.indices, 0, uint16(i), uint16(i+1))
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	t.screen.DrawTriangles(t.vertices, t.indices, solidSource(), op)
	t.calls++
}

// FillCircles 绘制粒子
func (t *ScreenTarget) FillCircles(centers []mgl64.Vec2, radius float64, colors []color.RGBA) {
	if t.screen == nil {
		return
	}
	r := float32(radius * t.camera.Scale())
	if r < 1 {
		r = 1
	}
	for i, c := range centers {
		x, y := t.point(c)
		vector.DrawFilledCircle(t.screen, x, y, r, colors[i], true)
	}
	t.calls++
}

// StrokeLine 绘制线段
func (t *ScreenTarget) StrokeLine(from, to mgl64.Vec2, width float64, clr color.RGBA) {
	if t.screen == nil {
		return
	}
	x0, y0 := t.point(from)
	x1, y1 := t.point(to)
	w := float32(width * t.camera.Scale())
	if w < 1 {
		w = 1
	}
	vector.StrokeLine(t.screen, x0, y0, x1, y1, w, clr, true)
	t.calls++
}

// DrawTexturedQuad 绘制贴图四边形
func (t *ScreenTarget) DrawTexturedQuad(img *ebiten.Image, quad [4]mgl64.Vec2) {
	if t.screen == nil || img == nil {
		return
	}
	b := img.Bounds()
	src := [4][2]float32{
		{float32(b.Min.X), float32(b.Max.Y)},
		{float32(b.Max.X), float32(b.Max.Y)},
		{float32(b.Max.X), float32(b.Min.Y)},
		{float32(b.Min.X), float32(b.Min.Y)},
	}

	t.vertices = t.vertices[:0]
	for i, p := range quad {
		x, y := t.point(p)
		t.vertices = append(t.vertices, ebiten.Vertex{
			DstX: x, DstY: y,
			SrcX: src[i][0], SrcY: src[i][1],
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		})
	}
	t.indices = append(t.indices[:0], 0, 1, 2, 0, 2, 3)
	t.screen.DrawTriangles(t.vertices, t.indices, img, nil)
	t.calls++
}
