package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

// RecordingTarget 只记录绘制调用次数的渲染目标
// 用于无窗口运行和测试
type RecordingTarget struct {
	Polygons  int
	Circles   int
	Particles int
	Lines     int
	Quads     int
}

// FillPolygon 实现 Target
func (t *RecordingTarget) FillPolygon(points []mgl64.Vec2, clr color.RGBA) {
	t.Polygons++
}

// FillCircles 实现 Target
func (t *RecordingTarget) FillCircles(centers []mgl64.Vec2, radius float64, colors []color.RGBA) {
	t.Circles++
	t.Particles += len(centers)
}

// StrokeLine 实现 Target
func (t *RecordingTarget) StrokeLine(from, to mgl64.Vec2, width float64, clr color.RGBA) {
	t.Lines++
}

// DrawTexturedQuad 实现 Target
func (t *RecordingTarget) DrawTexturedQuad(img *ebiten.Image, quad [4]mgl64.Vec2) {
	t.Quads++
}

// Calls 返回全部绘制调用次数
func (t *RecordingTarget) Calls() int {
	return t.Polygons + t.Circles + t.Lines + t.Quads
}

// Reset 清零计数
func (t *RecordingTarget) Reset() {
	*t = RecordingTarget{}
}
