package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

type commandKind uint8

const (
	cmdPolygon commandKind = iota
	cmdCircles
	cmdLine
	cmdQuad
)

type command struct {
	kind   commandKind
	points []mgl64.Vec2
	colors []color.RGBA
	clr    color.RGBA
	radius float64
	width  float64
	img    *ebiten.Image
	quad   [4]mgl64.Vec2
}

// CommandBuffer 记录绘制命令，稍后回放到真正的 Target
//
// ebiten 的 Update 与 Draw 分离：世界在 Update 中步进并写入缓冲，
// Draw 时回放到屏幕。输入切片会被复制，粒子缓冲区在下一步被修改也不影响回放。
type CommandBuffer struct {
	commands []command
}

// FillPolygon 实现 Target
func (b *CommandBuffer) FillPolygon(points []mgl64.Vec2, clr color.RGBA) {
	b.commands = append(b.commands, command{
		kind:   cmdPolygon,
		points: append([]mgl64.Vec2(nil), points...),
		clr:    clr,
	})
}

// FillCircles 实现 Target
func (b *CommandBuffer) FillCircles(centers []mgl64.Vec2, radius float64, colors []color.RGBA) {
	b.commands = append(b.commands, command{
		kind:   cmdCircles,
		points: append([]mgl64.Vec2(nil), centers...),
		colors: append([]color.RGBA(nil), colors...),
		radius: radius,
	})
}

// StrokeLine 实现 Target
func (b *CommandBuffer) StrokeLine(from, to mgl64.Vec2, width float64, clr color.RGBA) {
	b.commands = append(b.commands, command{
		kind:   cmdLine,
		points: []mgl64.Vec2{from, to},
		width:  width,
		clr:    clr,
	})
}

// DrawTexturedQuad 实现 Target
func (b *CommandBuffer) DrawTexturedQuad(img *ebiten.Image, quad [4]mgl64.Vec2) {
	b.commands = append(b.commands, command{kind: cmdQuad, img: img, quad: quad})
}

// Len 返回已记录的命令数
func (b *CommandBuffer) Len() int {
	return len(b.commands)
}

// Reset 清空命令，保留底层数组
func (b *CommandBuffer) Reset() {
	for i := range b.commands {
		b.commands[i] = command{}
	}
	b.commands = b.commands[:0]
}

// Replay 按记录顺序回放到 target
func (b *CommandBuffer) Replay(target Target) {
	for _, c := range b.commands {
		switch c.kind {
		case cmdPolygon:
			target.FillPolygon(c.points, c.clr)
		case cmdCircles:
			target.FillCircles(c.points, c.radius, c.colors)
		case cmdLine:
			target.StrokeLine(c.points[0], c.points[1], c.width, c.clr)
		case cmdQuad:
			target.DrawTexturedQuad(c.img, c.quad)
		}
	}
}
