package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/pkg/types"
)

var (
	gridColor = color.RGBA{R: 0, G: 0, B: 0, A: 40}
	axisColor = color.RGBA{R: 200, G: 40, B: 40, A: 200}
)

// DebugGrid 调试网格与坐标轴
type DebugGrid struct {
	lines [][2]mgl64.Vec2
	axes  [][2]mgl64.Vec2
}

// NewDebugGrid 按边界和间距生成网格线（引擎坐标）
func NewDebugGrid(bounds types.Bounds, spacing float64) *DebugGrid {
	g := &DebugGrid{}
	if spacing <= 0 {
		return g
	}
	west, east := float64(bounds.West), float64(bounds.East)
	top, bottom := -float64(bounds.North), -float64(bounds.South)

	for x := west; x <= east; x += spacing {
		g.lines = append(g.lines, [2]mgl64.Vec2{{x, top}, {x, bottom}})
	}
	for y := float64(bounds.North); y <= float64(bounds.South); y += spacing {
		g.lines = append(g.lines, [2]mgl64.Vec2{{west, -y}, {east, -y}})
	}

	if 0 >= west && 0 <= east {
		g.axes = append(g.axes, [2]mgl64.Vec2{{0, top}, {0, bottom}})
	}
	if 0 >= bounds.North && 0 <= bounds.South {
		g.axes = append(g.axes, [2]mgl64.Vec2{{west, 0}, {east, 0}})
	}
	return g
}

// LineCount 返回网格线与坐标轴总数
func (g *DebugGrid) LineCount() int {
	return len(g.lines) + len(g.axes)
}

// Draw 绘制网格
func (g *DebugGrid) Draw(target Target) {
	for _, l := range g.lines {
		target.StrokeLine(l[0], l[1], 0, gridColor)
	}
	for _, l := range g.axes {
		target.StrokeLine(l[0], l[1], 0, axisColor)
	}
}
