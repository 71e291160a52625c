// Package utils 提供输入和平台相关的小工具
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Pointer 当前帧的指针状态
// 统一处理鼠标和触摸输入
type Pointer struct {
	// JustPressed 本帧刚发生点击/触摸
	JustPressed bool
	// X, Y 屏幕像素位置
	X, Y int
	// Touches 当前活动触点数，鼠标输入时为 0
	Touches int
}

// ReadPointer 读取当前帧的指针状态，优先检测触摸
func ReadPointer() Pointer {
	all := ebiten.AppendTouchIDs(nil)
	if justPressed := inpututil.AppendJustPressedTouchIDs(nil); len(justPressed) > 0 {
		x, y := ebiten.TouchPosition(justPressed[0])
		return Pointer{JustPressed: true, X: x, Y: y, Touches: len(all)}
	}
	if len(all) > 0 {
		x, y := ebiten.TouchPosition(all[0])
		return Pointer{X: x, Y: y, Touches: len(all)}
	}

	x, y := ebiten.CursorPosition()
	return Pointer{
		JustPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		X:           x,
		Y:           y,
	}
}

// AltSpawn 是否使用替代放置（杯子）：桌面端按住 Shift，触摸端两指同时按下
func AltSpawn(p Pointer, shift bool) bool {
	return shift || p.Touches >= 2
}
