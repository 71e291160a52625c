package types

import "github.com/go-gl/mathgl/mgl64"

// Bounds 描述世界的四条边界（渲染坐标系，Y 轴向下）
//
// 物理引擎使用 Y 轴向上的坐标系，因此判定时对 Y 取反。
// 构造后只读。
type Bounds struct {
	North int `yaml:"north" toml:"north"`
	East  int `yaml:"east" toml:"east"`
	South int `yaml:"south" toml:"south"`
	West  int `yaml:"west" toml:"west"`
}

// OutOfBounds 判断引擎坐标 position 是否越界
//
// 规则: -y > south || x < west || x > east
// 注意：北边界不参与判定，任意高度的位置都不会被视为越界。
func OutOfBounds(position mgl64.Vec2, north, east, south, west int) bool {
	return -position.Y() > float64(south) ||
		position.X() < float64(west) ||
		position.X() > float64(east)
}

// OutOfBounds 使用当前边界判定 position 是否越界
func (b Bounds) OutOfBounds(position mgl64.Vec2) bool {
	return OutOfBounds(position, b.North, b.East, b.South, b.West)
}

// Width 返回东西边界之间的宽度
func (b Bounds) Width() int {
	return b.East - b.West
}

// Height 返回南北边界之间的高度
func (b Bounds) Height() int {
	return b.South - b.North
}
