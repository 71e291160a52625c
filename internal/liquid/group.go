package liquid

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// GroupDef 粒子组定义
//
// HalfSize 描述以 Position 为中心的方形区域半宽高；
// 为零时创建空组（例如发射器的目标组，粒子之后逐个注入）。
type GroupDef struct {
	Flags          ParticleFlag
	Position       mgl64.Vec2
	HalfSize       mgl64.Vec2
	LinearVelocity mgl64.Vec2
	Color          color.RGBA
}

// Group 一起创建的粒子子集
type Group struct {
	system *System
	flags  ParticleFlag
	color  color.RGBA
	count  int
}

// ParticleCount 返回组内当前粒子数量
func (g *Group) ParticleCount() int {
	return g.count
}

// Flags 返回组的粒子标志模板
func (g *Group) Flags() ParticleFlag {
	return g.flags
}

// Color 返回组的颜色模板
func (g *Group) Color() color.RGBA {
	return g.color
}

// System 返回所属的粒子系统
func (g *Group) System() *System {
	return g.system
}

// CreateParticleGroup 按定义创建粒子组
//
// 方形区域内按 stride（0.75 倍粒子直径）铺设规则点阵，点阵关于中心对称。
// 超出系统容量的粒子被丢弃。
func (s *System) CreateParticleGroup(def GroupDef) *Group {
	group := &Group{
		system: s,
		flags:  def.Flags,
		color:  def.Color,
	}
	s.groupList = append(s.groupList, group)

	if def.HalfSize.X() <= 0 || def.HalfSize.Y() <= 0 {
		return group
	}

	stride := s.Stride()
	nx := int(2*def.HalfSize.X()/stride) + 1
	ny := int(2*def.HalfSize.Y()/stride) + 1
	originX := def.Position.X() - float64(nx-1)*stride/2
	originY := def.Position.Y() - float64(ny-1)*stride/2

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			pd := ParticleDef{
				Flags:    def.Flags,
				Position: mgl64.Vec2{originX + float64(i)*stride, originY + float64(j)*stride},
				Velocity: def.LinearVelocity,
				Color:    def.Color,
				Group:    group,
			}
			if s.CreateParticle(pd) == InvalidParticleIndex {
				return group
			}
		}
	}
	return group
}
