// Package liquid 实现世界使用的粒子流体系统
//
// 每个 System 拥有固定的粒子半径、密度和重力缩放，以及按索引存储的
// 位置、速度、颜色和标志缓冲区。粒子从不在扫描中途被结构性删除：
// 调用方只设置 ZombieParticle 标志，真正的移除发生在下一次 Step 开头的压缩阶段。
package liquid

// ParticleFlag 粒子标志位集合
type ParticleFlag uint32

const (
	// WaterParticle 普通流体粒子（无任何标志）
	WaterParticle ParticleFlag = 0
	// ZombieParticle 待移除粒子，在下一次 Step 开头被压缩移除
	ZombieParticle ParticleFlag = 1 << 1
	// WallParticle 静止粒子，不受重力和挤压影响（海绵）
	WallParticle ParticleFlag = 1 << 2
	// ViscousParticle 粘性粒子，速度每步衰减
	ViscousParticle ParticleFlag = 1 << 5
	// PowderParticle 粉末粒子，只受排斥不受粘滞
	PowderParticle ParticleFlag = 1 << 6
)

// Has 检查是否包含指定标志
func (f ParticleFlag) Has(flag ParticleFlag) bool {
	return f&flag == flag && flag != 0
}

// ParseFlag 从配置名称解析单个标志
// 无法识别的名称返回 false
func ParseFlag(name string) (ParticleFlag, bool) {
	switch name {
	case "water":
		return WaterParticle, true
	case "zombie":
		return ZombieParticle, true
	case "wall":
		return WallParticle, true
	case "viscous":
		return ViscousParticle, true
	case "powder":
		return PowderParticle, true
	default:
		return 0, false
	}
}
