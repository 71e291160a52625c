package liquid

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// InvalidParticleIndex 粒子创建失败（容量已满）时返回
const InvalidParticleIndex = -1

// strideFactor 粒子点阵间距与直径之比
const strideFactor = 0.75

// viscousDamping 粘性粒子每秒速度衰减系数
const viscousDamping = 4.0

// Def 粒子系统参数，创建后不可修改
type Def struct {
	Radius       float64
	Density      float64
	GravityScale float64
	// MaxCount 最大粒子数，0 表示不限
	MaxCount int
}

// ParticleDef 单个粒子定义
type ParticleDef struct {
	Flags    ParticleFlag
	Position mgl64.Vec2
	Velocity mgl64.Vec2
	Color    color.RGBA
	Group    *Group
}

// Collider 判断引擎坐标上的点是否落在固体内部
type Collider interface {
	Blocked(p mgl64.Vec2) bool
}

// ColliderFunc 函数适配器
type ColliderFunc func(p mgl64.Vec2) bool

// Blocked 实现 Collider
func (f ColliderFunc) Blocked(p mgl64.Vec2) bool {
	return f(p)
}

// Hit 线段扫掠命中的固体表面
type Hit struct {
	Point  mgl64.Vec2
	Normal mgl64.Vec2
}

// Sweeper 可选接口：返回线段 from→to 最先穿入的固体表面
// 碰撞体实现它后，单步位移超过夹具厚度的粒子也不会穿透
type Sweeper interface {
	Sweep(from, to mgl64.Vec2) (Hit, bool)
}

// surfaceSkin 命中点沿法线外移的距离，避免下一步起点落在表面上
const surfaceSkin = 1e-4

// System 粒子系统
type System struct {
	def Def

	positions  []mgl64.Vec2
	velocities []mgl64.Vec2
	colors     []color.RGBA
	flags      []ParticleFlag
	owners     []*Group

	groupList []*Group
	grid      *spatialGrid
	previous  []mgl64.Vec2
}

// NewSystem 创建粒子系统
// 半径必须为正数，否则视为编程错误
func NewSystem(def Def) *System {
	if def.Radius <= 0 {
		panic("liquid: particle radius must be positive")
	}
	return &System{
		def:  def,
		grid: newSpatialGrid(2 * def.Radius),
	}
}

// Radius 返回粒子半径（创建后不变）
func (s *System) Radius() float64 { return s.def.Radius }

// Density 返回粒子密度
func (s *System) Density() float64 { return s.def.Density }

// GravityScale 返回重力缩放
func (s *System) GravityScale() float64 { return s.def.GravityScale }

// Stride 返回点阵间距
func (s *System) Stride() float64 { return strideFactor * 2 * s.def.Radius }

// ParticleMass 返回单个粒子质量
func (s *System) ParticleMass() float64 {
	stride := s.Stride()
	return s.def.Density * stride * stride
}

// ParticleCount 返回缓冲区中的粒子数量（包含已标记为 Zombie 但尚未压缩的粒子）
func (s *System) ParticleCount() int { return len(s.positions) }

// PositionBuffer 返回位置缓冲区，调用方只读
func (s *System) PositionBuffer() []mgl64.Vec2 { return s.positions }

// VelocityBuffer 返回速度缓冲区，调用方只读
func (s *System) VelocityBuffer() []mgl64.Vec2 { return s.velocities }

// ColorBuffer 返回颜色缓冲区，调用方只读
func (s *System) ColorBuffer() []color.RGBA { return s.colors }

// Groups 返回按创建顺序排列的粒子组
func (s *System) Groups() []*Group { return s.groupList }

// GetParticleFlags 返回第 i 个粒子的标志
func (s *System) GetParticleFlags(i int) ParticleFlag { return s.flags[i] }

// SetParticleFlags 设置第 i 个粒子的标志
func (s *System) SetParticleFlags(i int, flags ParticleFlag) { s.flags[i] = flags }

// GroupOf 返回第 i 个粒子所属的组（可能为 nil）
func (s *System) GroupOf(i int) *Group { return s.owners[i] }

// CreateParticle 创建单个粒子并返回索引
// 容量已满时返回 InvalidParticleIndex
func (s *System) CreateParticle(def ParticleDef) int {
	if s.def.MaxCount > 0 && len(s.positions) >= s.def.MaxCount {
		return InvalidParticleIndex
	}
	s.positions = append(s.positions, def.Position)
	s.velocities = append(s.velocities, def.Velocity)
	s.colors = append(s.colors, def.Color)
	s.flags = append(s.flags, def.Flags)
	s.owners = append(s.owners, def.Group)
	if def.Group != nil {
		def.Group.count++
	}
	return len(s.positions) - 1
}

// Step 推进粒子系统一个时间步
//
// 顺序：压缩 Zombie 粒子 → 积分重力 → iterations 次重叠松弛 → 固体碰撞 → 由位移反推速度。
// collider 可为 nil。
func (s *System) Step(dt float64, gravity mgl64.Vec2, iterations int, collider Collider) {
	s.compact()
	if dt <= 0 || len(s.positions) == 0 {
		return
	}

	if cap(s.previous) < len(s.positions) {
		s.previous = make([]mgl64.Vec2, len(s.positions))
	}
	s.previous = s.previous[:len(s.positions)]
	copy(s.previous, s.positions)

	g := gravity.Mul(s.def.GravityScale * dt)
	for i := range s.positions {
		if s.flags[i].Has(WallParticle) {
			s.velocities[i] = mgl64.Vec2{}
			continue
		}
		v := s.velocities[i].Add(g)
		if s.flags[i].Has(ViscousParticle) {
			v = v.Mul(1 / (1 + viscousDamping*dt))
		}
		s.velocities[i] = v
		s.positions[i] = s.positions[i].Add(v.Mul(dt))
	}

	for iter := 0; iter < iterations; iter++ {
		s.relax()
	}

	if collider != nil {
		s.collide(collider)
	}

	inv := 1 / dt
	for i := range s.positions {
		if s.flags[i].Has(WallParticle) {
			continue
		}
		s.velocities[i] = s.positions[i].Sub(s.previous[i]).Mul(inv)
	}
}

// relax 推开距离小于直径的粒子对；Wall 粒子保持不动
func (s *System) relax() {
	diameter := 2 * s.def.Radius
	s.grid.rebuild(s.positions)
	s.grid.forEachPair(s.positions, func(i, j int) {
		d := s.positions[j].Sub(s.positions[i])
		dist := d.Len()
		if dist >= diameter {
			return
		}
		var n mgl64.Vec2
		if dist < 1e-9 {
			// 完全重合时沿固定方向分开，保证结果确定
			n = mgl64.Vec2{1, 0}
		} else {
			n = d.Mul(1 / dist)
		}
		overlap := diameter - dist

		wallI := s.flags[i].Has(WallParticle)
		wallJ := s.flags[j].Has(WallParticle)
		switch {
		case wallI && wallJ:
		case wallI:
			s.positions[j] = s.positions[j].Add(n.Mul(overlap))
		case wallJ:
			s.positions[i] = s.positions[i].Sub(n.Mul(overlap))
		default:
			half := n.Mul(overlap / 2)
			s.positions[i] = s.positions[i].Sub(half)
			s.positions[j] = s.positions[j].Add(half)
		}
	})
}

// collide 把穿入固体的粒子拉回表面
// 碰撞体支持扫掠时先沿位移线段求首个命中点，再沿表面保留切向位移；
// 否则（或起点已在固体内）分轴回退，使粒子能沿表面滑动
func (s *System) collide(collider Collider) {
	sweeper, _ := collider.(Sweeper)
	for i, p := range s.positions {
		if s.flags[i].Has(WallParticle) {
			continue
		}
		prev := s.previous[i]
		if sweeper != nil && p != prev {
			if hit, ok := sweeper.Sweep(prev, p); ok {
				s.positions[i] = s.slide(sweeper, collider, hit, p)
				continue
			}
		}
		if !collider.Blocked(p) {
			continue
		}
		if slideX := (mgl64.Vec2{p.X(), prev.Y()}); !collider.Blocked(slideX) {
			s.positions[i] = slideX
			continue
		}
		if slideY := (mgl64.Vec2{prev.X(), p.Y()}); !collider.Blocked(slideY) {
			s.positions[i] = slideY
			continue
		}
		s.positions[i] = prev
	}
}

// slide 停在命中点外侧，剩余位移去掉法向分量后继续沿表面移动
func (s *System) slide(sweeper Sweeper, collider Collider, hit Hit, target mgl64.Vec2) mgl64.Vec2 {
	rest := hit.Point.Add(hit.Normal.Mul(surfaceSkin))
	remaining := target.Sub(hit.Point)
	tangent := remaining.Sub(hit.Normal.Mul(remaining.Dot(hit.Normal)))
	if tangent.Len() < 1e-9 {
		return rest
	}
	next := rest.Add(tangent)
	if _, blocked := sweeper.Sweep(rest, next); blocked || collider.Blocked(next) {
		return rest
	}
	return next
}

// compact 移除所有 Zombie 粒子，保持剩余粒子的相对顺序
func (s *System) compact() {
	n := 0
	for i := range s.positions {
		if s.flags[i].Has(ZombieParticle) {
			if g := s.owners[i]; g != nil {
				g.count--
			}
			continue
		}
		if n != i {
			s.positions[n] = s.positions[i]
			s.velocities[n] = s.velocities[i]
			s.colors[n] = s.colors[i]
			s.flags[n] = s.flags[i]
			s.owners[n] = s.owners[i]
		}
		n++
	}
	for i := n; i < len(s.owners); i++ {
		s.owners[i] = nil
	}
	s.positions = s.positions[:n]
	s.velocities = s.velocities[:n]
	s.colors = s.colors[:n]
	s.flags = s.flags[:n]
	s.owners = s.owners[:n]
}

// AliveCount 返回未被标记为 Zombie 的粒子数量
func (s *System) AliveCount() int {
	alive := 0
	for _, f := range s.flags {
		if !f.Has(ZombieParticle) {
			alive++
		}
	}
	return alive
}

// Bounds 返回所有粒子的外接矩形（无粒子时返回零值与 false）
func (s *System) Bounds() (lower, upper mgl64.Vec2, ok bool) {
	if len(s.positions) == 0 {
		return lower, upper, false
	}
	lower = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	upper = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, p := range s.positions {
		lower = mgl64.Vec2{math.Min(lower.X(), p.X()), math.Min(lower.Y(), p.Y())}
		upper = mgl64.Vec2{math.Max(upper.X(), p.X()), math.Max(upper.Y(), p.Y())}
	}
	return lower, upper, true
}
