package scenes

import (
	"fmt"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/internal/scripting"
	"github.com/decker502/liquidbox/pkg/config"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/world"
)

// SimulationOptions 构造 Simulation 的参数
type SimulationOptions struct {
	// Scene 已通过 Validate 的场景配置
	Scene *config.SceneConfig
	// Nozzle 发射器喷嘴贴图，可为 nil（退化为纯色多边形）
	Nozzle *ebiten.Image
	// ScriptName / Script Lua 场景脚本，Script 为空表示不使用脚本
	ScriptName string
	Script     string
	// Rand 发射器随机源，nil 时使用固定种子
	Rand   *rand.Rand
	Logger *zap.Logger
}

// Simulation 世界 + 可选的 Lua 脚本 + 固定步长参数
//
// 窗口场景和无窗口运行共用同一个 Simulation。只能在一个 goroutine 中使用。
type Simulation struct {
	world  *world.World
	script *scripting.Engine
	step   config.StepConfig
	logger *zap.Logger

	// SuppressRender 为 true 时 Advance 不产生任何绘制调用
	SuppressRender bool

	totals world.StepStats
	closed bool
}

// NewSimulation 创建世界、按场景配置填充，然后执行脚本
// 脚本出错时释放已创建的世界并返回错误
func NewSimulation(opts SimulationOptions) (*Simulation, error) {
	if opts.Scene == nil {
		return nil, fmt.Errorf("simulation needs a scene config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := world.ConfigFromScene(opts.Scene)
	cfg.Rand = opts.Rand
	w := world.New(cfg, logger)
	w.Populate(opts.Scene, opts.Nozzle)

	sim := &Simulation{
		world:  w,
		step:   opts.Scene.Step,
		logger: logger.Named("simulation"),
	}

	if opts.Script != "" {
		eng := scripting.NewEngine(w, opts.Nozzle, logger.Named("lua"))
		if err := eng.RunString(opts.ScriptName, opts.Script); err != nil {
			eng.Close()
			w.Destroy()
			return nil, err
		}
		if eng.HasTickHook() {
			sim.script = eng
		} else {
			eng.Close()
		}
	}

	sim.logger.Info("simulation ready",
		zap.Int("bodies", w.BodyCount()),
		zap.Int("liquids", len(w.ParticleSystems())),
		zap.Int("dispensers", len(w.Dispensers())),
		zap.Bool("tick_hook", sim.script != nil))
	return sim, nil
}

// World 返回底层世界
func (s *Simulation) World() *world.World {
	return s.world
}

// TimeStep 返回固定时间步长（秒）
func (s *Simulation) TimeStep() float64 {
	return s.step.TimeStep
}

// Totals 返回累计统计
func (s *Simulation) Totals() world.StepStats {
	return s.totals
}

// Advance 调用脚本 on_tick，然后推进世界一步
//
// 脚本错误已由脚本引擎记录，不会中断模拟。
func (s *Simulation) Advance(target render.Target) world.StepStats {
	if s.script != nil {
		_ = s.script.Tick(s.world.Tick())
	}
	stats := s.world.Step(s.step.TimeStep,
		s.step.VelocityIterations, s.step.PositionIterations, s.step.ParticleIterations,
		target, s.SuppressRender)

	s.totals.Emitted += stats.Emitted
	s.totals.CulledParticles += stats.CulledParticles
	s.totals.CulledBodies += stats.CulledBodies
	return stats
}

// Close 关闭脚本并销毁世界，重复调用是安全的
func (s *Simulation) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.script != nil {
		s.script.Close()
	}
	s.world.Destroy()
}
