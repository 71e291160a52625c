// Package scripting 以 Lua 脚本搭建场景
//
// 脚本可用的全局函数：
//
//	liquid(gravity_scale, density, radius) -> id
//	cup(x, y, w, h) / box(x, y, w, h) / surface(x, y, w, h) -> id
//	sponge(x, y, half_w, half_h)
//	dispenser(x, y [, {flags = {"viscous"}, color = {r, g, b, a}}]) -> id
//	pour(rate [, id])
//
// 脚本还可以定义 on_tick(tick)，每帧被调用一次。
// 坐标为渲染坐标（Y 轴向下）。前置条件在调用世界之前检查，失败时抛出 Lua 错误。
package scripting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/types"
)

// Builder 脚本可以操作的世界接口
type Builder interface {
	CreateParticleSystem(gravityScale, density, radius float64) ecs.EntityID
	CreateItem(kind types.ItemType, position, size mgl64.Vec2) ecs.EntityID
	CreateSponge(position, size mgl64.Vec2)
	CreateDispenser(def liquid.GroupDef, position mgl64.Vec2, texture *ebiten.Image) ecs.EntityID
	ParticleSystems() []ecs.EntityID
	Liquid(id ecs.EntityID) (*liquid.System, bool)
	SetDispenserRate(id ecs.EntityID, rate float64) bool
	SetAllDispenserRates(rate float64)
}

// Engine 单个 gopher-lua 虚拟机
// 只能在游戏循环所在的 goroutine 中使用
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	world  Builder
	nozzle *ebiten.Image
}

// NewEngine 创建脚本引擎并注册场景函数
func NewEngine(world Builder, nozzle *ebiten.Image, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, world: world, nozzle: nozzle}
	e.register()
	return e
}

func (e *Engine) register() {
	funcs := map[string]lua.LGFunction{
		"liquid":    e.luaLiquid,
		"cup":       e.itemFunc(types.ItemCup),
		"box":       e.itemFunc(types.ItemBox),
		"surface":   e.itemFunc(types.ItemSurface),
		"sponge":    e.luaSponge,
		"dispenser": e.luaDispenser,
		"pour":      e.luaPour,
	}
	for name, fn := range funcs {
		e.vm.SetGlobal(name, e.vm.NewFunction(fn))
	}
}

// RunFile 执行脚本文件
func (e *Engine) RunFile(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("run script %s: %w", path, err)
	}
	e.log.Debug("lua script executed", zap.String("file", path))
	return nil
}

// RunString 执行脚本源码
func (e *Engine) RunString(name, src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run script %s: %w", name, err)
	}
	e.log.Debug("lua script executed", zap.String("name", name))
	return nil
}

// HasTickHook 脚本是否定义了 on_tick
func (e *Engine) HasTickHook() bool {
	return e.vm.GetGlobal("on_tick").Type() == lua.LTFunction
}

// Tick 调用脚本的 on_tick(tick)；未定义时什么也不做
func (e *Engine) Tick(tick uint64) error {
	fn := e.vm.GetGlobal("on_tick")
	if fn.Type() != lua.LTFunction {
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(tick)); err != nil {
		e.log.Error("lua on_tick error", zap.Uint64("tick", tick), zap.Error(err))
		return fmt.Errorf("on_tick: %w", err)
	}
	return nil
}

// Close 关闭虚拟机
func (e *Engine) Close() {
	e.vm.Close()
}

// --- 场景函数 ---

func (e *Engine) luaLiquid(L *lua.LState) int {
	gravityScale := float64(L.CheckNumber(1))
	density := float64(L.CheckNumber(2))
	radius := float64(L.CheckNumber(3))
	if radius <= 0 {
		L.ArgError(3, "radius must be positive")
		return 0
	}
	for _, id := range e.world.ParticleSystems() {
		if sys, ok := e.world.Liquid(id); ok && sys.Radius() == radius {
			L.RaiseError("particle radius %g already in use", radius)
			return 0
		}
	}
	id := e.world.CreateParticleSystem(gravityScale, density, radius)
	L.Push(lua.LNumber(id))
	return 1
}

func (e *Engine) itemFunc(kind types.ItemType) lua.LGFunction {
	return func(L *lua.LState) int {
		pos := mgl64.Vec2{float64(L.CheckNumber(1)), float64(L.CheckNumber(2))}
		size := mgl64.Vec2{float64(L.CheckNumber(3)), float64(L.CheckNumber(4))}
		if size.X() <= 0 || size.Y() <= 0 {
			L.RaiseError("%s size must be positive", kind)
			return 0
		}
		id := e.world.CreateItem(kind, pos, size)
		L.Push(lua.LNumber(id))
		return 1
	}
}

func (e *Engine) requireLiquid(L *lua.LState, fn string) bool {
	if len(e.world.ParticleSystems()) == 0 {
		L.RaiseError("%s: call liquid() first", fn)
		return false
	}
	return true
}

func (e *Engine) luaSponge(L *lua.LState) int {
	pos := mgl64.Vec2{float64(L.CheckNumber(1)), float64(L.CheckNumber(2))}
	half := mgl64.Vec2{float64(L.CheckNumber(3)), float64(L.CheckNumber(4))}
	if !e.requireLiquid(L, "sponge") {
		return 0
	}
	e.world.CreateSponge(pos, half)
	return 0
}

func (e *Engine) luaDispenser(L *lua.LState) int {
	pos := mgl64.Vec2{float64(L.CheckNumber(1)), float64(L.CheckNumber(2))}
	opts := L.OptTable(3, nil)
	if !e.requireLiquid(L, "dispenser") {
		return 0
	}

	def := liquid.GroupDef{Color: render.ToColor([4]uint8{40, 110, 230, 200})}
	if opts != nil {
		if flags, ok := opts.RawGetString("flags").(*lua.LTable); ok {
			var err error
			if def.Flags, err = parseFlags(flags); err != nil {
				L.RaiseError("dispenser: %v", err)
				return 0
			}
		}
		if clr, ok := opts.RawGetString("color").(*lua.LTable); ok {
			rgba, err := parseColor(clr)
			if err != nil {
				L.RaiseError("dispenser: %v", err)
				return 0
			}
			def.Color = render.ToColor(rgba)
		}
	}

	id := e.world.CreateDispenser(def, pos, e.nozzle)
	L.Push(lua.LNumber(id))
	return 1
}

func (e *Engine) luaPour(L *lua.LState) int {
	rate := float64(L.CheckNumber(1))
	if rate < 0 {
		L.ArgError(1, "rate must not be negative")
		return 0
	}
	if L.GetTop() >= 2 {
		id := ecs.EntityID(L.CheckInt64(2))
		if !e.world.SetDispenserRate(id, rate) {
			L.RaiseError("pour: entity %d is not a dispenser", id)
		}
		return 0
	}
	e.world.SetAllDispenserRates(rate)
	return 0
}

// --- Lua helpers ---

func parseFlags(t *lua.LTable) (liquid.ParticleFlag, error) {
	var flags liquid.ParticleFlag
	var err error
	t.ForEach(func(_, v lua.LValue) {
		if err != nil {
			return
		}
		f, ok := liquid.ParseFlag(lua.LVAsString(v))
		if !ok {
			err = fmt.Errorf("unknown particle flag %q", lua.LVAsString(v))
			return
		}
		flags |= f
	})
	return flags, err
}

func parseColor(t *lua.LTable) ([4]uint8, error) {
	var rgba [4]uint8
	if t.Len() != 4 {
		return rgba, fmt.Errorf("color needs 4 components, got %d", t.Len())
	}
	for i := 0; i < 4; i++ {
		v := int(lua.LVAsNumber(t.RawGetInt(i + 1)))
		if v < 0 || v > 255 {
			return rgba, fmt.Errorf("color component %d out of range: %d", i, v)
		}
		rgba[i] = uint8(v)
	}
	return rgba, nil
}
