package scenes

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/internal/inspect"
	"github.com/decker502/liquidbox/pkg/game"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/types"
	"github.com/decker502/liquidbox/pkg/utils"
	"github.com/decker502/liquidbox/pkg/world"
)

// 交互生成的物品尺寸（渲染坐标单位）
var (
	spawnBoxSize    = mgl64.Vec2{4, 4}
	spawnCupSize    = mgl64.Vec2{10, 12}
	spawnSpongeHalf = mgl64.Vec2{4, 2}
)

var playgroundBgColor = color.RGBA{R: 24, G: 26, B: 32, A: 255}

const (
	debugGridSpacing = 10.0
	// defaultPublishEvery 每隔多少步发布一次快照
	defaultPublishEvery = 6
)

// PlaygroundOptions 构造 PlaygroundScene 的参数
type PlaygroundOptions struct {
	Simulation    *Simulation
	PixelsPerUnit float64
	// Settings 可为 nil（不保存开关状态）
	Settings *game.SettingsManager
	// Inspector 可为 nil；非 nil 时每 PublishEvery 步发布一次快照
	Inspector    *inspect.Server
	PublishEvery int
	Logger       *zap.Logger
}

// PlaygroundScene 交互式沙盒场景
//
// 操作：
//
//	鼠标左键 / 单指  - 在光标处放置箱子
//	Shift + 左键 / 两指 - 在光标处放置杯子
//	S              - 在光标处放置海绵（需要至少一个粒子系统）
//	D              - 开关所有发射器
//	R              - 开关渲染（剔除照常进行）
//	G              - 开关调试网格
//	三指触摸        - 开关所有发射器（移动端）
type PlaygroundScene struct {
	sim       *Simulation
	camera    *render.Camera
	screen    *render.ScreenTarget
	buffer    render.CommandBuffer
	grid      *render.DebugGrid
	settings  *game.SettingsManager
	inspector *inspect.Server
	logger    *zap.Logger

	publishEvery int
	showGrid     bool
	last         world.StepStats
}

// NewPlaygroundScene 创建沙盒场景
func NewPlaygroundScene(opts PlaygroundOptions) *PlaygroundScene {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publishEvery := opts.PublishEvery
	if publishEvery <= 0 {
		publishEvery = defaultPublishEvery
	}

	bounds := opts.Simulation.World().Bounds()
	camera := render.NewCamera(bounds, opts.PixelsPerUnit)
	ps := &PlaygroundScene{
		sim:          opts.Simulation,
		camera:       camera,
		screen:       render.NewScreenTarget(camera),
		grid:         render.NewDebugGrid(bounds, debugGridSpacing),
		settings:     opts.Settings,
		inspector:    opts.Inspector,
		logger:       logger.Named("playground"),
		publishEvery: publishEvery,
	}
	if ps.settings != nil {
		s := ps.settings.GetSettings()
		ps.sim.SuppressRender = s.SuppressRender
		ps.showGrid = s.DebugGrid
	}
	return ps
}

// ScreenSize 返回场景需要的逻辑屏幕尺寸
func (ps *PlaygroundScene) ScreenSize() (int, int) {
	return ps.camera.ScreenSize()
}

// Update 处理输入并推进一步
// 世界的绘制调用写入命令缓冲，在 Draw 中回放
func (ps *PlaygroundScene) Update(deltaTime float64) {
	ps.handleInput()
	ps.advance()
}

// advance 推进一步并按间隔发布快照
func (ps *PlaygroundScene) advance() {
	ps.buffer.Reset()
	ps.last = ps.sim.Advance(&ps.buffer)

	if ps.inspector != nil && ps.sim.World().Tick()%uint64(ps.publishEvery) == 0 {
		ps.inspector.Publish(ps.sim.World().Snapshot())
	}
}

func (ps *PlaygroundScene) handleInput() {
	pointer := utils.ReadPointer()
	cursor := ps.camera.ToRenderSpace(mgl64.Vec2{float64(pointer.X), float64(pointer.Y)})

	// 移动端没有键盘：三指触摸开关发射器
	if utils.IsMobile() && pointer.JustPressed && pointer.Touches >= 3 {
		ps.TogglePour()
		return
	}
	if pointer.JustPressed {
		ps.SpawnItem(cursor, utils.AltSpawn(pointer, ebiten.IsKeyPressed(ebiten.KeyShift)))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		ps.AddSponge(cursor)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		ps.TogglePour()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		ps.ToggleSuppressRender()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		ps.ToggleGrid()
	}
}

// SpawnItem 在渲染坐标处放置箱子，cup 为 true 时放置杯子
func (ps *PlaygroundScene) SpawnItem(position mgl64.Vec2, cup bool) {
	kind, size := types.ItemBox, spawnBoxSize
	if cup {
		kind, size = types.ItemCup, spawnCupSize
	}
	w := ps.sim.World()
	if w.PositionOutOfBounds(mgl64.Vec2{position.X(), -position.Y()}) {
		return
	}
	w.CreateItem(kind, position, size)
}

// AddSponge 在渲染坐标处放置海绵；没有粒子系统时返回 false
func (ps *PlaygroundScene) AddSponge(position mgl64.Vec2) bool {
	w := ps.sim.World()
	if len(w.ParticleSystems()) == 0 {
		ps.logger.Warn("sponge needs a particle system")
		return false
	}
	w.CreateSponge(position, spawnSpongeHalf)
	return true
}

// TogglePour 开关所有发射器，返回新状态
func (ps *PlaygroundScene) TogglePour() bool {
	w := ps.sim.World()
	w.Pour(!w.Pouring())
	ps.logger.Info("pour toggled", zap.Bool("pouring", w.Pouring()))
	return w.Pouring()
}

// ToggleSuppressRender 开关渲染，返回新状态
func (ps *PlaygroundScene) ToggleSuppressRender() bool {
	if ps.settings != nil {
		ps.sim.SuppressRender = ps.settings.ToggleSuppressRender()
	} else {
		ps.sim.SuppressRender = !ps.sim.SuppressRender
	}
	return ps.sim.SuppressRender
}

// ToggleGrid 开关调试网格，返回新状态
func (ps *PlaygroundScene) ToggleGrid() bool {
	if ps.settings != nil {
		ps.showGrid = ps.settings.ToggleDebugGrid()
	} else {
		ps.showGrid = !ps.showGrid
	}
	return ps.showGrid
}

// Draw 回放最近一步的绘制命令
func (ps *PlaygroundScene) Draw(screen *ebiten.Image) {
	screen.Fill(playgroundBgColor)
	ps.screen.Begin(screen)
	if ps.showGrid {
		ps.grid.Draw(ps.screen)
	}
	ps.buffer.Replay(ps.screen)

	w := ps.sim.World()
	particles := 0
	for _, id := range w.ParticleSystems() {
		if sys, ok := w.Liquid(id); ok {
			particles += sys.ParticleCount()
		}
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"tick %d  bodies %d  particles %d  pouring %v  render %v\nemitted %d  culled particles %d  culled bodies %d  draw calls %d",
		w.Tick(), w.BodyCount(), particles, w.Pouring(), !ps.sim.SuppressRender,
		ps.last.Emitted, ps.last.CulledParticles, ps.last.CulledBodies, ps.screen.DrawCalls()))
}

// Close 销毁世界并保存开关状态
func (ps *PlaygroundScene) Close() {
	ps.sim.Close()
	if ps.settings != nil {
		if err := ps.settings.Save(); err != nil {
			ps.logger.Warn("failed to save settings", zap.Error(err))
		}
	}
}
