// Package app 提供应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"

	"github.com/decker502/liquidbox/internal/inspect"
	"github.com/decker502/liquidbox/pkg/game"
	"github.com/decker502/liquidbox/pkg/scenes"
)

// DefaultScene 未指定场景时加载的嵌入场景
const DefaultScene = "data/scenes/default.yaml"

// 场景无法提供尺寸时的窗口大小
const (
	fallbackWidth  = 800
	fallbackHeight = 600
)

// Config 定义应用启动配置
type Config struct {
	// Scene 场景配置路径（"data/" 开头时从嵌入资源读取），为空则使用 DefaultScene
	Scene string
	// Script 覆盖场景中的脚本路径
	Script string
	// NozzleTexture 喷嘴贴图路径，为空则使用生成的纹理
	NozzleTexture string
	// InspectorAddr 覆盖设置中的快照推送地址
	InspectorAddr string
	// Logger 为 nil 时不输出日志
	Logger *zap.Logger
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager    *game.SceneManager
	settings        *game.SettingsManager
	resourceManager *game.ResourceManager
	inspector       *inspect.Server
	logger          *zap.Logger

	width, height int
}

// NewApp 创建并初始化应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// gdata 打开失败时以内存模式运行
	gdataManager, err := gdata.Open(gdata.Config{AppName: "liquidbox"})
	if err != nil {
		logger.Warn("gdata unavailable, settings will not persist", zap.Error(err))
		gdataManager = nil
	}
	settings := game.NewSettingsManager(gdataManager, logger)
	if cfg.InspectorAddr != "" {
		settings.SetInspectorAddr(cfg.InspectorAddr)
	}

	a := &App{
		sceneManager:    game.NewSceneManager(logger),
		settings:        settings,
		resourceManager: game.NewResourceManager(logger),
		logger:          logger.Named("app"),
		width:           fallbackWidth,
		height:          fallbackHeight,
	}

	if addr := settings.GetSettings().InspectorAddr; addr != "" {
		server := inspect.NewServer(0, logger)
		bound, err := server.Start(addr)
		if err != nil {
			return nil, fmt.Errorf("failed to start inspector: %w", err)
		}
		a.inspector = server
		a.logger.Info("inspector listening", zap.String("addr", bound))
	}

	a.sceneManager.SetSceneFactory(func(path string) (game.Scene, error) {
		return a.newPlayground(path, cfg)
	})

	scenePath := cfg.Scene
	if scenePath == "" {
		scenePath = DefaultScene
	}
	if !a.sceneManager.LoadScene(scenePath) {
		a.Close()
		return nil, fmt.Errorf("failed to load scene %s", scenePath)
	}
	return a, nil
}

// newPlayground 加载场景配置和脚本并创建沙盒场景
func (a *App) newPlayground(path string, cfg Config) (game.Scene, error) {
	scene, err := a.resourceManager.LoadScene(path)
	if err != nil {
		return nil, err
	}

	scriptPath := scene.Script
	if cfg.Script != "" {
		scriptPath = cfg.Script
	}
	var script string
	if scriptPath != "" {
		if script, err = a.resourceManager.LoadScript(scriptPath); err != nil {
			return nil, err
		}
	}

	sim, err := scenes.NewSimulation(scenes.SimulationOptions{
		Scene:      scene,
		Nozzle:     a.resourceManager.NozzleTexture(cfg.NozzleTexture),
		ScriptName: scriptPath,
		Script:     script,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}

	ps := scenes.NewPlaygroundScene(scenes.PlaygroundOptions{
		Simulation:    sim,
		PixelsPerUnit: scene.World.PixelsPerUnit,
		Settings:      a.settings,
		Inspector:     a.inspector,
		Logger:        a.logger,
	})
	a.width, a.height = ps.ScreenSize()
	return ps, nil
}

// WindowSize 返回当前场景需要的窗口尺寸
func (a *App) WindowSize() (int, int) {
	return a.width, a.height
}

// Settings 返回设置管理器
func (a *App) Settings() *game.SettingsManager {
	return a.settings
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		fullscreen := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(fullscreen)
		a.settings.SetFullscreen(fullscreen)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	a.sceneManager.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸，等于场景边界乘以缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

// Close 关闭场景（销毁世界、保存设置）并停止快照服务
func (a *App) Close() {
	a.sceneManager.Close()
	if a.inspector != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.inspector.Shutdown(ctx); err != nil {
			a.logger.Warn("inspector shutdown", zap.Error(err))
		}
		a.inspector = nil
	}
}
