package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// SceneFactory 场景工厂函数类型
// 根据场景名创建场景，失败时返回错误
type SceneFactory func(name string) (Scene, error)

// SceneManager manages which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
	logger       *zap.Logger
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager(logger *zap.Logger) *SceneManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SceneManager{logger: logger.Named("scenes")}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene, closing the previous one if it implements Closer.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene == scene {
		return
	}
	sm.closeCurrent()
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadScene 通过工厂创建并切换到指定场景
// 创建失败时保留当前场景
func (sm *SceneManager) LoadScene(name string) bool {
	if sm.sceneFactory == nil {
		sm.logger.Error("scene factory not set")
		return false
	}
	scene, err := sm.sceneFactory(name)
	if err != nil {
		sm.logger.Error("failed to create scene", zap.String("scene", name), zap.Error(err))
		return false
	}
	sm.SwitchTo(scene)
	sm.logger.Info("scene loaded", zap.String("scene", name))
	return true
}

// Close 关闭当前场景
func (sm *SceneManager) Close() {
	sm.closeCurrent()
	sm.currentScene = nil
}

func (sm *SceneManager) closeCurrent() {
	if c, ok := sm.currentScene.(Closer); ok {
		c.Close()
	}
}

// Update updates the currently active scene.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
