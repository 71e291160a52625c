package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Settings 全局运行设置
type Settings struct {
	// SuppressRender 只模拟不绘制（剔除照常进行）
	SuppressRender bool `yaml:"suppressRender"`
	// DebugGrid 显示调试网格与坐标轴
	DebugGrid bool `yaml:"debugGrid"`
	// Fullscreen 启动时是否全屏
	Fullscreen bool `yaml:"fullscreen"`
	// InspectorAddr 快照推送服务监听地址，空字符串表示不启动
	InspectorAddr string `yaml:"inspectorAddr"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *Settings {
	return &Settings{
		SuppressRender: false,
		DebugGrid:      false,
		Fullscreen:     false,
		InspectorAddr:  "",
	}
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *Settings
	logger       *zap.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//   - logger: 可为 nil
//
// 加载失败不是致命错误：记录警告并使用默认设置。
func NewSettingsManager(gdataManager *gdata.Manager, logger *zap.Logger) *SettingsManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		logger:       logger.Named("settings"),
	}

	if err := sm.Load(); err != nil {
		sm.logger.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	return sm
}

// Load 从 gdata 加载设置
//
// gdataManager 为 nil 或数据不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	sm.settings = loaded
	sm.logger.Debug("settings loaded")
	return nil
}

// Save 保存设置到 gdata
// gdataManager 为 nil 时什么也不做
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	sm.logger.Debug("settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *Settings {
	return sm.settings
}

// ToggleSuppressRender 切换禁用渲染，返回新值
// 注意：仅修改内存中的设置，需调用 Save() 持久化
func (sm *SettingsManager) ToggleSuppressRender() bool {
	sm.settings.SuppressRender = !sm.settings.SuppressRender
	return sm.settings.SuppressRender
}

// ToggleDebugGrid 切换调试网格，返回新值
func (sm *SettingsManager) ToggleDebugGrid() bool {
	sm.settings.DebugGrid = !sm.settings.DebugGrid
	return sm.settings.DebugGrid
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetInspectorAddr 设置快照推送地址
func (sm *SettingsManager) SetInspectorAddr(addr string) {
	sm.settings.InspectorAddr = addr
}
