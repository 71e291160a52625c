package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/types"
)

// SceneFormat 场景文件格式
type SceneFormat string

const (
	FormatYAML SceneFormat = "yaml"
	FormatTOML SceneFormat = "toml"
)

// SceneConfig 场景配置
//
// 描述世界参数、步进参数以及初始放置的粒子系统、物品、海绵和发射器。
// 所有位置和尺寸使用渲染坐标（Y 轴向下）。
//
// 配置文件位置: data/scenes/*.yaml 或 *.toml
type SceneConfig struct {
	World      WorldConfig       `yaml:"world" toml:"world"`
	Step       StepConfig        `yaml:"step" toml:"step"`
	Liquids    []LiquidConfig    `yaml:"liquids" toml:"liquids"`
	Items      []ItemConfig      `yaml:"items" toml:"items"`
	Sponges    []SpongeConfig    `yaml:"sponges" toml:"sponges"`
	Dispensers []DispenserConfig `yaml:"dispensers" toml:"dispensers"`

	// Script 可选的 Lua 场景脚本路径，与场景文件路径解析方式相同（内嵌 data/ 或工作目录）
	Script string `yaml:"script" toml:"script"`
}

// WorldConfig 世界参数
type WorldConfig struct {
	GravityX float64      `yaml:"gravityX" toml:"gravity_x"`
	GravityY float64      `yaml:"gravityY" toml:"gravity_y"`
	Bounds   types.Bounds `yaml:"bounds" toml:"bounds"`

	// PixelsPerUnit 渲染缩放（像素/引擎单位）
	PixelsPerUnit float64 `yaml:"pixelsPerUnit" toml:"pixels_per_unit"`
	// PourRate 发射器触发时的速率（粒子/秒）
	PourRate float64 `yaml:"pourRate" toml:"pour_rate"`
}

// StepConfig 固定步进参数
type StepConfig struct {
	TimeStep           float64 `yaml:"timeStep" toml:"time_step"`
	VelocityIterations int     `yaml:"velocityIterations" toml:"velocity_iterations"`
	PositionIterations int     `yaml:"positionIterations" toml:"position_iterations"`
	ParticleIterations int     `yaml:"particleIterations" toml:"particle_iterations"`
}

// LiquidConfig 粒子系统参数
type LiquidConfig struct {
	GravityScale float64 `yaml:"gravityScale" toml:"gravity_scale"`
	Density      float64 `yaml:"density" toml:"density"`
	Radius       float64 `yaml:"radius" toml:"radius"`
}

// ItemConfig 物品放置
type ItemConfig struct {
	Kind   string  `yaml:"kind" toml:"kind"`
	X      float64 `yaml:"x" toml:"x"`
	Y      float64 `yaml:"y" toml:"y"`
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// SpongeConfig 海绵放置（半宽高）
type SpongeConfig struct {
	X          float64 `yaml:"x" toml:"x"`
	Y          float64 `yaml:"y" toml:"y"`
	HalfWidth  float64 `yaml:"halfWidth" toml:"half_width"`
	HalfHeight float64 `yaml:"halfHeight" toml:"half_height"`
}

// DispenserConfig 发射器放置
type DispenserConfig struct {
	X     float64  `yaml:"x" toml:"x"`
	Y     float64  `yaml:"y" toml:"y"`
	Flags []string `yaml:"flags" toml:"flags"`
	// Color RGBA，每个分量 0-255；为空时使用默认水色
	Color []int `yaml:"color" toml:"color"`
}

// DefaultDispenserColor 默认水色
var DefaultDispenserColor = [4]uint8{40, 110, 230, 200}

// DefaultSceneConfig 返回默认场景参数（无任何放置）
func DefaultSceneConfig() *SceneConfig {
	return &SceneConfig{
		World: WorldConfig{
			GravityX:      0,
			GravityY:      10,
			Bounds:        types.Bounds{North: -10, East: 80, South: 60, West: 0},
			PixelsPerUnit: 10,
			PourRate:      120,
		},
		Step: StepConfig{
			TimeStep:           1.0 / 60,
			VelocityIterations: 8,
			PositionIterations: 3,
			ParticleIterations: 3,
		},
	}
}

// LoadSceneConfig 加载场景配置
//
// 根据扩展名选择格式：.yaml/.yml 使用 YAML，.toml 使用 TOML。
// 未出现在文件中的字段保留 DefaultSceneConfig 的值。
//
// 参数:
//   - path: 配置文件路径（如 "data/scenes/default.yaml"）
//
// 返回:
//   - *SceneConfig: 加载并验证后的配置
//   - error: 读取、解析或验证失败时返回错误
func LoadSceneConfig(path string) (*SceneConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene config %s: %w", path, err)
	}
	cfg, err := ParseSceneConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FormatFromPath 根据扩展名判断场景格式
func FormatFromPath(path string) (SceneFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported scene config extension: %q", filepath.Ext(path))
	}
}

// ParseSceneConfig 解析并验证场景配置
func ParseSceneConfig(data []byte, format SceneFormat) (*SceneConfig, error) {
	cfg := DefaultSceneConfig()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse scene config: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse scene config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scene config format: %q", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene config: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置有效性
//
// 检查：
//   - 边界必须围成非空矩形
//   - 时间步长和缩放为正数，速度迭代至少 1 次
//   - 粒子半径为正且互不相同
//   - 物品类型可识别、尺寸为正
//   - 海绵和发射器之前必须至少有一个粒子系统
func (c *SceneConfig) Validate() error {
	b := c.World.Bounds
	if b.East <= b.West {
		return fmt.Errorf("bounds invalid: east(%d) <= west(%d)", b.East, b.West)
	}
	if b.South <= b.North {
		return fmt.Errorf("bounds invalid: south(%d) <= north(%d)", b.South, b.North)
	}
	if c.World.PixelsPerUnit <= 0 {
		return fmt.Errorf("pixelsPerUnit must be positive, got %.2f", c.World.PixelsPerUnit)
	}
	if c.World.PourRate < 0 {
		return fmt.Errorf("pourRate must not be negative, got %.2f", c.World.PourRate)
	}

	if c.Step.TimeStep <= 0 {
		return fmt.Errorf("timeStep must be positive, got %f", c.Step.TimeStep)
	}
	if c.Step.VelocityIterations < 1 || c.Step.PositionIterations < 0 || c.Step.ParticleIterations < 0 {
		return fmt.Errorf("iterations invalid: velocity=%d position=%d particle=%d",
			c.Step.VelocityIterations, c.Step.PositionIterations, c.Step.ParticleIterations)
	}

	radii := make(map[float64]int, len(c.Liquids))
	for i, l := range c.Liquids {
		if l.Radius <= 0 {
			return fmt.Errorf("liquids[%d]: radius must be positive, got %f", i, l.Radius)
		}
		if l.Density < 0 {
			return fmt.Errorf("liquids[%d]: density must not be negative, got %f", i, l.Density)
		}
		if j, dup := radii[l.Radius]; dup {
			return fmt.Errorf("liquids[%d]: radius %g already used by liquids[%d]", i, l.Radius, j)
		}
		radii[l.Radius] = i
	}

	for i, it := range c.Items {
		if types.ParseItemType(it.Kind) == types.ItemUnknown {
			return fmt.Errorf("items[%d]: unknown kind %q", i, it.Kind)
		}
		if it.Width <= 0 || it.Height <= 0 {
			return fmt.Errorf("items[%d]: size must be positive, got %.2fx%.2f", i, it.Width, it.Height)
		}
	}

	if len(c.Liquids) == 0 && (len(c.Sponges) > 0 || len(c.Dispensers) > 0) {
		return fmt.Errorf("sponges and dispensers require at least one liquid")
	}
	for i, s := range c.Sponges {
		if s.HalfWidth <= 0 || s.HalfHeight <= 0 {
			return fmt.Errorf("sponges[%d]: half size must be positive", i)
		}
	}
	for i, d := range c.Dispensers {
		if _, err := d.ParticleFlags(); err != nil {
			return fmt.Errorf("dispensers[%d]: %w", i, err)
		}
		if _, err := d.RGBA(); err != nil {
			return fmt.Errorf("dispensers[%d]: %w", i, err)
		}
	}
	return nil
}

// ParticleFlags 合并发射器的粒子标志
func (d DispenserConfig) ParticleFlags() (liquid.ParticleFlag, error) {
	var flags liquid.ParticleFlag
	for _, name := range d.Flags {
		f, ok := liquid.ParseFlag(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return 0, fmt.Errorf("unknown particle flag %q", name)
		}
		flags |= f
	}
	return flags, nil
}

// RGBA 返回发射器颜色
func (d DispenserConfig) RGBA() ([4]uint8, error) {
	if len(d.Color) == 0 {
		return DefaultDispenserColor, nil
	}
	if len(d.Color) != 4 {
		return [4]uint8{}, fmt.Errorf("color needs 4 components, got %d", len(d.Color))
	}
	var rgba [4]uint8
	for i, v := range d.Color {
		if v < 0 || v > 255 {
			return [4]uint8{}, fmt.Errorf("color component %d out of range: %d", i, v)
		}
		rgba[i] = uint8(v)
	}
	return rgba, nil
}
