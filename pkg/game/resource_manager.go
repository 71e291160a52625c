package game

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // Register PNG decoder
	"os"

	"github.com/decker502/liquidbox/pkg/config"
	"github.com/decker502/liquidbox/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// 程序生成的喷嘴纹理尺寸（像素）
const (
	nozzleTextureWidth  = 16
	nozzleTextureHeight = 32
	nozzleTextureKey    = "generated:nozzle"
)

// ResourceManager is responsible for loading scenes, scripts and images.
// Paths starting with "data/" are served from the embedded file system when it
// is initialized, everything else is read from disk.
//
// Images are loaded once and cached. This implementation is NOT thread-safe;
// it is only used from the game loop goroutine.
type ResourceManager struct {
	imageCache map[string]*ebiten.Image // path -> Image
	logger     *zap.Logger
}

// NewResourceManager creates a ResourceManager with an empty cache.
func NewResourceManager(logger *zap.Logger) *ResourceManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceManager{
		imageCache: make(map[string]*ebiten.Image),
		logger:     logger.Named("resources"),
	}
}

// readFile 优先从嵌入文件系统读取，找不到时回退到磁盘
func (rm *ResourceManager) readFile(path string) ([]byte, error) {
	if embedded.Exists(path) {
		return embedded.ReadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// LoadImage loads an image and caches it for future use.
func (rm *ResourceManager) LoadImage(path string) (*ebiten.Image, error) {
	if cached, ok := rm.imageCache[path]; ok {
		return cached, nil
	}

	data, err := rm.readFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	ebitenImg := ebiten.NewImageFromImage(img)
	rm.imageCache[path] = ebitenImg
	rm.logger.Debug("image loaded", zap.String("path", path))
	return ebitenImg, nil
}

// GetImage 返回已缓存的图片，未加载时返回 nil
func (rm *ResourceManager) GetImage(path string) *ebiten.Image {
	return rm.imageCache[path]
}

// NozzleTexture 返回喷嘴纹理
//
// path 非空时加载图片文件；为空或加载失败时使用程序生成的黄铜色渐变纹理。
func (rm *ResourceManager) NozzleTexture(path string) *ebiten.Image {
	if path != "" {
		img, err := rm.LoadImage(path)
		if err == nil {
			return img
		}
		rm.logger.Warn("nozzle texture unavailable, using generated one", zap.String("path", path), zap.Error(err))
	}

	if cached, ok := rm.imageCache[nozzleTextureKey]; ok {
		return cached
	}
	img := ebiten.NewImageFromImage(generateNozzleImage())
	rm.imageCache[nozzleTextureKey] = img
	return img
}

// generateNozzleImage 生成左右暗、中间亮的竖直渐变
func generateNozzleImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, nozzleTextureWidth, nozzleTextureHeight))
	for x := 0; x < nozzleTextureWidth; x++ {
		// 0 → 1 → 0
		t := 1 - absFloat(float64(2*x-(nozzleTextureWidth-1)))/float64(nozzleTextureWidth-1)
		c := color.RGBA{
			R: uint8(120 + 100*t),
			G: uint8(90 + 80*t),
			B: uint8(40 + 40*t),
			A: 255,
		}
		for y := 0; y < nozzleTextureHeight; y++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// LoadScene 加载场景配置（YAML 或 TOML，按扩展名判断）
func (rm *ResourceManager) LoadScene(path string) (*config.SceneConfig, error) {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := rm.readFile(path)
	if err != nil {
		return nil, err
	}
	scene, err := config.ParseSceneConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rm.logger.Info("scene config loaded", zap.String("path", path),
		zap.Int("liquids", len(scene.Liquids)), zap.Int("items", len(scene.Items)))
	return scene, nil
}

// LoadScript 读取 Lua 脚本源码
func (rm *ResourceManager) LoadScript(path string) (string, error) {
	data, err := rm.readFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
