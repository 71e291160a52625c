package game

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/decker502/liquidbox/pkg/embedded"
)

// createTestImage creates a simple 10x10 blue PNG image for testing purposes.
func createTestImage(path string) error {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	blue := color.RGBA{R: 0, G: 0, B: 255, A: 255}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, blue)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

// TestLoadImage_CachingMechanism tests that images are loaded once and cached.
func TestLoadImage_CachingMechanism(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nozzle.png")
	if err := createTestImage(path); err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}

	rm := NewResourceManager(nil)
	img1, err := rm.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage() error: %v", err)
	}
	if w, h := img1.Bounds().Dx(), img1.Bounds().Dy(); w != 10 || h != 10 {
		t.Errorf("image size = %dx%d, want 10x10", w, h)
	}
	img2, err := rm.LoadImage(path)
	if err != nil {
		t.Fatalf("second LoadImage() error: %v", err)
	}
	if img1 != img2 {
		t.Error("cached image should be returned on second load")
	}
	if rm.GetImage(path) != img1 {
		t.Error("GetImage should return the cached image")
	}
}

// TestLoadImage_Errors tests missing and corrupted files.
func TestLoadImage_Errors(t *testing.T) {
	dir := t.TempDir()
	corrupted := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(corrupted, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	rm := NewResourceManager(nil)
	if _, err := rm.LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := rm.LoadImage(corrupted); err == nil {
		t.Error("expected error for corrupted file")
	}
	if rm.GetImage(corrupted) != nil {
		t.Error("failed load must not be cached")
	}
}

// TestNozzleTextureFallback 加载失败时使用生成纹理
func TestNozzleTextureFallback(t *testing.T) {
	rm := NewResourceManager(nil)

	generated := rm.NozzleTexture("")
	if generated == nil {
		t.Fatal("generated nozzle texture should not be nil")
	}
	if w, h := generated.Bounds().Dx(), generated.Bounds().Dy(); w != nozzleTextureWidth || h != nozzleTextureHeight {
		t.Errorf("generated texture size = %dx%d", w, h)
	}
	if rm.NozzleTexture(filepath.Join(t.TempDir(), "missing.png")) != generated {
		t.Error("missing texture file should fall back to the cached generated texture")
	}
}

func TestGenerateNozzleImageSymmetric(t *testing.T) {
	img := generateNozzleImage()
	left := img.RGBAAt(0, 0)
	right := img.RGBAAt(nozzleTextureWidth-1, 0)
	center := img.RGBAAt(nozzleTextureWidth/2, 0)
	if left != right {
		t.Errorf("edges should match: %v vs %v", left, right)
	}
	if center.R <= left.R {
		t.Errorf("center should be brighter than edges: %v vs %v", center, left)
	}
}

// TestLoadSceneAndScript 从嵌入文件系统与磁盘加载
func TestLoadSceneAndScript(t *testing.T) {
	embedded.Init(fstest.MapFS{
		"data/scenes/mini.yaml": {Data: []byte(`
world:
  pourRate: 90
liquids:
  - radius: 0.4
items:
  - kind: cup
    x: 20
    y: 30
    width: 10
    height: 12
`)},
		"data/scripts/mini.lua": {Data: []byte("liquid(0.5)\n")},
	})
	t.Cleanup(func() { embedded.Init(nil) })

	rm := NewResourceManager(nil)
	scene, err := rm.LoadScene("data/scenes/mini.yaml")
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	if scene.World.PourRate != 90 || len(scene.Items) != 1 {
		t.Errorf("unexpected scene: %+v", scene)
	}

	src, err := rm.LoadScript("data/scripts/mini.lua")
	if err != nil || src != "liquid(0.5)\n" {
		t.Errorf("LoadScript = %q, %v", src, err)
	}

	diskPath := filepath.Join(t.TempDir(), "disk.toml")
	if err := os.WriteFile(diskPath, []byte("[[liquids]]\nradius = 0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if scene, err := rm.LoadScene(diskPath); err != nil || len(scene.Liquids) != 1 {
		t.Errorf("LoadScene(disk) = %+v, %v", scene, err)
	}

	if _, err := rm.LoadScene("data/scenes/mini.json"); err == nil {
		t.Error("unsupported extension should fail")
	}
}
