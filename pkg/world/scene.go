package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/config"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/types"
)

// ConfigFromScene 由场景配置生成世界构造参数
func ConfigFromScene(scene *config.SceneConfig) Config {
	return Config{
		Gravity:  mgl64.Vec2{scene.World.GravityX, scene.World.GravityY},
		Bounds:   scene.World.Bounds,
		PourRate: scene.World.PourRate,
	}
}

// Populate 按场景配置依次创建粒子系统、物品、海绵和发射器
// 场景须已通过 Validate；海绵和发射器进入最后一个粒子系统
func (w *World) Populate(scene *config.SceneConfig, nozzle *ebiten.Image) {
	for _, l := range scene.Liquids {
		w.CreateParticleSystem(l.GravityScale, l.Density, l.Radius)
	}
	for _, it := range scene.Items {
		w.CreateItem(types.ParseItemType(it.Kind),
			mgl64.Vec2{it.X, it.Y},
			mgl64.Vec2{it.Width, it.Height})
	}
	for _, s := range scene.Sponges {
		w.CreateSponge(mgl64.Vec2{s.X, s.Y}, mgl64.Vec2{s.HalfWidth, s.HalfHeight})
	}
	for _, d := range scene.Dispensers {
		flags, _ := d.ParticleFlags()
		rgba, _ := d.RGBA()
		w.CreateDispenser(liquid.GroupDef{
			Flags: flags,
			Color: render.ToColor(rgba),
		}, mgl64.Vec2{d.X, d.Y}, nozzle)
	}
}
