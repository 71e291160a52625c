package components

import (
	"github.com/decker502/liquidbox/internal/liquid"
	"github.com/decker502/liquidbox/pkg/render"
)

// LiquidComponent 粒子系统及其绘制处理器
// 实体 ID 即粒子系统的身份，绘制处理器与之一一对应
type LiquidComponent struct {
	System   *liquid.System
	Renderer *render.LiquidRenderer
}
