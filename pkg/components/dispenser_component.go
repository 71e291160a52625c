package components

import "github.com/decker502/liquidbox/pkg/ecs"

// DispenserComponent 发射器放置信息
type DispenserComponent struct {
	// Liquid 目标粒子系统实体
	Liquid ecs.EntityID
	// Nozzle 喷嘴刚体实体；喷嘴越界被剔除后发射器仍然存在
	Nozzle ecs.EntityID
	// PourRate 触发时使用的发射速率（粒子/秒）
	PourRate float64
}
