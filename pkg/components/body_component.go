package components

import (
	"github.com/ByteArena/box2d"

	"github.com/decker502/liquidbox/pkg/types"
)

// BodyComponent 世界中的一个刚体
//
// 刚体由物理引擎拥有，实体只持有句柄。夹具上的 render.Drawable
// 通过夹具用户数据挂载，由 BodySystem 在销毁刚体前释放。
type BodyComponent struct {
	Body *box2d.B2Body
	Kind types.ItemType
	// Nozzle 为 true 表示该刚体是发射器的喷嘴
	Nozzle bool
}
