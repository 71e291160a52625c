// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import "strings"

// ItemType 定义可放置物品的类型
type ItemType int

const (
	// ItemUnknown 未知物品类型（创建时被静默忽略）
	ItemUnknown ItemType = iota
	// ItemCup 杯子：三块轻质、有弹性的动态夹具
	ItemCup
	// ItemSurface 平面：静态方块，作为地面或平台
	ItemSurface
	// ItemBox 箱子：沉重的动态方块
	ItemBox
)

// String 返回物品类型的字符串表示
func (t ItemType) String() string {
	switch t {
	case ItemCup:
		return "Cup"
	case ItemSurface:
		return "Surface"
	case ItemBox:
		return "Box"
	default:
		return "Unknown"
	}
}

// IsDynamic 返回该物品是否对应动态刚体
// Surface 是静态的，Cup 和 Box 是动态的
func (t ItemType) IsDynamic() bool {
	return t == ItemCup || t == ItemBox
}

// ParseItemType 从配置字符串解析物品类型（不区分大小写）
// 无法识别的名称返回 ItemUnknown
func ParseItemType(name string) ItemType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cup":
		return ItemCup
	case "surface":
		return ItemSurface
	case "box":
		return ItemBox
	default:
		return ItemUnknown
	}
}
