package liquid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type cellKey struct {
	x, y int
}

// spatialGrid 均匀网格空间哈希，单元边长等于粒子直径
type spatialGrid struct {
	cellSize float64
	cells    map[cellKey][]int
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	return &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

func (g *spatialGrid) key(p mgl64.Vec2) cellKey {
	return cellKey{
		x: int(math.Floor(p.X() / g.cellSize)),
		y: int(math.Floor(p.Y() / g.cellSize)),
	}
}

// rebuild 重新分桶；上一轮已空的单元被删除，
// 因此单元数不超过上一轮与本轮占用单元之和
func (g *spatialGrid) rebuild(positions []mgl64.Vec2) {
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = bucket[:0]
	}
	for i, p := range positions {
		k := g.key(p)
		g.cells[k] = append(g.cells[k], i)
	}
}

// forEachPair 对距离可能小于单元边长的每对粒子 (i<j) 调用 fn
func (g *spatialGrid) forEachPair(positions []mgl64.Vec2, fn func(i, j int)) {
	for i, p := range positions {
		k := g.key(p)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				for _, j := range g.cells[cellKey{k.x + dx, k.y + dy}] {
					if j > i {
						fn(i, j)
					}
				}
			}
		}
	}
}
