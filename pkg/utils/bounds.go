// bounds.go 提供嵌套变换下的包围盒计算
//
// # 坐标系统
//
//   - 本地坐标：节点自身左上角为原点，尺寸为 LocalSize
//   - 父坐标：LocalGeoM 把本地坐标映射到父节点坐标
//   - 世界坐标：沿父链一直变换到根节点
//
// 教学引擎只用世界包围盒来放置指示箭头，因此结果是轴对齐的整数矩形
// （旋转后的节点取四个角的最小外接矩形）。
package utils

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// maxNodeDepth 父链最大深度，防止错误的循环引用导致死循环
const maxNodeDepth = 64

// Node 可参与包围盒计算的节点
type Node interface {
	// LocalSize 返回节点在本地坐标系下的宽高
	LocalSize() (w, h float64)
	// LocalGeoM 返回本地坐标到父坐标的变换
	LocalGeoM() ebiten.GeoM
	// ParentNode 返回父节点，根节点返回 nil
	ParentNode() Node
}

// WorldGeoM 计算节点本地坐标到世界坐标的完整变换
func WorldGeoM(n Node) ebiten.GeoM {
	var g ebiten.GeoM
	depth := 0
	for cur := n; cur != nil && depth < maxNodeDepth; cur = cur.ParentNode() {
		// Concat: 先应用 g，再应用 cur 的本地变换
		g.Concat(cur.LocalGeoM())
		depth++
	}
	return g
}

// WorldBounds 计算节点的世界坐标轴对齐包围盒
//
// 参数：
//   - n: 节点
//
// 返回：
//   - image.Rectangle: 包围盒（向外取整）
//   - bool: 节点为 nil 或尺寸为零时返回 false
func WorldBounds(n Node) (image.Rectangle, bool) {
	if n == nil {
		return image.Rectangle{}, false
	}
	w, h := n.LocalSize()
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}

	g := WorldGeoM(n)
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := g.Apply(c[0], c[1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	), true
}

// PointInNode 判断世界坐标点是否落在节点内（用于点击检测）
// 使用逆变换回到本地坐标，旋转节点也能正确判断
func PointInNode(n Node, x, y float64) bool {
	if n == nil {
		return false
	}
	g := WorldGeoM(n)
	if !g.IsInvertible() {
		return false
	}
	g.Invert()
	lx, ly := g.Apply(x, y)
	w, h := n.LocalSize()
	return lx >= 0 && ly >= 0 && lx < w && ly < h
}
