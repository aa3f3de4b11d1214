// 平面多边形运算：闭合环构造、有向面积、包含判定与最小距离
package polygon

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// Ring 闭合多边形环，首尾点相同，z分量忽略
type Ring []geometry.Point

// NewRing 由边界点序列构造闭合环
// 说明：在末尾重新追加第一个点完成闭合，输入点序不做调整
func NewRing(points []geometry.Point) Ring {
	ring := make(Ring, 0, len(points)+1)
	ring = append(ring, points...)
	if len(points) > 0 {
		ring = append(ring, points[0])
	}
	return ring
}

// SignedArea 鞋带公式有向面积
// 说明：顺时针环为负值
func (r Ring) SignedArea() float64 {
	area := .0
	for i := 0; i+1 < len(r); i++ {
		area += r[i].X*r[i+1].Y - r[i+1].X*r[i].Y
	}
	return area / 2
}

// Contains 射线法判断点是否位于环内（边界上视为内部）
func (r Ring) Contains(p geometry.Point) bool {
	inside := false
	for i := 0; i+1 < len(r); i++ {
		a, b := r[i], r[i+1]
		if pointSegmentDistance(p, a, b) == 0 {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if x > p.X {
				inside = !inside
			}
		}
	}
	return inside
}

// Distance 两个环之间的最小欧氏距离
// 说明：相交、相切或包含时返回0，否则返回所有边对的最小距离
func Distance(a, b Ring) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(0)
	}
	if a.Contains(b[0]) || b.Contains(a[0]) {
		return 0
	}
	min := math.Inf(0)
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			d := segmentDistance(a[i], a[i+1], b[j], b[j+1])
			if d < min {
				min = d
			}
			if min == 0 {
				return 0
			}
		}
	}
	return min
}

// segmentDistance 两线段间的最小距离，相交时为0
func segmentDistance(p1, p2, q1, q2 geometry.Point) float64 {
	if segmentsIntersect(p1, p2, q1, q2) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(p1, q1, q2), pointSegmentDistance(p2, q1, q2)),
		math.Min(pointSegmentDistance(q1, p1, p2), pointSegmentDistance(q2, p1, p2)),
	)
}

// pointSegmentDistance 点到线段的距离
func pointSegmentDistance(p, a, b geometry.Point) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	lengthSquared := abx*abx + aby*aby
	t := .0
	if lengthSquared > 0 {
		t = (apx*abx + apy*aby) / lengthSquared
		t = math.Max(0, math.Min(1, t))
	}
	dx := apx - t*abx
	dy := apy - t*aby
	return math.Hypot(dx, dy)
}

// cross 叉积(b-a)×(c-a)
func cross(a, b, c geometry.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment c在线段ab的包围盒内（配合共线判定使用）
func onSegment(a, b, c geometry.Point) bool {
	return math.Min(a.X, b.X) <= c.X && c.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= c.Y && c.Y <= math.Max(a.Y, b.Y)
}

// segmentsIntersect 跨立实验判断两线段是否相交（含端点与共线重叠）
func segmentsIntersect(p1, p2, q1, q2 geometry.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if d2 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	return false
}
