package entity

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
)

// 平面向量运算。坐标点统一使用geometry.Point，
// 碰撞几何只关心x-y平面，z分量仅参与垂直重叠过滤。

const epsilonLength = 2e-7 // 零长度向量判定阈值

// Direction 由方向角（弧度）生成单位向量
func Direction(yaw float64) geometry.Point {
	return geometry.Point{X: math.Cos(yaw), Y: math.Sin(yaw)}
}

// Add 向量加法
func Add(a, b geometry.Point) geometry.Point {
	return geometry.Point{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

// Sub 向量减法a-b
func Sub(a, b geometry.Point) geometry.Point {
	return geometry.Point{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

// Scale 向量数乘
func Scale(a geometry.Point, k float64) geometry.Point {
	return geometry.Point{X: a.X * k, Y: a.Y * k, Z: a.Z * k}
}

// Dot2D 平面点积
func Dot2D(a, b geometry.Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross2D 平面叉积的z分量
func Cross2D(a, b geometry.Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Length 向量长度（含z分量）
func Length(a geometry.Point) float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Length2D 平面向量长度
func Length2D(a geometry.Point) float64 {
	return math.Hypot(a.X, a.Y)
}

// Unit2D 平面单位化，长度低于阈值时原样返回
func Unit2D(a geometry.Point) geometry.Point {
	l := Length2D(a)
	if l <= epsilonLength {
		return a
	}
	return geometry.Point{X: a.X / l, Y: a.Y / l}
}

// LeftPerpendicular2D 平面左垂向量（左手系下指向边界左侧）
func LeftPerpendicular2D(a geometry.Point) geometry.Point {
	return geometry.Point{X: -a.Y, Y: a.X}
}

// Distance 两点间的空间距离
func Distance(a, b geometry.Point) float64 {
	return Length(Sub(a, b))
}

// DistanceSquared 两点间空间距离的平方
func DistanceSquared(a, b geometry.Point) float64 {
	d := Sub(a, b)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}
