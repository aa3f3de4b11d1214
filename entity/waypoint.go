package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// SimpleWaypoint 路网上的采样路点
// 功能：描述车辆短期路径上的一个点，携带位置、朝向与路口标志
type SimpleWaypoint struct {
	position geometry.Point
	rotation Rotation
	junction bool // 是否位于路口内
}

// NewSimpleWaypoint 创建路点
// 参数：position-位置，yaw-前进方向角（弧度），junction-是否位于路口内
func NewSimpleWaypoint(position geometry.Point, yaw float64, junction bool) *SimpleWaypoint {
	return &SimpleWaypoint{
		position: position,
		rotation: Rotation{Yaw: yaw},
		junction: junction,
	}
}

// Position 获取路点位置
func (w *SimpleWaypoint) Position() geometry.Point {
	return w.position
}

// Rotation 获取路点朝向
func (w *SimpleWaypoint) Rotation() Rotation {
	return w.rotation
}

// Forward 获取路点的单位前向向量
func (w *SimpleWaypoint) Forward() geometry.Point {
	return w.rotation.Forward()
}

// Transform 获取路点位姿
func (w *SimpleWaypoint) Transform() Transform {
	return Transform{Location: w.position, Rotation: w.rotation}
}

// InJunction 判断路点是否位于路口内
func (w *SimpleWaypoint) InJunction() bool {
	return w.junction
}

// Distance 到另一路点的距离
func (w *SimpleWaypoint) Distance(other *SimpleWaypoint) float64 {
	return Distance(w.position, other.position)
}

// DistanceSquared 到另一路点距离的平方
func (w *SimpleWaypoint) DistanceSquared(other *SimpleWaypoint) float64 {
	return DistanceSquared(w.position, other.position)
}

// DistanceTo 到指定位置的距离
func (w *SimpleWaypoint) DistanceTo(p geometry.Point) float64 {
	return Distance(w.position, p)
}

func (w *SimpleWaypoint) String() string {
	return fmt.Sprintf("SimpleWaypoint{%.2f,%.2f,%.2f junction=%v}",
		w.position.X, w.position.Y, w.position.Z, w.junction)
}

// Buffer 车辆的短期路径缓冲区，下标0为距车辆最近的路点
type Buffer []*SimpleWaypoint

// GetTargetWaypoint 在缓冲区中选取目标路点
// 功能：返回第一个与缓冲区首路点直线距离超过targetDistance的路点及其下标；
// 不存在时返回最后一个路点
// 参数：buffer-路径缓冲区（不可为空），targetDistance-目标距离（米）
func GetTargetWaypoint(buffer Buffer, targetDistance float64) (*SimpleWaypoint, int) {
	front := buffer[0]
	targetSquared := targetDistance * targetDistance
	for j, wp := range buffer {
		if front.DistanceSquared(wp) > targetSquared {
			return wp, j
		}
	}
	last := len(buffer) - 1
	return buffer[last], last
}
