// 交通参与者的每步快照数据模型
package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// ActorID 交通参与者的唯一标识
type ActorID int32

// ActorType 交通参与者类型
type ActorType int32

const (
	ActorTypeAny        ActorType = iota // 未知类型
	ActorTypeVehicle                     // 车辆
	ActorTypePedestrian                  // 行人
)

func (t ActorType) String() string {
	switch t {
	case ActorTypeVehicle:
		return "vehicle"
	case ActorTypePedestrian:
		return "pedestrian"
	default:
		return "any"
	}
}

// LightState 信号灯状态
type LightState int32

const (
	LightStateUnknown LightState = iota // 未知
	LightStateRed                       // 红灯
	LightStateYellow                    // 黄灯
	LightStateGreen                     // 绿灯
	LightStateOff                       // 关闭
)

func (s LightState) String() string {
	switch s {
	case LightStateRed:
		return "red"
	case LightStateYellow:
		return "yellow"
	case LightStateGreen:
		return "green"
	case LightStateOff:
		return "off"
	default:
		return "unknown"
	}
}

// Rotation 朝向，以偏航角（弧度）表示
type Rotation struct {
	Yaw float64 // 偏航角（弧度），0为x正方向
}

// Forward 获取朝向的单位前向向量
func (r Rotation) Forward() geometry.Point {
	return Direction(r.Yaw)
}

func (r Rotation) String() string {
	return fmt.Sprintf("Rotation{Yaw=%.4f}", r.Yaw)
}

// Transform 位姿（位置+朝向）
type Transform struct {
	Location geometry.Point
	Rotation Rotation
}

// KinematicState 交通参与者的运动学快照
type KinematicState struct {
	Location       geometry.Point // 位置
	Velocity       geometry.Point // 速度向量（米/秒）
	Rotation       Rotation       // 朝向
	PhysicsEnabled bool           // 是否启用物理模拟（否则由传送驱动）
}

// StaticAttributes 交通参与者的静态属性
type StaticAttributes struct {
	Type       ActorType // 参与者类型
	HalfLength float64   // 半车长（米）
	HalfWidth  float64   // 半车宽（米）
	SpeedLimit float64   // 所在道路限速（千米/小时）
}

// TrafficLightState 车辆面对的信号灯快照
type TrafficLightState struct {
	State          LightState // 信号灯状态
	AtTrafficLight bool       // 是否受信号灯约束
}
