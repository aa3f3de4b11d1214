package trafficmanager

import (
	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/trafficmanager/pid"
	"github.com/puzpuzpuz/xsync/v3"
)

// Snapshot 单步决策的输入快照
// 功能：携带本步所有待决策车辆与其周边参与者的只读状态
// 说明：四张表都按ActorID索引；VehicleIDs给出待决策车辆及输出槽位顺序
type Snapshot struct {
	VehicleIDs    []entity.ActorID                          // 待决策车辆，决定输出帧的槽位
	States        map[entity.ActorID]*entity.KinematicState // 运动学状态
	Attributes    map[entity.ActorID]*entity.StaticAttributes
	TrafficLights map[entity.ActorID]*entity.TrafficLightState
	Buffers       map[entity.ActorID]entity.Buffer // 短期路径缓冲区
}

// CollisionHazardData 单车的碰撞危险判定结果
type CollisionHazardData struct {
	HazardActorID           entity.ActorID // 让行对象
	Hazard                  bool           // 是否存在碰撞危险
	AvailableDistanceMargin float64        // 可用距离余量（米），无危险时为+Inf
}

// CollisionLock 碰撞锁：对已确认前车的跟踪迟滞状态
// 说明：走廊长度被钉在前车距离上，避免减速时丢失跟踪导致振荡
type CollisionLock struct {
	LeadVehicleID         entity.ActorID // 被锁定的前车
	InitialLockDistance   float64        // 锁定建立时与前车的距离（米）
	DistanceToLeadVehicle float64        // 当前与前车的距离（米）
}

// CollisionLockMap 按车辆分片的碰撞锁表
// 说明：每辆车只写自己的锁，但会读取其他车辆的锁，需要并发安全
type CollisionLockMap = xsync.MapOf[entity.ActorID, *CollisionLock]

// NewCollisionLockMap 创建碰撞锁表
func NewCollisionLockMap() *CollisionLockMap {
	return xsync.NewMapOf[entity.ActorID, *CollisionLock]()
}

// GeometryComparison 两车几何关系的四个最小距离
type GeometryComparison struct {
	ReferenceVehicleToOtherGeodesic float64 // 本车包围盒到对方走廊的距离
	OtherVehicleToReferenceGeodesic float64 // 对方包围盒到本车走廊的距离
	InterGeodesicDistance           float64 // 两条走廊间的距离
	InterBboxDistance               float64 // 两个包围盒间的距离
}

// CommandType 输出指令类型
type CommandType int32

const (
	CommandApplyVehicleControl CommandType = iota // 油门/刹车/转向
	CommandApplyTransform                         // 位姿传送
)

// Command 单车的输出指令，Control与Transform按Type二选一有效
type Command struct {
	Type      CommandType
	ActorID   entity.ActorID
	Control   pid.ActuationSignal
	Transform entity.Transform
}

// ApplyVehicleControl 构造控制指令
func ApplyVehicleControl(id entity.ActorID, signal pid.ActuationSignal) Command {
	return Command{Type: CommandApplyVehicleControl, ActorID: id, Control: signal}
}

// ApplyTransform 构造传送指令
func ApplyTransform(id entity.ActorID, transform entity.Transform) Command {
	return Command{Type: CommandApplyTransform, ActorID: id, Transform: transform}
}

// CollisionFrame 碰撞判定输出帧，槽位与Snapshot.VehicleIDs对应
type CollisionFrame []CollisionHazardData

// TLFrame 信号灯危险输出帧
type TLFrame []bool

// ControlFrame 控制指令输出帧
type ControlFrame []Command
