package trafficmanager

import (
	"math"

	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/trafficmanager/pid"
	"github.com/AIpakchoi/carla/utils/config"
	"github.com/puzpuzpuz/xsync/v3"
)

// StateEntryMap 按车辆分片的控制器状态表
type StateEntryMap = xsync.MapOf[entity.ActorID, pid.StateEntry]

// NewStateEntryMap 创建控制器状态表
func NewStateEntryMap() *StateEntryMap {
	return xsync.NewMapOf[entity.ActorID, pid.StateEntry]()
}

// TeleportInstantMap 按车辆分片的上次传送时刻表（秒）
type TeleportInstantMap = xsync.MapOf[entity.ActorID, float64]

// NewTeleportInstantMap 创建传送时刻表
func NewTeleportInstantMap() *TeleportInstantMap {
	return xsync.NewMapOf[entity.ActorID, float64]()
}

// MotionPlan 单车的运动规划
// 功能：综合碰撞危险与信号灯危险解算动态目标速度，
// 对启用物理的车辆产生PID控制指令，否则产生位姿传送指令
// 参数：index-输出槽位下标，snapshot-输入快照，parameters-行为参数，
// pidConfig-控制器参数组，collisionFrame/tlFrame-上游输出帧，
// stateMap-控制器状态表，teleportInstants-传送时刻表，
// currentTime-当前仿真时刻（秒），frame-输出帧
// 算法说明：
// 1. 在缓冲区上按速度视界选取目标路点，计算带符号的航向偏差
// 2. 存在碰撞危险且相对速度超过阈值时按跟车律解算动态目标速度：
//    余量充足时以固定相对速度接近，进入跟车区间后取前车速度与接近速度的较大者，
//    低于紧急制动余量时紧急停车；信号灯危险同样触发紧急停车
// 3. 启用物理：推进PID状态并执行一步，紧急停车时清零积分、全力制动
// 4. 关闭物理：按混合模式节拍沿缓冲区传送，紧急停车时原地冻结
func MotionPlan(index int, snapshot *Snapshot, parameters *Parameters,
	pidConfig config.PID, collisionFrame CollisionFrame, tlFrame TLFrame,
	stateMap *StateEntryMap, teleportInstants *TeleportInstantMap,
	currentTime float64, frame ControlFrame) {
	egoID := snapshot.VehicleIDs[index]
	egoState, ok := snapshot.States[egoID]
	if !ok {
		log.Panicf("motionplan: no kinematic state for vehicle %v", egoID)
	}
	egoAttributes, ok := snapshot.Attributes[egoID]
	if !ok {
		log.Panicf("motionplan: no attributes for vehicle %v", egoID)
	}
	buffer, ok := snapshot.Buffers[egoID]
	if !ok || len(buffer) == 0 {
		log.Panicf("motionplan: empty waypoint buffer for vehicle %v", egoID)
	}
	egoLocation := egoState.Location
	egoVelocity := egoState.Velocity
	egoSpeed := entity.Length(egoVelocity)
	egoHeading := egoState.Rotation.Forward()
	collisionHazard := collisionFrame[index]
	tlHazard := tlFrame[index]

	// 航向偏差：与目标路点方向的偏离度，目标在右侧时为正
	targetPointDistance := math.Max(egoSpeed*TargetWaypointTimeHorizon,
		TargetWaypointHorizonLength)
	targetWaypoint, _ := entity.GetTargetWaypoint(buffer, targetPointDistance)
	toTarget := entity.Unit2D(entity.Sub(targetWaypoint.Position(), egoLocation))
	deviation := 1 - entity.Dot2D(egoHeading, toTarget)
	if entity.Cross2D(egoHeading, toTarget) < 0 {
		deviation *= -1
	}
	currentDeviation := deviation

	// 首次规划时初始化控制器状态
	previousState, ok := stateMap.Load(egoID)
	if !ok {
		previousState = pid.StateEntry{Time: currentTime}
	}

	// 按当前车速选择参数组
	longitudinalParameters := pidConfig.UrbanLongitudinal
	lateralParameters := pidConfig.UrbanLateral
	if egoSpeed > HighwaySpeed {
		longitudinalParameters = pidConfig.HighwayLongitudinal
		lateralParameters = pidConfig.HighwayLateral
	}

	// 目标速度解算
	maxTargetVelocity := parameters.GetVehicleTargetVelocity(egoID,
		egoAttributes.SpeedLimit) / 3.6
	dynamicTargetVelocity := maxTargetVelocity
	collisionEmergencyStop := false
	if collisionHazard.Hazard {
		otherID := collisionHazard.HazardActorID
		otherState, ok := snapshot.States[otherID]
		if !ok {
			log.Panicf("motionplan: no kinematic state for hazard actor %v", otherID)
		}
		otherVelocity := otherState.Velocity
		egoRelativeSpeed := entity.Length(entity.Sub(egoVelocity, otherVelocity))
		availableDistanceMargin := collisionHazard.AvailableDistanceMargin
		otherSpeedAlongHeading := entity.Dot2D(otherVelocity, egoHeading)

		// 只在相对速度（速度差的模）超过阈值时执行跟车决策
		if egoRelativeSpeed > EpsilonRelativeSpeed {
			followLeadDistance := egoRelativeSpeed*FollowDistanceRate +
				MinFollowLeadDistance
			if availableDistanceMargin > followLeadDistance {
				// 以固定相对速度缩小与前车的距离
				dynamicTargetVelocity = otherSpeedAlongHeading + RelativeApproachSpeed
			} else if availableDistanceMargin > CriticalBrakingMargin {
				// 进入跟车区间，取前车沿本车航向的速度与接近速度的较大者
				dynamicTargetVelocity = math.Max(otherSpeedAlongHeading,
					RelativeApproachSpeed)
			} else {
				collisionEmergencyStop = true
			}
		}
		if availableDistanceMargin < CriticalBrakingMargin {
			collisionEmergencyStop = true
		}
	}

	// 目标速度不超过车辆允许的最大速度
	dynamicTargetVelocity = math.Min(maxTargetVelocity, dynamicTargetVelocity)

	emergencyStop := tlHazard || collisionEmergencyStop

	var currentState pid.StateEntry
	if egoState.PhysicsEnabled {
		currentState = pid.StateUpdate(previousState, egoSpeed,
			dynamicTargetVelocity, currentDeviation, currentTime)
		actuation := pid.RunStep(currentState, previousState,
			longitudinalParameters, lateralParameters)
		if emergencyStop {
			currentState.DeviationIntegral = 0
			currentState.VelocityIntegral = 0
			actuation.Throttle = 0
			actuation.Brake = 1
		}
		stateMap.Store(egoID, currentState)
		frame[index] = ApplyVehicleControl(egoID, actuation)
		return
	}

	// 物理关闭：清空控制器状态，按节拍决定传送位姿
	currentState = pid.StateEntry{Time: currentTime}
	stateMap.Store(egoID, currentState)

	lastTeleport, ok := teleportInstants.Load(egoID)
	if !ok {
		lastTeleport = currentTime
		teleportInstants.Store(egoID, lastTeleport)
	}
	elapsed := currentTime - lastTeleport

	var teleportation entity.Transform
	if !emergencyStop && (parameters.GetSynchronousMode() || elapsed > HybridModeDT) {
		// 按目标速度折算一个节拍内应有的位移
		targetDisplacement := dynamicTargetVelocity * HybridModeDT
		teleportTarget, _ := entity.GetTargetWaypoint(buffer, targetDisplacement)
		baseDisplacement := teleportTarget.DistanceTo(egoLocation)
		missingDisplacement := .0
		if baseDisplacement < targetDisplacement {
			missingDisplacement = targetDisplacement - baseDisplacement
		}
		targetTransform := teleportTarget.Transform()
		teleportation = entity.Transform{
			Location: entity.Add(targetTransform.Location,
				entity.Scale(targetTransform.Rotation.Forward(), missingDisplacement)),
			Rotation: targetTransform.Rotation,
		}
		teleportInstants.Store(egoID, currentTime)
	} else {
		// 紧急停车或节拍未到：原地保持
		teleportation = entity.Transform{
			Location: egoLocation,
			Rotation: egoState.Rotation,
		}
	}
	frame[index] = ApplyTransform(egoID, teleportation)
}
