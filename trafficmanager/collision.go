package trafficmanager

import (
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/utils/randengine"
)

// NegotiateCollision 两车让行协商
// 功能：判断本车是否需要停车等待对方通过，并给出可用距离余量
// 参数：reference/other-有序参与者对，cache-本步几何缓存，locks-碰撞锁表，
// referenceTL-本车信号灯快照，junctionLookAheadIndex-路口预判下标，
// referenceLead/otherLead-各自配置的前车距离
// 返回：(是否让行, 可用距离余量)；无危险时余量为+Inf
// 算法说明：
// 1. 先用廉价的距离与方位判据筛除不可能的情形：
//    在路口入口受信号灯约束且信号非绿时不协商；路口内要求对方进入交叉检测范围，
//    路口外要求对方在前方且进入本车检测范围
// 2. 走廊接触时按路径侵入关系与指向角决定让行方
// 3. 让行成立时建立或更新碰撞锁，未成立时清除本车碰撞锁
func NegotiateCollision(referenceID, otherID entity.ActorID,
	cache *GeometryCache, locks *CollisionLockMap,
	referenceState, otherState *entity.KinematicState,
	referenceAttributes, otherAttributes *entity.StaticAttributes,
	referenceTL *entity.TrafficLightState,
	referenceBuffer, otherBuffer entity.Buffer,
	junctionLookAheadIndex int,
	referenceLead, otherLead float64) (bool, float64) {
	hazard := false
	availableDistanceMargin := mathutil.INF

	referenceLocation := referenceState.Location
	otherLocation := otherState.Location

	referenceHeading := referenceState.Rotation.Forward()
	referenceToOther := entity.Unit2D(entity.Sub(otherLocation, referenceLocation))

	otherHeading := otherState.Rotation.Forward()
	otherToReference := entity.Unit2D(entity.Sub(referenceLocation, otherLocation))

	referenceVehicleLength := referenceAttributes.HalfLength * SquareRootOfTwo
	otherVehicleLength := otherAttributes.HalfLength * SquareRootOfTwo

	interVehicleDistance := entity.DistanceSquared(referenceLocation, otherLocation)
	referenceExtension := GetBoundingBoxExtension(referenceID, referenceState, locks)
	otherExtension := GetBoundingBoxExtension(otherID, otherState, locks)
	interVehicleLength := referenceVehicleLength + otherVehicleLength
	egoDetectionRange := square(referenceExtension + interVehicleLength)
	crossDetectionRange := square(referenceExtension + interVehicleLength + otherExtension)

	otherInEgoRange := interVehicleDistance < egoDetectionRange
	otherInCrossRange := interVehicleDistance < crossDetectionRange
	otherInFront := entity.Dot2D(referenceHeading, referenceToOther) > 0
	closestPoint := referenceBuffer[0]
	egoInsideJunction := closestPoint.InJunction()
	egoAtTrafficLight := referenceTL.AtTrafficLight
	egoStoppedByLight := referenceTL.State != entity.LightStateGreen
	lookAheadPoint := referenceBuffer[junctionLookAheadIndex]
	egoAtJunctionEntrance := !closestPoint.InJunction() && lookAheadPoint.InJunction()

	if !(egoAtJunctionEntrance && egoAtTrafficLight && egoStoppedByLight) &&
		((egoInsideJunction && otherInCrossRange) ||
			(!egoInsideJunction && otherInFront && otherInEgoRange)) {

		comparison := cache.GetGeometryBetweenActors(referenceID, otherID,
			referenceState, otherState, referenceAttributes, otherAttributes,
			referenceBuffer, otherBuffer, locks, referenceLead, otherLead)

		geodesicPathTouching := comparison.InterGeodesicDistance < GeometryContactThreshold
		vehicleBboxTouching := comparison.InterBboxDistance < GeometryContactThreshold
		egoPathClear := comparison.OtherVehicleToReferenceGeodesic > GeometryContactThreshold
		otherPathClear := comparison.ReferenceVehicleToOtherGeodesic > GeometryContactThreshold
		egoPathPriority := comparison.ReferenceVehicleToOtherGeodesic <
			comparison.OtherVehicleToReferenceGeodesic
		egoAngularPriority := entity.Dot2D(referenceHeading, referenceToOther) <
			entity.Dot2D(otherHeading, otherToReference)

		// 路径离对方更远的一方有先行权
		if geodesicPathTouching &&
			((!vehicleBboxTouching &&
				(!egoPathClear || (egoPathClear && otherPathClear &&
					!egoAngularPriority && !egoPathPriority))) ||
				(vehicleBboxTouching && !egoAngularPriority && !egoPathPriority)) {

			hazard = true

			specificDistanceMargin := math.Max(referenceLead, BoundaryExtensionMinimum)
			availableDistanceMargin = math.Max(
				comparison.ReferenceVehicleToOtherGeodesic-specificDistanceMargin, 0)

			// 碰撞锁：发现可能碰撞时钉住走廊长度，避免减速过程中
			// 走廊缩短导致跟踪丢失，从而平滑接近前车
			if lock, ok := locks.Load(referenceID); ok {
				if otherID == lock.LeadVehicleID {
					if comparison.OtherVehicleToReferenceGeodesic < GeometryContactThreshold {
						// 前车车身已进入本车走廊，记录车身间距
						lock.DistanceToLeadVehicle = comparison.InterBboxDistance
					} else {
						// 记录本车车身到前车路径多边形的距离
						lock.DistanceToLeadVehicle = comparison.ReferenceVehicleToOtherGeodesic
					}
				} else {
					// 锁定对象变化，重新初始化
					*lock = CollisionLock{
						LeadVehicleID:         otherID,
						InitialLockDistance:   comparison.InterBboxDistance,
						DistanceToLeadVehicle: comparison.InterBboxDistance,
					}
				}
			} else {
				locks.Store(referenceID, &CollisionLock{
					LeadVehicleID:         otherID,
					InitialLockDistance:   comparison.InterBboxDistance,
					DistanceToLeadVehicle: comparison.InterBboxDistance,
				})
			}
		}
	}

	// 未检出危险时清除本车持有的碰撞锁
	if !hazard {
		locks.Delete(referenceID)
	}

	return hazard, availableDistanceMargin
}

// CollisionAvoidance 单车的碰撞规避决策
// 功能：筛选近邻候选、按距离排序、依次协商直到确认首个危险，
// 经忽略策略确认后写入输出帧对应槽位
// 参数：index-输出槽位下标，snapshot-输入快照，trackTraffic-路径重叠索引，
// parameters-行为参数，locks-碰撞锁表，generator-随机数引擎，frame-输出帧
func CollisionAvoidance(index int, snapshot *Snapshot,
	trackTraffic *TrackTraffic, parameters *Parameters,
	locks *CollisionLockMap, generator *randengine.Engine,
	frame CollisionFrame) {
	var obstacleID entity.ActorID
	collisionHazard := false
	availableDistanceMargin := mathutil.INF

	egoID := snapshot.VehicleIDs[index]
	egoState, okState := snapshot.States[egoID]
	egoAttributes, okAttributes := snapshot.Attributes[egoID]
	egoBuffer, okBuffer := snapshot.Buffers[egoID]
	if okState && okAttributes && okBuffer && len(egoBuffer) > 0 {
		egoLocation := egoState.Location
		_, lookAheadIndex := entity.GetTargetWaypoint(egoBuffer, JunctionLookAhead)

		// 距离与高度粗筛
		candidates := make([]entity.ActorID, 0)
		for _, otherID := range trackTraffic.GetOverlappingVehicles(egoID) {
			otherState, ok := snapshot.States[otherID]
			if !ok {
				continue
			}
			if otherID != egoID &&
				entity.DistanceSquared(otherState.Location, egoLocation) <
					MaxCollisionRadius*MaxCollisionRadius &&
				mathutil.Abs(egoLocation.Z-otherState.Location.Z) < VerticalOverlapThreshold {
				candidates = append(candidates, otherID)
			}
		}

		// 按到本车距离升序排序
		sort.Slice(candidates, func(i, j int) bool {
			return entity.DistanceSquared(snapshot.States[candidates[i]].Location, egoLocation) <
				entity.DistanceSquared(snapshot.States[candidates[j]].Location, egoLocation)
		})

		referenceLead := parameters.GetDistanceToLeadingVehicle(egoID)
		cache := NewGeometryCache()

		egoTL, okTL := snapshot.TrafficLights[egoID]
		for _, otherID := range candidates {
			if collisionHazard {
				break
			}
			otherAttributes, okOtherAttributes := snapshot.Attributes[otherID]
			otherBuffer, okOtherBuffer := snapshot.Buffers[otherID]
			if !parameters.GetCollisionDetection(egoID, otherID) ||
				!okTL || !okOtherAttributes || !okOtherBuffer {
				continue
			}
			otherLead := parameters.GetDistanceToLeadingVehicle(otherID)
			hazard, margin := NegotiateCollision(egoID, otherID, cache, locks,
				egoState, snapshot.States[otherID], egoAttributes, otherAttributes,
				egoTL, egoBuffer, otherBuffer, lookAheadIndex,
				referenceLead, otherLead)
			if hazard {
				// 忽略策略：按参与者类型以配置概率抑制已检出的危险
				draw := generator.Float64Safe() * 100
				if (otherAttributes.Type == entity.ActorTypeVehicle &&
					parameters.GetPercentageIgnoreVehicles(egoID) <= draw) ||
					(otherAttributes.Type == entity.ActorTypePedestrian &&
						parameters.GetPercentageIgnoreWalkers(egoID) <= draw) {
					collisionHazard = true
					obstacleID = otherID
					availableDistanceMargin = margin
					log.Debugf("collision: vehicle %v yields to %v, margin %.2fm",
						egoID, otherID, margin)
				}
			}
		}
	}

	// 本步未确认危险时释放碰撞锁（含被忽略策略抑制的情形）
	if !collisionHazard {
		locks.Delete(egoID)
	}

	frame[index] = CollisionHazardData{
		HazardActorID:           obstacleID,
		Hazard:                  collisionHazard,
		AvailableDistanceMargin: availableDistanceMargin,
	}
}

func square(x float64) float64 {
	return x * x
}
