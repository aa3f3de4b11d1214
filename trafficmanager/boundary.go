package trafficmanager

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/AIpakchoi/carla/entity"
)

// GetBoundingBoxExtension 计算速度相关的包围盒纵向延伸
// 功能：以前向速度的线性函数给出走廊长度；存在有效碰撞锁时，
// 将长度钉在前车距离上以维持跟踪
// 参数：actorID-参与者，state-运动学状态，locks-碰撞锁表
// 返回：延伸长度（米）
func GetBoundingBoxExtension(actorID entity.ActorID,
	state *entity.KinematicState, locks *CollisionLockMap) float64 {
	velocity := entity.Dot2D(state.Velocity, state.Rotation.Forward())
	extension := BoundaryExtensionRate*velocity + BoundaryExtensionMinimum
	if lock, ok := locks.Load(actorID); ok {
		lockBoundaryLength := lock.DistanceToLeadVehicle + LockingDistancePadding
		// 仅当前车尚未远离到超出最大锁定延伸时才继续跟踪
		if lockBoundaryLength-lock.InitialLockDistance < MaxLockingExtension {
			extension = lockBoundaryLength
		}
	}
	return extension
}

// GetBoundary 计算参与者包围盒的四个角点
// 功能：按航向定向、以半车长×半车宽为尺寸给出俯视角点；
// 行人按速度外推时间在两个方向上放大，以预判其移动
// 返回：左手系下顺时针排列的四个角点
func GetBoundary(state *entity.KinematicState,
	attributes *entity.StaticAttributes) []geometry.Point {
	heading := state.Rotation.Forward()

	forwardExtension := .0
	if attributes.Type == entity.ActorTypePedestrian {
		forwardExtension = entity.Length(state.Velocity) * WalkerTimeExtension
	}

	xBoundary := entity.Scale(heading, attributes.HalfLength+forwardExtension)
	perpendicular := entity.Unit2D(entity.LeftPerpendicular2D(heading))
	yBoundary := entity.Scale(perpendicular, attributes.HalfWidth+forwardExtension)

	location := state.Location
	return []geometry.Point{
		entity.Add(location, entity.Sub(xBoundary, yBoundary)),
		entity.Sub(location, entity.Add(xBoundary, yBoundary)),
		entity.Add(location, entity.Sub(yBoundary, xBoundary)),
		entity.Add(location, entity.Add(xBoundary, yBoundary)),
	}
}

// GetGeodesicBoundary 计算参与者沿路径外推的走廊边界
// 功能：车辆沿路径缓冲区按速度与锁定状态决定的长度扫掠出左右墙，
// 与包围盒拼接成顺时针闭合边界；行人直接使用包围盒
// 参数：cache-本步几何缓存，leadDistance-该车配置的前车距离，locks-碰撞锁表
// 算法说明：
// 1. 起始路点取沿缓冲区距首路点半车长处（车头保险杠位置）
// 2. 沿缓冲区前进，在首个肋条、累计航向变化超过10°或到达终止条件时发射肋条
// 3. 终止条件：与起始路点的距离平方超过延伸长度平方，或到达缓冲区末尾
// 4. 右墙反转后与包围盒、左墙拼接，保持顺时针绕向
func GetGeodesicBoundary(actorID entity.ActorID, cache *GeometryCache,
	state *entity.KinematicState, attributes *entity.StaticAttributes,
	buffer entity.Buffer, leadDistance float64,
	locks *CollisionLockMap) []geometry.Point {
	if boundary, ok := cache.geodesic[actorID]; ok {
		return boundary
	}

	bbox := GetBoundary(state, attributes)
	var boundary []geometry.Point
	if attributes.Type == entity.ActorTypeVehicle && len(buffer) > 0 {
		extension := math.Max(leadDistance,
			GetBoundingBoxExtension(actorID, state, locks))
		extensionSquared := extension * extension
		width := attributes.HalfWidth

		boundaryStart, boundaryStartIndex := entity.GetTargetWaypoint(buffer, attributes.HalfLength)

		var leftBoundary, rightBoundary []geometry.Point
		var boundaryEnd *entity.SimpleWaypoint
		reachedDistance := false
		for j := boundaryStartIndex; !reachedDistance && j < len(buffer); j++ {
			current := buffer[j]
			if boundaryStart.DistanceSquared(current) > extensionSquared ||
				j == len(buffer)-1 {
				reachedDistance = true
			}
			if boundaryEnd == nil ||
				entity.Dot2D(boundaryEnd.Forward(), current.Forward()) < Cos10Degrees ||
				reachedDistance {
				perpendicular := entity.Unit2D(entity.LeftPerpendicular2D(current.Forward()))
				scaledPerpendicular := entity.Scale(perpendicular, width)
				leftBoundary = append(leftBoundary,
					entity.Add(current.Position(), scaledPerpendicular))
				rightBoundary = append(rightBoundary,
					entity.Sub(current.Position(), scaledPerpendicular))
				boundaryEnd = current
			}
		}

		// 左右墙的近车端都在起始下标处，反转右墙后从最远点起拼接，
		// 得到顺时针的闭合走向
		for i, j := 0, len(rightBoundary)-1; i < j; i, j = i+1, j-1 {
			rightBoundary[i], rightBoundary[j] = rightBoundary[j], rightBoundary[i]
		}
		boundary = make([]geometry.Point, 0,
			len(rightBoundary)+len(bbox)+len(leftBoundary))
		boundary = append(boundary, rightBoundary...)
		boundary = append(boundary, bbox...)
		boundary = append(boundary, leftBoundary...)
	} else {
		boundary = bbox
	}

	cache.geodesic[actorID] = boundary
	return boundary
}
