package trafficmanager

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/utils/polygon"
)

// actorPairKey 两个参与者的规范化缓存键，小ID在前
type actorPairKey struct {
	low, high entity.ActorID
}

func newActorPairKey(a, b entity.ActorID) actorPairKey {
	if a < b {
		return actorPairKey{low: a, high: b}
	}
	return actorPairKey{low: b, high: a}
}

// GeometryCache 单步、单车决策范围内的几何缓存
// 功能：记忆化走廊边界点与成对几何比较，生命周期等于一次碰撞判定调用
type GeometryCache struct {
	geodesic   map[entity.ActorID][]geometry.Point
	comparison map[actorPairKey]GeometryComparison
}

// NewGeometryCache 创建空的几何缓存
func NewGeometryCache() *GeometryCache {
	return &GeometryCache{
		geodesic:   make(map[entity.ActorID][]geometry.Point),
		comparison: make(map[actorPairKey]GeometryComparison),
	}
}

// GetGeometryBetweenActors 计算或取出两参与者间的几何比较
// 功能：包围盒到对方走廊、走廊间与包围盒间的四个最小距离；
// 结果按(小ID,大ID)规范化缓存，反向查询时交换两个非对称字段
// 参数：reference/other-有序参与者对及其状态、属性、缓冲区，
// locks-碰撞锁表，referenceLead/otherLead-各自配置的前车距离
func (c *GeometryCache) GetGeometryBetweenActors(
	referenceID, otherID entity.ActorID,
	referenceState, otherState *entity.KinematicState,
	referenceAttributes, otherAttributes *entity.StaticAttributes,
	referenceBuffer, otherBuffer entity.Buffer,
	locks *CollisionLockMap,
	referenceLead, otherLead float64) GeometryComparison {
	key := newActorPairKey(referenceID, otherID)
	comparison, ok := c.comparison[key]
	if !ok {
		referencePolygon := polygon.NewRing(GetBoundary(referenceState, referenceAttributes))
		otherPolygon := polygon.NewRing(GetBoundary(otherState, otherAttributes))
		referenceGeodesic := polygon.NewRing(GetGeodesicBoundary(referenceID, c,
			referenceState, referenceAttributes, referenceBuffer, referenceLead, locks))
		otherGeodesic := polygon.NewRing(GetGeodesicBoundary(otherID, c,
			otherState, otherAttributes, otherBuffer, otherLead, locks))

		comparison = GeometryComparison{
			ReferenceVehicleToOtherGeodesic: polygon.Distance(referencePolygon, otherGeodesic),
			OtherVehicleToReferenceGeodesic: polygon.Distance(otherPolygon, referenceGeodesic),
			InterGeodesicDistance:           polygon.Distance(referenceGeodesic, otherGeodesic),
			InterBboxDistance:               polygon.Distance(referencePolygon, otherPolygon),
		}
		// 统一以小ID作为参考方向存储
		if referenceID > otherID {
			c.comparison[key] = swapped(comparison)
		} else {
			c.comparison[key] = comparison
		}
		return comparison
	}
	if referenceID > otherID {
		return swapped(comparison)
	}
	return comparison
}

// swapped 交换两个非对称距离字段
func swapped(c GeometryComparison) GeometryComparison {
	c.ReferenceVehicleToOtherGeodesic, c.OtherVehicleToReferenceGeodesic =
		c.OtherVehicleToReferenceGeodesic, c.ReferenceVehicleToOtherGeodesic
	return c
}
