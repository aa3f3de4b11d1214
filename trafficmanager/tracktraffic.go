package trafficmanager

import (
	"math"

	"github.com/AIpakchoi/carla/entity"
)

// 网格尺寸取筛选半径，配合邻域扫描保证半径内的参与者不会漏报，
// 精确的距离与高度过滤留给碰撞判定阶段
const trackGridSize = MaxCollisionRadius

// gridKey 空间散列网格坐标
type gridKey struct {
	X, Y int32
}

// TrackTraffic 路径重叠索引
// 功能：按参与者的当前位置与路径缓冲区建立粗粒度空间散列，
// 回答"哪些参与者可能与ego的近期路径重叠"
// 说明：每步Step开始时整体重建，重建期间不允许并发查询
type TrackTraffic struct {
	cells      map[gridKey][]entity.ActorID
	actorCells map[entity.ActorID][]gridKey
}

// NewTrackTraffic 创建空的重叠索引
func NewTrackTraffic() *TrackTraffic {
	return &TrackTraffic{
		cells:      make(map[gridKey][]entity.ActorID),
		actorCells: make(map[entity.ActorID][]gridKey),
	}
}

// keyOf 位置所在的网格坐标
func keyOf(x, y float64) gridKey {
	return gridKey{
		X: int32(math.Floor(x / trackGridSize)),
		Y: int32(math.Floor(y / trackGridSize)),
	}
}

// Update 重建索引
// 说明：每个参与者注册其当前位置与路径缓冲区路点覆盖的所有网格
func (t *TrackTraffic) Update(snapshot *Snapshot) {
	t.cells = make(map[gridKey][]entity.ActorID)
	t.actorCells = make(map[entity.ActorID][]gridKey)
	for id, state := range snapshot.States {
		seen := make(map[gridKey]struct{})
		register := func(k gridKey) {
			if _, ok := seen[k]; ok {
				return
			}
			seen[k] = struct{}{}
			t.cells[k] = append(t.cells[k], id)
			t.actorCells[id] = append(t.actorCells[id], k)
		}
		register(keyOf(state.Location.X, state.Location.Y))
		for _, wp := range snapshot.Buffers[id] {
			register(keyOf(wp.Position().X, wp.Position().Y))
		}
	}
}

// GetOverlappingVehicles 查询与指定参与者路径可能重叠的其他参与者
// 说明：扫描其占用网格及八邻域，结果已去重且不含自身
func (t *TrackTraffic) GetOverlappingVehicles(id entity.ActorID) []entity.ActorID {
	result := make([]entity.ActorID, 0)
	found := make(map[entity.ActorID]struct{})
	for _, k := range t.actorCells[id] {
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for _, other := range t.cells[gridKey{X: k.X + dx, Y: k.Y + dy}] {
					if other == id {
						continue
					}
					if _, ok := found[other]; ok {
						continue
					}
					found[other] = struct{}{}
					result = append(result, other)
				}
			}
		}
	}
	return result
}
