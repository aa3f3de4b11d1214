package trafficmanager_test

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/trafficmanager"
	"github.com/AIpakchoi/carla/utils/config"
)

// straightBuffer 从start沿yaw方向以1米间距生成n个路点
// junction为每个下标的路口标志判定，nil表示全不在路口
func straightBuffer(start geometry.Point, yaw float64, n int,
	junction func(i int) bool) entity.Buffer {
	forward := entity.Direction(yaw)
	buffer := make(entity.Buffer, 0, n)
	for i := 0; i < n; i++ {
		inJunction := junction != nil && junction(i)
		buffer = append(buffer, entity.NewSimpleWaypoint(
			entity.Add(start, entity.Scale(forward, float64(i))), yaw, inJunction))
	}
	return buffer
}

func vehicleState(x, y, vx, vy, yaw float64) *entity.KinematicState {
	return &entity.KinematicState{
		Location:       geometry.Point{X: x, Y: y},
		Velocity:       geometry.Point{X: vx, Y: vy},
		Rotation:       entity.Rotation{Yaw: yaw},
		PhysicsEnabled: true,
	}
}

func vehicleAttributes() *entity.StaticAttributes {
	return &entity.StaticAttributes{
		Type:       entity.ActorTypeVehicle,
		HalfLength: 2.3,
		HalfWidth:  1.0,
		SpeedLimit: 50,
	}
}

func walkerAttributes() *entity.StaticAttributes {
	return &entity.StaticAttributes{
		Type:       entity.ActorTypePedestrian,
		HalfLength: 0.3,
		HalfWidth:  0.3,
		SpeedLimit: 5,
	}
}

func greenLight() *entity.TrafficLightState {
	return &entity.TrafficLightState{State: entity.LightStateGreen}
}

// lookAheadIndex 与碰撞规避驱动一致的路口预判下标
func lookAheadIndex(buffer entity.Buffer) int {
	_, index := entity.GetTargetWaypoint(buffer, trafficmanager.JunctionLookAhead)
	return index
}

// emptySnapshot 创建带空表的快照
func emptySnapshot() *trafficmanager.Snapshot {
	return &trafficmanager.Snapshot{
		States:        make(map[entity.ActorID]*entity.KinematicState),
		Attributes:    make(map[entity.ActorID]*entity.StaticAttributes),
		TrafficLights: make(map[entity.ActorID]*entity.TrafficLightState),
		Buffers:       make(map[entity.ActorID]entity.Buffer),
	}
}

// addActor 向快照加入一个参与者
func addActor(snapshot *trafficmanager.Snapshot, id entity.ActorID,
	state *entity.KinematicState, attributes *entity.StaticAttributes,
	tl *entity.TrafficLightState, buffer entity.Buffer, ego bool) {
	if ego {
		snapshot.VehicleIDs = append(snapshot.VehicleIDs, id)
	}
	snapshot.States[id] = state
	snapshot.Attributes[id] = attributes
	snapshot.TrafficLights[id] = tl
	snapshot.Buffers[id] = buffer
}

func defaultConfig() config.Config {
	return config.Default()
}
