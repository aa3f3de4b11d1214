package trafficmanager

import (
	"github.com/AIpakchoi/carla/entity"
)

// TrafficLightResponse 单车的信号灯危险判定
// 功能：车辆受信号灯约束且信号非绿时置危险，写入输出帧对应槽位
func TrafficLightResponse(index int, snapshot *Snapshot, frame TLFrame) {
	egoID := snapshot.VehicleIDs[index]
	hazard := false
	if tl, ok := snapshot.TrafficLights[egoID]; ok {
		hazard = tl.AtTrafficLight && tl.State != entity.LightStateGreen
	}
	frame[index] = hazard
}
