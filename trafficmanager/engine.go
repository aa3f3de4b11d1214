package trafficmanager

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/AIpakchoi/carla/clock"
	"github.com/AIpakchoi/carla/utils/config"
	"github.com/AIpakchoi/carla/utils/randengine"
	"github.com/samber/lo"
)

// Engine 每步决策流水线
// 功能：持有跨步状态（碰撞锁、控制器状态、传送时刻），
// 对输入快照依次执行碰撞规避与运动规划两个阶段
// 说明：阶段内按车辆并行，每辆车只写自己的输出槽位与分片状态
type Engine struct {
	clock      *clock.Clock
	parameters *Parameters
	generator  *randengine.Engine
	pidConfig  config.PID

	trackTraffic     *TrackTraffic
	collisionLocks   *CollisionLockMap
	pidStates        *StateEntryMap
	teleportInstants *TeleportInstantMap
}

// NewEngine 创建决策流水线
// 参数：cfg-全局配置，clk-仿真时钟
func NewEngine(cfg config.Config, clk *clock.Clock) *Engine {
	return &Engine{
		clock:            clk,
		parameters:       NewParameters(cfg),
		generator:        randengine.New(cfg.Control.Seed),
		pidConfig:        cfg.PID,
		trackTraffic:     NewTrackTraffic(),
		collisionLocks:   NewCollisionLockMap(),
		pidStates:        NewStateEntryMap(),
		teleportInstants: NewTeleportInstantMap(),
	}
}

// Parameters 获取行为参数表
func (e *Engine) Parameters() *Parameters {
	return e.parameters
}

// CollisionLocks 获取碰撞锁表
func (e *Engine) CollisionLocks() *CollisionLockMap {
	return e.collisionLocks
}

// Step 执行一步决策
// 功能：重建路径重叠索引后，碰撞规避阶段与运动规划阶段
// 依次对全部车辆并行执行
// 返回：碰撞判定帧与控制指令帧，槽位与snapshot.VehicleIDs对应
func (e *Engine) Step(snapshot *Snapshot) (CollisionFrame, ControlFrame) {
	n := len(snapshot.VehicleIDs)
	e.trackTraffic.Update(snapshot)

	// 阶段一：碰撞规避
	collisionFrame := make(CollisionFrame, n)
	parallel.GoFor(lo.Range(n), func(index int) {
		CollisionAvoidance(index, snapshot, e.trackTraffic, e.parameters,
			e.collisionLocks, e.generator, collisionFrame)
	})

	// 信号灯危险帧
	tlFrame := make(TLFrame, n)
	for index := range snapshot.VehicleIDs {
		TrafficLightResponse(index, snapshot, tlFrame)
	}

	// 阶段二：运动规划
	controlFrame := make(ControlFrame, n)
	parallel.GoFor(lo.Range(n), func(index int) {
		MotionPlan(index, snapshot, e.parameters, e.pidConfig,
			collisionFrame, tlFrame, e.pidStates, e.teleportInstants,
			e.clock.T, controlFrame)
	})

	return collisionFrame, controlFrame
}
