package trafficmanager_test

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/trafficmanager"
	"github.com/AIpakchoi/carla/utils/randengine"
	"github.com/stretchr/testify/assert"
)

// TestNegotiateHeadToTailFollower 直路跟车：前方慢车构成危险并建立碰撞锁
func TestNegotiateHeadToTailFollower(t *testing.T) {
	locks := trafficmanager.NewCollisionLockMap()
	cache := trafficmanager.NewGeometryCache()

	egoState := vehicleState(0, 0, 10, 0, 0)
	leadState := vehicleState(20, 0, 5, 0, 0)
	attributes := vehicleAttributes()
	egoBuffer := straightBuffer(geometry.Point{}, 0, 80, nil)
	leadBuffer := straightBuffer(geometry.Point{X: 20}, 0, 80, nil)

	hazard, margin := trafficmanager.NegotiateCollision(1, 2, cache, locks,
		egoState, leadState, attributes, attributes, greenLight(),
		egoBuffer, leadBuffer, lookAheadIndex(egoBuffer), 5, 5)

	assert.True(t, hazard)
	// 余量 = 本车包围盒到前车走廊的距离 - max(前车距离配置, 走廊长度下限)
	assert.InDelta(t, 15.4-5, margin, 1e-6)
	assert.Greater(t, margin, 0.0)

	lock, ok := locks.Load(1)
	assert.True(t, ok)
	assert.Equal(t, entity.ActorID(2), lock.LeadVehicleID)
	assert.InDelta(t, 15.4, lock.InitialLockDistance, 1e-6)
	assert.InDelta(t, 15.4, lock.DistanceToLeadVehicle, 1e-6)
}

// TestNegotiateDepartingLeader 前车远离：走廊不再接触，危险解除且锁被清除
func TestNegotiateDepartingLeader(t *testing.T) {
	locks := trafficmanager.NewCollisionLockMap()

	egoState := vehicleState(0, 0, 10, 0, 0)
	attributes := vehicleAttributes()
	egoBuffer := straightBuffer(geometry.Point{}, 0, 80, nil)

	// 第一步：近距离建立锁
	nearState := vehicleState(20, 0, 5, 0, 0)
	nearBuffer := straightBuffer(geometry.Point{X: 20}, 0, 80, nil)
	hazard, _ := trafficmanager.NegotiateCollision(1, 2,
		trafficmanager.NewGeometryCache(), locks, egoState, nearState,
		attributes, attributes, greenLight(), egoBuffer, nearBuffer,
		lookAheadIndex(egoBuffer), 5, 5)
	assert.True(t, hazard)
	_, ok := locks.Load(1)
	assert.True(t, ok)

	// 第二步：前车加速远离到走廊之外
	farState := vehicleState(60, 0, 20, 0, 0)
	farBuffer := straightBuffer(geometry.Point{X: 60}, 0, 80, nil)
	hazard, margin := trafficmanager.NegotiateCollision(1, 2,
		trafficmanager.NewGeometryCache(), locks, egoState, farState,
		attributes, attributes, greenLight(), egoBuffer, farBuffer,
		lookAheadIndex(egoBuffer), 5, 5)

	assert.False(t, hazard)
	assert.True(t, math.IsInf(margin, 1) || margin >= math.MaxFloat64)
	_, ok = locks.Load(1)
	assert.False(t, ok)
}

// TestNegotiateJunctionCross 路口交叉：垂直来车在交叉检测范围内构成危险
func TestNegotiateJunctionCross(t *testing.T) {
	locks := trafficmanager.NewCollisionLockMap()
	cache := trafficmanager.NewGeometryCache()

	egoState := vehicleState(0, 0, 5, 0, 0)
	crossState := vehicleState(10, -8, 0, 5, math.Pi/2)
	attributes := vehicleAttributes()
	egoBuffer := straightBuffer(geometry.Point{}, 0, 80, func(i int) bool { return true })
	crossBuffer := straightBuffer(geometry.Point{X: 10, Y: -8}, math.Pi/2, 80,
		func(i int) bool { return true })

	hazard, margin := trafficmanager.NegotiateCollision(1, 2, cache, locks,
		egoState, crossState, attributes, attributes, greenLight(),
		egoBuffer, crossBuffer, lookAheadIndex(egoBuffer), 5, 5)

	assert.True(t, hazard)
	assert.GreaterOrEqual(t, margin, 0.0)
	assert.False(t, math.IsInf(margin, 1))
}

// TestNegotiateRedLightAtJunctionEntrance 红灯停在路口入口：完全不协商
func TestNegotiateRedLightAtJunctionEntrance(t *testing.T) {
	locks := trafficmanager.NewCollisionLockMap()
	cache := trafficmanager.NewGeometryCache()

	egoState := vehicleState(0, 0, 10, 0, 0)
	otherState := vehicleState(12, 0, 0, 0, 0)
	attributes := vehicleAttributes()
	// 路口从4米处开始：首路点不在路口、预判路点在路口
	egoBuffer := straightBuffer(geometry.Point{}, 0, 80, func(i int) bool { return i >= 4 })
	otherBuffer := straightBuffer(geometry.Point{X: 12}, 0, 80, nil)
	redLight := &entity.TrafficLightState{
		State:          entity.LightStateRed,
		AtTrafficLight: true,
	}

	hazard, margin := trafficmanager.NegotiateCollision(1, 2, cache, locks,
		egoState, otherState, attributes, attributes, redLight,
		egoBuffer, otherBuffer, lookAheadIndex(egoBuffer), 5, 5)

	assert.False(t, hazard)
	assert.True(t, math.IsInf(margin, 1) || margin >= math.MaxFloat64)
	_, ok := locks.Load(1)
	assert.False(t, ok)
}

// TestNegotiateLockFollowSequence 跟车过程中锁的距离按接触状态更新
func TestNegotiateLockFollowSequence(t *testing.T) {
	locks := trafficmanager.NewCollisionLockMap()

	egoState := vehicleState(0, 0, 10, 0, 0)
	attributes := vehicleAttributes()
	egoBuffer := straightBuffer(geometry.Point{}, 0, 80, nil)

	step := func(leadX float64) trafficmanager.GeometryComparison {
		leadState := vehicleState(leadX, 0, 2, 0, 0)
		leadBuffer := straightBuffer(geometry.Point{X: leadX}, 0, 80, nil)
		cache := trafficmanager.NewGeometryCache()
		hazard, _ := trafficmanager.NegotiateCollision(1, 2, cache, locks,
			egoState, leadState, attributes, attributes, greenLight(),
			egoBuffer, leadBuffer, lookAheadIndex(egoBuffer), 5, 5)
		assert.True(t, hazard)
		return cache.GetGeometryBetweenActors(1, 2, egoState, leadState,
			attributes, attributes, egoBuffer, leadBuffer, locks, 5, 5)
	}

	// 前车车身在本车走廊内：锁距离取包围盒间距
	comparison := step(20)
	lock, _ := locks.Load(1)
	assert.InDelta(t, comparison.InterBboxDistance, lock.DistanceToLeadVehicle, 1e-9)
	initial := lock.InitialLockDistance

	// 前车靠近：锁距离跟随包围盒间距更新，初始距离不变
	comparison = step(15)
	lock, _ = locks.Load(1)
	assert.InDelta(t, comparison.InterBboxDistance, lock.DistanceToLeadVehicle, 1e-9)
	assert.Equal(t, initial, lock.InitialLockDistance)
}

// TestNegotiateLockSwitchesLead 锁定对象变化时重新初始化
func TestNegotiateLockSwitchesLead(t *testing.T) {
	locks := trafficmanager.NewCollisionLockMap()

	egoState := vehicleState(0, 0, 10, 0, 0)
	attributes := vehicleAttributes()
	egoBuffer := straightBuffer(geometry.Point{}, 0, 80, nil)

	leadState := vehicleState(20, 0, 5, 0, 0)
	leadBuffer := straightBuffer(geometry.Point{X: 20}, 0, 80, nil)
	hazard, _ := trafficmanager.NegotiateCollision(1, 2,
		trafficmanager.NewGeometryCache(), locks, egoState, leadState,
		attributes, attributes, greenLight(), egoBuffer, leadBuffer,
		lookAheadIndex(egoBuffer), 5, 5)
	assert.True(t, hazard)

	// 另一辆更近的车切入
	cutInState := vehicleState(12, 0, 5, 0, 0)
	cutInBuffer := straightBuffer(geometry.Point{X: 12}, 0, 80, nil)
	hazard, _ = trafficmanager.NegotiateCollision(1, 3,
		trafficmanager.NewGeometryCache(), locks, egoState, cutInState,
		attributes, attributes, greenLight(), egoBuffer, cutInBuffer,
		lookAheadIndex(egoBuffer), 5, 5)
	assert.True(t, hazard)

	lock, ok := locks.Load(1)
	assert.True(t, ok)
	assert.Equal(t, entity.ActorID(3), lock.LeadVehicleID)
	assert.InDelta(t, 12-4.6, lock.InitialLockDistance, 1e-6)
}

// TestCollisionAvoidanceDriver 驱动端到端：候选筛选、排序与首个危险确认
func TestCollisionAvoidanceDriver(t *testing.T) {
	snapshot := emptySnapshot()
	addActor(snapshot, 1, vehicleState(0, 0, 10, 0, 0), vehicleAttributes(),
		greenLight(), straightBuffer(geometry.Point{}, 0, 80, nil), true)
	addActor(snapshot, 2, vehicleState(20, 0, 5, 0, 0), vehicleAttributes(),
		greenLight(), straightBuffer(geometry.Point{X: 20}, 0, 80, nil), true)
	// 更远的第三辆车：排序后首个确认的危险仍是2号
	addActor(snapshot, 3, vehicleState(36, 0, 5, 0, 0), vehicleAttributes(),
		greenLight(), straightBuffer(geometry.Point{X: 36}, 0, 80, nil), true)

	trackTraffic := trafficmanager.NewTrackTraffic()
	trackTraffic.Update(snapshot)
	parameters := trafficmanager.NewParameters(defaultConfig())
	locks := trafficmanager.NewCollisionLockMap()
	generator := randengine.New(42)
	frame := make(trafficmanager.CollisionFrame, 3)

	for index := range snapshot.VehicleIDs {
		trafficmanager.CollisionAvoidance(index, snapshot, trackTraffic,
			parameters, locks, generator, frame)
	}

	assert.True(t, frame[0].Hazard)
	assert.Equal(t, entity.ActorID(2), frame[0].HazardActorID)
	assert.Greater(t, frame[0].AvailableDistanceMargin, 0.0)
	assert.False(t, math.IsInf(frame[0].AvailableDistanceMargin, 1))

	// 2号车让行于更近的3号车前车
	assert.True(t, frame[1].Hazard)
	assert.Equal(t, entity.ActorID(3), frame[1].HazardActorID)

	// 3号车前方无人
	assert.False(t, frame[2].Hazard)
	assert.True(t, math.IsInf(frame[2].AvailableDistanceMargin, 1) ||
		frame[2].AvailableDistanceMargin >= math.MaxFloat64)
}

// TestCollisionAvoidanceIgnoreWalkers 行人危险被忽略策略确定性抑制
func TestCollisionAvoidanceIgnoreWalkers(t *testing.T) {
	walkerState := &entity.KinematicState{
		Location: geometry.Point{X: 10, Y: -2},
		Velocity: geometry.Point{Y: 1},
		Rotation: entity.Rotation{Yaw: math.Pi / 2},
	}
	build := func() *trafficmanager.Snapshot {
		snapshot := emptySnapshot()
		addActor(snapshot, 1, vehicleState(0, 0, 5, 0, 0), vehicleAttributes(),
			greenLight(), straightBuffer(geometry.Point{}, 0, 80, nil), true)
		state := *walkerState
		addActor(snapshot, 7, &state, walkerAttributes(),
			&entity.TrafficLightState{},
			straightBuffer(geometry.Point{X: 10, Y: -2}, math.Pi/2, 10, nil), false)
		return snapshot
	}

	run := func(ignorePercentage float64) trafficmanager.CollisionHazardData {
		snapshot := build()
		trackTraffic := trafficmanager.NewTrackTraffic()
		trackTraffic.Update(snapshot)
		parameters := trafficmanager.NewParameters(defaultConfig())
		parameters.SetPercentageIgnoreWalkers(1, ignorePercentage)
		locks := trafficmanager.NewCollisionLockMap()
		frame := make(trafficmanager.CollisionFrame, 1)
		trafficmanager.CollisionAvoidance(0, snapshot, trackTraffic,
			parameters, locks, randengine.New(42), frame)
		if !frame[0].Hazard {
			// 抑制后碰撞锁也被释放
			_, ok := locks.Load(1)
			assert.False(t, ok)
		}
		return frame[0]
	}

	// 不忽略：横穿行人构成危险
	assert.True(t, run(0).Hazard)
	// 全忽略：确定性抑制
	assert.False(t, run(100).Hazard)
}

// TestCollisionAvoidanceSkipsIncompleteEgo 快照缺失的参与者被静默跳过
func TestCollisionAvoidanceSkipsIncompleteEgo(t *testing.T) {
	snapshot := emptySnapshot()
	snapshot.VehicleIDs = append(snapshot.VehicleIDs, 9)

	trackTraffic := trafficmanager.NewTrackTraffic()
	trackTraffic.Update(snapshot)
	frame := make(trafficmanager.CollisionFrame, 1)
	trafficmanager.CollisionAvoidance(0, snapshot, trackTraffic,
		trafficmanager.NewParameters(defaultConfig()),
		trafficmanager.NewCollisionLockMap(), randengine.New(1), frame)

	assert.False(t, frame[0].Hazard)
	assert.True(t, math.IsInf(frame[0].AvailableDistanceMargin, 1) ||
		frame[0].AvailableDistanceMargin >= math.MaxFloat64)
}
