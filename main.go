package main

import (
	"flag"
	"math"
	"os"

	"git.fiblab.net/general/common/v2/geometry"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/AIpakchoi/carla/clock"
	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/trafficmanager"
	"github.com/AIpakchoi/carla/utils/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var (
	// 配置文件路径，为空时使用内置默认配置
	configPath = flag.String("config", "", "config file path (empty means built-in defaults)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel          = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")

	log = logrus.WithField("module", "main")
)

// actor 演示场景中的一个交通参与者
// 说明：物理车辆以恒定速度前进，物理关闭车辆由传送指令驱动，
// 不做任何动力学模拟
type actor struct {
	id          entity.ActorID
	state       entity.KinematicState
	attributes  entity.StaticAttributes
	tl          entity.TrafficLightState
	routeYaw    float64 // 路径方向角
	junctionIn  float64 // 路口区间起点（沿路径的距离），无路口时为+Inf
	junctionOut float64 // 路口区间终点
}

// buffer 由参与者当前位置沿其路径方向生成短期路径缓冲区
func (a *actor) buffer(length int) entity.Buffer {
	forward := entity.Direction(a.routeYaw)
	buffer := make(entity.Buffer, 0, length)
	for i := 0; i < length; i++ {
		s := float64(i)
		position := entity.Add(a.state.Location, entity.Scale(forward, s))
		junction := s >= a.junctionIn && s <= a.junctionOut
		buffer = append(buffer, entity.NewSimpleWaypoint(position, a.routeYaw, junction))
	}
	return buffer
}

// buildScenario 构造演示场景：直路上的慢速前车与跟随车、
// 平行车道上的物理关闭巡航车、路边横穿的行人
func buildScenario() []*actor {
	return []*actor{
		{
			id: 101,
			state: entity.KinematicState{
				Location:       geometry.Point{X: 0, Y: 0},
				Velocity:       geometry.Point{X: 10},
				PhysicsEnabled: true,
			},
			attributes: entity.StaticAttributes{
				Type: entity.ActorTypeVehicle, HalfLength: 2.3, HalfWidth: 1.0, SpeedLimit: 50,
			},
			tl:          entity.TrafficLightState{State: entity.LightStateGreen},
			junctionIn:  math.Inf(0),
			junctionOut: math.Inf(0),
		},
		{
			id: 102,
			state: entity.KinematicState{
				Location:       geometry.Point{X: 30, Y: 0},
				Velocity:       geometry.Point{X: 5},
				PhysicsEnabled: true,
			},
			attributes: entity.StaticAttributes{
				Type: entity.ActorTypeVehicle, HalfLength: 2.3, HalfWidth: 1.0, SpeedLimit: 50,
			},
			tl:          entity.TrafficLightState{State: entity.LightStateGreen},
			junctionIn:  math.Inf(0),
			junctionOut: math.Inf(0),
		},
		{
			id: 103,
			state: entity.KinematicState{
				Location: geometry.Point{X: 0, Y: 12},
				Velocity: geometry.Point{X: 8},
			},
			attributes: entity.StaticAttributes{
				Type: entity.ActorTypeVehicle, HalfLength: 2.3, HalfWidth: 1.0, SpeedLimit: 40,
			},
			tl:          entity.TrafficLightState{State: entity.LightStateGreen},
			junctionIn:  math.Inf(0),
			junctionOut: math.Inf(0),
		},
		{
			id: 104,
			state: entity.KinematicState{
				Location: geometry.Point{X: 60, Y: -6},
				Velocity: geometry.Point{Y: 1.2},
				Rotation: entity.Rotation{Yaw: math.Pi / 2},
			},
			attributes: entity.StaticAttributes{
				Type: entity.ActorTypePedestrian, HalfLength: 0.3, HalfWidth: 0.3, SpeedLimit: 5,
			},
			routeYaw:    math.Pi / 2,
			junctionIn:  math.Inf(0),
			junctionOut: math.Inf(0),
		},
	}
}

// snapshotOf 将场景参与者整理为一步决策输入
// 说明：行人不参与决策，只作为环境参与者出现在各表中
func snapshotOf(actors []*actor) *trafficmanager.Snapshot {
	snapshot := &trafficmanager.Snapshot{
		States:        make(map[entity.ActorID]*entity.KinematicState),
		Attributes:    make(map[entity.ActorID]*entity.StaticAttributes),
		TrafficLights: make(map[entity.ActorID]*entity.TrafficLightState),
		Buffers:       make(map[entity.ActorID]entity.Buffer),
	}
	for _, a := range actors {
		if a.attributes.Type == entity.ActorTypeVehicle {
			snapshot.VehicleIDs = append(snapshot.VehicleIDs, a.id)
		}
		state, tl := a.state, a.tl
		snapshot.States[a.id] = &state
		snapshot.Attributes[a.id] = &a.attributes
		snapshot.TrafficLights[a.id] = &tl
		snapshot.Buffers[a.id] = a.buffer(80)
	}
	return snapshot
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	// 获取配置
	c := config.Default()
	if *configPath != "" {
		file, err := os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
		if err := yaml.UnmarshalStrict(file, &c); err != nil {
			log.Panicf("config file load err: %v", err)
		}
	}
	log.Infof("%+v", c)

	clk := clock.New(c.Control.Step)
	engine := trafficmanager.NewEngine(c, clk)
	actors := buildScenario()
	index := make(map[entity.ActorID]*actor)
	for _, a := range actors {
		index[a.id] = a
	}

	for !clk.Done() {
		snapshot := snapshotOf(actors)
		collisionFrame, controlFrame := engine.Step(snapshot)

		// 指令回放：物理车辆恒速前进，物理关闭车辆应用传送位姿
		for i, id := range snapshot.VehicleIDs {
			a := index[id]
			if hazard := collisionFrame[i]; hazard.Hazard {
				log.Debugf("step %d: vehicle %v yields to %v (margin %.2fm)",
					clk.InternalStep, id, hazard.HazardActorID,
					hazard.AvailableDistanceMargin)
			}
			command := controlFrame[i]
			if command.Type == trafficmanager.CommandApplyTransform {
				a.state.Location = command.Transform.Location
				a.state.Rotation = command.Transform.Rotation
			} else {
				a.state.Location = entity.Add(a.state.Location,
					entity.Scale(a.state.Velocity, clk.DT))
			}
		}
		// 行人匀速行走
		for _, a := range actors {
			if a.attributes.Type == entity.ActorTypePedestrian {
				a.state.Location = entity.Add(a.state.Location,
					entity.Scale(a.state.Velocity, clk.DT))
			}
		}

		if int(clk.InternalStep)%*heartBeatInterval == 0 {
			hour, minute, second := clk.GetHourMinuteSecond()
			log.Infof("STEP: %d(%d:%d:%.2f)", clk.InternalStep, hour, minute, second)
		}
		clk.Tick()
	}
	log.Infof("engine complete")
}
