// 仿真器YAML配置定义与默认值
package config

import (
	"github.com/AIpakchoi/carla/trafficmanager/pid"
)

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step            ControlStep `yaml:"step"`
	SynchronousMode bool        `yaml:"synchronous_mode,omitempty"` // 同步模式（传送不受节拍限制）
	Seed            uint64      `yaml:"seed,omitempty"`             // 随机数种子
}

// PID 纵向与横向PID参数组配置
// 功能：定义市区与高速两组控制器参数，按当前车速选择
type PID struct {
	UrbanLongitudinal   pid.Coefficients `yaml:"urban_longitudinal"`
	HighwayLongitudinal pid.Coefficients `yaml:"highway_longitudinal"`
	UrbanLateral        pid.Coefficients `yaml:"urban_lateral"`
	HighwayLateral      pid.Coefficients `yaml:"highway_lateral"`
}

// TrafficManager 交通管理器全局默认参数
// 功能：定义各车辆未单独覆盖时使用的默认行为参数
type TrafficManager struct {
	DistanceToLeadingVehicle  float64 `yaml:"distance_to_leading_vehicle"`  // 与前车保持的距离（米）
	PercentageIgnoreVehicles  float64 `yaml:"percentage_ignore_vehicles"`   // 忽略车辆危险的概率（0-100）
	PercentageIgnoreWalkers   float64 `yaml:"percentage_ignore_walkers"`    // 忽略行人危险的概率（0-100）
	PercentageSpeedDifference float64 `yaml:"percentage_speed_difference"`  // 目标速度相对限速的下调比例（0-100）
}

// Config YAML配置文件的根结构
type Config struct {
	Control        Control        `yaml:"control"`         // 模拟过程控制
	PID            PID            `yaml:"pid"`             // 控制器参数
	TrafficManager TrafficManager `yaml:"traffic_manager"` // 交通管理器默认参数
}

// Default 返回无配置文件时使用的默认配置
func Default() Config {
	return Config{
		Control: Control{
			Step:            ControlStep{Start: 0, Total: 1000, Interval: 0.05},
			SynchronousMode: true,
			Seed:            43,
		},
		PID: PID{
			UrbanLongitudinal:   pid.Coefficients{KP: 12.0, KI: 0.05, KD: 0.02},
			HighwayLongitudinal: pid.Coefficients{KP: 20.0, KI: 0.05, KD: 0.01},
			UrbanLateral:        pid.Coefficients{KP: 4.0, KI: 0.02, KD: 0.08},
			HighwayLateral:      pid.Coefficients{KP: 2.0, KI: 0.02, KD: 0.01},
		},
		TrafficManager: TrafficManager{
			DistanceToLeadingVehicle:  5.0,
			PercentageIgnoreVehicles:  0,
			PercentageIgnoreWalkers:   0,
			PercentageSpeedDifference: 0,
		},
	}
}
