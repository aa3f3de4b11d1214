// 离散PID控制器：根据速度偏差与航向偏差产生油门/刹车/转向
package pid

import (
	"github.com/samber/lo"
)

const (
	MaxThrottle = 0.7 // 油门饱和上限
	MaxBrake    = 1.0 // 刹车饱和上限

	minDT             = 0.05 // 时间差非正时替代使用的步长（秒），避免首步零时间差
	minTargetVelocity = 0.1  // 速度偏差归一化的目标速度下限（米/秒）
)

// Coefficients 一组PID系数
type Coefficients struct {
	KP float64 `yaml:"kp"`
	KI float64 `yaml:"ki"`
	KD float64 `yaml:"kd"`
}

// StateEntry 控制器在某一时刻的状态
type StateEntry struct {
	Deviation         float64 // 当前航向偏差
	DeviationIntegral float64 // 航向偏差积分
	Time              float64 // 仿真时刻（秒）
	Velocity          float64 // 归一化速度偏差（(当前-目标)/目标）
	VelocityIntegral  float64 // 速度偏差积分
}

// ActuationSignal 执行器信号
type ActuationSignal struct {
	Throttle float64 // 油门 [0,1]
	Brake    float64 // 刹车 [0,1]
	Steer    float64 // 转向 [-1,1]
}

// StateUpdate 由上一状态推进控制器状态
// 参数：previous-上一状态，currentVelocity-当前速度（米/秒），
// targetVelocity-目标速度（米/秒），currentDeviation-当前航向偏差，
// currentTime-当前仿真时刻（秒）
// 返回：推进后的状态（积分项按时间差累加）
func StateUpdate(previous StateEntry, currentVelocity, targetVelocity,
	currentDeviation, currentTime float64) StateEntry {
	if targetVelocity < minTargetVelocity {
		targetVelocity = minTargetVelocity
	}
	current := StateEntry{
		Deviation: currentDeviation,
		Time:      currentTime,
		Velocity:  (currentVelocity - targetVelocity) / targetVelocity,
	}
	dt := deltaTime(current, previous)
	current.DeviationIntegral = currentDeviation*dt + previous.DeviationIntegral
	current.VelocityIntegral = current.Velocity*dt + previous.VelocityIntegral
	return current
}

// RunStep 执行一步PID计算
// 参数：current/previous-当前与上一控制器状态，
// longitudinal/lateral-纵向与横向系数
// 返回：饱和后的执行器信号
// 算法说明：
// 1. 纵向：expr = kp*v + ki*∫v + kd*dv/dt，expr为负（低于目标速度）时加油门，否则刹车
// 2. 横向：steer = kp*dev + ki*∫dev + kd*ddev/dt，裁剪到[-1,1]
func RunStep(current, previous StateEntry,
	longitudinal, lateral Coefficients) ActuationSignal {
	dt := deltaTime(current, previous)

	// 纵向控制
	exprV := longitudinal.KP*current.Velocity +
		longitudinal.KI*current.VelocityIntegral +
		longitudinal.KD*(current.Velocity-previous.Velocity)/dt
	var throttle, brake float64
	if exprV < 0 {
		throttle = lo.Clamp(-exprV, 0, MaxThrottle)
	} else {
		brake = lo.Clamp(exprV, 0, MaxBrake)
	}

	// 横向控制
	steer := lateral.KP*current.Deviation +
		lateral.KI*current.DeviationIntegral +
		lateral.KD*(current.Deviation-previous.Deviation)/dt
	steer = lo.Clamp(steer, -1, 1)

	return ActuationSignal{Throttle: throttle, Brake: brake, Steer: steer}
}

// deltaTime 两个状态间的时间差，保证为正
func deltaTime(current, previous StateEntry) float64 {
	dt := current.Time - previous.Time
	if dt <= 0 {
		dt = minDT
	}
	return dt
}
