package trafficmanager

import (
	"github.com/AIpakchoi/carla/entity"
	"github.com/AIpakchoi/carla/utils/config"
	"github.com/puzpuzpuz/xsync/v3"
)

// Parameters 交通管理器行为参数
// 功能：提供全局默认值与按车辆覆盖的行为参数查询
// 说明：决策阶段并发读取，外部控制线程可能随时写入覆盖项
type Parameters struct {
	synchronousMode bool

	// 全局默认值
	defaultDistanceToLeading  float64
	defaultIgnoreVehicles     float64
	defaultIgnoreWalkers      float64
	defaultSpeedDifference    float64

	// 按车辆覆盖
	distanceToLeading  *xsync.MapOf[entity.ActorID, float64]
	ignoreVehicles     *xsync.MapOf[entity.ActorID, float64]
	ignoreWalkers      *xsync.MapOf[entity.ActorID, float64]
	speedDifference    *xsync.MapOf[entity.ActorID, float64]
	collisionDetection *xsync.MapOf[entity.ActorID, bool]
}

// NewParameters 由配置创建参数表
func NewParameters(cfg config.Config) *Parameters {
	return &Parameters{
		synchronousMode:          cfg.Control.SynchronousMode,
		defaultDistanceToLeading: cfg.TrafficManager.DistanceToLeadingVehicle,
		defaultIgnoreVehicles:    cfg.TrafficManager.PercentageIgnoreVehicles,
		defaultIgnoreWalkers:     cfg.TrafficManager.PercentageIgnoreWalkers,
		defaultSpeedDifference:   cfg.TrafficManager.PercentageSpeedDifference,
		distanceToLeading:        xsync.NewMapOf[entity.ActorID, float64](),
		ignoreVehicles:           xsync.NewMapOf[entity.ActorID, float64](),
		ignoreWalkers:            xsync.NewMapOf[entity.ActorID, float64](),
		speedDifference:          xsync.NewMapOf[entity.ActorID, float64](),
		collisionDetection:       xsync.NewMapOf[entity.ActorID, bool](),
	}
}

// GetSynchronousMode 是否处于同步模式
func (p *Parameters) GetSynchronousMode() bool {
	return p.synchronousMode
}

// GetDistanceToLeadingVehicle 获取与前车保持的距离（米）
func (p *Parameters) GetDistanceToLeadingVehicle(id entity.ActorID) float64 {
	if v, ok := p.distanceToLeading.Load(id); ok {
		return v
	}
	return p.defaultDistanceToLeading
}

// SetDistanceToLeadingVehicle 覆盖单车的前车距离
func (p *Parameters) SetDistanceToLeadingVehicle(id entity.ActorID, distance float64) {
	p.distanceToLeading.Store(id, distance)
}

// GetPercentageIgnoreVehicles 获取忽略车辆危险的概率（0-100）
func (p *Parameters) GetPercentageIgnoreVehicles(id entity.ActorID) float64 {
	if v, ok := p.ignoreVehicles.Load(id); ok {
		return v
	}
	return p.defaultIgnoreVehicles
}

// SetPercentageIgnoreVehicles 覆盖单车的忽略车辆概率
func (p *Parameters) SetPercentageIgnoreVehicles(id entity.ActorID, percentage float64) {
	p.ignoreVehicles.Store(id, percentage)
}

// GetPercentageIgnoreWalkers 获取忽略行人危险的概率（0-100）
func (p *Parameters) GetPercentageIgnoreWalkers(id entity.ActorID) float64 {
	if v, ok := p.ignoreWalkers.Load(id); ok {
		return v
	}
	return p.defaultIgnoreWalkers
}

// SetPercentageIgnoreWalkers 覆盖单车的忽略行人概率
func (p *Parameters) SetPercentageIgnoreWalkers(id entity.ActorID, percentage float64) {
	p.ignoreWalkers.Store(id, percentage)
}

// GetCollisionDetection 判断ego对other是否启用碰撞检测
func (p *Parameters) GetCollisionDetection(ego, other entity.ActorID) bool {
	if v, ok := p.collisionDetection.Load(ego); ok {
		return v
	}
	return true
}

// SetCollisionDetection 开关单车的碰撞检测
func (p *Parameters) SetCollisionDetection(id entity.ActorID, enabled bool) {
	p.collisionDetection.Store(id, enabled)
}

// GetVehicleTargetVelocity 获取车辆目标速度（千米/小时）
// 说明：在道路限速上按速度下调比例折减，比例为负表示允许超速
func (p *Parameters) GetVehicleTargetVelocity(id entity.ActorID, speedLimit float64) float64 {
	percentage := p.defaultSpeedDifference
	if v, ok := p.speedDifference.Load(id); ok {
		percentage = v
	}
	return speedLimit * (1 - percentage/100)
}

// SetPercentageSpeedDifference 覆盖单车的速度下调比例
func (p *Parameters) SetPercentageSpeedDifference(id entity.ActorID, percentage float64) {
	p.speedDifference.Store(id, percentage)
}
