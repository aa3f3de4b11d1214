package trafficmanager

// 碰撞检测
const (
	MaxCollisionRadius       = 100.0  // 碰撞候选筛选半径（米）
	VerticalOverlapThreshold = 4.0    // 垂直方向重叠判定阈值（米）
	BoundaryExtensionRate    = 2.2    // 走廊长度对前向速度的线性系数（秒）
	BoundaryExtensionMinimum = 2.0    // 走廊长度下限（米）
	LockingDistancePadding   = 6.0    // 锁定状态下走廊长度在前车距离上的附加量（米）
	MaxLockingExtension      = 10.0   // 锁定允许的最大额外延伸（米）
	Cos10Degrees             = 0.9848 // 走廊肋条发射的航向变化阈值（cos 10°）
	WalkerTimeExtension      = 1.5    // 行人包围盒外推时间（秒）
	SquareRootOfTwo          = 1.414  // 包围盒对角线估算系数
	GeometryContactThreshold = 0.1    // 多边形接触判定阈值（米）
)

// 路点选择
const (
	JunctionLookAhead           = 5.0 // 路口预判的前向探测距离（米）
	TargetWaypointTimeHorizon   = 1.0 // 目标路点的时间视界（秒）
	TargetWaypointHorizonLength = 5.0 // 目标路点的最小距离视界（米）
)

// 运动规划
const (
	MinFollowLeadDistance = 5.0                                                    // 跟车距离下限（米）
	MaxFollowLeadDistance = 10.0                                                   // 跟车距离上限（米）
	FollowDistanceRate    = (MaxFollowLeadDistance - MinFollowLeadDistance) / maxFollowLeadSpeed // 跟车距离对相对速度的系数
	RelativeApproachSpeed = 10.0 / 3.6 // 接近前车时保持的相对速度（米/秒）
	CriticalBrakingMargin = 0.25       // 触发紧急制动的距离余量（米）
	EpsilonRelativeSpeed  = 0.001      // 相对速度有效阈值（米/秒）

	maxFollowLeadSpeed = 100.0 / 3.6 // 跟车距离模型的速度标定点（100km/h）
)

// 速度阈值与混合模式
const (
	HighwaySpeed = 50.0 / 3.6 // 高速PID参数组的切换速度（米/秒）
	HybridModeDT = 0.05       // 物理关闭车辆的传送节拍（秒）
)
