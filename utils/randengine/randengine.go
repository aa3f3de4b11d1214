// 随机数引擎，包装了golang.org/x/exp/rand，提供线程安全的常用随机数生成方法
package randengine

import (
	"flag"
	"sync"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数序列
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成，碰撞危险忽略策略等并发场景使用线程安全方法
type Engine struct {
	*rand.Rand            // 底层随机数生成器
	mtx        sync.Mutex // 互斥锁，保护Safe系列方法
}

// New 创建随机数引擎
// 参数：seed-随机数种子（实际种子为seed+偏移量）
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true（非线程安全）
// 参数：p-返回true的概率（0.0到1.0之间）
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// Float64Safe 随机生成[0.0, 1.0)范围内的浮点数（线程安全）
func (e *Engine) Float64Safe() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64()
}

// IntnSafe 随机生成[0, n)范围内的整数（线程安全）
func (e *Engine) IntnSafe(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Intn(n)
}
