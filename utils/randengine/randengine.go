// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：为仿真提供可复现的随机数序列
// 说明：由仿真显式持有，不使用全局随机状态；非线程安全
type Engine struct {
	*rand.Rand        // 底层随机数生成器
	seed       uint64 // 实际使用的种子
}

// New 创建随机数引擎
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改配置的情况下调整随机数序列
func New(seed uint64) *Engine {
	s := seed + *seedOffset
	return &Engine{Rand: rand.New(rand.NewSource(s)), seed: s}
}

// Seed 返回引擎实际使用的种子
func (e *Engine) Seed() uint64 {
	return e.seed
}

// Fork 派生一个独立的随机数引擎
// 功能：为第i个独立仿真派生种子，结果只依赖本引擎的种子与i
func (e *Engine) Fork(i uint64) *Engine {
	// splitmix64
	z := e.seed + (i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return &Engine{Rand: rand.New(rand.NewSource(z)), seed: z}
}

// IntRange 在闭区间[lo, hi]内均匀生成整数
func (e *Engine) IntRange(lo, hi int) int {
	if hi < lo {
		log.Panicf("randengine: IntRange: empty range [%d, %d]", lo, hi)
	}
	return lo + e.Intn(hi-lo+1)
}
