package container

import "sync"

// Ring 定长环形缓冲区
// 功能：保留最近写入的至多capacity个元素，写满后覆盖最旧的元素
// 说明：读写加锁，可以在仿真线程写入的同时被可视化或RPC读取
type Ring[T any] struct {
	data  []T          // 底层存储
	start int          // 最旧元素的下标
	size  int          // 当前元素数量
	mtx   sync.RWMutex // 读写锁
}

// NewRing 创建环形缓冲区
// 参数：capacity-容量，必须为正数
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		log.Panicf("container: ring capacity must be positive, got %d", capacity)
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Cap 容量
func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// Len 当前元素数量
func (r *Ring[T]) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.size
}

// Push 写入元素
// 返回：被覆盖的最旧元素，以及是否发生覆盖
func (r *Ring[T]) Push(value T) (evicted T, ok bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.size < len(r.data) {
		r.data[(r.start+r.size)%len(r.data)] = value
		r.size++
		return
	}
	evicted, ok = r.data[r.start], true
	r.data[r.start] = value
	r.start = (r.start + 1) % len(r.data)
	return
}

// Values 按时间顺序（从旧到新）拷贝出所有元素
func (r *Ring[T]) Values() []T {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	res := make([]T, r.size)
	for i := range res {
		res[i] = r.data[(r.start+i)%len(r.data)]
	}
	return res
}
