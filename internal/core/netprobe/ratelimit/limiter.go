// Package ratelimit 提供按主机组自适应的并发限制与按目标的 RTT 自适应退避。
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
)

// AdaptiveLimiter 用 AIMD (加性增、乘性减) 策略动态调整对同一主机组的并发探测数：
// 每次探测成功，缓慢线性抬高并发上限；一旦探测失败（超时/ICMP 不可达），
// 立即将并发上限乘以 0.7，迅速让出带宽，避免把目标或中间链路打满。
type AdaptiveLimiter struct {
	sem             chan struct{}
	reductionNeeded int32

	currentLimit int
	minLimit     int
	maxLimit     int

	successCount int
	mu           sync.Mutex
}

// NewAdaptiveLimiter 创建一个自适应限流器，initial/min/max 为并发令牌数
func NewAdaptiveLimiter(initial, min, max int) *AdaptiveLimiter {
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}

	l := &AdaptiveLimiter{
		sem:          make(chan struct{}, max),
		currentLimit: initial,
		minLimit:     min,
		maxLimit:     max,
	}
	for i := 0; i < initial; i++ {
		l.sem <- struct{}{}
	}
	return l
}

// Acquire 阻塞直到取得一个并发令牌，或 ctx 被取消
func (l *AdaptiveLimiter) Acquire(ctx context.Context) error {
	select {
	case <-l.sem:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release 归还一个令牌；若存在尚未偿还的缩容债务，则销毁该令牌而不归还
func (l *AdaptiveLimiter) Release() {
	if atomic.LoadInt32(&l.reductionNeeded) > 0 {
		for {
			val := atomic.LoadInt32(&l.reductionNeeded)
			if val <= 0 {
				break
			}
			if atomic.CompareAndSwapInt32(&l.reductionNeeded, val, val-1) {
				return
			}
		}
	}

	select {
	case l.sem <- struct{}{}:
	default:
	}
}

// OnSuccess 记录一次成功探测；每累积 currentLimit 次成功才抬升一个令牌
func (l *AdaptiveLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successCount++
	if l.successCount >= l.currentLimit {
		l.successCount = 0
		l.increaseLimit(1)
	}
}

// OnFailure 记录一次失败探测，立即将并发上限乘以 0.7
func (l *AdaptiveLimiter) OnFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLimit := int(float64(l.currentLimit) * 0.7)
	decrease := l.currentLimit - newLimit
	if decrease < 1 {
		decrease = 1
	}

	l.decreaseLimit(decrease)
	l.successCount = 0
}

func (l *AdaptiveLimiter) increaseLimit(n int) {
	target := l.currentLimit + n
	if target > l.maxLimit {
		target = l.maxLimit
	}
	diff := target - l.currentLimit
	if diff <= 0 {
		return
	}
	l.currentLimit = target
	for i := 0; i < diff; i++ {
		select {
		case l.sem <- struct{}{}:
		default:
		}
	}
}

func (l *AdaptiveLimiter) decreaseLimit(n int) {
	target := l.currentLimit - n
	if target < l.minLimit {
		target = l.minLimit
	}
	diff := l.currentLimit - target
	if diff <= 0 {
		return
	}
	l.currentLimit = target

	removed := 0
	for i := 0; i < diff; i++ {
		select {
		case <-l.sem:
			removed++
		default:
		}
	}

	remaining := diff - removed
	if remaining > 0 {
		atomic.AddInt32(&l.reductionNeeded, int32(remaining))
	}
}

// CurrentLimit 返回当前并发上限
func (l *AdaptiveLimiter) CurrentLimit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLimit
}
