package ratelimit

import (
	"context"
	"net/netip"
	"sync"
	"time"
)

// targetState 跟踪单个目标的连续失败次数与上次退避截止时间
type targetState struct {
	mu             sync.Mutex
	estimator      *RttEstimator
	consecutiveBad int
	backoffUntil   time.Time
}

// Manager 按主机组（目标所在的 /24 或 /64 网段）维护独立的 AdaptiveLimiter，
// 并按单个目标维护 RTT 估算与退避窗口。同一主机组内的并发探测共享一个限流器，
// 避免对同一网段的突发流量把链路打满，而跨网段的探测互不影响限速。
type Manager struct {
	initial, min, max int
	backoffWindow     time.Duration

	groups  sync.Map // string (hostgroup key) -> *AdaptiveLimiter
	targets sync.Map // netip.Addr -> *targetState
}

// NewManager 创建一个限流管理器，initial/min/max 对应每个主机组的并发上限，
// backoffWindow 是单个目标连续失败后进入退避状态的持续时间。
func NewManager(initial, min, max int, backoffWindow time.Duration) *Manager {
	return &Manager{initial: initial, min: min, max: max, backoffWindow: backoffWindow}
}

// hostgroupKey 把一个地址折叠到它所属的主机组：IPv4 取 /24，IPv6 取 /64
func hostgroupKey(addr netip.Addr) string {
	var bits int
	if addr.Is4() {
		bits = 24
	} else {
		bits = 64
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return addr.String()
	}
	return prefix.String()
}

func (m *Manager) limiterFor(addr netip.Addr) *AdaptiveLimiter {
	key := hostgroupKey(addr)
	if v, ok := m.groups.Load(key); ok {
		return v.(*AdaptiveLimiter)
	}
	limiter := NewAdaptiveLimiter(m.initial, m.min, m.max)
	actual, _ := m.groups.LoadOrStore(key, limiter)
	return actual.(*AdaptiveLimiter)
}

func (m *Manager) stateFor(addr netip.Addr) *targetState {
	if v, ok := m.targets.Load(addr); ok {
		return v.(*targetState)
	}
	ts := &targetState{estimator: NewRttEstimator()}
	actual, _ := m.targets.LoadOrStore(addr, ts)
	return actual.(*targetState)
}

// Acquire 阻塞直到目标所在主机组放出一个并发令牌
func (m *Manager) Acquire(ctx context.Context, target netip.Addr) error {
	return m.limiterFor(target).Acquire(ctx)
}

// Release 归还目标所在主机组的并发令牌
func (m *Manager) Release(target netip.Addr) {
	m.limiterFor(target).Release()
}

// OnSuccess 记录一次成功探测，抬升主机组限流并清除目标的连续失败计数
func (m *Manager) OnSuccess(target netip.Addr, rtt time.Duration) {
	m.limiterFor(target).OnSuccess()

	ts := m.stateFor(target)
	ts.mu.Lock()
	ts.consecutiveBad = 0
	ts.backoffUntil = time.Time{}
	ts.mu.Unlock()
	ts.estimator.Update(rtt)
}

// OnFailure 记录一次失败探测，压低主机组限流；连续失败达到阈值后让目标进入退避窗口
func (m *Manager) OnFailure(target netip.Addr) {
	m.limiterFor(target).OnFailure()

	ts := m.stateFor(target)
	ts.mu.Lock()
	ts.consecutiveBad++
	if ts.consecutiveBad >= 3 {
		ts.backoffUntil = time.Now().Add(m.backoffWindow)
	}
	ts.mu.Unlock()
}

// IsTargetBackedOff 报告目标当前是否处于退避窗口内，调用方应跳过或延后对它的探测
func (m *Manager) IsTargetBackedOff(target netip.Addr) bool {
	ts := m.stateFor(target)
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return !ts.backoffUntil.IsZero() && time.Now().Before(ts.backoffUntil)
}

// Timeout 返回目标当前建议的重传超时，基于该目标历史 RTT 样本估算
func (m *Manager) Timeout(target netip.Addr) time.Duration {
	return m.stateFor(target).estimator.Timeout()
}
