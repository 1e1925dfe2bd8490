// Package conntrack 跟踪进行中的 SYN/connect 探测的连接状态，
// 用作已发送探测与到达响应之间的匹配表。
package conntrack

import (
	"net/netip"
	"sync"
	"time"
)

// ConnState 是一次探测的生命周期阶段
type ConnState int

const (
	StateSynSent ConnState = iota
	StateSynAckReceived
	StateRstReceived
	StateTimedOut
	StateCompleted
)

func (s ConnState) String() string {
	switch s {
	case StateSynSent:
		return "syn_sent"
	case StateSynAckReceived:
		return "syn_ack_received"
	case StateRstReceived:
		return "rst_received"
	case StateTimedOut:
		return "timed_out"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// ConnKey 在表中唯一标识一次探测：目标 IP/端口加上我们自己选择的源端口。
// 源端口是必须的一部分，因为同一目标可能同时被多个并发探测命中。
type ConnKey struct {
	TargetIP   netip.Addr
	TargetPort uint16
	SourcePort uint16
}

// ConnectionState 保存匹配一次响应所需的全部上下文。它是一个不持有锁的值：
// Get 交给调用方的是某一时刻的拷贝；Range 的回调则在持有条目锁期间拿到指向
// 表内实际条目的指针。
type ConnectionState struct {
	State   ConnState
	SeqSent uint32
	SentAt  time.Time
	Retries int
	RTT     time.Duration
}

// entry 是表内部持有的槽位。State 会被接收循环（synscan/receiver.go 的
// Mutate 调用）和重试循环（awaitResponse 的 Get 调用）并发访问，sync.Map
// 只保证键级别的隔离，不保证同一个键背后这个 *ConnectionState 的字段访问
// 是并发安全的，所以每个条目自带一把锁。
type entry struct {
	mu    sync.Mutex
	state ConnectionState
}

// Table 是一个并发安全的 ConnKey -> ConnectionState 映射。
// 使用 sync.Map 而非加锁的 map 是因为访问模式高度符合其优化场景：
// 大量不相交 key 的并发写入（每个探测一个 key），读取集中在响应匹配的热路径上。
type Table struct {
	m sync.Map // ConnKey -> *entry
}

func New() *Table {
	return &Table{}
}

// Insert 记录一次新发出的探测
func (t *Table) Insert(key ConnKey, state *ConnectionState) {
	t.m.Store(key, &entry{state: *state})
}

// Get 返回 key 对应的状态快照，ok 为 false 表示不存在
func (t *Table) Get(key ConnKey) (ConnectionState, bool) {
	v, ok := t.m.Load(key)
	if !ok {
		return ConnectionState{}, false
	}
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, true
}

// Mutate 在持有条目锁的情况下对 key 对应的状态应用 fn，与并发的 Get/Range
// 互斥，避免接收循环写 State 的同时重试循环读到撕裂的值
func (t *Table) Mutate(key ConnKey, fn func(*ConnectionState)) bool {
	v, ok := t.m.Load(key)
	if !ok {
		return false
	}
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.state)
	return true
}

// Remove 清除一个 key，通常在响应匹配完成或超时放弃之后调用
func (t *Table) Remove(key ConnKey) {
	t.m.Delete(key)
}

// Range 遍历表中全部条目，用于超时扫描等后台维护任务。fn 在持有该条目锁的
// 情况下运行，对 *ConnectionState 的修改会直接写回条目。
func (t *Table) Range(fn func(ConnKey, *ConnectionState) bool) {
	t.m.Range(func(k, v interface{}) bool {
		e := v.(*entry)
		e.mu.Lock()
		cont := fn(k.(ConnKey), &e.state)
		e.mu.Unlock()
		return cont
	})
}

// SweepTimedOut 把超过 timeout 仍处于 StateSynSent 的条目标记为 StateTimedOut，
// 返回被标记的 key 列表供调用方决定是否重试
func (t *Table) SweepTimedOut(timeout time.Duration) []ConnKey {
	now := time.Now()
	var expired []ConnKey
	t.Range(func(k ConnKey, cs *ConnectionState) bool {
		if cs.State == StateSynSent && now.Sub(cs.SentAt) > timeout {
			cs.State = StateTimedOut
			expired = append(expired, k)
		}
		return true
	})
	return expired
}
