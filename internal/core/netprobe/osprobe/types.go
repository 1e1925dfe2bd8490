// Package osprobe 实现主动操作系统指纹探测：发出一组设计好的探测报文，
// 记录响应特征（ISN 增量、IP ID 生成模式、时间戳节奏等），供 OS 数据库匹配。
package osprobe

import (
	"time"

	"netprobe/internal/core/netprobe/packet"
)

// TCPProbeResult 记录一次 TCP 探测的响应特征
type TCPProbeResult struct {
	Probe     string
	ISN       uint32
	IPID      uint16
	Window    uint16
	Flags     packet.TcpFlags
	Options   []packet.TCPOption
	TTL       uint8
	DF        bool
	Timestamp time.Time
	Received  bool
}

// ICMPProbeResult 记录一次 ICMP 探测的响应特征
type ICMPProbeResult struct {
	Probe     string
	Code      uint8
	TTL       uint8
	IPID      uint16
	DF        bool
	Received  bool
	Timestamp time.Time
}

// UDPProbeResult 记录 U1 探测的响应（通常是 ICMP port-unreachable）
type UDPProbeResult struct {
	ICMPCode uint8
	TTL      uint8
	Received bool
}

// ProbeResults 是一次完整 16 探测序列的结果集合
type ProbeResults struct {
	Seq  [6]TCPProbeResult
	IE1  ICMPProbeResult
	IE2  ICMPProbeResult
	ECN  TCPProbeResult
	T2   TCPProbeResult
	T3   TCPProbeResult
	T4   TCPProbeResult
	T5   TCPProbeResult
	T6   TCPProbeResult
	T7   TCPProbeResult
	U1   UDPProbeResult

	// SeqFeatures 持有从 Seq 响应派生的 GCD/ISR/SP/TI/CI/II/SS/TS 特征
	SeqFeatures map[string]string
}

// seqOptions 是 6 个 SEQ 探测变体的 TCP 选项组合，刻意异质以激发目标栈的差异
func seqOptions() [6][]packet.TCPOption {
	return [6][]packet.TCPOption{
		{packet.OptMSS(1460), packet.OptNOP(), packet.OptWScale(10), packet.OptNOP(), packet.OptNOP(), packet.OptTimestamp(0, 0)},
		{packet.OptMSS(1400)},
		{packet.OptNOP(), packet.OptNOP(), packet.OptTimestamp(0, 0)},
		{packet.OptWScale(7)},
		{packet.OptSackPermitted()},
		{}, // #5：不带任何 TCP 选项
	}
}

// seqWindow 返回第 i 个 SEQ 探测使用的窗口大小：1024 << i
func seqWindow(i int) uint16 {
	return uint16(1024 << uint(i))
}
