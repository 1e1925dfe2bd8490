package model

import (
	"fmt"
	"net/netip"
	"time"
)

// PortState 端口状态的四态枚举，语义严格对应扫描响应的解释方式
type PortState string

const (
	// PortOpen 收到该协议下的正向确认（TCP的SYN/ACK，UDP的应用层响应）
	PortOpen PortState = "open"
	// PortClosed 收到明确的拒绝（TCP RST，ICMP端口不可达）
	PortClosed PortState = "closed"
	// PortFiltered 重试耗尽仍无响应，或响应被中间设备吞掉
	PortFiltered PortState = "filtered"
	// PortUnknown 收到了响应但无法解释
	PortUnknown PortState = "unknown"
)

func (s PortState) String() string {
	return string(s)
}

// ScanResult 单个(目标,端口)的扫描结果，创建后不可变
type ScanResult struct {
	TargetIP     netip.Addr    `json:"target_ip"`
	Port         uint16        `json:"port"`
	State        PortState     `json:"state"`
	Protocol     string        `json:"protocol"` // tcp | udp
	ResponseTime time.Duration `json:"response_time"`
	ServiceName  string        `json:"service_name,omitempty"`
	Version      string        `json:"version,omitempty"`
	Banner       string        `json:"banner,omitempty"`
	RawResponse  []byte        `json:"-"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Headers 实现 TabularData 接口
func (r ScanResult) Headers() []string {
	return []string{"Target", "Port", "Proto", "State", "Latency", "Service", "Version"}
}

// Rows 实现 TabularData 接口
func (r ScanResult) Rows() [][]string {
	latency := "N/A"
	if r.ResponseTime > 0 {
		latency = r.ResponseTime.String()
	}
	return [][]string{{
		r.TargetIP.String(),
		fmt.Sprintf("%d", r.Port),
		r.Protocol,
		string(r.State),
		latency,
		r.ServiceName,
		r.Version,
	}}
}

// ScanResultSet 聚合一次扫描任务产出的全部结果，用于计数与上报
type ScanResultSet struct {
	Results  []ScanResult `json:"results"`
	Open     int          `json:"open"`
	Closed   int          `json:"closed"`
	Filtered int          `json:"filtered"`
	Duration time.Duration `json:"duration"`
}

// Add 记录一条结果并维护计数，保持 ScanResult "创建后不可变" 的约束——调用方不能再修改已追加的条目
func (s *ScanResultSet) Add(r ScanResult) {
	s.Results = append(s.Results, r)
	switch r.State {
	case PortOpen:
		s.Open++
	case PortClosed:
		s.Closed++
	case PortFiltered:
		s.Filtered++
	}
}

// Headers 实现 TabularData 接口，使 ScanResultSet 本身也能被 console reporter 直接打印
func (s ScanResultSet) Headers() []string {
	return ScanResult{}.Headers()
}

// Rows 实现 TabularData 接口
func (s ScanResultSet) Rows() [][]string {
	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		rows = append(rows, r.Rows()...)
	}
	return rows
}
