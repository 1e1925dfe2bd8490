// Package synscan 实现半开放 (SYN) 扫描：发送 SYN 报文，按连接跟踪表匹配
// 响应，不完成三次握手即可判定端口状态。
package synscan

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"
	"sync"
	"time"

	"netprobe/internal/core/model"
	"netprobe/internal/core/netprobe/capture"
	"netprobe/internal/core/netprobe/conntrack"
	"netprobe/internal/core/netprobe/packet"
	"netprobe/internal/core/netprobe/ratelimit"
	"netprobe/internal/pkg/eventbus"
	"netprobe/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Options 控制单次 SYN 扫描的行为，对应命令行/配置里的逃逸与分片开关
type Options struct {
	TimeoutMS      int
	MaxRetries     int
	TTL            uint8
	BadChecksum    bool
	FragmentMTU    int // 0 表示不分片
	SourcePort     uint16
}

func (o Options) timeout() time.Duration {
	if o.TimeoutMS <= 0 {
		return time.Second
	}
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

// Scanner 持有一次扫描会话所需的全部依赖：报文收发、连接跟踪表、限速器与事件总线
type Scanner struct {
	cap     capture.Capture
	table   *conntrack.Table
	limiter *ratelimit.Manager
	bus     *eventbus.Bus
	srcIP   netip.Addr

	listenOnce sync.Once
}

func New(cap capture.Capture, limiter *ratelimit.Manager, bus *eventbus.Bus, srcIP netip.Addr) *Scanner {
	return &Scanner{
		cap:     cap,
		table:   conntrack.New(),
		limiter: limiter,
		bus:     bus,
		srcIP:   srcIP,
	}
}

// ensureListening starts the receive loop (receiver.go's Listen) exactly once
// per Scanner. Without it nothing ever writes StateSynAckReceived/StateRstReceived
// into the conntrack table and every probe times out as Filtered.
func (s *Scanner) ensureListening() {
	s.listenOnce.Do(func() {
		go s.Listen(context.Background())
	})
}

// ScanPorts 对 target 的每个端口发起一次探测，结果通过有界 channel 回流。
// 在开始之前获取主机组并发许可；若目标当前处于退避窗口内，直接返回空结果集。
func (s *Scanner) ScanPorts(target netip.Addr, ports []uint16, opts Options) []model.ScanResult {
	s.ensureListening()
	s.bus.Publish(eventbus.Event{Type: eventbus.EventScanStarted, Target: target})

	if s.limiter.IsTargetBackedOff(target) {
		return nil
	}

	resultsCh := make(chan model.ScanResult, len(ports))
	for _, port := range ports {
		go func(port uint16) {
			resultsCh <- s.scanPort(target, port, opts)
		}(port)
	}

	results := make([]model.ScanResult, 0, len(ports))
	for range ports {
		r := <-resultsCh
		if r.State == model.PortOpen {
			s.bus.Publish(eventbus.Event{Type: eventbus.EventPortFound, Target: target, Port: r.Port})
		}
		results = append(results, r)
	}

	s.bus.Publish(eventbus.Event{Type: eventbus.EventScanCompleted, Target: target, Message: fmt.Sprintf("%d ports", len(results))})
	return results
}

// scanPort 对单个端口执行一次完整的 SYN 探测协议，含重试与指数退避
func (s *Scanner) scanPort(target netip.Addr, port uint16, opts Options) model.ScanResult {
	srcPort := opts.SourcePort
	if srcPort == 0 {
		srcPort = ephemeralPort(target, port)
	}
	seq := initialSequence(target, port, srcPort)

	key := conntrack.ConnKey{TargetIP: target, TargetPort: port, SourcePort: srcPort}
	start := time.Now()

	if err := s.limiter.Acquire(context.Background(), target); err != nil {
		return model.ScanResult{TargetIP: target, Port: port, Protocol: "tcp", State: model.PortUnknown, Timestamp: time.Now()}
	}
	defer s.limiter.Release(target)

	for retry := 0; retry <= opts.MaxRetries; retry++ {
		if err := s.sendSyn(target, port, srcPort, seq, opts); err != nil {
			logger.WithFields(logrus.Fields{"target": target, "port": port, "retry": retry}).Warnf("syn send failed: %v", err)
			s.limiter.OnFailure(target)
			return model.ScanResult{TargetIP: target, Port: port, Protocol: "tcp", State: model.PortFiltered, Timestamp: time.Now()}
		}
		s.table.Insert(key, &conntrack.ConnectionState{State: conntrack.StateSynSent, SeqSent: seq, SentAt: time.Now(), Retries: retry})

		state, matched := s.awaitResponse(key, opts.timeout())
		if matched {
			rtt := time.Since(start)
			s.table.Remove(key)

			switch state {
			case conntrack.StateSynAckReceived:
				s.sendReset(target, port, srcPort, seq+1, opts)
				s.limiter.OnSuccess(target, rtt)
				return model.ScanResult{TargetIP: target, Port: port, Protocol: "tcp", State: model.PortOpen, ResponseTime: rtt, Timestamp: time.Now()}
			case conntrack.StateRstReceived:
				s.limiter.OnSuccess(target, rtt)
				return model.ScanResult{TargetIP: target, Port: port, Protocol: "tcp", State: model.PortClosed, ResponseTime: rtt, Timestamp: time.Now()}
			}
		}

		s.table.Remove(key)
		if retry == opts.MaxRetries {
			s.limiter.OnFailure(target)
			return model.ScanResult{TargetIP: target, Port: port, Protocol: "tcp", State: model.PortFiltered, Timestamp: time.Now()}
		}
		backoff := time.Duration(float64(opts.timeout()) * math.Pow(2, float64(retry)))
		time.Sleep(backoff)
	}

	return model.ScanResult{TargetIP: target, Port: port, Protocol: "tcp", State: model.PortFiltered, Timestamp: time.Now()}
}

// awaitResponse 轮询连接跟踪表，直到状态被接收循环更新为终态或超时
func (s *Scanner) awaitResponse(key conntrack.ConnKey, timeout time.Duration) (conntrack.ConnState, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		cs, ok := s.table.Get(key)
		if ok && (cs.State == conntrack.StateSynAckReceived || cs.State == conntrack.StateRstReceived) {
			return cs.State, true
		}
		time.Sleep(time.Millisecond)
	}
	return conntrack.StateTimedOut, false
}

func (s *Scanner) sendSyn(target netip.Addr, port, srcPort uint16, seq uint32, opts Options) error {
	return s.send(target, port, srcPort, seq, 0, packet.FlagSYN, opts)
}

func (s *Scanner) sendReset(target netip.Addr, port, srcPort uint16, seq uint32, opts Options) error {
	return s.send(target, port, srcPort, seq, 0, packet.FlagRST, opts)
}

func (s *Scanner) send(target netip.Addr, port, srcPort uint16, seq, ack uint32, flags packet.TcpFlags, opts Options) error {
	tcpSeg, err := packet.NewTCPPacketBuilder().
		WithAddrs(s.srcIP, target).
		WithPorts(srcPort, port).
		WithSeqAck(seq, ack).
		WithFlags(flags).
		WithOptions(packet.OptMSS(1460), packet.OptSackPermitted(), packet.OptWScale(7)).
		WithBadChecksum(opts.BadChecksum).
		Build()
	if err != nil {
		return err
	}

	if target.Is4() {
		ttl := opts.TTL
		if ttl == 0 {
			ttl = 64
		}
		ipBuilder := packet.NewIPv4PacketBuilder().
			WithAddrs(s.srcIP, target).
			WithProtocol(packet.ProtocolTCP).
			WithTTL(ttl).
			WithID(uint16(seq)).
			WithPayload(tcpSeg)

		if opts.FragmentMTU > 0 {
			frags, err := ipBuilder.Fragment(opts.FragmentMTU)
			if err != nil {
				return err
			}
			for _, f := range frags {
				if err := s.cap.SendPacket(target, f); err != nil {
					return err
				}
			}
			return nil
		}

		pkt, err := ipBuilder.Build()
		if err != nil {
			return err
		}
		return s.cap.SendPacket(target, pkt)
	}

	return s.cap.SendPacket(target, tcpSeg)
}

// ephemeralPort 在 49152-65535 范围内确定性地派生一个源端口，保证同一
// (target, port) 重试时复用同一个源端口，避免连接跟踪表产生幽灵条目。
func ephemeralPort(target netip.Addr, port uint16) uint16 {
	h := fnv32(target, port)
	return 49152 + uint16(h%(65535-49152))
}

// initialSequence 为每次探测派生一个伪随机初始序列号
func initialSequence(target netip.Addr, port, srcPort uint16) uint32 {
	return fnv32(target, port) ^ uint32(srcPort)<<16
}

func fnv32(target netip.Addr, port uint16) uint32 {
	const prime = 16777619
	hash := uint32(2166136261)
	addr16 := target.As16()
	for _, b := range addr16 {
		hash = (hash ^ uint32(b)) * prime
	}
	var portBytes [2]byte
	binary.BigEndian.PutUint16(portBytes[:], port)
	for _, b := range portBytes {
		hash = (hash ^ uint32(b)) * prime
	}
	return hash
}
