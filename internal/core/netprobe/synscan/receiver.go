package synscan

import (
	"context"
	"encoding/binary"
	"net/netip"
	"time"

	"netprobe/internal/core/netprobe/conntrack"
	"netprobe/internal/core/netprobe/packet"
)

const recvPollInterval = 50 * time.Millisecond

// Listen 持续从底层 Capture 读取报文，解析 IPv4/IPv6+TCP 并按匹配规则
// 更新连接跟踪表，直到 ctx 被取消。应在扫描发起前以独立 goroutine 启动。
func (s *Scanner) Listen(ctx context.Context) {
	buf := make([]byte, 65536)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, srcIP, err := s.cap.ReceivePacket(buf, recvPollInterval)
		if err != nil || n == 0 {
			continue
		}
		s.handleFrame(srcIP, buf[:n])
	}
}

// handleFrame 解析一个已经剥离了链路层的 IP 数据包，并在匹配响应规则 2-6 时
// 更新对应的连接跟踪条目
func (s *Scanner) handleFrame(srcIP netip.Addr, frame []byte) {
	var tcpSeg []byte
	var proto uint8

	if len(frame) < 1 {
		return
	}
	version := frame[0] >> 4

	switch version {
	case 4:
		if len(frame) < 20 {
			return
		}
		ihl := int(frame[0]&0x0F) * 4
		if len(frame) < ihl {
			return
		}
		proto = frame[9]
		actualSrc := netip.AddrFrom4([4]byte{frame[12], frame[13], frame[14], frame[15]})
		if actualSrc != srcIP && srcIP.IsValid() {
			// Trust the parsed header over the socket-layer source when they disagree.
			srcIP = actualSrc
		}
		tcpSeg = frame[ihl:]
	case 6:
		// Rule 3: only the direct-TCP next-header case is supported; any
		// extension header chain is skipped rather than parsed.
		if len(frame) < 40 {
			return
		}
		proto = frame[6]
		var srcBytes [16]byte
		copy(srcBytes[:], frame[8:24])
		srcIP = netip.AddrFrom16(srcBytes)
		tcpSeg = frame[40:]
	default:
		return
	}

	if proto != packet.ProtocolTCP || len(tcpSeg) < 20 {
		return
	}

	srcPort := binary.BigEndian.Uint16(tcpSeg[0:2])
	dstPort := binary.BigEndian.Uint16(tcpSeg[2:4])
	ackNum := binary.BigEndian.Uint32(tcpSeg[8:12])
	dataOffset := int(tcpSeg[12]>>4) * 4
	if dataOffset < 20 || dataOffset > len(tcpSeg) {
		return
	}
	flags := packet.TcpFlags(tcpSeg[13]) | packet.TcpFlags(tcpSeg[12]&0x0F)<<8

	// Rule 4: TCP source port must be the scanned port, destination port our source port.
	key := conntrack.ConnKey{TargetIP: srcIP, TargetPort: srcPort, SourcePort: dstPort}

	s.table.Mutate(key, func(cs *conntrack.ConnectionState) {
		// Rule 5: ack must equal our sent sequence + 1.
		if ackNum != cs.SeqSent+1 {
			return
		}
		switch {
		case flags.Has(packet.FlagSYN) && flags.Has(packet.FlagACK):
			cs.State = conntrack.StateSynAckReceived
		case flags.Has(packet.FlagRST):
			cs.State = conntrack.StateRstReceived
		}
	})
}
