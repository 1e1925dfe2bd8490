package osprobe

import (
	"encoding/binary"
	"net/netip"
	"time"

	"netprobe/internal/core/netprobe/capture"
	"netprobe/internal/core/netprobe/packet"
)

const (
	probeSpacing = 100 * time.Millisecond
	probeTimeout = 500 * time.Millisecond
)

// Engine 发出完整的 16 探测序列，并把响应特征装配成 ProbeResults。
// 三条原始套接字（TCP/ICMP/UDP）由调用方注入，便于测试时替换为假实现。
type Engine struct {
	TCP, ICMP, UDP capture.Capture
	SrcIP          netip.Addr
	Target         netip.Addr
	OpenPort       uint16
	ClosedPort     uint16
}

// Run 按设计好的间隔依次发出 16 个探测并收集响应，过程中任何一个探测
// 失败都只留下一个零值占位条目，最终结果始终是一条完整的 ProbeResults 记录。
func (e *Engine) Run() *ProbeResults {
	results := &ProbeResults{}

	opts := seqOptions()
	seqResults := make([]TCPProbeResult, 6)
	for i := 0; i < 6; i++ {
		seqResults[i] = e.runTCPProbe("SEQ", e.OpenPort, packet.FlagSYN, seqWindow(i), opts[i])
		time.Sleep(probeSpacing)
	}
	copy(results.Seq[:], seqResults)
	results.SeqFeatures = analyzeSeqResults(seqResults)

	results.IE1 = e.runICMPProbe("IE1", 0x00, 0)
	results.IE2 = e.runICMPProbe("IE2", 0x09, 1)

	results.ECN = e.runTCPProbe("ECN", e.OpenPort, packet.FlagSYN|packet.FlagECE|packet.FlagCWR, 65535,
		[]packet.TCPOption{packet.OptMSS(1460), packet.OptWScale(10)})
	results.T2 = e.runTCPProbe("T2", e.OpenPort, 0, 128, nil)
	results.T3 = e.runTCPProbe("T3", e.OpenPort, packet.FlagSYN|packet.FlagFIN|packet.FlagURG|packet.FlagPSH, 256, nil)
	results.T4 = e.runTCPProbe("T4", e.OpenPort, packet.FlagACK, 1024, nil)
	results.T5 = e.runTCPProbe("T5", e.ClosedPort, packet.FlagSYN, 31337, nil)
	results.T6 = e.runTCPProbe("T6", e.ClosedPort, packet.FlagACK, 32768, nil)
	results.T7 = e.runTCPProbe("T7", e.ClosedPort, packet.FlagFIN|packet.FlagPSH|packet.FlagURG, 65535, nil)

	results.U1 = e.runUDPProbe()

	return results
}

func (e *Engine) runTCPProbe(name string, dstPort uint16, flags packet.TcpFlags, window uint16, opts []packet.TCPOption) TCPProbeResult {
	seq := uint32(time.Now().UnixNano())
	pkt, err := buildTCPProbe(e.SrcIP, e.Target, ephemeralProbePort(), dstPort, seq, flags, window, opts)
	if err != nil {
		return TCPProbeResult{Probe: name}
	}
	if err := e.TCP.SendPacket(e.Target, pkt); err != nil {
		return TCPProbeResult{Probe: name}
	}

	buf := make([]byte, 65536)
	deadline := time.Now().Add(probeTimeout)
	for time.Now().Before(deadline) {
		n, src, err := e.TCP.ReceivePacket(buf, 100*time.Millisecond)
		if err != nil || n == 0 || src != e.Target {
			continue
		}
		if r, ok := parseTCPFrame(name, buf[:n]); ok {
			return r
		}
	}
	return TCPProbeResult{Probe: name}
}

func (e *Engine) runICMPProbe(name string, code uint8, seqNum uint16) ICMPProbeResult {
	pkt, err := buildICMPProbe(e.SrcIP, e.Target, code, uint16(time.Now().UnixNano()), seqNum)
	if err != nil {
		return ICMPProbeResult{Probe: name}
	}
	if err := e.ICMP.SendPacket(e.Target, pkt); err != nil {
		return ICMPProbeResult{Probe: name}
	}

	buf := make([]byte, 65536)
	deadline := time.Now().Add(probeTimeout)
	for time.Now().Before(deadline) {
		n, src, err := e.ICMP.ReceivePacket(buf, 100*time.Millisecond)
		if err != nil || n == 0 || src != e.Target {
			continue
		}
		if r, ok := parseICMPFrame(name, buf[:n]); ok {
			return r
		}
	}
	return ICMPProbeResult{Probe: name}
}

func (e *Engine) runUDPProbe() UDPProbeResult {
	pkt, err := buildUDPProbe(e.SrcIP, e.Target, ephemeralProbePort(), e.ClosedPort)
	if err != nil {
		return UDPProbeResult{}
	}
	if err := e.UDP.SendPacket(e.Target, pkt); err != nil {
		return UDPProbeResult{}
	}

	buf := make([]byte, 65536)
	n, src, err := e.ICMP.ReceivePacket(buf, probeTimeout)
	if err != nil || n == 0 || src != e.Target {
		return UDPProbeResult{}
	}
	// A closed UDP port typically answers with an ICMP port-unreachable
	// (type 3, code 3) that embeds our original IP header; the ICMP code
	// and the outer IP header's TTL are recorded.
	frame := buf[:n]
	if len(frame) < 20 {
		return UDPProbeResult{}
	}
	ihl := int(frame[0]&0x0F) * 4
	if len(frame) < ihl+8 {
		return UDPProbeResult{}
	}
	return UDPProbeResult{ICMPCode: frame[ihl+1], TTL: frame[8], Received: true}
}

func parseTCPFrame(name string, frame []byte) (TCPProbeResult, bool) {
	if len(frame) < 20 || frame[0]>>4 != 4 {
		return TCPProbeResult{Probe: name}, false
	}
	ihl := int(frame[0]&0x0F) * 4
	if len(frame) < ihl+20 || frame[9] != packet.ProtocolTCP {
		return TCPProbeResult{Probe: name}, false
	}
	ttl := frame[8]
	df := frame[6]&0x40 != 0
	ipid := binary.BigEndian.Uint16(frame[4:6])
	tcp := frame[ihl:]

	isn := binary.BigEndian.Uint32(tcp[4:8])
	dataOffset := int(tcp[12]>>4) * 4
	if dataOffset < 20 || dataOffset > len(tcp) {
		dataOffset = 20
	}
	flags := packet.TcpFlags(tcp[13]) | packet.TcpFlags(tcp[12]&0x0F)<<8
	window := binary.BigEndian.Uint16(tcp[14:16])
	opts := packet.ParseOptions(tcp[20:dataOffset])

	return TCPProbeResult{
		Probe: name, ISN: isn, IPID: ipid, Window: window, Flags: flags,
		Options: opts, TTL: ttl, DF: df, Timestamp: time.Now(), Received: true,
	}, true
}

func parseICMPFrame(name string, frame []byte) (ICMPProbeResult, bool) {
	if len(frame) < 20 || frame[0]>>4 != 4 {
		return ICMPProbeResult{Probe: name}, false
	}
	ihl := int(frame[0]&0x0F) * 4
	if len(frame) < ihl+8 || frame[9] != packet.ProtocolICMP {
		return ICMPProbeResult{Probe: name}, false
	}
	ttl := frame[8]
	df := frame[6]&0x40 != 0
	ipid := binary.BigEndian.Uint16(frame[4:6])
	icmp := frame[ihl:]

	return ICMPProbeResult{
		Probe: name, Code: icmp[1], TTL: ttl, IPID: ipid, DF: df,
		Received: true, Timestamp: time.Now(),
	}, true
}

func ephemeralProbePort() uint16 {
	return 49152 + uint16(time.Now().UnixNano()%(65535-49152))
}
