package osprobe

import (
	"net/netip"

	"netprobe/internal/core/netprobe/packet"
)

// buildTCPProbe 组装一个 TCP 探测报文外加 IPv4 封装
func buildTCPProbe(srcIP, dst netip.Addr, srcPort, dstPort uint16, seq uint32, flags packet.TcpFlags, window uint16, opts []packet.TCPOption) ([]byte, error) {
	seg, err := packet.NewTCPPacketBuilder().
		WithAddrs(srcIP, dst).
		WithPorts(srcPort, dstPort).
		WithSeqAck(seq, 0).
		WithFlags(flags).
		WithWindow(window).
		WithOptions(opts...).
		Build()
	if err != nil {
		return nil, err
	}

	return packet.NewIPv4PacketBuilder().
		WithAddrs(srcIP, dst).
		WithProtocol(packet.ProtocolTCP).
		WithID(uint16(seq)).
		WithPayload(seg).
		Build()
}

func buildICMPProbe(srcIP, dst netip.Addr, code uint8, id, seqNum uint16) ([]byte, error) {
	icmp := packet.BuildICMPEchoRequest(code, id, seqNum, make([]byte, 16))
	return packet.NewIPv4PacketBuilder().
		WithAddrs(srcIP, dst).
		WithProtocol(packet.ProtocolICMP).
		WithID(id).
		WithPayload(icmp).
		Build()
}

func buildUDPProbe(srcIP, dst netip.Addr, srcPort, dstPort uint16) ([]byte, error) {
	datagram, err := packet.NewUDPPacketBuilder().
		WithAddrs(srcIP, dst).
		WithPorts(srcPort, dstPort).
		WithPayload(make([]byte, 8)).
		Build()
	if err != nil {
		return nil, err
	}
	return packet.NewIPv4PacketBuilder().
		WithAddrs(srcIP, dst).
		WithProtocol(packet.ProtocolUDP).
		WithID(dstPort).
		WithPayload(datagram).
		Build()
}
