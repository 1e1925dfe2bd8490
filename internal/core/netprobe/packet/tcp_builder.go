package packet

import (
	"encoding/binary"
	"net/netip"

	"netprobe/internal/core/netprobe/bufpool"
)

// IP protocol numbers used in pseudo-header checksum computation
const (
	ProtocolICMP   uint8 = 1
	ProtocolTCP    uint8 = 6
	ProtocolUDP    uint8 = 17
	ProtocolICMPv6 uint8 = 58
)

// TCPPacketBuilder 组装一个 TCP 段（不含 IP 层）。字段通过赋值式方法设置，
// Build 系列方法在调用时才做一次性序列化，校验和始终基于真实内容计算，
// 仅当 BadChecksum 为真时才在最后把校验和字段清零——用于校验和驱动的防火墙规避探测。
type TCPPacketBuilder struct {
	Src, Dst   netip.Addr
	SrcPort    uint16
	DstPort    uint16
	Seq        uint32
	Ack        uint32
	Flags      TcpFlags
	Window     uint16
	Options    []TCPOption
	Payload    []byte
	BadChecksum bool
}

func NewTCPPacketBuilder() *TCPPacketBuilder {
	return &TCPPacketBuilder{Window: 65535}
}

func (b *TCPPacketBuilder) WithAddrs(src, dst netip.Addr) *TCPPacketBuilder {
	b.Src, b.Dst = src, dst
	return b
}
func (b *TCPPacketBuilder) WithPorts(srcPort, dstPort uint16) *TCPPacketBuilder {
	b.SrcPort, b.DstPort = srcPort, dstPort
	return b
}
func (b *TCPPacketBuilder) WithSeqAck(seq, ack uint32) *TCPPacketBuilder {
	b.Seq, b.Ack = seq, ack
	return b
}
func (b *TCPPacketBuilder) WithFlags(flags TcpFlags) *TCPPacketBuilder {
	b.Flags = flags
	return b
}
func (b *TCPPacketBuilder) WithWindow(window uint16) *TCPPacketBuilder {
	b.Window = window
	return b
}
func (b *TCPPacketBuilder) WithOptions(opts ...TCPOption) *TCPPacketBuilder {
	b.Options = opts
	return b
}
func (b *TCPPacketBuilder) WithPayload(payload []byte) *TCPPacketBuilder {
	b.Payload = payload
	return b
}
func (b *TCPPacketBuilder) WithBadChecksum(bad bool) *TCPPacketBuilder {
	b.BadChecksum = bad
	return b
}

func (b *TCPPacketBuilder) validate() error {
	if !b.Src.IsValid() {
		return &MissingFieldError{Field: "Src"}
	}
	if !b.Dst.IsValid() {
		return &MissingFieldError{Field: "Dst"}
	}
	if b.Src.Is4() != b.Dst.Is4() {
		return &InvalidParameterError{Reason: "src and dst address families differ"}
	}
	if b.SrcPort == 0 || b.DstPort == 0 {
		return &MissingFieldError{Field: "SrcPort/DstPort"}
	}
	return nil
}

// Build 分配一个新的切片并返回序列化后的 TCP 段
func (b *TCPPacketBuilder) Build() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	optBytes, dataOffset := SerializeOptions(b.Options)
	segLen := 20 + len(optBytes) + len(b.Payload)
	out := make([]byte, segLen)
	b.render(out, optBytes, dataOffset)
	return out, nil
}

// BuildWithBuffer 在 pool 借来的切片上原地序列化，避免堆分配
func (b *TCPPacketBuilder) BuildWithBuffer(pool *bufpool.Pool) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	optBytes, dataOffset := SerializeOptions(b.Options)
	segLen := 20 + len(optBytes) + len(b.Payload)
	out, err := pool.GetMut(segLen)
	if err != nil {
		return nil, err
	}
	b.render(out, optBytes, dataOffset)
	return out, nil
}

func (b *TCPPacketBuilder) render(out []byte, optBytes []byte, dataOffset int) {
	binary.BigEndian.PutUint16(out[0:2], b.SrcPort)
	binary.BigEndian.PutUint16(out[2:4], b.DstPort)
	binary.BigEndian.PutUint32(out[4:8], b.Seq)
	binary.BigEndian.PutUint32(out[8:12], b.Ack)

	out[12] = byte(dataOffset<<4) | byte((b.Flags>>8)&0x0F)
	out[13] = byte(b.Flags & 0xFF)
	binary.BigEndian.PutUint16(out[14:16], b.Window)
	out[16], out[17] = 0, 0 // checksum placeholder
	out[18], out[19] = 0, 0 // urgent pointer

	copy(out[20:20+len(optBytes)], optBytes)
	copy(out[20+len(optBytes):], b.Payload)

	checksum := transportChecksum(b.Src, b.Dst, ProtocolTCP, out)
	if b.BadChecksum {
		out[16], out[17] = 0, 0
		return
	}
	binary.BigEndian.PutUint16(out[16:18], checksum)
}
