package packet

import (
	"encoding/binary"
	"net/netip"

	"netprobe/internal/core/netprobe/bufpool"
)

// UDPPacketBuilder 组装一个 UDP 数据报（不含 IP 层）。仅当 BadChecksum 为真
// 时才在最后把校验和字段清零——用于校验和驱动的防火墙规避探测，与 TCP builder
// 的 WithBadChecksum 语义一致。
type UDPPacketBuilder struct {
	Src, Dst    netip.Addr
	SrcPort     uint16
	DstPort     uint16
	Payload     []byte
	BadChecksum bool
}

func NewUDPPacketBuilder() *UDPPacketBuilder {
	return &UDPPacketBuilder{}
}

func (b *UDPPacketBuilder) WithAddrs(src, dst netip.Addr) *UDPPacketBuilder {
	b.Src, b.Dst = src, dst
	return b
}
func (b *UDPPacketBuilder) WithPorts(srcPort, dstPort uint16) *UDPPacketBuilder {
	b.SrcPort, b.DstPort = srcPort, dstPort
	return b
}
func (b *UDPPacketBuilder) WithPayload(payload []byte) *UDPPacketBuilder {
	b.Payload = payload
	return b
}
func (b *UDPPacketBuilder) WithBadChecksum(bad bool) *UDPPacketBuilder {
	b.BadChecksum = bad
	return b
}

func (b *UDPPacketBuilder) validate() error {
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

func (b *UDPPacketBuilder) Build() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(b.Payload))
	b.render(out)
	return out, nil
}

func (b *UDPPacketBuilder) BuildWithBuffer(pool *bufpool.Pool) ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	out, err := pool.GetMut(8 + len(b.Payload))
	if err != nil {
		return nil, err
	}
	b.render(out)
	return out, nil
}

func (b *UDPPacketBuilder) render(out []byte) {
	binary.BigEndian.PutUint16(out[0:2], b.SrcPort)
	binary.BigEndian.PutUint16(out[2:4], b.DstPort)
	binary.BigEndian.PutUint16(out[4:6], uint16(len(out)))
	out[6], out[7] = 0, 0
	copy(out[8:], b.Payload)

	if b.BadChecksum {
		out[6], out[7] = 0, 0
		return
	}

	checksum := transportChecksum(b.Src, b.Dst, ProtocolUDP, out)
	// RFC 768: a computed checksum of zero is transmitted as all-ones
	if checksum == 0 {
		checksum = 0xFFFF
	}
	binary.BigEndian.PutUint16(out[6:8], checksum)
}
