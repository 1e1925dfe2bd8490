package packet

import (
	"encoding/binary"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
)

// IPv4PacketBuilder 组装一个 IPv4 首部并封装给定的传输层载荷（TCP/UDP/ICMP 段）。
// 首部序列化走 golang.org/x/net/ipv4.Header；
// 分片偏移/标志位仍然需要在 Marshal 之后手工改写校验和，因为 Header.Marshal
// 本身不填充这个字段。bad_checksum 规避只作用于传输层校验和（TCP/UDP），IP
// 首部校验和永远合法——这里没有对应开关。
type IPv4PacketBuilder struct {
	Src, Dst     netip.Addr
	Protocol     uint8
	TTL          uint8
	ID           uint16
	DontFragment bool
	Payload      []byte
}

func NewIPv4PacketBuilder() *IPv4PacketBuilder {
	return &IPv4PacketBuilder{TTL: 64}
}

func (b *IPv4PacketBuilder) WithAddrs(src, dst netip.Addr) *IPv4PacketBuilder {
	b.Src, b.Dst = src, dst
	return b
}
func (b *IPv4PacketBuilder) WithProtocol(protocol uint8) *IPv4PacketBuilder {
	b.Protocol = protocol
	return b
}
func (b *IPv4PacketBuilder) WithTTL(ttl uint8) *IPv4PacketBuilder {
	b.TTL = ttl
	return b
}
func (b *IPv4PacketBuilder) WithID(id uint16) *IPv4PacketBuilder {
	b.ID = id
	return b
}
func (b *IPv4PacketBuilder) WithPayload(payload []byte) *IPv4PacketBuilder {
	b.Payload = payload
	return b
}

func (b *IPv4PacketBuilder) validate() error {
	if !b.Src.IsValid() || !b.Src.Is4() {
		return &MissingFieldError{Field: "Src"}
	}
	if !b.Dst.IsValid() || !b.Dst.Is4() {
		return &MissingFieldError{Field: "Dst"}
	}
	if b.Protocol == 0 {
		return &MissingFieldError{Field: "Protocol"}
	}
	return nil
}

// Build 返回一个未分片的完整 IPv4 数据报（首部 + 完整载荷）
func (b *IPv4PacketBuilder) Build() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b.buildFragment(b.Payload, 0, false)
}

// Fragment 按 mtu（IP 层可用字节数，不含首部）切分载荷，生成一组 IPv4 分片。
// 除最后一个分片外，每个分片的载荷长度必须是 8 的倍数（RFC 791 3.2），
// 所有分片共享同一个 Identification 字段。
func (b *IPv4PacketBuilder) Fragment(mtu int) ([][]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if mtu <= 0 || mtu%8 != 0 {
		return nil, &InvalidParameterError{Reason: "mtu must be a positive multiple of 8"}
	}

	if len(b.Payload) <= mtu {
		frag, err := b.buildFragment(b.Payload, 0, false)
		if err != nil {
			return nil, err
		}
		return [][]byte{frag}, nil
	}

	var frags [][]byte
	offset := 0
	for offset < len(b.Payload) {
		end := offset + mtu
		more := true
		if end >= len(b.Payload) {
			end = len(b.Payload)
			more = false
		}
		frag, err := b.buildFragment(b.Payload[offset:end], offset/8, more)
		if err != nil {
			return nil, err
		}
		frags = append(frags, frag)
		offset = end
	}
	return frags, nil
}

func (b *IPv4PacketBuilder) buildFragment(payload []byte, fragOffset int, moreFragments bool) ([]byte, error) {
	srcBytes := b.Src.As4()
	dstBytes := b.Dst.As4()

	var flags ipv4.HeaderFlags
	if b.DontFragment {
		flags |= ipv4.DontFragment
	}
	if moreFragments {
		flags |= ipv4.MoreFragments
	}

	header := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + len(payload),
		ID:       int(b.ID),
		Flags:    flags,
		FragOff:  fragOffset,
		TTL:      int(b.TTL),
		Protocol: int(b.Protocol),
		Src:      net.IP(srcBytes[:]),
		Dst:      net.IP(dstBytes[:]),
	}

	out, err := header.Marshal()
	if err != nil {
		return nil, err
	}
	out = append(out, payload...)

	checksum := Checksum(out[0:ipv4.HeaderLen])
	binary.BigEndian.PutUint16(out[10:12], checksum)

	return out, nil
}
