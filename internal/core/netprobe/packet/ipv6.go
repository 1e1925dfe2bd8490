package packet

import (
	"encoding/binary"
	"net/netip"
)

// IPv6PacketBuilder 组装一个 IPv6 首部并封装给定的传输层载荷。
// 不支持分片：IPv6 分片依赖独立的逐跳扩展头，探测报文不需要它，
// 超过路径 MTU 的探测直接交给上层重试逻辑处理，而不是在这里重新实现 RFC 8200 分片。
type IPv6PacketBuilder struct {
	Src, Dst   netip.Addr
	NextHeader uint8
	HopLimit   uint8
	Payload    []byte
}

func NewIPv6PacketBuilder() *IPv6PacketBuilder {
	return &IPv6PacketBuilder{HopLimit: 64}
}

func (b *IPv6PacketBuilder) WithAddrs(src, dst netip.Addr) *IPv6PacketBuilder {
	b.Src, b.Dst = src, dst
	return b
}
func (b *IPv6PacketBuilder) WithNextHeader(nextHeader uint8) *IPv6PacketBuilder {
	b.NextHeader = nextHeader
	return b
}
func (b *IPv6PacketBuilder) WithHopLimit(hopLimit uint8) *IPv6PacketBuilder {
	b.HopLimit = hopLimit
	return b
}
func (b *IPv6PacketBuilder) WithPayload(payload []byte) *IPv6PacketBuilder {
	b.Payload = payload
	return b
}

func (b *IPv6PacketBuilder) validate() error {
	if !b.Src.IsValid() || !b.Src.Is6() || b.Src.Is4In6() {
		return &MissingFieldError{Field: "Src"}
	}
	if !b.Dst.IsValid() || !b.Dst.Is6() || b.Dst.Is4In6() {
		return &MissingFieldError{Field: "Dst"}
	}
	if b.NextHeader == 0 {
		return &MissingFieldError{Field: "NextHeader"}
	}
	return nil
}

// Build 返回一个完整的 IPv6 数据报（40 字节固定首部 + 载荷）
func (b *IPv6PacketBuilder) Build() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 40+len(b.Payload))

	out[0] = 6 << 4 // version 6, traffic class high nibble = 0
	out[1], out[2], out[3] = 0, 0, 0
	binary.BigEndian.PutUint16(out[4:6], uint16(len(b.Payload)))
	out[6] = b.NextHeader
	out[7] = b.HopLimit

	srcBytes := b.Src.As16()
	dstBytes := b.Dst.As16()
	copy(out[8:24], srcBytes[:])
	copy(out[24:40], dstBytes[:])

	copy(out[40:], b.Payload)
	return out, nil
}
