package packet

import (
	"encoding/binary"
	"net/netip"
)

// Checksum 计算 16 位反码和校验和，data 长度为奇数时按 RFC 1071 补零处理
func Checksum(data []byte) uint16 {
	var sum uint32
	n := len(data)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(data[i : i+2]))
	}
	if n%2 == 1 {
		sum += uint32(data[n-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return ^uint16(sum)
}

// pseudoHeaderV4 构造 IPv4 伪首部，用于 TCP/UDP 校验和计算
func pseudoHeaderV4(src, dst netip.Addr, protocol uint8, length uint16) []byte {
	b := make([]byte, 12)
	copy(b[0:4], src.As4())
	copy(b[4:8], dst.As4())
	b[8] = 0
	b[9] = protocol
	binary.BigEndian.PutUint16(b[10:12], length)
	return b
}

// pseudoHeaderV6 构造 IPv6 伪首部
func pseudoHeaderV6(src, dst netip.Addr, nextHeader uint8, length uint32) []byte {
	b := make([]byte, 40)
	srcBytes := src.As16()
	dstBytes := dst.As16()
	copy(b[0:16], srcBytes[:])
	copy(b[16:32], dstBytes[:])
	binary.BigEndian.PutUint32(b[32:36], length)
	b[36], b[37], b[38] = 0, 0, 0
	b[39] = nextHeader
	return b
}

// transportChecksum 对伪首部+传输层报文段计算校验和
func transportChecksum(src, dst netip.Addr, protocol uint8, segment []byte) uint16 {
	var pseudo []byte
	if src.Is4() && dst.Is4() {
		pseudo = pseudoHeaderV4(src, dst, protocol, uint16(len(segment)))
	} else {
		pseudo = pseudoHeaderV6(src, dst, protocol, uint32(len(segment)))
	}
	buf := make([]byte, 0, len(pseudo)+len(segment))
	buf = append(buf, pseudo...)
	buf = append(buf, segment...)
	return Checksum(buf)
}
