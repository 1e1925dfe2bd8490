package packet

import "encoding/binary"

const (
	ICMPTypeEchoRequest uint8 = 8
	ICMPTypeEchoReply   uint8 = 0
)

// BuildICMPEchoRequest 组装一个 ICMP Echo Request 报文（类型 8，代码由调用方指定，
// 用于 OS 探测里 code 可变的 IE1/IE2 探测）。这里只设置 ICMP code；IP 首部的
// TOS 不在此处设置，IPv4PacketBuilder 也没有 TOS 字段，所以 IE 探测的 TOS 均为 0。
func BuildICMPEchoRequest(code uint8, id, seq uint16, payload []byte) []byte {
	out := make([]byte, 8+len(payload))
	out[0] = ICMPTypeEchoRequest
	out[1] = code
	out[2], out[3] = 0, 0 // checksum placeholder
	binary.BigEndian.PutUint16(out[4:6], id)
	binary.BigEndian.PutUint16(out[6:8], seq)
	copy(out[8:], payload)

	checksum := Checksum(out)
	binary.BigEndian.PutUint16(out[2:4], checksum)
	return out
}
