package packet

import "encoding/binary"

// TCP option kind numbers, per RFC 793/1323/2018
const (
	OptKindEOL           uint8 = 0
	OptKindNOP           uint8 = 1
	OptKindMSS           uint8 = 2
	OptKindWScale        uint8 = 3
	OptKindSackPermitted uint8 = 4
	OptKindTimestamp     uint8 = 8
)

// TCPOption 是 TCP 选项的标签化变体。Kind 决定哪个字段有意义。
type TCPOption struct {
	Kind  uint8
	MSS   uint16 // valid when Kind == OptKindMSS
	Shift uint8  // valid when Kind == OptKindWScale
	TsVal uint32 // valid when Kind == OptKindTimestamp
	TsEcr uint32 // valid when Kind == OptKindTimestamp
}

func OptEOL() TCPOption           { return TCPOption{Kind: OptKindEOL} }
func OptNOP() TCPOption           { return TCPOption{Kind: OptKindNOP} }
func OptMSS(mss uint16) TCPOption { return TCPOption{Kind: OptKindMSS, MSS: mss} }
func OptWScale(shift uint8) TCPOption {
	return TCPOption{Kind: OptKindWScale, Shift: shift}
}
func OptSackPermitted() TCPOption { return TCPOption{Kind: OptKindSackPermitted} }
func OptTimestamp(tsval, tsecr uint32) TCPOption {
	return TCPOption{Kind: OptKindTimestamp, TsVal: tsval, TsEcr: tsecr}
}

// optionLen 返回该选项在线上的总字节数（含 Kind/Length 字段本身）
func optionLen(o TCPOption) int {
	switch o.Kind {
	case OptKindEOL, OptKindNOP:
		return 1
	case OptKindMSS:
		return 4
	case OptKindWScale:
		return 3
	case OptKindSackPermitted:
		return 2
	case OptKindTimestamp:
		return 10
	default:
		return 2
	}
}

// SerializeOptions 按顺序序列化选项，并填充 NOP 到 4 字节边界。
// 返回序列化后的字节和对应的 data offset（以 4 字节字为单位，含 20 字节基础头）。
func SerializeOptions(opts []TCPOption) ([]byte, int) {
	raw := make([]byte, 0, 40)
	for _, o := range opts {
		raw = append(raw, o.Kind)
		switch o.Kind {
		case OptKindEOL, OptKindNOP:
			// no length/value bytes
		case OptKindMSS:
			raw = append(raw, 4)
			var b [2]byte
			binary.BigEndian.PutUint16(b[:], o.MSS)
			raw = append(raw, b[:]...)
		case OptKindWScale:
			raw = append(raw, 3, o.Shift)
		case OptKindSackPermitted:
			raw = append(raw, 2)
		case OptKindTimestamp:
			raw = append(raw, 10)
			var b [8]byte
			binary.BigEndian.PutUint32(b[0:4], o.TsVal)
			binary.BigEndian.PutUint32(b[4:8], o.TsEcr)
			raw = append(raw, b[:]...)
		default:
			raw = append(raw, 2)
		}
	}

	pad := (4 - (len(raw) % 4)) % 4
	for i := 0; i < pad; i++ {
		raw = append(raw, OptKindNOP)
	}

	dataOffset := (20 + len(raw)) / 4
	return raw, dataOffset
}

// ParseOptions 解析 TCP 选项区，直到 EOL 或数据耗尽。尾部 NOP 填充被忽略。
func ParseOptions(data []byte) []TCPOption {
	var opts []TCPOption
	i := 0
	for i < len(data) {
		kind := data[i]
		switch kind {
		case OptKindEOL:
			return opts
		case OptKindNOP:
			j := i
			for j < len(data) && data[j] == OptKindNOP {
				j++
			}
			if j == len(data) || data[j] == OptKindEOL {
				return opts
			}
			opts = append(opts, OptNOP())
			i++
		case OptKindMSS:
			if i+4 > len(data) {
				return opts
			}
			opts = append(opts, OptMSS(binary.BigEndian.Uint16(data[i+2:i+4])))
			i += 4
		case OptKindWScale:
			if i+3 > len(data) {
				return opts
			}
			opts = append(opts, OptWScale(data[i+2]))
			i += 3
		case OptKindSackPermitted:
			if i+2 > len(data) {
				return opts
			}
			opts = append(opts, OptSackPermitted())
			i += 2
		case OptKindTimestamp:
			if i+10 > len(data) {
				return opts
			}
			opts = append(opts, OptTimestamp(
				binary.BigEndian.Uint32(data[i+2:i+6]),
				binary.BigEndian.Uint32(data[i+6:i+10]),
			))
			i += 10
		default:
			if i+2 > len(data) || int(data[i+1]) == 0 {
				return opts
			}
			i += int(data[i+1])
		}
	}
	return opts
}
