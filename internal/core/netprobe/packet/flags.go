package packet

// TcpFlags 是 TCP 标志位字段，对应报文第13字节（含 ECE/CWR）
type TcpFlags uint16

const (
	FlagFIN TcpFlags = 1 << 0
	FlagSYN TcpFlags = 1 << 1
	FlagRST TcpFlags = 1 << 2
	FlagPSH TcpFlags = 1 << 3
	FlagACK TcpFlags = 1 << 4
	FlagURG TcpFlags = 1 << 5
	FlagECE TcpFlags = 1 << 6
	FlagCWR TcpFlags = 1 << 7
)

// Has 判断 flags 中是否包含 f 的所有位
func (flags TcpFlags) Has(f TcpFlags) bool {
	return flags&f == f
}

func (flags TcpFlags) String() string {
	names := []struct {
		flag TcpFlags
		name string
	}{
		{FlagCWR, "CWR"}, {FlagECE, "ECE"}, {FlagURG, "URG"}, {FlagACK, "ACK"},
		{FlagPSH, "PSH"}, {FlagRST, "RST"}, {FlagSYN, "SYN"}, {FlagFIN, "FIN"},
	}
	out := ""
	for _, n := range names {
		if flags.Has(n.flag) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "NONE"
	}
	return out
}
