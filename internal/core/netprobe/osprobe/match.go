package osprobe

import (
	"fmt"

	"netprobe/internal/pkg/fingerprint/engines/nmap"
)

// ToFingerprint 把一次完整的 16 探测响应装配成 Nmap nmap-os-db 规则格式的
// 指纹，交给 nmap.OSDB.Match 做最佳匹配。
func (r *ProbeResults) ToFingerprint() *nmap.OSFingerprint {
	rules := make(map[string]string)

	if len(r.SeqFeatures) > 0 {
		rules["SEQ"] = encodeRuleBody(r.SeqFeatures)
	}

	rules["ECN"] = encodeTCPProbeRule(r.ECN)
	rules["T2"] = encodeTCPProbeRule(r.T2)
	rules["T3"] = encodeTCPProbeRule(r.T3)
	rules["T4"] = encodeTCPProbeRule(r.T4)
	rules["T5"] = encodeTCPProbeRule(r.T5)
	rules["T6"] = encodeTCPProbeRule(r.T6)
	rules["T7"] = encodeTCPProbeRule(r.T7)
	rules["IE"] = encodeICMPPair(r.IE1, r.IE2)
	rules["U1"] = encodeUDPProbeRule(r.U1)

	return &nmap.OSFingerprint{Name: "probed", MatchRule: rules}
}

func encodeRuleBody(fields map[string]string) string {
	out := ""
	for _, k := range []string{"GCD", "ISR", "SP", "TI", "CI", "II", "SS", "TS"} {
		if v, ok := fields[k]; ok {
			if out != "" {
				out += "%"
			}
			out += fmt.Sprintf("%s=%s", k, v)
		}
	}
	return out
}

// encodeTCPProbeRule 渲染一个 T2-T7/ECN 响应为 Nmap 风格的规则体：
// R=响应与否, DF=是否设置了不分片位, TG=TTL, W=窗口, F=标志位（不输出 S/A 字段）
func encodeTCPProbeRule(r TCPProbeResult) string {
	if !r.Received {
		return "R=N"
	}
	df := "N"
	if r.DF {
		df = "Y"
	}
	return fmt.Sprintf("R=Y%%DF=%s%%TG=%X%%W=%X%%F=%s", df, r.TTL, r.Window, r.Flags.String())
}

func encodeICMPPair(ie1, ie2 ICMPProbeResult) string {
	if !ie1.Received && !ie2.Received {
		return "R=N"
	}
	r := ie1
	if !r.Received {
		r = ie2
	}
	df := "N"
	if r.DF {
		df = "Y"
	}
	return fmt.Sprintf("R=Y%%DFI=%s%%TG=%X", df, r.TTL)
}

func encodeUDPProbeRule(u UDPProbeResult) string {
	if !u.Received {
		return "R=N"
	}
	return fmt.Sprintf("R=Y%%TG=%X", u.TTL)
}
