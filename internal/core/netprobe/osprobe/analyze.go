package osprobe

import (
	"fmt"
	"math"

	"netprobe/internal/core/netprobe/packet"
)

// analyzeSeqResults 从 6 个 SEQ 响应派生 GCD/ISR/SP/TI/CI/II/SS/TS 特征。
// 少于 2 个有效响应时返回空集合——样本不足以推断任何生成模式。
func analyzeSeqResults(results []TCPProbeResult) map[string]string {
	out := make(map[string]string)
	valid := make([]TCPProbeResult, 0, len(results))
	for _, r := range results {
		if r.Received {
			valid = append(valid, r)
		}
	}
	if len(valid) < 2 {
		return out
	}

	deltas := make([]uint32, 0, len(valid)-1)
	for i := 1; i < len(valid); i++ {
		deltas = append(deltas, valid[i].ISN-valid[i-1].ISN)
	}

	gcd := calculateGCDVec(deltas)
	out["GCD"] = fmt.Sprintf("%X", gcd)

	timeDiff := valid[len(valid)-1].Timestamp.Sub(valid[0].Timestamp).Seconds()
	if timeDiff > 0 {
		isnDiff := valid[len(valid)-1].ISN - valid[0].ISN
		isr := uint32(float64(isnDiff) / timeDiff)
		out["ISR"] = fmt.Sprintf("%X", isr)
	}

	ipids := make([]uint16, len(valid))
	for i, r := range valid {
		ipids[i] = r.IPID
	}
	pattern := analyzeIPIDPattern(ipids)
	out["TI"] = pattern
	out["CI"] = pattern
	out["II"] = pattern

	out["SP"] = binStdDev(deltas)

	hasTimestamp := false
	for _, r := range valid {
		for _, o := range r.Options {
			if o.Kind == packet.OptKindTimestamp {
				hasTimestamp = true
			}
		}
	}
	if hasTimestamp {
		out["SS"] = "S"
		if ts, ok := binTimestampRate(valid); ok {
			out["TS"] = ts
		}
	} else {
		out["SS"] = "U"
	}

	return out
}

// binStdDev 对 ISN 增量的标准差分箱：σ<100 → "0"；<1000 → "1-4"；<10000 → "5-10"；否则 "11+"
func binStdDev(deltas []uint32) string {
	if len(deltas) == 0 {
		return "0"
	}
	var sum float64
	for _, d := range deltas {
		sum += float64(d)
	}
	avg := sum / float64(len(deltas))

	var variance float64
	for _, d := range deltas {
		diff := float64(d) - avg
		variance += diff * diff
	}
	variance /= float64(len(deltas))
	std := math.Sqrt(variance)

	switch {
	case std < 100:
		return "0"
	case std < 1000:
		return "1-4"
	case std < 10000:
		return "5-10"
	default:
		return "11+"
	}
}

// binTimestampRate 从携带 Timestamp 选项的响应里派生时间戳节奏分类
func binTimestampRate(results []TCPProbeResult) (string, bool) {
	var tsValues []uint32
	for _, r := range results {
		for _, o := range r.Options {
			if o.Kind == packet.OptKindTimestamp {
				tsValues = append(tsValues, o.TsVal)
				break
			}
		}
	}
	if len(tsValues) < 2 {
		return "", false
	}

	var sum float64
	for i := 1; i < len(tsValues); i++ {
		sum += float64(tsValues[i] - tsValues[i-1])
	}
	avg := sum / float64(len(tsValues)-1)

	switch {
	case avg < 10:
		return "U", true
	case avg < 100:
		return "1", true
	case avg < 1000:
		return "2", true
	default:
		return "7", true
	}
}

// analyzeIPIDPattern 对 IP ID 序列分类：全零 → "Z"；单调小增量 → "I"；否则 "RI"；样本不足 → "U"
func analyzeIPIDPattern(ipids []uint16) string {
	if len(ipids) < 2 {
		return "U"
	}

	allZero := true
	for _, id := range ipids {
		if id != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return "Z"
	}

	incremental := true
	for i := 1; i < len(ipids); i++ {
		diff := ipids[i] - ipids[i-1]
		if diff == 0 || diff > 1000 {
			incremental = false
			break
		}
	}
	if incremental {
		return "I"
	}
	return "RI"
}

func calculateGCDVec(numbers []uint32) uint32 {
	if len(numbers) == 0 {
		return 1
	}
	result := numbers[0]
	for _, n := range numbers[1:] {
		result = gcd(result, n)
	}
	return result
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
