package osprobe

import (
	"testing"
	"time"

	"netprobe/internal/core/netprobe/packet"
)

func TestGcd(t *testing.T) {
	cases := []struct{ a, b, want uint32 }{
		{12, 8, 4},
		{48, 18, 6},
		{100, 50, 50},
	}
	for _, c := range cases {
		if got := gcd(c.a, c.b); got != c.want {
			t.Errorf("gcd(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCalculateGCDVec(t *testing.T) {
	if got := calculateGCDVec([]uint32{12, 18, 24}); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
	if got := calculateGCDVec([]uint32{10, 15, 20}); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := calculateGCDVec(nil); got != 1 {
		t.Errorf("expected 1 for empty input, got %d", got)
	}
}

func TestAnalyzeIPIDPattern(t *testing.T) {
	if got := analyzeIPIDPattern([]uint16{0, 0, 0}); got != "Z" {
		t.Errorf("expected Z for all-zero, got %s", got)
	}
	if got := analyzeIPIDPattern([]uint16{100, 101, 102, 103}); got != "I" {
		t.Errorf("expected I for incremental, got %s", got)
	}
	if got := analyzeIPIDPattern([]uint16{100, 50000, 200, 60000}); got != "RI" {
		t.Errorf("expected RI for random, got %s", got)
	}
	if got := analyzeIPIDPattern([]uint16{5}); got != "U" {
		t.Errorf("expected U for insufficient samples, got %s", got)
	}
}

func TestAnalyzeSeqResultsInsufficientSamples(t *testing.T) {
	out := analyzeSeqResults([]TCPProbeResult{{Received: true, ISN: 1}})
	if len(out) != 0 {
		t.Fatalf("expected empty feature set for <2 samples, got %+v", out)
	}
}

func TestAnalyzeSeqResultsDerivesFeatures(t *testing.T) {
	base := time.Now()
	results := []TCPProbeResult{
		{Received: true, ISN: 1000, IPID: 10, Timestamp: base},
		{Received: true, ISN: 1010, IPID: 11, Timestamp: base.Add(100 * time.Millisecond)},
		{Received: true, ISN: 1020, IPID: 12, Timestamp: base.Add(200 * time.Millisecond)},
	}

	out := analyzeSeqResults(results)
	if out["TI"] != "I" {
		t.Errorf("expected incremental IP ID pattern, got %s", out["TI"])
	}
	if out["SS"] != "U" {
		t.Errorf("expected no timestamp option, got SS=%s", out["SS"])
	}
	if out["GCD"] == "" || out["ISR"] == "" || out["SP"] == "" {
		t.Fatalf("expected GCD/ISR/SP to be populated: %+v", out)
	}
}

func TestAnalyzeSeqResultsDetectsTimestampOption(t *testing.T) {
	base := time.Now()
	results := []TCPProbeResult{
		{Received: true, ISN: 1000, Timestamp: base, Options: []packet.TCPOption{packet.OptTimestamp(1000, 0)}},
		{Received: true, ISN: 1050, Timestamp: base.Add(10 * time.Millisecond), Options: []packet.TCPOption{packet.OptTimestamp(1100, 0)}},
	}
	out := analyzeSeqResults(results)
	if out["SS"] != "S" {
		t.Fatalf("expected SS=S when timestamp option present, got %s", out["SS"])
	}
}

func TestBinStdDevBoundaries(t *testing.T) {
	if got := binStdDev([]uint32{1, 1, 1}); got != "0" {
		t.Errorf("expected 0 for near-zero stddev, got %s", got)
	}
}
