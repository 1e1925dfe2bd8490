package osprobe

import "testing"

func TestEncodeTCPProbeRuleNoResponse(t *testing.T) {
	if got := encodeTCPProbeRule(TCPProbeResult{}); got != "R=N" {
		t.Fatalf("expected R=N for no response, got %s", got)
	}
}

func TestEncodeTCPProbeRuleWithResponse(t *testing.T) {
	r := TCPProbeResult{Received: true, DF: true, TTL: 64, Window: 1024}
	got := encodeTCPProbeRule(r)
	if got == "" || got == "R=N" {
		t.Fatalf("expected populated rule body, got %s", got)
	}
}

func TestToFingerprintPopulatesAllTests(t *testing.T) {
	results := &ProbeResults{
		SeqFeatures: map[string]string{"GCD": "1", "SP": "0"},
	}
	fp := results.ToFingerprint()
	for _, key := range []string{"SEQ", "ECN", "T2", "T3", "T4", "T5", "T6", "T7", "IE", "U1"} {
		if _, ok := fp.MatchRule[key]; !ok {
			t.Errorf("expected MatchRule to contain %s", key)
		}
	}
}
