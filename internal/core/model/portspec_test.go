package model

import (
	"reflect"
	"testing"
)

func TestParsePortSpec(t *testing.T) {
	got, err := ParsePortSpec("80,443,8000-8005")
	if err != nil {
		t.Fatalf("ParsePortSpec: %v", err)
	}
	want := []uint16{80, 443, 8000, 8001, 8002, 8003, 8004, 8005}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParsePortSpecOrderInsensitiveAndDeduped(t *testing.T) {
	got, err := ParsePortSpec("443,80,80,443,8000-8001")
	if err != nil {
		t.Fatalf("ParsePortSpec: %v", err)
	}
	want := []uint16{80, 443, 8000, 8001}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParsePortSpecRejectsZeroAndOutOfRange(t *testing.T) {
	for _, expr := range []string{"0", "65536", "-1", "abc"} {
		if _, err := ParsePortSpec(expr); err == nil {
			t.Errorf("ParsePortSpec(%q): expected error", expr)
		}
	}
}
