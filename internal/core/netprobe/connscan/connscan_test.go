package connscan

import (
	"context"
	"net"
	"net/netip"
	"testing"

	"netprobe/internal/core/model"
)

func TestScanDetectsOpenPort(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start listener: %v", err)
	}
	defer ln.Close()

	addrPort := ln.Addr().(*net.TCPAddr)
	target := Target{Addr: netip.MustParseAddr("127.0.0.1"), Port: uint16(addrPort.Port)}

	results, err := Scan(context.Background(), []Target{target}, Options{Concurrency: 1, TimeoutMS: 500})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].State != model.PortOpen {
		t.Fatalf("expected one open result, got %+v", results)
	}
}

func TestScanDropsClosedResults(t *testing.T) {
	// Port 1 on loopback is conventionally closed (nothing listens there).
	target := Target{Addr: netip.MustParseAddr("127.0.0.1"), Port: 1}

	results, err := Scan(context.Background(), []Target{target}, Options{Concurrency: 1, TimeoutMS: 200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected closed port to be dropped from results, got %+v", results)
	}
}

func TestScanEmptyTargets(t *testing.T) {
	results, err := Scan(context.Background(), nil, Options{})
	if err != nil || results != nil {
		t.Fatalf("expected nil, nil for empty target list, got %+v, %v", results, err)
	}
}
