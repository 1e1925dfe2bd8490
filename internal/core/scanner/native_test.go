package scanner

import (
	"context"
	"testing"

	"netprobe/internal/core/model"
)

var (
	_ Scanner = (*NativeSynScanner)(nil)
	_ Scanner = (*NativeConnectScanner)(nil)
)

func TestNativeConnectScannerRejectsBadTarget(t *testing.T) {
	s := NewNativeConnectScanner()
	task := model.NewTask(model.TaskTypeConnectScan, "not-an-ip")
	task.PortRange = "80"

	res, err := s.Scan(context.Background(), task)
	if err == nil {
		t.Fatal("expected error for unparseable target")
	}
	if res.Status != model.TaskStatusFailed {
		t.Errorf("status = %v, want Failed", res.Status)
	}
}

func TestNativeConnectScannerRejectsBadPortSpec(t *testing.T) {
	s := NewNativeConnectScanner()
	task := model.NewTask(model.TaskTypeConnectScan, "127.0.0.1")
	task.PortRange = "not-a-port"

	res, err := s.Scan(context.Background(), task)
	if err == nil {
		t.Fatal("expected error for unparseable port spec")
	}
	if res.Status != model.TaskStatusFailed {
		t.Errorf("status = %v, want Failed", res.Status)
	}
}
