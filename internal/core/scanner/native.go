/**
 * 原生扫描器适配层
 * @description: 把 netprobe/* 的 SYN/connect 扫描器适配成 scanner.Scanner 接口，
 *               供 cmd/netprobe 与未来的控制面统一调用。
 */
package scanner

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"netprobe/internal/core/model"
	"netprobe/internal/core/netprobe/capture"
	"netprobe/internal/core/netprobe/connscan"
	"netprobe/internal/core/netprobe/ratelimit"
	"netprobe/internal/core/netprobe/synscan"
	"netprobe/internal/pkg/eventbus"
)

// NativeSynScanner adapts synscan.Scanner to the Scanner interface so a
// half-open scan task can be dispatched the same way as any other Scanner
// implementation (e.g. a future nmap-wrapper Scanner).
type NativeSynScanner struct {
	scanner *synscan.Scanner
}

// NewNativeSynScanner opens a raw-socket capture handle for protocol and
// wires it to the given rate limiter and event bus.
func NewNativeSynScanner(protocol capture.Protocol, srcIP netip.Addr, bus *eventbus.Bus, limiter *ratelimit.Manager) (*NativeSynScanner, error) {
	cap, err := capture.New(protocol)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	return &NativeSynScanner{scanner: synscan.New(cap, limiter, bus, srcIP)}, nil
}

func (s *NativeSynScanner) Name() string { return "native_syn_scanner" }

func (s *NativeSynScanner) Type() model.TaskType { return model.TaskTypeSynScan }

func (s *NativeSynScanner) Scan(ctx context.Context, task *model.Task) (*model.TaskResult, error) {
	start := time.Now()
	res := &model.TaskResult{TaskID: task.ID, Status: model.TaskStatusRunning, StartTime: start}

	target, err := netip.ParseAddr(task.Target)
	if err != nil {
		res.Status = model.TaskStatusFailed
		res.Error = err.Error()
		res.EndTime = time.Now()
		return res, err
	}

	ports, err := model.ParsePortSpec(task.PortRange)
	if err != nil {
		res.Status = model.TaskStatusFailed
		res.Error = err.Error()
		res.EndTime = time.Now()
		return res, err
	}

	opts := synscan.Options{}
	if v, ok := task.Params["timeout_ms"].(int); ok {
		opts.TimeoutMS = v
	}
	if v, ok := task.Params["retries"].(int); ok {
		opts.MaxRetries = v
	}

	set := &model.ScanResultSet{}
	for _, r := range s.scanner.ScanPorts(target, ports, opts) {
		set.Add(r)
	}

	res.Status = model.TaskStatusCompleted
	res.Result = set
	res.EndTime = time.Now()
	set.Duration = res.EndTime.Sub(res.StartTime)
	return res, nil
}

// NativeConnectScanner adapts the connect-scan scheduler to the Scanner
// interface. Unlike NativeSynScanner it needs no raw-socket capability.
type NativeConnectScanner struct{}

func NewNativeConnectScanner() *NativeConnectScanner { return &NativeConnectScanner{} }

func (s *NativeConnectScanner) Name() string { return "native_connect_scanner" }

func (s *NativeConnectScanner) Type() model.TaskType { return model.TaskTypeConnectScan }

func (s *NativeConnectScanner) Scan(ctx context.Context, task *model.Task) (*model.TaskResult, error) {
	start := time.Now()
	res := &model.TaskResult{TaskID: task.ID, Status: model.TaskStatusRunning, StartTime: start}

	addr, err := netip.ParseAddr(task.Target)
	if err != nil {
		res.Status = model.TaskStatusFailed
		res.Error = err.Error()
		res.EndTime = time.Now()
		return res, err
	}

	ports, err := model.ParsePortSpec(task.PortRange)
	if err != nil {
		res.Status = model.TaskStatusFailed
		res.Error = err.Error()
		res.EndTime = time.Now()
		return res, err
	}

	targets := make([]connscan.Target, len(ports))
	for i, p := range ports {
		targets[i] = connscan.Target{Addr: addr, Port: p}
	}

	opts := connscan.Options{}
	if v, ok := task.Params["concurrency"].(int); ok {
		opts.Concurrency = v
	}
	if v, ok := task.Params["timeout_ms"].(int); ok {
		opts.TimeoutMS = v
	}

	open, err := connscan.Scan(ctx, targets, opts)
	res.EndTime = time.Now()
	if err != nil {
		res.Status = model.TaskStatusFailed
		res.Error = err.Error()
		return res, err
	}

	set := &model.ScanResultSet{}
	for _, r := range open {
		set.Add(r)
	}
	set.Duration = res.EndTime.Sub(res.StartTime)

	res.Status = model.TaskStatusCompleted
	res.Result = set
	return res, nil
}
