// Package connscan 实现基于标准 TCP connect() 的并发扫描器：一个固定大小、
// 完成即补位的任务池（"FuturesUnordered" 模式），不需要原始套接字权限。
package connscan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"syscall"
	"time"

	"netprobe/internal/core/model"
	"netprobe/internal/pkg/logger"
)

// Target 是一个待探测的 (地址, 端口) 对
type Target struct {
	Addr netip.Addr
	Port uint16
}

// Options 控制并发度与重试策略
type Options struct {
	Concurrency int
	TimeoutMS   int
	MaxRetries  int
}

func (o Options) timeout() time.Duration {
	if o.TimeoutMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return 100
	}
	return o.Concurrency
}

// TooManyOpenFilesError 在进程触及文件描述符上限时中止整个扫描：继续下去只会
// 产生越来越多的错误结果，唯一有意义的补救是降低并发度重新运行。
type TooManyOpenFilesError struct {
	Parallelism int
}

func (e *TooManyOpenFilesError) Error() string {
	return fmt.Sprintf("too many open files at parallelism=%d; retry with half the concurrency", e.Parallelism)
}

// maxTrackedErrors caps the unique-error dedup set so a scan hammering a
// firewall that resets with a different errno each time can't grow it
// without bound.
const maxTrackedErrors = 1000

// errorTracker records the first maxTrackedErrors distinct error strings
// seen across all probes, for a single end-of-scan debug summary instead of
// a log line per filtered probe.
type errorTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newErrorTracker() *errorTracker {
	return &errorTracker{seen: make(map[string]struct{})}
}

func (t *errorTracker) record(err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.seen) >= maxTrackedErrors {
		return
	}
	t.seen[msg] = struct{}{}
}

func (t *errorTracker) messages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.seen))
	for msg := range t.seen {
		out = append(out, msg)
	}
	return out
}

// Scan 对 targets 执行固定并发的 TCP connect 扫描，only Open 的结果会被收集。
// 池初始填充 concurrency 个并发任务，每当一个任务完成就立刻从队列中取下一个
// 补位，而不是等待整批任务全部完成（FuturesUnordered 模式）。
func Scan(ctx context.Context, targets []Target, opts Options) ([]model.ScanResult, error) {
	concurrency := opts.concurrency()
	if concurrency > len(targets) {
		concurrency = len(targets)
	}
	if concurrency == 0 {
		return nil, nil
	}

	jobs := make(chan Target)
	results := make(chan *model.ScanResult)
	fatal := make(chan error, 1)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errTracker := newErrorTracker()

	var workers sync.WaitGroup
	workers.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer workers.Done()
			for t := range jobs {
				r, err := probeOnce(workerCtx, t, opts)
				if err != nil {
					var tooMany *TooManyOpenFilesError
					if errors.As(err, &tooMany) {
						logger.Errorf("connect scan aborting: %v", err)
						select {
						case fatal <- err:
							cancel()
						default:
						}
						results <- nil
						continue
					}
					errTracker.record(err)
				}
				results <- r
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, t := range targets {
			select {
			case jobs <- t:
			case <-workerCtx.Done():
				return
			}
		}
	}()

	// Close results only once every worker has returned, so the count of
	// results read below never has to assume len(targets) jobs were actually
	// dispatched — the feeder can stop early on cancellation or the EMFILE
	// abort above without deadlocking this drain loop.
	go func() {
		workers.Wait()
		close(results)
	}()

	var open []model.ScanResult
	for r := range results {
		if r != nil && r.State == model.PortOpen {
			open = append(open, *r)
		}
	}

	if msgs := errTracker.messages(); len(msgs) > 0 {
		logger.Debugf("connect scan complete: %d open, %d unique errors: %v", len(open), len(msgs), msgs)
	}

	select {
	case err := <-fatal:
		return open, err
	default:
		return open, nil
	}
}

// probeOnce 执行一次 connect 尝试，按 max_retries 与 timeout_ms 重试
func probeOnce(ctx context.Context, t Target, opts Options) (*model.ScanResult, error) {
	addrPort := netip.AddrPortFrom(t.Addr, t.Port)
	dialer := net.Dialer{Timeout: opts.timeout()}

	var lastErr error
	for retry := 0; retry <= opts.MaxRetries; retry++ {
		start := time.Now()
		conn, err := dialer.DialContext(ctx, "tcp", addrPort.String())
		if err == nil {
			conn.Close()
			return &model.ScanResult{
				TargetIP: t.Addr, Port: t.Port, Protocol: "tcp",
				State: model.PortOpen, ResponseTime: time.Since(start), Timestamp: time.Now(),
			}, nil
		}

		if isConnectionRefused(err) {
			return &model.ScanResult{TargetIP: t.Addr, Port: t.Port, Protocol: "tcp", State: model.PortClosed, Timestamp: time.Now()}, nil
		}
		if isTooManyOpenFiles(err) {
			return nil, &TooManyOpenFilesError{Parallelism: opts.concurrency()}
		}

		lastErr = err
		if retry == opts.MaxRetries {
			break
		}
	}

	return &model.ScanResult{TargetIP: t.Addr, Port: t.Port, Protocol: "tcp", State: model.PortFiltered, Timestamp: time.Now()}, lastErr
}

func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

func isTooManyOpenFiles(err error) bool {
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}
