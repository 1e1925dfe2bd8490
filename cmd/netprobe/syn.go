package main

import (
	"context"
	"fmt"
	"time"

	"netprobe/internal/core/model"
	"netprobe/internal/core/netprobe/capture"
	"netprobe/internal/core/netprobe/ratelimit"
	"netprobe/internal/core/reporter"
	"netprobe/internal/core/scanner"
	"netprobe/internal/pkg/eventbus"

	"github.com/spf13/cobra"
)

func newSynCmd() *cobra.Command {
	var target, ports string
	var timeoutMS, retries int

	cmd := &cobra.Command{
		Use:   "syn",
		Short: "Half-open SYN scan (raw sockets, requires elevated privileges)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			targets := model.ParseTargets(target)
			if len(targets) == 0 {
				return fmt.Errorf("no resolvable targets in %q", target)
			}
			srcIP, err := capture.LocalAddr(targets[0].Is6())
			if err != nil {
				return fmt.Errorf("resolve local source address: %w", err)
			}

			protocol := capture.ProtocolIPv4TCP
			if targets[0].Is6() {
				protocol = capture.ProtocolIPv6TCP
			}

			bus := eventbus.New()
			defer bus.Close()
			limiter := ratelimit.NewManager(
				cfg.RateLimit.HostgroupLimit,
				int(cfg.RateLimit.MinLimit),
				int(cfg.RateLimit.MaxLimit),
				cfg.RateLimit.BackoffWindow,
			)

			s, err := scanner.NewNativeSynScanner(protocol, srcIP, bus, limiter)
			if err != nil {
				return err
			}

			rep := reporter.NewConsoleReporter()
			for _, t := range targets {
				task := model.NewTask(model.TaskTypeSynScan, t.String())
				task.PortRange = ports
				task.Timeout = time.Duration(timeoutMS) * time.Millisecond
				task.Params["timeout_ms"] = timeoutMS
				task.Params["retries"] = retries

				res, err := s.Scan(context.Background(), task)
				if err != nil {
					fmt.Printf("scan %s failed: %v\n", t, err)
					continue
				}
				if err := rep.Report(context.Background(), res); err != nil {
					fmt.Printf("report %s failed: %v\n", t, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "target IP, CIDR, range, or hostname")
	cmd.Flags().StringVarP(&ports, "ports", "p", "1-1024", "port spec, e.g. 80,443,8000-8005")
	cmd.Flags().IntVar(&timeoutMS, "timeout-ms", 1000, "per-attempt timeout in milliseconds")
	cmd.Flags().IntVar(&retries, "retries", 2, "max retransmit count")
	cmd.MarkFlagRequired("target")

	return cmd
}
