package main

import (
	"context"
	"fmt"
	"time"

	"netprobe/internal/core/model"
	"netprobe/internal/core/reporter"
	"netprobe/internal/core/scanner"

	"github.com/spf13/cobra"
)

func newConnectCmd() *cobra.Command {
	var target, ports string
	var concurrency, timeoutMS int

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Concurrent TCP-connect scan (no raw sockets, no special privileges)",
		RunE: func(cmd *cobra.Command, args []string) error {
			loadConfig()

			targets := model.ParseTargets(target)
			if len(targets) == 0 {
				return fmt.Errorf("no resolvable targets in %q", target)
			}

			s := scanner.NewNativeConnectScanner()
			rep := reporter.NewConsoleReporter()

			for _, t := range targets {
				task := model.NewTask(model.TaskTypeConnectScan, t.String())
				task.PortRange = ports
				task.Timeout = time.Duration(timeoutMS) * time.Millisecond
				task.Params["concurrency"] = concurrency
				task.Params["timeout_ms"] = timeoutMS

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
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 500, "max in-flight connect attempts")
	cmd.Flags().IntVar(&timeoutMS, "timeout-ms", 1000, "per-attempt dial timeout in milliseconds")
	cmd.MarkFlagRequired("target")

	return cmd
}
