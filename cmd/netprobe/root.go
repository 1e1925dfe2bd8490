package main

import (
	"fmt"

	"netprobe/internal/config"
	"netprobe/internal/pkg/logger"
	"netprobe/internal/pkg/version"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	watchCfg   bool
	liveConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "netprobe",
	Short: "netprobe is a raw-packet TCP/UDP port scanner and fingerprinting engine",
	Long: `netprobe probes TCP and UDP services, classifies port state, and
optionally fingerprints the remote OS and TLS stack.

Examples:
  netprobe syn   -t 192.168.1.1 -p 80,443,8000-8005
  netprobe connect -t 10.0.0.0/24 -p 1-1024 --concurrency 500
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&watchCfg, "watch-config", false, "reload and validate the config file when it changes (a running scan keeps its settings)")

	rootCmd.AddCommand(newSynCmd())
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadConfig loads the active config once. With --watch-config it also starts
// a background fsnotify watcher whose validated reloads replace liveConfig.
// Nothing else reads liveConfig, so scanners already built from the returned
// config keep their settings.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("failed to load config, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}
	liveConfig = cfg

	if watchCfg && cfgFile != "" {
		w, err := config.NewConfigWatcher(cfgFile)
		if err != nil {
			fmt.Printf("failed to start config watcher: %v\n", err)
			return cfg
		}
		w.AddCallback(func(old, updated *config.Config) error {
			if err := config.ValidateConfigChange(old, updated); err != nil {
				return err
			}
			liveConfig = updated
			return nil
		})
		if err := w.Start(); err != nil {
			fmt.Printf("failed to watch config file: %v\n", err)
		}
	}
	return cfg
}

func initLogging(cmd *cobra.Command) {
	level := "warn"
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		level = flag.Value.String()
	}

	if _, err := logger.InitLogger(&config.LogConfig{
		Level:  level,
		Format: "text",
		Output: "stdout",
		Caller: false,
	}); err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the netprobe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetUserAgent())
		},
	}
}
