/**
 * 扫描引擎配置管理
 * @author: sun977
 * @date: 2025.10.21
 * @description: 加载和管理扫描引擎运行时需要的全部配置
 */
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 是扫描引擎的顶层配置
type Config struct {
	App *AppConfig `yaml:"app" mapstructure:"app"`

	Server *ServerConfig `yaml:"server" mapstructure:"server"`

	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// Scan 核心扫描参数，对应外部接口文档中枚举的输入配置项
	Scan *ScanConfig `yaml:"scan" mapstructure:"scan"`

	// RateLimit 自适应限速与 hostgroup 并发闸门配置
	RateLimit *RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Capture 抓包/镜像相关配置
	Capture *CaptureConfig `yaml:"capture" mapstructure:"capture"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Version     string `yaml:"version" mapstructure:"version"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
	Timezone    string `yaml:"timezone" mapstructure:"timezone"`
}

// ServerConfig 预留的控制面监听配置（当前 core 不暴露网络服务，仅用于未来的状态查询端点）
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	Output     string `yaml:"output" mapstructure:"output"`
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Caller     bool   `yaml:"caller" mapstructure:"caller"`
}

// ScanConfig 对应 §6 EXTERNAL INTERFACES 的输入配置表
type ScanConfig struct {
	TimeoutMS       int64    `yaml:"timeout_ms" mapstructure:"timeout_ms"`
	Retries         int      `yaml:"retries" mapstructure:"retries"`
	Parallelism     int      `yaml:"parallelism" mapstructure:"parallelism"`
	MaxRate         int      `yaml:"max_rate" mapstructure:"max_rate"`
	SourcePort      int      `yaml:"source_port" mapstructure:"source_port"`
	TTL             int      `yaml:"ttl" mapstructure:"ttl"`
	FragmentPackets bool     `yaml:"fragment_packets" mapstructure:"fragment_packets"`
	MTU             int      `yaml:"mtu" mapstructure:"mtu"`
	BadChecksums    bool     `yaml:"bad_checksums" mapstructure:"bad_checksums"`
	Decoys          []string `yaml:"decoys" mapstructure:"decoys"`
}

// RateLimitConfig 控制组件 E 的两个机制
type RateLimitConfig struct {
	HostgroupLimit int           `yaml:"hostgroup_limit" mapstructure:"hostgroup_limit"`
	MinLimit       int32         `yaml:"min_limit" mapstructure:"min_limit"`
	MaxLimit       int32         `yaml:"max_limit" mapstructure:"max_limit"`
	BackoffWindow  time.Duration `yaml:"backoff_window" mapstructure:"backoff_window"`
}

// CaptureConfig 控制 PCAPNG 镜像是否启用及写入位置
type CaptureConfig struct {
	PcapngEnabled bool   `yaml:"pcapng_enabled" mapstructure:"pcapng_enabled"`
	PcapngPath    string `yaml:"pcapng_path" mapstructure:"pcapng_path"`
	Interface     string `yaml:"interface" mapstructure:"interface"`
}

var globalConfig *Config

// LoadConfig 加载配置（委托给 ConfigLoader，参见 loader.go）
func LoadConfig(configPath ...string) (*Config, error) {
	var path string
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	loader := NewConfigLoader(path, "NETPROBE")
	cfg, err := loader.LoadConfig()
	if err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

// GetConfig 返回最近一次加载的全局配置，未加载时返回 nil
func GetConfig() *Config {
	return globalConfig
}

// loadFromEnv 从环境变量覆盖部分高频调整项，补充 viper 的 AutomaticEnv 绑定
func loadFromEnv(cfg *Config) error {
	if cfg.Scan == nil {
		cfg.Scan = &ScanConfig{}
	}

	if v := os.Getenv("NETPROBE_SCAN_TIMEOUT_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Scan.TimeoutMS = n
		}
	}
	if v := os.Getenv("NETPROBE_SCAN_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Parallelism = n
		}
	}
	if v := os.Getenv("NETPROBE_DEBUG"); v != "" {
		if cfg.App == nil {
			cfg.App = &AppConfig{}
		}
		cfg.App.Debug = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("NETPROBE_LOG_LEVEL"); v != "" {
		if cfg.Log == nil {
			cfg.Log = &LogConfig{}
		}
		cfg.Log.Level = v
	}

	return nil
}

// DefaultConfig 返回一份可以直接使用的默认配置，用于无配置文件时的场景和测试
func DefaultConfig() *Config {
	return &Config{
		App: &AppConfig{
			Name:        "netprobe",
			Version:     "0.1.0",
			Environment: "development",
			Debug:       false,
			Timezone:    "UTC",
		},
		Server: &ServerConfig{
			Host: "127.0.0.1",
			Port: 9090,
		},
		Log: &LogConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			FilePath:   "./logs/netprobe.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
			Caller:     true,
		},
		Scan: &ScanConfig{
			TimeoutMS:       1000,
			Retries:         2,
			Parallelism:     1000,
			MaxRate:         0,
			SourcePort:      0,
			TTL:             64,
			FragmentPackets: false,
			MTU:             1500,
			BadChecksums:    false,
		},
		RateLimit: &RateLimitConfig{
			HostgroupLimit: 64,
			MinLimit:       10,
			MaxLimit:       5000,
			BackoffWindow:  30 * time.Second,
		},
		Capture: &CaptureConfig{
			PcapngEnabled: false,
		},
	}
}

// validateConfig 验证关键字段，失败时返回描述性错误而不是 panic
func validateConfig(cfg *Config) error {
	if cfg.Scan == nil {
		return fmt.Errorf("scan config is required")
	}
	if cfg.Scan.Parallelism <= 0 {
		return fmt.Errorf("invalid parallelism: %d", cfg.Scan.Parallelism)
	}
	if cfg.Scan.TimeoutMS <= 0 {
		return fmt.Errorf("invalid timeout_ms: %d", cfg.Scan.TimeoutMS)
	}
	if cfg.Scan.MTU <= 0 {
		cfg.Scan.MTU = 1500
	}
	if cfg.Server != nil && (cfg.Server.Port < 0 || cfg.Server.Port > 65535) {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	return nil
}
