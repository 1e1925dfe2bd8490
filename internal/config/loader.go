package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "NETPROBE"
	}

	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// LoadConfig 加载配置
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	cl.viper.SetConfigType("yaml")

	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.AutomaticEnv()
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cl.setDefaults()

	if err := cl.loadConfigFile(); err != nil {
		// 找不到配置文件时退回默认配置，而不是直接失败：扫描器是个库优先的工具，
		// 没有 YAML 文件也应该能以合理默认值运行。
		cfg := DefaultConfig()
		if err := loadFromEnv(cfg); err != nil {
			return nil, err
		}
		if err := validateConfig(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		return cfg, nil
	}

	var cfg Config
	if err := cl.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := loadFromEnv(&cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadConfigFile 加载配置文件
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configPath == "" {
		if envPath := os.Getenv("NETPROBE_CONFIG_PATH"); envPath != "" {
			cl.configPath = envPath
		} else {
			cl.configPath = "./configs"
		}
	}

	if info, err := os.Stat(cl.configPath); err == nil && !info.IsDir() {
		cl.viper.SetConfigFile(cl.configPath)
		return cl.viper.ReadInConfig()
	}

	cl.viper.AddConfigPath(cl.configPath)
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")
	cl.viper.SetConfigName("config")

	return cl.viper.ReadInConfig()
}

// setDefaults 设置默认值，与 DefaultConfig 保持同步
func (cl *ConfigLoader) setDefaults() {
	def := DefaultConfig()

	cl.viper.SetDefault("app.name", def.App.Name)
	cl.viper.SetDefault("app.version", def.App.Version)
	cl.viper.SetDefault("app.environment", def.App.Environment)
	cl.viper.SetDefault("app.debug", def.App.Debug)
	cl.viper.SetDefault("app.timezone", def.App.Timezone)

	cl.viper.SetDefault("server.host", def.Server.Host)
	cl.viper.SetDefault("server.port", def.Server.Port)

	cl.viper.SetDefault("log.level", def.Log.Level)
	cl.viper.SetDefault("log.format", def.Log.Format)
	cl.viper.SetDefault("log.output", def.Log.Output)
	cl.viper.SetDefault("log.file_path", def.Log.FilePath)
	cl.viper.SetDefault("log.max_size", def.Log.MaxSize)
	cl.viper.SetDefault("log.max_backups", def.Log.MaxBackups)
	cl.viper.SetDefault("log.max_age", def.Log.MaxAge)
	cl.viper.SetDefault("log.compress", def.Log.Compress)
	cl.viper.SetDefault("log.caller", def.Log.Caller)

	cl.viper.SetDefault("scan.timeout_ms", def.Scan.TimeoutMS)
	cl.viper.SetDefault("scan.retries", def.Scan.Retries)
	cl.viper.SetDefault("scan.parallelism", def.Scan.Parallelism)
	cl.viper.SetDefault("scan.max_rate", def.Scan.MaxRate)
	cl.viper.SetDefault("scan.source_port", def.Scan.SourcePort)
	cl.viper.SetDefault("scan.ttl", def.Scan.TTL)
	cl.viper.SetDefault("scan.fragment_packets", def.Scan.FragmentPackets)
	cl.viper.SetDefault("scan.mtu", def.Scan.MTU)
	cl.viper.SetDefault("scan.bad_checksums", def.Scan.BadChecksums)

	cl.viper.SetDefault("rate_limit.hostgroup_limit", def.RateLimit.HostgroupLimit)
	cl.viper.SetDefault("rate_limit.min_limit", def.RateLimit.MinLimit)
	cl.viper.SetDefault("rate_limit.max_limit", def.RateLimit.MaxLimit)
	cl.viper.SetDefault("rate_limit.backoff_window", def.RateLimit.BackoffWindow)

	cl.viper.SetDefault("capture.pcapng_enabled", def.Capture.PcapngEnabled)
}

// GetConfigPath 获取配置文件路径
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

// LoadConfigFromFile 从指定文件加载配置
func LoadConfigFromFile(configFile string) (*Config, error) {
	loader := NewConfigLoader(configFile, "NETPROBE")
	return loader.LoadConfig()
}
