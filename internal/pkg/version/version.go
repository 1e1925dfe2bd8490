package version

var (
	Version    = "0.1.0" // 版本号 -- 发布时候更新版本号
	APIVersion = "1.0"
	BuildTime  string
	GitCommit  string
	GoVersion  string
)

func GetVersion() string {
	return Version
}

func GetFullVersion() string {
	return Version
}

func GetUserAgent() string {
	return "netprobe/" + Version
}
