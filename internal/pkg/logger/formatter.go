// 自定义日志格式化器
package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
// 返回格式："2006-01-02 15:04:05.000"
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000")
}

// NowFormatted 返回当前时间的格式化字符串
func NowFormatted() string {
	return FormatTimestamp(time.Now())
}

// LogType 日志类型枚举
type LogType string

const (
	// SystemLog 系统日志 - 记录系统运行状态
	SystemLog LogType = "system"
	// ErrorLog 错误日志 - 记录系统错误和异常
	ErrorLog LogType = "error"
	// ScanLog 扫描日志 - 记录一次端口/服务探测的结果
	ScanLog LogType = "scan"
	// PacketLog 封包日志 - 记录原始套接字的收发事件
	PacketLog LogType = "packet"
	// ProbeLog 探测日志 - 记录OS指纹/TLS握手探测事件
	ProbeLog LogType = "probe"
	// RateLimitLog 限速日志 - 记录自适应限速器的状态切换
	RateLimitLog LogType = "rate_limit"
)

// SystemLogEntry 系统日志条目结构
type SystemLogEntry struct {
	Component   string                 `json:"component"`
	Event       string                 `json:"event"`
	Message     string                 `json:"message"`
	Level       string                 `json:"level"`
	ExtraFields map[string]interface{} `json:"extra_fields"`
}

// ScanLogEntry 扫描日志条目结构，对应一次端口探测结果
type ScanLogEntry struct {
	ScanID      string                 `json:"scan_id"`
	Target      string                 `json:"target"`
	Port        int                    `json:"port"`
	Protocol    string                 `json:"protocol"`
	State       string                 `json:"state"`
	Method      string                 `json:"method"`
	DurationMS  int64                  `json:"duration_ms"`
	ExtraFields map[string]interface{} `json:"extra_fields"`
}

// PacketLogEntry 封包收发日志条目
type PacketLogEntry struct {
	Direction   string                 `json:"direction"` // sent | recv
	SrcAddr     string                 `json:"src_addr"`
	DstAddr     string                 `json:"dst_addr"`
	SrcPort     int                    `json:"src_port"`
	DstPort     int                    `json:"dst_port"`
	Flags       string                 `json:"flags"`
	Size        int                    `json:"size"`
	ExtraFields map[string]interface{} `json:"extra_fields"`
}

// ProbeLogEntry OS指纹/TLS握手探测日志条目
type ProbeLogEntry struct {
	Target      string                 `json:"target"`
	ProbeType   string                 `json:"probe_type"` // os_fingerprint | tls_handshake | tls_cert
	Result      string                 `json:"result"`
	ExtraFields map[string]interface{} `json:"extra_fields"`
}

// RateLimitLogEntry 限速状态变更日志条目
type RateLimitLogEntry struct {
	Hostgroup   string                 `json:"hostgroup"`
	OldRate     int32                  `json:"old_rate"`
	NewRate     int32                  `json:"new_rate"`
	Reason      string                 `json:"reason"`
	ExtraFields map[string]interface{} `json:"extra_fields"`
}

// LogSystemEvent 记录系统事件日志
func LogSystemEvent(component, event, message string, level LogLevel, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	logrusLevel := toLogrusLevel(level)

	fields := logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
		"message":   message,
		"level":     logrusLevel.String(),
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	msg := fmt.Sprintf("System event: %s - %s", component, event)
	switch logrusLevel {
	case logrus.DebugLevel:
		LoggerInstance.logger.WithFields(fields).Debug(msg)
	case logrus.WarnLevel:
		LoggerInstance.logger.WithFields(fields).Warn(msg)
	case logrus.ErrorLevel:
		LoggerInstance.logger.WithFields(fields).Error(msg)
	case logrus.FatalLevel:
		LoggerInstance.logger.WithFields(fields).Fatal(msg)
	default:
		LoggerInstance.logger.WithFields(fields).Info(msg)
	}
}

// LogError 记录错误日志
func LogError(err error, component string, extraFields map[string]interface{}) {
	if LoggerInstance == nil || err == nil {
		return
	}

	fields := logrus.Fields{
		"type":      ErrorLog,
		"component": component,
		"error":     err.Error(),
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Errorf("error in %s: %s", component, err.Error())
}

// LogScanResult 记录一次端口探测结果
func LogScanResult(scanID, target string, port int, protocol, state, method string, duration time.Duration, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	entry := ScanLogEntry{
		ScanID:     scanID,
		Target:     target,
		Port:       port,
		Protocol:   protocol,
		State:      state,
		Method:     method,
		DurationMS: duration.Milliseconds(),
	}

	fields := logrus.Fields{
		"type":        ScanLog,
		"scan_id":     entry.ScanID,
		"target":      entry.Target,
		"port":        entry.Port,
		"protocol":    entry.Protocol,
		"state":       entry.State,
		"method":      entry.Method,
		"duration_ms": entry.DurationMS,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	switch state {
	case "open":
		LoggerInstance.logger.WithFields(fields).Info(fmt.Sprintf("%s:%d open (%s)", target, port, method))
	case "filtered":
		LoggerInstance.logger.WithFields(fields).Debug(fmt.Sprintf("%s:%d filtered (%s)", target, port, method))
	default:
		LoggerInstance.logger.WithFields(fields).Debug(fmt.Sprintf("%s:%d %s (%s)", target, port, state, method))
	}
}

// LogPacketEvent 记录原始套接字收发事件
func LogPacketEvent(direction, srcAddr, dstAddr string, srcPort, dstPort int, flags string, size int, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":     PacketLog,
		"direction": direction,
		"src_addr": srcAddr,
		"dst_addr": dstAddr,
		"src_port": srcPort,
		"dst_port": dstPort,
		"flags":    flags,
		"size":     size,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Debug(fmt.Sprintf("%s %s:%d -> %s:%d [%s]", direction, srcAddr, srcPort, dstAddr, dstPort, flags))
}

// LogProbeResult 记录OS指纹/TLS探测事件
func LogProbeResult(target, probeType, result string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":       ProbeLog,
		"target":     target,
		"probe_type": probeType,
		"result":     result,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Info(fmt.Sprintf("%s probe on %s: %s", probeType, target, result))
}

// LogRateLimitChange 记录自适应限速器的速率切换
func LogRateLimitChange(hostgroup string, oldRate, newRate int32, reason string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":      RateLimitLog,
		"hostgroup": hostgroup,
		"old_rate":  oldRate,
		"new_rate":  newRate,
		"reason":    reason,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	if newRate < oldRate {
		LoggerInstance.logger.WithFields(fields).Warn(fmt.Sprintf("rate limit decreased on %s: %d -> %d (%s)", hostgroup, oldRate, newRate, reason))
	} else {
		LoggerInstance.logger.WithFields(fields).Debug(fmt.Sprintf("rate limit adjusted on %s: %d -> %d (%s)", hostgroup, oldRate, newRate, reason))
	}
}

// LogLevel 日志级别类型，封装logrus.Level避免调用方直接依赖logrus
type LogLevel int

const (
	// DebugLevel 调试级别
	DebugLevel LogLevel = iota
	// InfoLevel 信息级别
	InfoLevel
	// WarnLevel 警告级别
	WarnLevel
	// ErrorLevel 错误级别
	ErrorLevel
	// FatalLevel 致命错误级别
	FatalLevel
)

// toLogrusLevel 将封装的LogLevel转换为logrus.Level
func toLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
