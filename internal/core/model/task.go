/**
 * 任务模型定义 (Core Domain)
 * @author: Sun977
 * @date: 2026.01.21
 * @description: 核心任务模型，贯穿 CLI 入口与扫描组件的通用语言。
 */

package model

import (
	"time"

	"netprobe/internal/pkg/utils"
)

// TaskType 定义任务类型
type TaskType string

const (
	TaskTypeSynScan      TaskType = "syn_scan"      // 半开放 SYN 扫描 (组件F)
	TaskTypeConnectScan  TaskType = "connect_scan"   // TCP connect 并发扫描 (组件G)
	TaskTypeOSFingerprint TaskType = "os_fingerprint" // OS 指纹探测 (组件H)
	TaskTypeTLSCertificate TaskType = "tls_certificate" // TLS 证书解析 (组件I)
	TaskTypeTLSHandshake TaskType = "tls_handshake"   // TLS 握手分析 (组件J)
)

// TaskStatus 定义任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task 核心任务结构体，描述一次扫描请求
type Task struct {
	ID        string                 `json:"id"`
	Type      TaskType               `json:"type"`
	Target    string                 `json:"target"`               // 扫描目标 (IP/CIDR)
	PortRange string                 `json:"port_range,omitempty"` // 端口范围 (e.g. "80,443,1000-2000")
	Params    map[string]interface{} `json:"params,omitempty"`     // 任务特定参数
	Timeout   time.Duration          `json:"timeout"`
	Priority  int                    `json:"priority"`
	CreatedAt time.Time              `json:"created_at"`
}

// TaskResult 任务执行结果
type TaskResult struct {
	TaskID    string      `json:"task_id"`
	Status    TaskStatus  `json:"status"`
	Result    interface{} `json:"result"` // 具体的扫描结果 (ScanResultSet 或其他强类型结构体)
	Error     string      `json:"error,omitempty"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
}

// NewTask 创建一个新任务，ID 取 "task_<uuid>" 形式，便于在日志与事件总线中串联一次扫描的全部产出
func NewTask(taskType TaskType, target string) *Task {
	id, err := utils.GenerateUUIDWithPrefix("task")
	if err != nil {
		id = string(taskType) + "_" + target
	}
	return &Task{
		ID:        id,
		Type:      taskType,
		Target:    target,
		CreatedAt: time.Now(),
		Params:    make(map[string]interface{}),
	}
}
