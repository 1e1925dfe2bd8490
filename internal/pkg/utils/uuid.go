package utils

import (
	"crypto/rand"
	"fmt"
)

// GenerateUUID 生成UUID v4（基于随机数），返回标准格式如 550e8400-e29b-41d4-a716-446655440000
func GenerateUUID() (string, error) {
	uuid := make([]byte, 16)
	if _, err := rand.Read(uuid); err != nil {
		return "", fmt.Errorf("生成随机数失败: %v", err)
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x40 // 版本号
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // 变体

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16]), nil
}

// GenerateUUIDWithPrefix 生成带前缀的UUID，用于给任务ID打上类型标签，如 task_550e8400-...
func GenerateUUIDWithPrefix(prefix string) (string, error) {
	uuid, err := GenerateUUID()
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return uuid, nil
	}
	return fmt.Sprintf("%s_%s", prefix, uuid), nil
}
