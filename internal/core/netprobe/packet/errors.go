package packet

import "fmt"

// MissingFieldError 表示构建器调用前缺少必填字段——属于调用方的使用错误
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// InvalidParameterError 表示参数本身不合法（如源/目的地址族不一致）
type InvalidParameterError struct {
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter: %s", e.Reason)
}
