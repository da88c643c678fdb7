// Package service 实现业务逻辑层。
//
// Handler 负责解析请求，Store 负责持久化，
// service 把两者之间的校验、编排和通知发布串起来。
package service

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError 表示输入校验失败，按字段携带错误信息。
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// newValidationError 创建一个字段级校验错误。
func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}
