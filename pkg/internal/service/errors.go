package service

import (
	"errors"
	"fmt"

	"github.com/auditiq/auditiq-gateway/pkg/tabular"
)

// 服务层错误分类，handler 按类别映射 HTTP 状态码.
var (
	// ErrNotFound 记录不存在或不属于当前用户.
	ErrNotFound = errors.New("not found")
	// ErrPersistence 元数据写入失败，入库整体失败.
	ErrPersistence = errors.New("persistence failure")
	// ErrBackendUnreachable 计算后端网络不可达.
	ErrBackendUnreachable = errors.New("compute backend unreachable")
)

// MalformedInputError 上传文件无法解析，带逐格错误定位.
type MalformedInputError struct {
	Cells []tabular.CellError
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %d parse errors", len(e.Cells))
}

// BackendError 计算后端返回非 2xx，状态码与 detail 原样透传.
type BackendError struct {
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: status %d: %s", e.StatusCode, e.Detail)
}
