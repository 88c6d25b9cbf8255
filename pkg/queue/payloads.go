package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 数据集领域 --------------------------

// DatasetRef 标识数据集及其在对象存储中的位置.
type DatasetRef struct {
	DatasetID string `json:"dataset_id"`
	UserID    string `json:"user_id,omitempty"`
	Bucket    string `json:"bucket"`
	ObjectKey string `json:"object_key"`
	Hash      string `json:"hash,omitempty"` // 内容 SHA-256（hex）
	Size      int64  `json:"size,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// DatasetIngestedPayload 数据集已写入对象存储且元数据已入库.
type DatasetIngestedPayload struct {
	Dataset     DatasetRef `json:"dataset"`
	RowCount    int        `json:"row_count"`
	ColumnCount int        `json:"column_count"`
	BlobStored  bool       `json:"blob_stored"` // 对象写入是否成功（失败不阻断入库）
}

// DatasetMirroredPayload 数据集已镜像到计算后端.
type DatasetMirroredPayload struct {
	Dataset          DatasetRef `json:"dataset"`
	ComputeDatasetID string     `json:"compute_dataset_id"`
}

// DatasetMirrorFailedPayload 镜像计算后端失败.
type DatasetMirrorFailedPayload struct {
	Dataset DatasetRef `json:"dataset"`
	Error   string     `json:"error"`
}

// DatasetHealedPayload 计算后端缺失的数据集被重新上传.
type DatasetHealedPayload struct {
	Dataset            DatasetRef `json:"dataset"`
	StaleComputeID     string     `json:"stale_compute_id,omitempty"`
	NewComputeID       string     `json:"new_compute_id"`
	TriggeredByRequest string     `json:"triggered_by_request,omitempty"` // 触发修复的转发路径
}

// DatasetDeletedPayload 数据集对象与元数据已删除.
type DatasetDeletedPayload struct {
	Dataset     DatasetRef `json:"dataset"`
	BlobDeleted bool       `json:"blob_deleted"`
}

// -------------------------- 审计任务领域 --------------------------

// AuditCreatedPayload 审计任务已创建.
type AuditCreatedPayload struct {
	AuditID   string `json:"audit_id"`
	DatasetID string `json:"dataset_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status"`
}

// AuditCompletedPayload 审计任务已出结果.
type AuditCompletedPayload struct {
	AuditID string  `json:"audit_id"`
	Status  string  `json:"status"`
	Score   float64 `json:"score,omitempty"`
}
