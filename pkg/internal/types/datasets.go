package types

import (
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/tabular"
)

// UploadDatasetStats 上传应答中的整表摘要.
type UploadDatasetStats struct {
	Rows          int   `json:"rows"`
	Columns       int   `json:"columns"`
	MissingValues int   `json:"missingValues"`
	FileSize      int64 `json:"fileSize"`
}

// UploadDatasetResponse 数据集入库应答：持久 ID、镜像 ID（可能为 null）、
// 前 100 行预览与逐列画像.
type UploadDatasetResponse struct {
	ID               string               `json:"id"`
	FastAPIDatasetID *string              `json:"fastapi_dataset_id"`
	Filename         string               `json:"filename"`
	Data             []map[string]any     `json:"data"`
	Columns          []tabular.ColumnInfo `json:"columns"`
	Stats            UploadDatasetStats   `json:"stats"`
}

// ListDatasetsResponse 当前用户的数据集列表，按创建时间倒序.
type ListDatasetsResponse struct {
	Datasets []model.Dataset `json:"datasets"`
}

// DatasetDetailResponse 数据集详情，附带限时下载 URL.
type DatasetDetailResponse struct {
	Dataset model.Dataset `json:"dataset"`
	FileURL string        `json:"fileUrl,omitempty"`
}

// DeleteDatasetResponse 删除应答.
type DeleteDatasetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
