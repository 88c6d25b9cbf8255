package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 数据集生命周期状态.
const (
	DatasetStatusReady    = "ready"
	DatasetStatusMirrored = "mirrored"
	DatasetStatusDeleting = "deleting"
)

// Dataset 数据集元数据：一行对应一次上传.
// 原始文件写入对象存储，结构画像与镜像状态记录在这里.
type Dataset struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;index"      json:"user_id"`

	// Filename 用户可见的原始文件名；ObjectKey 是对象存储键
	Filename  string `gorm:"size:512"                  json:"original_filename"`
	ObjectKey string `gorm:"size:1024;index"           json:"filename"`
	Bucket    string `gorm:"size:255"                  json:"bucket"`
	FileHash  string `gorm:"size:64;index"             json:"file_hash"`
	FileSize  int64  `json:"file_size"`

	RowCount      int `json:"row_count"`
	ColumnCount   int `json:"column_count"`
	MissingValues int `json:"missing_values"`
	// ColumnsJSON 逐列画像（类型/缺失/统计），JSON 字符串存储
	ColumnsJSON string `gorm:"type:text" json:"columns_info"`

	// ComputeDatasetID 计算后端上的临时 ID；后端重启会失效，
	// 失效后由自愈流程重新镜像并回写
	ComputeDatasetID *string `gorm:"size:255;index" json:"fastapi_dataset_id"`

	// 训练产出的模型信息
	HasPredictions   bool   `json:"has_predictions"`
	PredictionColumn string `gorm:"size:255" json:"prediction_column"`
	ModelType        string `gorm:"size:64"  json:"model_type"`
	ModelAlgorithm   string `gorm:"size:128" json:"model_algorithm"`
	ModelMetricsJSON string `gorm:"type:text" json:"model_metrics"`

	Status string `gorm:"size:32;default:ready;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate 补齐主键.
func (d *Dataset) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}

	return nil
}
