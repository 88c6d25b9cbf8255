package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 审计状态.
const (
	AuditStatusPending   = "pending"
	AuditStatusRunning   = "running"
	AuditStatusCompleted = "completed"
	AuditStatusFailed    = "failed"
)

// Audit 公平性审计：一个数据集上的一次偏差评估.
type Audit struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"type:uuid;index"      json:"user_id"`
	DatasetID string `gorm:"type:uuid;index"      json:"dataset_id"`

	Name    string `gorm:"size:255" json:"audit_name"`
	UseCase string `gorm:"size:128" json:"use_case"`

	TargetColumn string `gorm:"size:255" json:"target_column"`
	// SensitiveAttributes / FairnessMetrics JSON 数组字符串
	SensitiveAttributesJSON string `gorm:"type:text" json:"sensitive_attributes"`
	FairnessMetricsJSON     string `gorm:"type:text" json:"fairness_metrics"`

	ModelType string `gorm:"size:64" json:"model_type"`
	IAType    string `gorm:"size:64" json:"ia_type"`
	AuditType string `gorm:"size:64;default:single" json:"audit_type"`

	Status            string `gorm:"size:32;default:pending;index" json:"status"`
	OverallScore      *int   `json:"overall_score"`
	RiskLevel         string `gorm:"size:32" json:"risk_level"`
	BiasDetected      bool   `json:"bias_detected"`
	CriticalBiasCount int    `json:"critical_bias_count"`

	// 计算后端回填的结果
	MetricsResultsJSON  string `gorm:"type:text" json:"metrics_results"`
	RecommendationsJSON string `gorm:"type:text" json:"recommendations"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// BeforeCreate 补齐主键.
func (a *Audit) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	return nil
}
