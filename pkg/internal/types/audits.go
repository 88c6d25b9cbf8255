package types

import "github.com/auditiq/auditiq-gateway/pkg/internal/model"

// AuditConfig 创建审计时的分析配置.
type AuditConfig struct {
	TargetColumn        string   `json:"target_column"`
	ProtectedAttributes []string `json:"protected_attributes"`
}

// CreateAuditRequest 创建审计请求.
type CreateAuditRequest struct {
	AuditName     string       `json:"audit_name"`
	UseCase       string       `json:"use_case"`
	DatasetID     string       `json:"dataset_id"      rule:"required"`
	DatasetIDPost string       `json:"dataset_id_post"`
	ModelType     string       `json:"model_type"`
	IAType        string       `json:"ia_type"`
	AuditType     string       `json:"audit_type"`
	Config        *AuditConfig `json:"config"`
}

// AuditListItem 列表项：审计概要加所属数据集名.
type AuditListItem struct {
	model.Audit

	DatasetName string `json:"dataset_name"`
}

// ListAuditsResponse 当前用户的审计列表，按创建时间倒序.
type ListAuditsResponse struct {
	Audits []AuditListItem `json:"audits"`
}

// AuditResponse 单个审计应答.
type AuditResponse struct {
	Audit   model.Audit `json:"audit"`
	Success bool        `json:"success,omitempty"`
}

// UpdateAuditRequest 审计更新：允许修改的字段白名单.
type UpdateAuditRequest struct {
	AuditName    *string `json:"audit_name"`
	UseCase      *string `json:"use_case"`
	Status       *string `json:"status"`
	TargetColumn *string `json:"target_column"`
}

// AuditStats 审计总体统计（当前用户）.
type AuditStats struct {
	Total          int      `json:"total"`
	Pending        int      `json:"pending"`
	Completed      int      `json:"completed"`
	Failed         int      `json:"failed"`
	BiasDetected   int      `json:"bias_detected"`
	AverageScore   *float64 `json:"average_score"`
	HighRiskCount  int      `json:"high_risk_count"`
	AuditedDataset int      `json:"audited_datasets"`
}
