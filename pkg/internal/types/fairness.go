package types

// FairnessRequest 公平性计算请求.
type FairnessRequest struct {
	AuditID string `json:"audit_id" rule:"required"`
}

// FairnessRecommendation 缓解建议，结构化供前端展示.
type FairnessRecommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort"`
	Priority    string `json:"priority"`
	Technique   string `json:"technique"`
}

// FairnessResponse 公平性计算应答.
// Simulated 为 true 表示计算后端不可用，结果来自本地模拟.
type FairnessResponse struct {
	Success            bool           `json:"success"`
	OverallScore       int            `json:"overall_score"`
	RiskLevel          string         `json:"risk_level"`
	BiasDetected       bool           `json:"bias_detected"`
	MetricsByAttribute map[string]any `json:"metrics_by_attribute"`
	Recommendations    any            `json:"recommendations"`
	Simulated          bool           `json:"simulated,omitempty"`
}
