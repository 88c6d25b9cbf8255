package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
)

// FairnessService 公平性计算编排：
// 取审计与数据集，把原始文件送进计算后端算指标，结果回填审计.
type FairnessService struct {
	datasets *DatasetService
	audits   *AuditService
}

// NewFairnessService 从请求上下文构建服务.
func NewFairnessService(c context.Context) *FairnessService {
	return &FairnessService{
		datasets: NewDatasetService(c),
		audits:   NewAuditService(c),
	}
}

// fairnessResult 计算后端公平性应答.
type fairnessResult struct {
	OverallScore       float64        `json:"overall_score"`
	RiskLevel          string         `json:"risk_level"`
	BiasDetected       bool           `json:"bias_detected"`
	MetricsByAttribute map[string]any `json:"metrics_by_attribute"`
	Recommendations    []any          `json:"recommendations"`
}

// Calculate 执行公平性计算.
//
// 数据集每次都重新镜像后计算，保证后端拿到的是当前版本；
// 后端不可用时退化为本地模拟结果，审计仍然会完成，应答带 simulated 标记.
func (f *FairnessService) Calculate(ctx context.Context, userID string, req *types.FairnessRequest) (*types.FairnessResponse, error) {
	audit, err := f.audits.findOwned(ctx, userID, req.AuditID)
	if err != nil {
		return nil, err
	}

	dataset, err := f.datasets.findOwned(ctx, userID, audit.DatasetID)
	if err != nil {
		return nil, err
	}

	if resp := f.calculateRemote(ctx, audit, dataset); resp != nil {
		return resp, nil
	}

	return f.calculateSimulated(ctx, audit)
}

// calculateRemote 走计算后端；任何一步失败返回 nil，让调用方退化到模拟.
func (f *FairnessService) calculateRemote(ctx context.Context, audit *model.Audit, dataset *model.Dataset) *types.FairnessResponse {
	l := log.Logger()

	if dataset.ObjectKey == "" {
		return nil
	}

	content, err := f.datasets.blob.Get(ctx, dataset.Bucket, dataset.ObjectKey)
	if err != nil {
		l.Warn().Err(err).Str("dataset_id", dataset.ID).Msg("fairness: blob fetch failed")

		return nil
	}

	computeID, err := f.datasets.mirror.Mirror(ctx, dataset.Filename, content)
	if err != nil {
		l.Warn().Err(err).Str("dataset_id", dataset.ID).Msg("fairness: mirror failed")

		return nil
	}

	body, err := sonic.Marshal(map[string]any{
		"dataset_id":           computeID,
		"target_column":        audit.TargetColumn,
		"sensitive_attributes": sensitiveAttributes(audit),
		"favorable_outcome":    1,
	})
	if err != nil {
		return nil
	}

	resp, err := f.datasets.forwarder.Forward(ctx, http.MethodPost, "/api/fairness/calculate", nil, body, "")
	if err != nil || !resp.OK() {
		l.Warn().Err(err).Str("audit_id", audit.ID).Msg("fairness: compute call failed")

		return nil
	}

	var result fairnessResult
	if err := sonic.Unmarshal(resp.Body, &result); err != nil {
		l.Warn().Err(err).Msg("fairness: decode result failed")

		return nil
	}

	score := int(math.Round(result.OverallScore))
	riskLevel := normalizeRiskLevel(result.RiskLevel)
	recommendations := formatRecommendations(result.Recommendations)

	if err := f.audits.CompleteWithResults(ctx, audit.ID, score, riskLevel,
		result.BiasDetected, result.MetricsByAttribute, recommendations); err != nil {
		l.Warn().Err(err).Str("audit_id", audit.ID).Msg("fairness: persist results failed")
	}

	return &types.FairnessResponse{
		Success:            true,
		OverallScore:       score,
		RiskLevel:          riskLevel,
		BiasDetected:       result.BiasDetected,
		MetricsByAttribute: result.MetricsByAttribute,
		Recommendations:    result.Recommendations,
	}
}

// calculateSimulated 后端不可用时的本地退化：随机但合理的指标分布.
func (f *FairnessService) calculateSimulated(ctx context.Context, audit *model.Audit) (*types.FairnessResponse, error) {
	log.Logger().Info().Str("audit_id", audit.ID).Msg("fairness: using simulated results")

	attrs := sensitiveAttributes(audit)
	if len(attrs) == 0 {
		attrs = []string{"gender"}
	}

	simulated := make(map[string]any, len(attrs))

	var total float64

	for _, attr := range attrs {
		metrics := map[string]float64{
			"demographic_parity": 0.6 + rand.Float64()*0.3,
			"equal_opportunity":  0.6 + rand.Float64()*0.3,
			"equalized_odds":     0.6 + rand.Float64()*0.3,
			"predictive_parity":  0.6 + rand.Float64()*0.3,
			"disparate_impact":   0.7 + rand.Float64()*0.25,
		}

		var sum float64
		for _, v := range metrics {
			sum += v
		}

		total += sum / float64(len(metrics))
		simulated[attr] = metrics
	}

	score := int(math.Round(total / float64(len(attrs)) * 100))

	riskLevel := "High"

	switch {
	case score >= 80:
		riskLevel = "Low"
	case score >= 60:
		riskLevel = "Medium"
	}

	biasDetected := score < 80

	recommendations := []types.FairnessRecommendation{
		{Title: "Ré-échantillonnage des données", Description: "Équilibrer les groupes défavorisés", Impact: "+12%", Effort: "Moyen", Priority: "Haute", Technique: "Pre-processing"},
		{Title: "Contraintes d'équité", Description: "Ajouter des contraintes lors de l'entraînement", Impact: "+8%", Effort: "Faible", Priority: "Haute", Technique: "In-processing"},
		{Title: "Ajustement des seuils", Description: "Optimiser les seuils par groupe", Impact: "+5%", Effort: "Faible", Priority: "Moyenne", Technique: "Post-processing"},
	}

	if err := f.audits.CompleteWithResults(ctx, audit.ID, score, riskLevel,
		biasDetected, simulated, recommendations); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(recommendations))
	for _, rec := range recommendations {
		titles = append(titles, rec.Title)
	}

	return &types.FairnessResponse{
		Success:            true,
		OverallScore:       score,
		RiskLevel:          riskLevel,
		BiasDetected:       biasDetected,
		MetricsByAttribute: simulated,
		Recommendations:    titles,
		Simulated:          true,
	}, nil
}

// sensitiveAttributes 解析审计记录里的敏感属性数组.
func sensitiveAttributes(audit *model.Audit) []string {
	var attrs []string

	if audit.SensitiveAttributesJSON != "" {
		_ = sonic.UnmarshalString(audit.SensitiveAttributesJSON, &attrs)
	}

	return attrs
}

// normalizeRiskLevel 把后端的法语风险级别归一为展示用的英文.
func normalizeRiskLevel(level string) string {
	switch level {
	case "faible":
		return "Low"
	case "moyen":
		return "Medium"
	default:
		return "High"
	}
}

// formatRecommendations 后端建议可能是纯字符串或对象，统一成结构化形式.
func formatRecommendations(raw []any) []types.FairnessRecommendation {
	out := make([]types.FairnessRecommendation, 0, len(raw))

	for _, item := range raw {
		rec := types.FairnessRecommendation{
			Impact:    "+8%",
			Effort:    "Moyen",
			Priority:  "Haute",
			Technique: "Mixte",
		}

		switch v := item.(type) {
		case string:
			rec.Title = v
			rec.Description = v
		case map[string]any:
			rec.Title = stringField(v, "title")
			rec.Description = stringField(v, "description")

			if rec.Title == "" {
				rec.Title = fmt.Sprintf("%v", item)
			}
		default:
			rec.Title = fmt.Sprintf("%v", item)
			rec.Description = rec.Title
		}

		out = append(out, rec)
	}

	return out
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}

	return ""
}
