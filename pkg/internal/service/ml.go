package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
	"github.com/auditiq/auditiq-gateway/pkg/log"
)

const (
	defaultAlgorithm = "logistic_regression"
	defaultTestSize  = 0.2
)

// trainResult 计算后端训练应答.
type trainResult struct {
	ModelID           string         `json:"model_id"`
	Algorithm         string         `json:"algorithm"`
	Metrics           map[string]any `json:"metrics"`
	FeatureImportance map[string]any `json:"feature_importance"`
	TrainingTime      float64        `json:"training_time"`
}

// Train 转发模型训练到计算后端并把模型信息回写数据集.
// 训练请求走带自愈的转发：后端重启丢了数据集也能自动补上再训.
func (s *DatasetService) Train(ctx context.Context, req *types.TrainRequest, token string) (*types.TrainResponse, error) {
	if req.Algorithm == "" {
		req.Algorithm = defaultAlgorithm
	}

	if req.TestSize == 0 {
		req.TestSize = defaultTestSize
	}

	body, err := sonic.Marshal(map[string]any{
		"dataset_id":      req.DatasetID,
		"target_column":   req.TargetColumn,
		"algorithm":       req.Algorithm,
		"test_size":       req.TestSize,
		"feature_columns": req.FeatureColumns,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal train request: %w", err)
	}

	resp, err := s.ProxyWithHeal(ctx, http.MethodPost, "/api/ml/train", nil, body, token)
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, &BackendError{StatusCode: resp.StatusCode, Detail: backendDetail(resp.Body, "ML training failed")}
	}

	var result trainResult
	if err := sonic.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode train response: %w", err)
	}

	// 训练成功后把模型信息回写到数据集元数据；失败只记 warn
	if err := s.db.WithContext(ctx).Model(&model.Dataset{}).
		Where("id = ? OR compute_dataset_id = ?", req.DatasetID, req.DatasetID).
		Updates(map[string]any{
			"has_predictions":    true,
			"prediction_column":  "ml_prediction",
			"model_type":         "classification",
			"model_algorithm":    result.Algorithm,
			"model_metrics_json": marshalOrEmpty(result.Metrics),
		}).Error; err != nil {
		log.Logger().Warn().Err(err).Str("dataset_id", req.DatasetID).Msg("failed to persist model info")
	}

	return &types.TrainResponse{
		Success:           true,
		ModelID:           result.ModelID,
		Algorithm:         result.Algorithm,
		Metrics:           result.Metrics,
		FeatureImportance: result.FeatureImportance,
		TrainingTime:      result.TrainingTime,
	}, nil
}

// TrainingStatus 从数据集元数据读模型训练状态.
func (s *DatasetService) TrainingStatus(ctx context.Context, userID, datasetID string) (*types.TrainingStatusResponse, error) {
	dataset, err := s.findOwned(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}

	resp := &types.TrainingStatusResponse{
		HasPredictions:   dataset.HasPredictions,
		PredictionColumn: dataset.PredictionColumn,
		ModelType:        dataset.ModelType,
		ModelAlgorithm:   dataset.ModelAlgorithm,
	}

	if dataset.ModelMetricsJSON != "" {
		_ = sonic.UnmarshalString(dataset.ModelMetricsJSON, &resp.ModelMetrics)
	}

	return resp, nil
}

// backendDetail 取后端错误 JSON 的 detail 字段，取不到用兜底文案.
func backendDetail(body []byte, fallback string) string {
	var probe struct {
		Detail string `json:"detail"`
	}

	if err := sonic.Unmarshal(body, &probe); err == nil && probe.Detail != "" {
		return probe.Detail
	}

	return fallback
}
