package types

// TrainRequest 模型训练请求，转发给计算后端前补默认值.
type TrainRequest struct {
	DatasetID      string   `json:"dataset_id"      rule:"required"`
	TargetColumn   string   `json:"target_column"   rule:"required"`
	Algorithm      string   `json:"algorithm"`
	TestSize       float64  `json:"test_size"`
	FeatureColumns []string `json:"feature_columns"`
}

// TrainResponse 训练应答，结果原样来自计算后端.
type TrainResponse struct {
	Success           bool           `json:"success"`
	ModelID           string         `json:"model_id"`
	Algorithm         string         `json:"algorithm"`
	Metrics           map[string]any `json:"metrics"`
	FeatureImportance map[string]any `json:"feature_importance"`
	TrainingTime      float64        `json:"training_time"`
}

// TrainingStatusResponse 训练状态：从数据集元数据读出的模型信息.
type TrainingStatusResponse struct {
	HasPredictions   bool           `json:"has_predictions"`
	PredictionColumn string         `json:"prediction_column"`
	ModelType        string         `json:"model_type"`
	ModelAlgorithm   string         `json:"model_algorithm"`
	ModelMetrics     map[string]any `json:"model_metrics"`
}
