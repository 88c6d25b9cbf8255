package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/auditiq/auditiq-gateway/pkg/configs"
	"github.com/auditiq/auditiq-gateway/pkg/internal/clients/compute"
	"github.com/auditiq/auditiq-gateway/pkg/internal/model"
	"github.com/auditiq/auditiq-gateway/pkg/internal/types"
)

func newFairnessEnv(t *testing.T) (*FairnessService, *testEnv) {
	t.Helper()

	env := newTestService(t)
	audits := &AuditService{db: env.db, events: &configs.EventsConfig{}}

	return &FairnessService{datasets: env.svc, audits: audits}, env
}

func createAuditFor(t *testing.T, f *FairnessService, dataset *model.Dataset) *model.Audit {
	t.Helper()

	resp, err := f.audits.Create(context.Background(), dataset.UserID, &types.CreateAuditRequest{
		DatasetID: dataset.ID,
		Config: &types.AuditConfig{
			TargetColumn:        "approved",
			ProtectedAttributes: []string{"gender"},
		},
	})
	if err != nil {
		t.Fatalf("create audit: %v", err)
	}

	return &resp.Audit
}

func TestFairnessCalculateRemote(t *testing.T) {
	f, env := newFairnessEnv(t)
	dataset := ingestOne(t, env)
	audit := createAuditFor(t, f, dataset)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusOK, `{
			"overall_score": 71.6,
			"risk_level": "moyen",
			"bias_detected": true,
			"metrics_by_attribute": {"gender": {"demographic_parity": 0.72}},
			"recommendations": ["Rééquilibrer les classes"]
		}`),
	}

	resp, err := f.Calculate(context.Background(), dataset.UserID, &types.FairnessRequest{AuditID: audit.ID})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if resp.Simulated {
		t.Error("expected remote result, got simulated")
	}

	if resp.OverallScore != 72 {
		t.Errorf("overall_score = %d, want 72 (rounded)", resp.OverallScore)
	}

	if resp.RiskLevel != "Medium" {
		t.Errorf("risk_level = %s, want Medium", resp.RiskLevel)
	}

	var reloaded model.Audit

	env.db.First(&reloaded, "id = ?", audit.ID)

	if reloaded.Status != model.AuditStatusCompleted {
		t.Errorf("status = %s, want completed", reloaded.Status)
	}

	if reloaded.OverallScore == nil || *reloaded.OverallScore != 72 {
		t.Errorf("persisted score = %v", reloaded.OverallScore)
	}

	if reloaded.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

// 计算后端打不通时退化为模拟结果，审计照样完成.
func TestFairnessCalculateSimulatedFallback(t *testing.T) {
	f, env := newFairnessEnv(t)
	dataset := ingestOne(t, env)
	audit := createAuditFor(t, f, dataset)

	env.forward.err = fmt.Errorf("connection refused")

	resp, err := f.Calculate(context.Background(), dataset.UserID, &types.FairnessRequest{AuditID: audit.ID})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	if !resp.Simulated {
		t.Error("expected simulated result")
	}

	if resp.OverallScore <= 0 || resp.OverallScore > 100 {
		t.Errorf("overall_score = %d, out of range", resp.OverallScore)
	}

	if _, ok := resp.MetricsByAttribute["gender"]; !ok {
		t.Errorf("metrics_by_attribute = %v, want gender entry", resp.MetricsByAttribute)
	}

	var reloaded model.Audit

	env.db.First(&reloaded, "id = ?", audit.ID)

	if reloaded.Status != model.AuditStatusCompleted {
		t.Errorf("status = %s, want completed even when simulated", reloaded.Status)
	}
}

func TestFairnessUnknownAudit(t *testing.T) {
	f, _ := newFairnessEnv(t)

	if _, err := f.Calculate(context.Background(), "u", &types.FairnessRequest{AuditID: "ghost"}); err == nil {
		t.Fatal("expected error for unknown audit")
	}
}

func TestTrainUpdatesDatasetModelInfo(t *testing.T) {
	env := newTestService(t)
	dataset := ingestOne(t, env)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusOK, `{
			"model_id": "m_1",
			"algorithm": "random_forest",
			"metrics": {"accuracy": 0.91},
			"feature_importance": {"income": 0.4},
			"training_time": 2.5
		}`),
	}

	resp, err := env.svc.Train(context.Background(), &types.TrainRequest{
		DatasetID:    dataset.ID,
		TargetColumn: "approved",
		Algorithm:    "random_forest",
	}, "tok")
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if !resp.Success || resp.ModelID != "m_1" {
		t.Errorf("resp = %+v", resp)
	}

	var reloaded model.Dataset

	env.db.First(&reloaded, "id = ?", dataset.ID)

	if !reloaded.HasPredictions || reloaded.PredictionColumn != "ml_prediction" {
		t.Errorf("model info not persisted: %+v", reloaded)
	}

	if reloaded.ModelAlgorithm != "random_forest" || reloaded.ModelType != "classification" {
		t.Errorf("algorithm/type = %s/%s", reloaded.ModelAlgorithm, reloaded.ModelType)
	}

	status, err := env.svc.TrainingStatus(context.Background(), dataset.UserID, dataset.ID)
	if err != nil {
		t.Fatalf("TrainingStatus: %v", err)
	}

	if !status.HasPredictions || status.ModelMetrics["accuracy"] != 0.91 {
		t.Errorf("status = %+v", status)
	}
}

func TestTrainBackendRejection(t *testing.T) {
	env := newTestService(t)
	dataset := ingestOne(t, env)

	env.forward.responses = []*compute.Response{
		jsonResp(http.StatusUnprocessableEntity, `{"detail":"target column not found"}`),
	}

	_, err := env.svc.Train(context.Background(), &types.TrainRequest{
		DatasetID:    dataset.ID,
		TargetColumn: "nope",
	}, "tok")

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("err = %v, want BackendError", err)
	}

	if backendErr.StatusCode != http.StatusUnprocessableEntity || backendErr.Detail != "target column not found" {
		t.Errorf("backend error = %+v", backendErr)
	}
}
